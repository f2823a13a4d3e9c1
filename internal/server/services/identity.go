// Package services contains server-side business logic. IdentityService
// resolves the owner of every request and manages registered and guest
// identities; GoalService implements owner-scoped goal operations.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
	"github.com/dmitrijs2005/goalkeeper/internal/dbx"
	"github.com/dmitrijs2005/goalkeeper/internal/logging"
	"github.com/dmitrijs2005/goalkeeper/internal/server/config"
	"github.com/dmitrijs2005/goalkeeper/internal/server/events"
	"github.com/dmitrijs2005/goalkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// guestCreateAttempts bounds retries when a generated guest username collides.
const guestCreateAttempts = 3

// Session is the per-client session value. At most one of UserID (an
// authenticated identity) and GuestToken (an anonymous identity) is set.
type Session struct {
	UserID     string
	GuestToken string
}

// IsZero reports whether the session carries no identity.
func (s Session) IsZero() bool {
	return s.UserID == "" && s.GuestToken == ""
}

type RegisterRequest struct {
	Username string
	Password string
	Email    string
}

type PromoteRequest struct {
	Username string
	Password string
}

// IdentityService provides identity operations:
//   - Resolve: map a session to an owner id, creating a guest on demand
//   - Register: create a registered identity, migrating guest goals
//   - Authenticate: verify credentials of a registered identity
//   - Promote: turn the session's guest into a registered identity in place
type IdentityService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	metrics     *metrics.Metrics
	events      events.Publisher
	bcryptCost  int
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewIdentityService constructs an IdentityService over the repositories.
func NewIdentityService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger, met *metrics.Metrics, pub events.Publisher) *IdentityService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &IdentityService{
		repomanager: m,
		logger:      logger.With("module", "identity"),
		metrics:     met,
		events:      pub,
		bcryptCost:  cost,
		now:         time.Now,
	}
}

// Resolve returns the owner id for sess. Authenticated sessions are trusted
// as is. A guest token is looked up; when it is absent or stale a new guest
// is created and the returned session carries its token, which the caller
// must persist.
func (s *IdentityService) Resolve(ctx context.Context, sess Session) (string, Session, error) {
	if sess.UserID != "" {
		return sess.UserID, sess, nil
	}

	repo := s.repomanager.Users(s.repomanager.Conn())

	if sess.GuestToken != "" {
		guest, err := repo.GetGuestByToken(ctx, sess.GuestToken)
		if err == nil {
			return guest.ID, sess, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return "", sess, storeErr("resolve guest", err)
		}
		s.logger.Debug(ctx, "stale guest token, creating a new guest")
	}

	var lastErr error
	for attempt := 0; attempt < guestCreateAttempts; attempt++ {
		guest := s.newGuest()
		err := repo.Create(ctx, guest)
		if err == nil {
			s.metrics.GuestsCreated.Inc()
			s.publish(ctx, events.GuestCreated, guest.ID, nil)
			s.logger.Info(ctx, "guest created", "user_id", guest.ID)
			return guest.ID, Session{GuestToken: *guest.SessionToken}, nil
		}
		if !errors.Is(err, common.ErrorAlreadyExists) {
			return "", Session{}, storeErr("create guest", err)
		}
		lastErr = err
	}
	return "", Session{}, fmt.Errorf("create guest: %w: %w", common.ErrorUnavailable, lastErr)
}

func (s *IdentityService) newGuest() *models.User {
	token := uuid.NewString()
	return &models.User{
		ID:           uuid.NewString(),
		Username:     models.GuestUsernamePrefix + token[:8],
		Kind:         models.KindAnonymous,
		SessionToken: &token,
		TimeZone:     models.DefaultTimeZone,
		CreatedAt:    s.now().UTC(),
	}
}

// Register creates a registered identity. When sess carries a guest token
// that resolves, the guest's goals move to the new identity and the guest is
// deleted in the same transaction. The returned session is authenticated as
// the new identity.
func (s *IdentityService) Register(ctx context.Context, sess Session, req RegisterRequest) (*models.User, Session, error) {
	username, err := validateCredentials(req.Username, req.Password)
	if err != nil {
		return nil, sess, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, sess, err
	}
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, sess, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Kind:         models.KindNamed,
		TimeZone:     models.DefaultTimeZone,
		CreatedAt:    s.now().UTC(),
	}

	var (
		guestID  string
		migrated int64
	)
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		if err := ensureUsernameFree(ctx, users.GetByUsername, username, ""); err != nil {
			return err
		}
		if email != nil {
			if _, err := users.GetByEmail(ctx, *email); err == nil {
				return common.Detail(common.ErrorAlreadyExists, "email already in use")
			} else if !errors.Is(err, common.ErrorNotFound) {
				return err
			}
		}

		if err := users.Create(ctx, user); err != nil {
			return err
		}

		if sess.GuestToken == "" {
			return nil
		}
		guest, err := users.GetGuestByToken(ctx, sess.GuestToken)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		migrated, err = s.repomanager.Goals(tx).ReassignOwner(ctx, guest.ID, user.ID)
		if err != nil {
			return err
		}
		if err := users.Delete(ctx, guest.ID); err != nil {
			return err
		}
		guestID = guest.ID
		return nil
	})
	if err != nil {
		return nil, sess, storeErr("register", err)
	}

	s.metrics.Registrations.WithLabelValues(strconv.FormatBool(guestID != "")).Inc()
	data := map[string]any{"migrated_goals": migrated}
	if guestID != "" {
		data["guest_id"] = guestID
	}
	s.publish(ctx, events.Registered, user.ID, data)
	s.logger.Info(ctx, "user registered", "user_id", user.ID, "guest_id", guestID, "migrated_goals", migrated)

	return user, Session{UserID: user.ID}, nil
}

// Authenticate verifies the password of a registered identity. Unknown
// usernames and wrong passwords yield the same common.ErrorUnauthorized and
// take comparable time.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, common.Detail(common.ErrorValidation, "username and password required")
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := repo.GetNamedByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			s.metrics.Logins.WithLabelValues(metrics.LoginFailure).Inc()
			return nil, common.ErrorUnauthorized
		}
		return nil, storeErr("authenticate", err)
	}

	if !checkPassword(user.PasswordHash, password) {
		s.metrics.Logins.WithLabelValues(metrics.LoginFailure).Inc()
		return nil, common.ErrorUnauthorized
	}

	s.metrics.Logins.WithLabelValues(metrics.LoginSuccess).Inc()
	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return user, nil
}

// Promote converts the session's guest into a registered identity, keeping
// its id and therefore every goal it owns.
func (s *IdentityService) Promote(ctx context.Context, sess Session, req PromoteRequest) (*models.User, Session, error) {
	if sess.GuestToken == "" {
		return nil, sess, common.Detail(common.ErrorNotFound, "no guest session found")
	}
	username, err := validateCredentials(req.Username, req.Password)
	if err != nil {
		return nil, sess, err
	}
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, sess, err
	}

	var promoted *models.User
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		guest, err := users.GetGuestByToken(ctx, sess.GuestToken)
		if errors.Is(err, common.ErrorNotFound) {
			return common.Detail(common.ErrorNotFound, "guest session not found")
		}
		if err != nil {
			return err
		}
		if err := ensureUsernameFree(ctx, users.GetByUsername, username, guest.ID); err != nil {
			return err
		}
		if err := users.Promote(ctx, guest.ID, username, hash); err != nil {
			return err
		}
		promoted, err = users.GetByID(ctx, guest.ID)
		return err
	})
	if err != nil {
		return nil, sess, storeErr("promote", err)
	}

	s.metrics.Promotions.Inc()
	s.publish(ctx, events.Promoted, promoted.ID, nil)
	s.logger.Info(ctx, "guest promoted", "user_id", promoted.ID)

	return promoted, Session{UserID: promoted.ID}, nil
}

// Current returns the identity behind sess without creating one. A session
// without a live identity yields common.ErrorNotFound.
func (s *IdentityService) Current(ctx context.Context, sess Session) (*models.User, error) {
	repo := s.repomanager.Users(s.repomanager.Conn())

	var (
		user *models.User
		err  error
	)
	switch {
	case sess.UserID != "":
		user, err = repo.GetByID(ctx, sess.UserID)
	case sess.GuestToken != "":
		user, err = repo.GetGuestByToken(ctx, sess.GuestToken)
	default:
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, storeErr("current user", err)
	}
	return user, nil
}

// ProfileRequest carries optional profile changes. Nil fields are left
// untouched; an empty Email clears the stored address.
type ProfileRequest struct {
	DisplayName *string
	TimeZone    *string
	Email       *string
}

// UpdateProfile changes profile attributes of an authenticated identity.
func (s *IdentityService) UpdateProfile(ctx context.Context, sess Session, req ProfileRequest) (*models.User, error) {
	if sess.UserID == "" {
		return nil, common.Detail(common.ErrorUnauthorized, "authentication required")
	}

	var updated *models.User
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		user, err := users.GetByID(ctx, sess.UserID)
		if errors.Is(err, common.ErrorNotFound) {
			return common.Detail(common.ErrorUnauthorized, "authentication required")
		}
		if err != nil {
			return err
		}
		if user.IsGuest() {
			return common.Detail(common.ErrorUnauthorized, "authentication required")
		}

		if req.DisplayName != nil {
			if user.DisplayName, err = validateDisplayName(*req.DisplayName); err != nil {
				return err
			}
		}
		if req.TimeZone != nil {
			if err := validateTimeZone(*req.TimeZone); err != nil {
				return err
			}
			user.TimeZone = *req.TimeZone
		}
		if req.Email != nil {
			if user.Email, err = normalizeEmail(*req.Email); err != nil {
				return err
			}
			if user.Email != nil {
				other, err := users.GetByEmail(ctx, *user.Email)
				if err == nil && other.ID != user.ID {
					return common.Detail(common.ErrorAlreadyExists, "email already in use")
				}
				if err != nil && !errors.Is(err, common.ErrorNotFound) {
					return err
				}
			}
		}

		if err := users.UpdateProfile(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, storeErr("update profile", err)
	}
	return updated, nil
}

// DeleteAccount removes the identity behind sess together with its goals.
// It never creates a guest.
func (s *IdentityService) DeleteAccount(ctx context.Context, sess Session) error {
	user, err := s.Current(ctx, sess)
	if err != nil {
		return err
	}
	if err := s.repomanager.Users(s.repomanager.Conn()).Delete(ctx, user.ID); err != nil {
		return storeErr("delete account", err)
	}
	s.publish(ctx, events.UserDeleted, user.ID, nil)
	s.logger.Info(ctx, "account deleted", "user_id", user.ID)
	return nil
}

// --- helpers below ---

// ensureUsernameFree fails when username belongs to anyone but selfID.
func ensureUsernameFree(ctx context.Context, get func(context.Context, string) (*models.User, error), username, selfID string) error {
	u, err := get(ctx, username)
	if err == nil {
		if selfID != "" && u.ID == selfID {
			return nil
		}
		return common.Detail(common.ErrorAlreadyExists, "username already exists")
	}
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}

func (s *IdentityService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummy returns a hash of a random password, compared against when the
// username is unknown.
func (s *IdentityService) dummy() []byte {
	s.dummyOnce.Do(func() {
		secret, err := common.MakeRandHexString(16)
		if err != nil {
			secret = "goalkeeper-dummy-password"
		}
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(secret), s.bcryptCost)
	})
	return s.dummyHash
}

func (s *IdentityService) publish(ctx context.Context, typ, userID string, data map[string]any) {
	e := events.Event{Type: typ, UserID: userID, OccurredAt: s.now().UTC(), Data: data}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn(ctx, "event publish failed", "type", typ, "error", err)
	}
}
