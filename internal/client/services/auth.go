// Package services contains application services for the GoalKeeper client.
// AuthService manages the session identity; GoalService wraps goal calls and
// resolves the short goal references typed at the prompt.
package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/dmitrijs2005/goalkeeper/internal/client/client"
	"github.com/dmitrijs2005/goalkeeper/internal/client/models"
	"github.com/dmitrijs2005/goalkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/goalkeeper/internal/common"
)

// AuthService defines identity operations for the CLI.
//
// Contract:
//   - Register: create an account; a guest session's goals move to it.
//   - Login: authenticate; the guest session, if any, is dropped.
//   - Promote: turn the current guest into a registered user in place.
//   - Logout: end the session on the server.
//   - WhoAmI: ask the server who the session belongs to (nil for none).
//   - User: the last identity seen, without a round trip.
//   - Ping: check server liveness.
//   - Restore: reload the session saved by a previous run.
//
// With a session store the cookies and identity are saved after every call
// that may change them, so a guest survives restarts. Store failures are
// logged and never fail the call.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte, email string) (*models.User, error)
	Login(ctx context.Context, username string, password []byte) (*models.User, error)
	Promote(ctx context.Context, username string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*models.User, error)
	User() *models.User
	Ping(ctx context.Context) error
	Restore(ctx context.Context) error
}

type authService struct {
	client client.Client
	repos  *client.Repositories

	mu   sync.Mutex
	user *models.User
}

// NewAuthService constructs an AuthService bound to the given API client.
// repos may be nil, in which case nothing is saved between runs.
func NewAuthService(c client.Client, repos *client.Repositories) AuthService {
	return &authService{client: c, repos: repos}
}

// Register wipes password after use.
func (a *authService) Register(ctx context.Context, username string, password []byte, email string) (*models.User, error) {
	defer common.WipeByteArray(password)

	u, err := a.client.Register(ctx, username, string(password), email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	a.persist(ctx, u)
	return u, nil
}

// Login wipes password after use.
func (a *authService) Login(ctx context.Context, username string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	u, err := a.client.Login(ctx, username, string(password))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	a.persist(ctx, u)
	return u, nil
}

// Promote wipes password after use.
func (a *authService) Promote(ctx context.Context, username string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	u, err := a.client.ConvertGuest(ctx, username, string(password))
	if err != nil {
		return nil, fmt.Errorf("promote: %w", err)
	}
	a.persist(ctx, u)
	return u, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	a.persist(ctx, nil)
	return nil
}

func (a *authService) WhoAmI(ctx context.Context) (*models.User, error) {
	u, err := a.client.Current(ctx)
	if err != nil {
		return nil, err
	}
	a.persist(ctx, u)
	return u, nil
}

func (a *authService) User() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) setUser(u *models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = u
}

func (a *authService) Restore(ctx context.Context) error {
	if a.repos == nil {
		return nil
	}

	var cookies []client.SessionCookie
	if _, err := a.repos.Metadata.Load(ctx, metadata.KeySession, &cookies); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	var u models.User
	ok, err := a.repos.Metadata.Load(ctx, metadata.KeyUser, &u)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	a.client.RestoreSession(cookies)
	if ok {
		a.setUser(&u)
	}
	return nil
}

// persist records u and the current cookies as the session to restore on
// the next run; nil forgets it.
func (a *authService) persist(ctx context.Context, u *models.User) {
	a.setUser(u)
	if a.repos == nil {
		return
	}

	err := a.repos.WithTx(ctx, func(ctx context.Context, meta metadata.Repository) error {
		if u == nil {
			return meta.Clear(ctx)
		}
		if err := meta.Save(ctx, metadata.KeySession, a.client.Session()); err != nil {
			return err
		}
		return meta.Save(ctx, metadata.KeyUser, u)
	})
	if err != nil {
		log.Printf("session store: %v", err)
	}
}
