package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
	"github.com/dmitrijs2005/goalkeeper/internal/server/auth"
	"github.com/dmitrijs2005/goalkeeper/internal/server/services"
)

type ctxKey string

const sessionKey ctxKey = "session"

// sessionState is the session a request arrived with.
type sessionState struct {
	sess services.Session
	jti  string
	exp  time.Time
}

// cookieCodec reads and writes the signed session cookie.
type cookieCodec struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
}

func (c cookieCodec) encode(sess services.Session) (*http.Cookie, string, error) {
	token, jti, err := auth.GenerateSessionToken(sess.UserID, sess.GuestToken, c.secret, c.ttl)
	if err != nil {
		return nil, "", fmt.Errorf("%w: sign session: %w", common.ErrorInternal, err)
	}
	return &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, jti, nil
}

func (c cookieCodec) expired() *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// sessionMiddleware decodes the session cookie into the request context.
// Missing, invalid, expired and revoked cookies all yield an empty session.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := s.loadSession(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, st)))
	})
}

func (s *Server) loadSession(r *http.Request) (*sessionState, error) {
	ctx := r.Context()

	c, err := r.Cookie(s.cookies.name)
	if err != nil || c.Value == "" {
		return &sessionState{}, nil
	}

	claims, err := auth.ParseSessionToken(c.Value, s.cookies.secret)
	if err != nil {
		s.logger.Debug(ctx, "ignoring session cookie", "error", err)
		return &sessionState{}, nil
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: session revocation lookup: %w", common.ErrorUnavailable, err)
	}
	if revoked {
		s.logger.Debug(ctx, "ignoring revoked session cookie", "error", common.ErrTokenRevoked)
		return &sessionState{}, nil
	}

	st := &sessionState{jti: claims.ID}
	if claims.ExpiresAt != nil {
		st.exp = claims.ExpiresAt.Time
	}
	// an authenticated id wins over a guest token
	if claims.UserID != "" {
		st.sess = services.Session{UserID: claims.UserID}
	} else {
		st.sess = services.Session{GuestToken: claims.GuestToken}
	}
	return st, nil
}

func sessionFrom(ctx context.Context) *sessionState {
	if st, ok := ctx.Value(sessionKey).(*sessionState); ok {
		return st
	}
	return &sessionState{}
}

// saveSession writes next into the cookie when it differs from the session
// the request arrived with. The previous token is revoked so it cannot be
// replayed; an empty next clears the cookie.
func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, next services.Session) error {
	st := sessionFrom(r.Context())
	if next == st.sess && st.jti != "" {
		return nil
	}

	if next.IsZero() {
		http.SetCookie(w, s.cookies.expired())
		s.revoke(r.Context(), st)
		st.sess = next
		return nil
	}

	c, jti, err := s.cookies.encode(next)
	if err != nil {
		return err
	}
	http.SetCookie(w, c)
	s.revoke(r.Context(), st)
	st.sess, st.jti, st.exp = next, jti, time.Now().Add(s.cookies.ttl)
	return nil
}

func (s *Server) revoke(ctx context.Context, st *sessionState) {
	if st.jti == "" {
		return
	}
	if err := s.revocations.Revoke(ctx, st.jti, st.exp); err != nil {
		s.logger.Warn(ctx, "session revocation failed", "error", err)
	}
	st.jti = ""
}

// resolveOwner maps the request session to an owner id, persisting a newly
// created guest session. On failure the error response is already written.
func (s *Server) resolveOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	st := sessionFrom(r.Context())

	owner, sess, err := s.identity.Resolve(r.Context(), st.sess)
	if err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	if err := s.saveSession(w, r, sess); err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	return owner, true
}
