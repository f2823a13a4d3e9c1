// Package httpapi exposes the identity and goal services over HTTP. Every
// request carries its session in a signed cookie; handlers that touch goals
// resolve the owner first and write the (possibly new) session back.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/goalkeeper/internal/logging"
	"github.com/dmitrijs2005/goalkeeper/internal/server/config"
	"github.com/dmitrijs2005/goalkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/goalkeeper/internal/server/services"
	"github.com/dmitrijs2005/goalkeeper/internal/server/sessions"
	"github.com/dmitrijs2005/goalkeeper/internal/server/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// ServiceName identifies the server in traces.
const ServiceName = "goalkeeper-server"

// Pinger reports store readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	address         string
	identity        *services.IdentityService
	goals           *services.GoalService
	revocations     sessions.RevocationStore
	metrics         *metrics.Metrics
	store           Pinger
	logger          logging.Logger
	cookies         cookieCodec
	allowedOrigins  []string
	rateLimit       int
	shutdownTimeout time.Duration
}

func NewServer(cfg *config.Config, l logging.Logger, ids *services.IdentityService, gs *services.GoalService,
	rev sessions.RevocationStore, met *metrics.Metrics, store Pinger) *Server {
	return &Server{
		address:     cfg.Addr,
		identity:    ids,
		goals:       gs,
		revocations: rev,
		metrics:     met,
		store:       store,
		logger:      l.With("module", "http_server"),
		cookies: cookieCodec{
			name:   cfg.CookieName,
			secret: []byte(cfg.SecretKey),
			ttl:    cfg.SessionTTL,
			secure: cfg.CookieSecure,
		},
		allowedOrigins:  cfg.AllowedOrigins,
		rateLimit:       cfg.RateLimit,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Routes builds the chi router with all endpoints and middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(telemetry.Middleware(ServiceName))
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Group(func(r chi.Router) {
			if s.rateLimit > 0 {
				r.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
			}
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/api/user/convert-guest", s.handleConvertGuest)
		})

		r.Post("/logout", s.handleLogout)

		r.Get("/api/user/current", s.handleCurrentUser)
		r.Put("/api/user/profile", s.handleUpdateProfile)
		r.Delete("/api/user", s.handleDeleteAccount)

		r.Get("/api/goals", s.handleListGoals)
		r.Post("/api/goals", s.handleCreateGoal)
		r.Post("/api/goals/cleanup", s.handleCleanup)
		r.Put("/api/goals/{id}", s.handleUpdateGoal)
		r.Delete("/api/goals/{id}", s.handleDeleteGoal)
	})

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
