package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/goalkeeper/internal/client/client"
	"github.com/dmitrijs2005/goalkeeper/internal/client/config"
	"github.com/dmitrijs2005/goalkeeper/internal/client/services"
	"github.com/dmitrijs2005/goalkeeper/internal/filex"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config       *config.Config
	repos        *client.Repositories
	authService  services.AuthService
	goalService  services.GoalService
	reader       *bufio.Reader
	mu           sync.Mutex
	mode         Mode
	pingTimeout  time.Duration
	callDeadline time.Duration
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	var repos *client.Repositories
	if c.SessionDB != "" {
		if err := filex.EnsureParentDir(c.SessionDB); err != nil {
			return nil, fmt.Errorf("error initializing session store: %w", err)
		}
		repos, err = client.InitDatabase(context.Background(), c.SessionDB)
		if err != nil {
			return nil, fmt.Errorf("error initializing session store: %w", err)
		}
	}

	return &App{
		config:       c,
		repos:        repos,
		authService:  services.NewAuthService(apiClient, repos),
		goalService:  services.NewGoalService(apiClient),
		reader:       bufio.NewReader(os.Stdin),
		pingTimeout:  3 * time.Second,
		callDeadline: c.RequestTimeout,
	}, nil
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if !changed {
		return
	}
	if mode == ModeOnline {
		success("server is %s", mode)
	} else {
		warn("server is %s", mode)
	}
}

// Run restores the saved session, checks connectivity, starts the online
// watcher and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	if err := a.authService.Restore(ctx); err != nil {
		warn("could not restore the previous session: %v", err)
	}

	a.checkOnline(ctx)
	if a.Mode() == ModeOnline {
		// a missing session is fine; the prompt just shows no user
		_ = a.refreshUser(ctx)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

func (a *App) Close() {
	if a.repos != nil {
		_ = a.repos.Close()
	}
}

// isRegistered reports whether the session belongs to a registered user.
func (a *App) isRegistered() bool {
	u := a.authService.User()
	return u != nil && !u.IsGuest
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.pingTimeout)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// call bounds a single command's round trips.
func (a *App) call(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.callDeadline <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.callDeadline)
}
