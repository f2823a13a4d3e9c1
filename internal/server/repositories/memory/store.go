// Package memory implements the repository manager on process memory. It is
// the store used when no database DSN is configured and in service tests.
//
// Transactions are serialised: WithTx holds the store lock, works on a copy
// of the state and swaps it in only when fn succeeds.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
	"github.com/dmitrijs2005/goalkeeper/internal/dbx"
	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/goals"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/users"
)

// ErrSQLUnsupported is returned when a memory handle is used as a SQL handle.
var ErrSQLUnsupported = errors.New("memory store does not execute SQL")

type state struct {
	users map[string]*models.User
	goals map[string]*models.Goal
}

func newState() *state {
	return &state{users: map[string]*models.User{}, goals: map[string]*models.Goal{}}
}

func (s *state) clone() *state {
	c := newState()
	for k, u := range s.users {
		c.users[k] = u.Clone()
	}
	for k, g := range s.goals {
		c.goals[k] = g.Clone()
	}
	return c
}

// Manager is an in-memory RepositoryManager.
type Manager struct {
	mu sync.Mutex
	st *state
}

func NewManager() *Manager {
	return &Manager{st: newState()}
}

// handle is the DBTX value vended by Conn and WithTx. Only its state matters;
// the SQL methods exist to satisfy dbx.DBTX.
type handle struct {
	m  *Manager
	tx *state
}

func (h *handle) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, ErrSQLUnsupported
}

func (h *handle) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, ErrSQLUnsupported
}

func (h *handle) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

// do runs fn against the transaction copy, or against the committed state
// under the store lock.
func (h *handle) do(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	return fn(h.m.st)
}

func (m *Manager) handleFor(db dbx.DBTX) *handle {
	if h, ok := db.(*handle); ok && h.m == m {
		return h
	}
	return &handle{m: m}
}

func (m *Manager) Conn() dbx.DBTX {
	return &handle{m: m}
}

func (m *Manager) WithTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	h := &handle{m: m, tx: m.st.clone()}
	defer func() {
		if p := recover(); p != nil {
			panic(p)
		}
		if err == nil {
			m.st = h.tx
		}
		h.tx = nil
	}()

	return fn(ctx, h)
}

func (m *Manager) Users(db dbx.DBTX) users.Repository {
	return &userRepo{h: m.handleFor(db)}
}

func (m *Manager) Goals(db dbx.DBTX) goals.Repository {
	return &goalRepo{h: m.handleFor(db)}
}

func (m *Manager) RunMigrations(context.Context) error { return nil }

func (m *Manager) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Manager) Close() error { return nil }

func conflict(field, value string) error {
	return fmt.Errorf("%w: %s %q", common.ErrorAlreadyExists, field, value)
}
