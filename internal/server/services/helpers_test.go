package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/goalkeeper/internal/dbx"
	"github.com/dmitrijs2005/goalkeeper/internal/logging"
	"github.com/dmitrijs2005/goalkeeper/internal/server/config"
	"github.com/dmitrijs2005/goalkeeper/internal/server/events"
	"github.com/dmitrijs2005/goalkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/goals"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	rm       repomanager.RepositoryManager
	identity *IdentityService
	goals    *GoalService
	metrics  *metrics.Metrics
	events   *events.Recorder
	clock    *clock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, memory.NewManager())
}

func newFixtureWith(t *testing.T, rm repomanager.RepositoryManager) *fixture {
	t.Helper()
	cfg := testConfig()
	met := metrics.New()
	rec := &events.Recorder{}
	clk := &clock{t: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)}

	ids := NewIdentityService(rm, cfg, logging.Nop(), met, rec)
	ids.now = clk.now
	gs := NewGoalService(rm, cfg, logging.Nop(), met, rec)
	gs.now = clk.now

	return &fixture{rm: rm, identity: ids, goals: gs, metrics: met, events: rec, clock: clk}
}

// guest resolves a fresh guest and returns its id and session.
func (f *fixture) guest(t *testing.T) (string, Session) {
	t.Helper()
	id, sess, err := f.identity.Resolve(context.Background(), Session{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	return id, sess
}

func (f *fixture) addGoal(t *testing.T, owner, text string, p models.Period) *models.Goal {
	t.Helper()
	g, err := f.goals.Create(context.Background(), owner, CreateGoalRequest{Text: text, Period: string(p)})
	if err != nil {
		t.Fatalf("Create goal error: %v", err)
	}
	return g
}

func ptr[T any](v T) *T { return &v }

// faultyManager wraps the in-memory manager and injects repository errors.
type faultyManager struct {
	*memory.Manager
	usersFault func(op string) error
	goalsFault func(op string) error
}

func (m *faultyManager) Users(db dbx.DBTX) users.Repository {
	return &faultyUsers{Repository: m.Manager.Users(db), fault: m.usersFault}
}

func (m *faultyManager) Goals(db dbx.DBTX) goals.Repository {
	return &faultyGoals{Repository: m.Manager.Goals(db), fault: m.goalsFault}
}

func failOn(target string, err error) func(string) error {
	return func(op string) error {
		if op == target {
			return err
		}
		return nil
	}
}

func (m *faultyManager) clearFaults() {
	m.usersFault, m.goalsFault = nil, nil
}

type faultyUsers struct {
	users.Repository
	fault func(op string) error
}

func (u *faultyUsers) check(op string) error {
	if u.fault == nil {
		return nil
	}
	return u.fault(op)
}

func (u *faultyUsers) Create(ctx context.Context, user *models.User) error {
	if err := u.check("create"); err != nil {
		return err
	}
	return u.Repository.Create(ctx, user)
}

func (u *faultyUsers) GetGuestByToken(ctx context.Context, token string) (*models.User, error) {
	if err := u.check("guest"); err != nil {
		return nil, err
	}
	return u.Repository.GetGuestByToken(ctx, token)
}

func (u *faultyUsers) GetNamedByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := u.check("named"); err != nil {
		return nil, err
	}
	return u.Repository.GetNamedByUsername(ctx, username)
}

func (u *faultyUsers) Delete(ctx context.Context, id string) error {
	if err := u.check("delete"); err != nil {
		return err
	}
	return u.Repository.Delete(ctx, id)
}

func (u *faultyUsers) Promote(ctx context.Context, id, username, hash string) error {
	if err := u.check("promote"); err != nil {
		return err
	}
	return u.Repository.Promote(ctx, id, username, hash)
}

type faultyGoals struct {
	goals.Repository
	fault func(op string) error
}

func (g *faultyGoals) check(op string) error {
	if g.fault == nil {
		return nil
	}
	return g.fault(op)
}

func (g *faultyGoals) ReassignOwner(ctx context.Context, from, to string) (int64, error) {
	if err := g.check("reassign"); err != nil {
		return 0, err
	}
	return g.Repository.ReassignOwner(ctx, from, to)
}

func (g *faultyGoals) List(ctx context.Context, owner string, p *models.Period) ([]*models.Goal, error) {
	if err := g.check("list"); err != nil {
		return nil, err
	}
	return g.Repository.List(ctx, owner, p)
}

func (g *faultyGoals) DeleteCompletedBefore(ctx context.Context, owner string, p models.Period, cutoff time.Time) (int64, error) {
	if err := g.check("cleanup"); err != nil {
		return 0, err
	}
	return g.Repository.DeleteCompletedBefore(ctx, owner, p, cutoff)
}
