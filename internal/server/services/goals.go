package services

import (
	"context"
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
)

// DefaultRetention is how long completed daily goals are kept.
const DefaultRetention = 7 * 24 * time.Hour

type CreateGoalRequest struct {
	Text   string
	Period string
}

// UpdateGoalRequest is a partial update; nil fields are left untouched.
type UpdateGoalRequest struct {
	Text *string
	Done *bool
}

// GoalService implements goal operations. Every method takes an owner id
// already resolved by IdentityService and never touches another owner's goals.
type GoalService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	metrics     *metrics.Metrics
	events      events.Publisher
	retention   time.Duration
	now         func() time.Time
}

func NewGoalService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger, met *metrics.Metrics, pub events.Publisher) *GoalService {
	retention := cfg.RetentionWindow
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &GoalService{
		repomanager: m,
		logger:      logger.With("module", "goals"),
		metrics:     met,
		events:      pub,
		retention:   retention,
		now:         time.Now,
	}
}

// List returns the owner's goals in creation order, optionally restricted
// to one period.
func (s *GoalService) List(ctx context.Context, ownerID string, period *models.Period) ([]*models.Goal, error) {
	goals, err := s.repomanager.Goals(s.repomanager.Conn()).List(ctx, ownerID, period)
	if err != nil {
		return nil, storeErr("list goals", err)
	}
	return goals, nil
}

func (s *GoalService) Create(ctx context.Context, ownerID string, req CreateGoalRequest) (*models.Goal, error) {
	text, err := validateGoalText(req.Text)
	if err != nil {
		return nil, err
	}
	period, err := ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}

	g := &models.Goal{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Text:      text,
		Period:    period,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repomanager.Goals(s.repomanager.Conn()).Create(ctx, g); err != nil {
		return nil, storeErr("create goal", err)
	}

	s.metrics.GoalsCreated.Inc()
	s.logger.Debug(ctx, "goal created", "goal_id", g.ID, "owner_id", ownerID)
	return g, nil
}

// Update applies a partial update. Marking an open goal done stamps
// CompletedAt with the current time; reopening clears it.
func (s *GoalService) Update(ctx context.Context, ownerID, goalID string, req UpdateGoalRequest) (*models.Goal, error) {
	var text string
	if req.Text != nil {
		t, err := validateGoalText(*req.Text)
		if err != nil {
			return nil, err
		}
		text = t
	}
	if !validGoalID(goalID) {
		return nil, common.ErrorNotFound
	}

	var (
		updated   *models.Goal
		completed bool
	)
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Goals(tx)

		g, err := repo.Get(ctx, ownerID, goalID)
		if err != nil {
			return err
		}
		if req.Text != nil {
			g.Text = text
		}
		if req.Done != nil {
			completed = *req.Done && !g.Done
			g.SetDone(*req.Done, s.now().UTC())
		}
		if err := repo.Update(ctx, g); err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, storeErr("update goal", err)
	}

	if completed {
		e := events.Event{Type: events.GoalCompleted, UserID: ownerID, OccurredAt: *updated.CompletedAt,
			Data: map[string]any{"goal_id": updated.ID, "goal_type": string(updated.Period)}}
		if err := s.events.Publish(ctx, e); err != nil {
			s.logger.Warn(ctx, "event publish failed", "type", e.Type, "error", err)
		}
	}
	return updated, nil
}

func (s *GoalService) Delete(ctx context.Context, ownerID, goalID string) error {
	if !validGoalID(goalID) {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Goals(s.repomanager.Conn()).Delete(ctx, ownerID, goalID); err != nil {
		return storeErr("delete goal", err)
	}
	s.metrics.GoalsDeleted.Inc()
	return nil
}

// Cleanup deletes the owner's daily goals that were completed more than the
// retention window before now, and reports how many were removed. One clock
// reading serves the whole operation.
func (s *GoalService) Cleanup(ctx context.Context, ownerID string) (int64, error) {
	cutoff := s.now().UTC().Add(-s.retention)

	n, err := s.repomanager.Goals(s.repomanager.Conn()).DeleteCompletedBefore(ctx, ownerID, models.PeriodDaily, cutoff)
	if err != nil {
		return 0, storeErr("cleanup goals", err)
	}

	s.metrics.GoalsCleanedUp.Add(float64(n))
	if n > 0 {
		s.logger.Info(ctx, "completed goals cleaned up", "owner_id", ownerID, "deleted", n)
	}
	return n, nil
}

// validGoalID rejects ids that cannot exist, so malformed path values read
// as not found rather than as store errors.
func validGoalID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
