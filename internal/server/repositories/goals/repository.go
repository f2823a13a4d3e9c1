// Package goals provides persistence for goals. Every operation is scoped to
// an owner id.
package goals

import (
	"context"
	"time"

	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
)

type Repository interface {
	// List returns the owner's goals ordered by creation time, then id.
	// A nil period returns all periods.
	List(ctx context.Context, ownerID string, period *models.Period) ([]*models.Goal, error)
	Create(ctx context.Context, g *models.Goal) error
	// Get returns common.ErrorNotFound when the goal does not exist or
	// belongs to another owner.
	Get(ctx context.Context, ownerID, id string) (*models.Goal, error)
	Update(ctx context.Context, g *models.Goal) error
	Delete(ctx context.Context, ownerID, id string) error
	// ReassignOwner moves every goal of from to to and reports how many moved.
	ReassignOwner(ctx context.Context, from, to string) (int64, error)
	// DeleteCompletedBefore removes the owner's done goals of the period
	// completed strictly before cutoff.
	DeleteCompletedBefore(ctx context.Context, ownerID string, period models.Period, cutoff time.Time) (int64, error)
}
