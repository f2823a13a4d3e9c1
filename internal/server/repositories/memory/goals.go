package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
)

type goalRepo struct {
	h *handle
}

func (r *goalRepo) List(ctx context.Context, ownerID string, period *models.Period) ([]*models.Goal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := make([]*models.Goal, 0)
	_ = r.h.do(func(st *state) error {
		for _, g := range st.goals {
			if g.OwnerID != ownerID {
				continue
			}
			if period != nil && g.Period != *period {
				continue
			}
			result = append(result, g.Clone())
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *goalRepo) Create(ctx context.Context, g *models.Goal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.h.do(func(st *state) error {
		if _, ok := st.users[g.OwnerID]; !ok {
			return fmt.Errorf("%w: owner %s", common.ErrorNotFound, g.OwnerID)
		}
		if _, ok := st.goals[g.ID]; ok {
			return conflict("id", g.ID)
		}
		st.goals[g.ID] = g.Clone()
		return nil
	})
}

func (r *goalRepo) Get(ctx context.Context, ownerID, id string) (*models.Goal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found *models.Goal
	err := r.h.do(func(st *state) error {
		g, ok := st.goals[id]
		if !ok || g.OwnerID != ownerID {
			return common.ErrorNotFound
		}
		found = g.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *goalRepo) Update(ctx context.Context, g *models.Goal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.h.do(func(st *state) error {
		cur, ok := st.goals[g.ID]
		if !ok || cur.OwnerID != g.OwnerID {
			return common.ErrorNotFound
		}
		next := g.Clone()
		cur.Text = next.Text
		cur.Done = next.Done
		cur.CompletedAt = next.CompletedAt
		return nil
	})
}

func (r *goalRepo) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.h.do(func(st *state) error {
		g, ok := st.goals[id]
		if !ok || g.OwnerID != ownerID {
			return common.ErrorNotFound
		}
		delete(st.goals, id)
		return nil
	})
}

func (r *goalRepo) ReassignOwner(ctx context.Context, from, to string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int64
	err := r.h.do(func(st *state) error {
		if _, ok := st.users[to]; !ok {
			return fmt.Errorf("%w: owner %s", common.ErrorNotFound, to)
		}
		for _, g := range st.goals {
			if g.OwnerID == from {
				g.OwnerID = to
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *goalRepo) DeleteCompletedBefore(ctx context.Context, ownerID string, period models.Period, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int64
	_ = r.h.do(func(st *state) error {
		for id, g := range st.goals {
			if g.OwnerID != ownerID || g.Period != period || !g.Done || g.CompletedAt == nil {
				continue
			}
			if g.CompletedAt.Before(cutoff) {
				delete(st.goals, id)
				n++
			}
		}
		return nil
	})
	return n, nil
}
