package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/goalkeeper/internal/client/client"
	"github.com/dmitrijs2005/goalkeeper/internal/client/models"
)

var (
	ErrUnknownRef   = errors.New("no such goal; run list first or use the full id")
	ErrAmbiguousRef = errors.New("goal reference matches several goals")
)

// GoalService wraps goal operations. Goals are addressed by a ref: the
// 1-based position in the last listing, a unique id prefix from it, or a
// full id.
type GoalService interface {
	List(ctx context.Context, period string) ([]*models.Goal, error)
	Add(ctx context.Context, text, period string) (*models.Goal, error)
	SetDone(ctx context.Context, ref string, done bool) (*models.Goal, error)
	Edit(ctx context.Context, ref, text string) (*models.Goal, error)
	Delete(ctx context.Context, ref string) error
	Cleanup(ctx context.Context) (int64, error)
}

type goalService struct {
	client client.Client

	mu   sync.Mutex
	last []*models.Goal
}

func NewGoalService(c client.Client) GoalService {
	return &goalService{client: c}
}

func (s *goalService) List(ctx context.Context, period string) ([]*models.Goal, error) {
	goals, err := s.client.ListGoals(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	s.mu.Lock()
	s.last = goals
	s.mu.Unlock()

	return goals, nil
}

func (s *goalService) Add(ctx context.Context, text, period string) (*models.Goal, error) {
	g, err := s.client.CreateGoal(ctx, text, period)
	if err != nil {
		return nil, fmt.Errorf("add goal: %w", err)
	}
	return g, nil
}

func (s *goalService) SetDone(ctx context.Context, ref string, done bool) (*models.Goal, error) {
	id, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	g, err := s.client.UpdateGoal(ctx, id, client.GoalPatch{Done: &done})
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return g, nil
}

func (s *goalService) Edit(ctx context.Context, ref, text string) (*models.Goal, error) {
	id, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	g, err := s.client.UpdateGoal(ctx, id, client.GoalPatch{Text: &text})
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return g, nil
}

func (s *goalService) Delete(ctx context.Context, ref string) error {
	id, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := s.client.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	s.forget(id)
	return nil
}

func (s *goalService) Cleanup(ctx context.Context) (int64, error) {
	n, err := s.client.Cleanup(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	return n, nil
}

func (s *goalService) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrUnknownRef
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// list positions win; an out-of-range number may still be an id prefix
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(s.last) {
		return s.last[n-1].ID, nil
	}

	var match string
	for _, g := range s.last {
		if g.ID == ref {
			return ref, nil
		}
		if strings.HasPrefix(g.ID, ref) {
			if match != "" {
				return "", ErrAmbiguousRef
			}
			match = g.ID
		}
	}
	if match != "" {
		return match, nil
	}
	// full ids the listing has not seen are passed through
	if len(ref) == 36 {
		return ref, nil
	}
	return "", ErrUnknownRef
}

func (s *goalService) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.last[:0]
	for _, g := range s.last {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	s.last = kept
}
