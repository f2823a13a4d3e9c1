package client

import (
	"context"

	"github.com/dmitrijs2005/goalkeeper/internal/client/models"
)

// GoalPatch is a partial goal update; nil fields are left untouched.
type GoalPatch struct {
	Text *string `json:"text,omitempty"`
	Done *bool   `json:"done,omitempty"`
}

// SessionCookie is a cookie as saved between runs.
type SessionCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, username, password, email string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	ConvertGuest(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context) error
	// Current returns nil when the session carries no identity.
	Current(ctx context.Context) (*models.User, error)
	ListGoals(ctx context.Context, period string) ([]*models.Goal, error)
	CreateGoal(ctx context.Context, text, period string) (*models.Goal, error)
	UpdateGoal(ctx context.Context, id string, patch GoalPatch) (*models.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
	Cleanup(ctx context.Context) (int64, error)

	Session() []SessionCookie
	RestoreSession(cookies []SessionCookie)
}
