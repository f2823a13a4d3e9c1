package services

import (
	"context"

	"github.com/dmitrijs2005/goalkeeper/internal/client/client"
	"github.com/dmitrijs2005/goalkeeper/internal/client/models"
)

type fakeClient struct {
	pingErr  error
	authErr  error
	goalErr  error
	user     *models.User
	goals    []*models.Goal
	gotPass  string
	patches  map[string]client.GoalPatch
	deleted  []string
	loggedIn bool
	cleaned  int64
	session  []client.SessionCookie
	restored []client.SessionCookie
}

func (f *fakeClient) Session() []client.SessionCookie { return f.session }

func (f *fakeClient) RestoreSession(c []client.SessionCookie) { f.restored = c }

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func (f *fakeClient) Register(_ context.Context, username, password, email string) (*models.User, error) {
	f.gotPass = password
	if f.authErr != nil {
		return nil, f.authErr
	}
	u := &models.User{ID: "u-new", Username: username}
	if email != "" {
		u.Email = &email
	}
	return u, nil
}

func (f *fakeClient) Login(_ context.Context, username, password string) (*models.User, error) {
	f.gotPass = password
	if f.authErr != nil {
		return nil, f.authErr
	}
	f.loggedIn = true
	return &models.User{ID: "u-1", Username: username}, nil
}

func (f *fakeClient) ConvertGuest(_ context.Context, username, password string) (*models.User, error) {
	f.gotPass = password
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &models.User{ID: "guest-1", Username: username}, nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.loggedIn = false
	return f.authErr
}

func (f *fakeClient) Current(context.Context) (*models.User, error) {
	return f.user, f.authErr
}

func (f *fakeClient) ListGoals(_ context.Context, period string) ([]*models.Goal, error) {
	if f.goalErr != nil {
		return nil, f.goalErr
	}
	var out []*models.Goal
	for _, g := range f.goals {
		if period == "" || g.GoalType == period {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeClient) CreateGoal(_ context.Context, text, period string) (*models.Goal, error) {
	if f.goalErr != nil {
		return nil, f.goalErr
	}
	g := &models.Goal{ID: "new-goal", Text: text, GoalType: period}
	f.goals = append(f.goals, g)
	return g, nil
}

func (f *fakeClient) UpdateGoal(_ context.Context, id string, patch client.GoalPatch) (*models.Goal, error) {
	if f.goalErr != nil {
		return nil, f.goalErr
	}
	if f.patches == nil {
		f.patches = map[string]client.GoalPatch{}
	}
	f.patches[id] = patch
	return &models.Goal{ID: id}, nil
}

func (f *fakeClient) DeleteGoal(_ context.Context, id string) error {
	if f.goalErr != nil {
		return f.goalErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) Cleanup(context.Context) (int64, error) {
	return f.cleaned, f.goalErr
}
