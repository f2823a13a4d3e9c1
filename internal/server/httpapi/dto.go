package httpapi

import (
	"time"

	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
)

type userResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	Email        *string   `json:"email,omitempty"`
	TimeZone     string    `json:"timezone"`
	IsGuest      bool      `json:"is_guest"`
	CreatedAt    time.Time `json:"created_at"`
	SessionToken string    `json:"session_token,omitempty"`
}

// newUserResponse renders u. The guest token is included only when
// withToken is set, which callers do solely for the guest's own session.
func newUserResponse(u *models.User, withToken bool) userResponse {
	resp := userResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.Username,
		Email:       u.Email,
		TimeZone:    u.TimeZone,
		IsGuest:     u.IsGuest(),
		CreatedAt:   u.CreatedAt,
	}
	if u.DisplayName != nil {
		resp.DisplayName = *u.DisplayName
	}
	if withToken && u.IsGuest() && u.SessionToken != nil {
		resp.SessionToken = *u.SessionToken
	}
	return resp
}

type anonymousResponse struct {
	IsAnonymous bool `json:"is_anonymous"`
}

type goalResponse struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	GoalType  string     `json:"goal_type"`
	Done      bool       `json:"done"`
	Created   time.Time  `json:"created"`
	Completed *time.Time `json:"completed"`
	UserID    string     `json:"user_id"`
}

func newGoalResponse(g *models.Goal) goalResponse {
	return goalResponse{
		ID:        g.ID,
		Text:      g.Text,
		GoalType:  string(g.Period),
		Done:      g.Done,
		Created:   g.CreatedAt,
		Completed: g.CompletedAt,
		UserID:    g.OwnerID,
	}
}

func newGoalList(gs []*models.Goal) []goalResponse {
	out := make([]goalResponse, 0, len(gs))
	for _, g := range gs {
		out = append(out, newGoalResponse(g))
	}
	return out
}

type cleanupResponse struct {
	Deleted int64 `json:"deleted"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type profileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	TimeZone    *string `json:"timezone,omitempty"`
	Email       *string `json:"email,omitempty"`
}

type createGoalRequest struct {
	Text     string `json:"text"`
	GoalType string `json:"goal_type"`
}

type updateGoalRequest struct {
	Text *string `json:"text,omitempty"`
	Done *bool   `json:"done,omitempty"`
}
