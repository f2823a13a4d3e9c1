// Package models defines the client-side views of users and goals as the
// API returns them.
package models

import (
	"fmt"
	"time"
)

// User is the identity behind the current session.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	Email        *string   `json:"email,omitempty"`
	TimeZone     string    `json:"timezone"`
	IsGuest      bool      `json:"is_guest"`
	CreatedAt    time.Time `json:"created_at"`
	SessionToken string    `json:"session_token,omitempty"`
}

// Goal is a single goal owned by the session's identity.
type Goal struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	GoalType  string     `json:"goal_type"`
	Done      bool       `json:"done"`
	Created   time.Time  `json:"created"`
	Completed *time.Time `json:"completed"`
	UserID    string     `json:"user_id"`
}

// Periods lists the goal periods in display order.
var Periods = []string{"daily", "weekly", "monthly", "yearly"}

// Checkbox renders the done state.
func (g *Goal) Checkbox() string {
	if g.Done {
		return "[x]"
	}
	return "[ ]"
}

// String renders g on one line, e.g. "[x] daily  run 5k (done 2025-01-02)".
func (g *Goal) String() string {
	s := fmt.Sprintf("%s %-7s %s", g.Checkbox(), g.GoalType, g.Text)
	if g.Completed != nil {
		s += fmt.Sprintf(" (done %s)", g.Completed.Local().Format(time.DateOnly))
	}
	return s
}
