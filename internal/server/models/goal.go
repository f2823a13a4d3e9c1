package models

import (
	"time"
)

// Period is the time scope of a goal.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// MaxGoalTextLen is the maximum goal text length in characters.
const MaxGoalTextLen = 500

// Periods lists every valid period in display order.
var Periods = []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly}

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

type Goal struct {
	ID      string
	OwnerID string
	Text    string
	Period  Period
	Done    bool
	// CompletedAt is set iff Done.
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// Clone returns a deep copy of g.
func (g *Goal) Clone() *Goal {
	c := *g
	if g.CompletedAt != nil {
		t := *g.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// SetDone applies a completion state change at now. Re-marking a done goal
// as done keeps its original completion time.
func (g *Goal) SetDone(done bool, now time.Time) {
	switch {
	case done && !g.Done:
		t := now
		g.CompletedAt = &t
	case !done:
		g.CompletedAt = nil
	}
	g.Done = done
}
