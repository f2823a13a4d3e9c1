package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/goalkeeper/internal/common"
	"github.com/dmitrijs2005/goalkeeper/internal/server/events"
	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGoal_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateGoalRequest
		wantErr bool
		want    string
	}{
		{"ok", CreateGoalRequest{Text: "run 5k", Period: "daily"}, false, "run 5k"},
		{"trimmed", CreateGoalRequest{Text: "  read  ", Period: "weekly"}, false, "read"},
		{"max length", CreateGoalRequest{Text: strings.Repeat("a", 500), Period: "monthly"}, false, strings.Repeat("a", 500)},
		{"max length in runes", CreateGoalRequest{Text: strings.Repeat("ж", 500), Period: "yearly"}, false, strings.Repeat("ж", 500)},
		{"too long", CreateGoalRequest{Text: strings.Repeat("a", 501), Period: "daily"}, true, ""},
		{"empty", CreateGoalRequest{Text: "", Period: "daily"}, true, ""},
		{"whitespace", CreateGoalRequest{Text: " \t\n", Period: "daily"}, true, ""},
		{"unknown period", CreateGoalRequest{Text: "x", Period: "hourly"}, true, ""},
		{"empty period", CreateGoalRequest{Text: "x", Period: ""}, true, ""},
		{"period is case sensitive", CreateGoalRequest{Text: "x", Period: "Daily"}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			owner, _ := f.guest(t)

			g, err := f.goals.Create(context.Background(), owner, tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrorValidation)
				list, lerr := f.goals.List(context.Background(), owner, nil)
				require.NoError(t, lerr)
				assert.Empty(t, list)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Text)
			assert.Equal(t, owner, g.OwnerID)
			assert.False(t, g.Done)
			assert.Nil(t, g.CompletedAt)
			assert.Equal(t, f.clock.t, g.CreatedAt)
		})
	}
}

func TestCreateGoal_UnknownOwner(t *testing.T) {
	f := newFixture(t)
	_, err := f.goals.Create(context.Background(), uuid.NewString(), CreateGoalRequest{Text: "x", Period: "daily"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListGoals_FilterAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.guest(t)
	other, _ := f.guest(t)

	a := f.addGoal(t, owner, "a", models.PeriodDaily)
	f.clock.advance(time.Minute)
	b := f.addGoal(t, owner, "b", models.PeriodWeekly)
	f.clock.advance(time.Minute)
	c := f.addGoal(t, owner, "c", models.PeriodDaily)
	f.addGoal(t, other, "not mine", models.PeriodDaily)

	all, err := f.goals.List(ctx, owner, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, goalIDs(all))

	daily := models.PeriodDaily
	filtered, err := f.goals.List(ctx, owner, &daily)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID}, goalIDs(filtered))

	yearly := models.PeriodYearly
	none, err := f.goals.List(ctx, owner, &yearly)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdateGoal_DoneToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.guest(t)
	g := f.addGoal(t, owner, "stretch", models.PeriodDaily)

	f.clock.advance(time.Hour)
	t1 := f.clock.t
	got, err := f.goals.Update(ctx, owner, g.ID, UpdateGoalRequest{Done: ptr(true)})
	require.NoError(t, err)
	assert.True(t, got.Done)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, t1, *got.CompletedAt)

	// done -> done keeps the original completion time
	f.clock.advance(time.Hour)
	got, err = f.goals.Update(ctx, owner, g.ID, UpdateGoalRequest{Done: ptr(true), Text: ptr("stretch more")})
	require.NoError(t, err)
	assert.Equal(t, t1, *got.CompletedAt)
	assert.Equal(t, "stretch more", got.Text)

	got, err = f.goals.Update(ctx, owner, g.ID, UpdateGoalRequest{Done: ptr(false)})
	require.NoError(t, err)
	assert.False(t, got.Done)
	assert.Nil(t, got.CompletedAt)

	list, err := f.goals.List(ctx, owner, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, got, list[0], "update is persisted")

	assert.Equal(t, []string{events.GuestCreated, events.GoalCompleted}, f.events.Types(), "one completion event")
}

func TestUpdateGoal_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.guest(t)
	intruder, _ := f.guest(t)
	g := f.addGoal(t, owner, "mine", models.PeriodWeekly)

	_, err := f.goals.Update(ctx, intruder, g.ID, UpdateGoalRequest{Done: ptr(true)})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = f.goals.Update(ctx, owner, "not-a-uuid", UpdateGoalRequest{Done: ptr(true)})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = f.goals.Update(ctx, owner, uuid.NewString(), UpdateGoalRequest{Done: ptr(true)})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = f.goals.Update(ctx, owner, g.ID, UpdateGoalRequest{Text: ptr("   ")})
	assert.ErrorIs(t, err, common.ErrorValidation)

	list, err := f.goals.List(ctx, owner, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].Text)
	assert.False(t, list[0].Done)
}

func TestDeleteGoal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.guest(t)
	intruder, _ := f.guest(t)
	g := f.addGoal(t, owner, "x", models.PeriodDaily)

	assert.ErrorIs(t, f.goals.Delete(ctx, intruder, g.ID), common.ErrorNotFound)
	assert.ErrorIs(t, f.goals.Delete(ctx, owner, "bogus"), common.ErrorNotFound)

	require.NoError(t, f.goals.Delete(ctx, owner, g.ID))
	assert.ErrorIs(t, f.goals.Delete(ctx, owner, g.ID), common.ErrorNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.GoalsDeleted))
}

func TestCleanup_RetentionBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := f.guest(t)
	other, _ := f.guest(t)

	completeAt := func(owner, text string, p models.Period, at time.Time) *models.Goal {
		f.clock.t = at.Add(-time.Hour)
		g := f.addGoal(t, owner, text, p)
		f.clock.t = at
		_, err := f.goals.Update(ctx, owner, g.ID, UpdateGoalRequest{Done: ptr(true)})
		require.NoError(t, err)
		return g
	}

	stale := completeAt(owner, "A", models.PeriodDaily, time.Date(2025, 1, 2, 23, 0, 0, 0, time.UTC))
	recent := completeAt(owner, "B", models.PeriodDaily, time.Date(2025, 1, 3, 1, 0, 0, 0, time.UTC))
	exact := completeAt(owner, "exactly seven days", models.PeriodDaily, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC))
	weekly := completeAt(owner, "weekly", models.PeriodWeekly, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	foreign := completeAt(other, "someone else", models.PeriodDaily, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	f.clock.t = time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	open := f.addGoal(t, owner, "never done", models.PeriodDaily)

	f.clock.t = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	n, err := f.goals.Cleanup(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	left, err := f.goals.List(ctx, owner, nil)
	require.NoError(t, err)
	ids := goalIDs(left)
	assert.NotContains(t, ids, stale.ID)
	assert.ElementsMatch(t, []string{recent.ID, exact.ID, weekly.ID, open.ID}, ids)

	theirs, err := f.goals.List(ctx, other, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{foreign.ID}, goalIDs(theirs))

	n, err = f.goals.Cleanup(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, n, "cleanup is idempotent")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.GoalsCleanedUp))
}

func TestCleanup_StoreFailure(t *testing.T) {
	fm := &faultyManager{Manager: memory.NewManager(), goalsFault: failOn("cleanup", errDown)}
	f := newFixtureWith(t, fm)

	n, err := f.goals.Cleanup(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, common.ErrorUnavailable)
	assert.Zero(t, n)
}

func TestListGoals_StoreFailure(t *testing.T) {
	fm := &faultyManager{Manager: memory.NewManager(), goalsFault: failOn("list", errDown)}
	f := newFixtureWith(t, fm)

	_, err := f.goals.List(context.Background(), uuid.NewString(), nil)
	assert.ErrorIs(t, err, common.ErrorUnavailable)
}

func TestRegister_PostgresRollsBackOnQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	f := newFixtureWith(t, repomanager.NewPostgresRepositoryManager(db))

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("lena").
		WillReturnError(errDown)
	mock.ExpectRollback()

	_, _, err = f.identity.Register(context.Background(), Session{}, RegisterRequest{Username: "lena", Password: "secret"})
	assert.ErrorIs(t, err, common.ErrorUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func goalIDs(gs []*models.Goal) []string {
	ids := make([]string, 0, len(gs))
	for _, g := range gs {
		ids = append(ids, g.ID)
	}
	return ids
}
