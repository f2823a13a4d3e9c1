package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dmitrijs2005/goalkeeper/internal/client/models"
)

const defaultPeriod = "daily"

func isPeriod(s string) bool {
	return slices.Contains(models.Periods, s)
}

// List prints goals, optionally filtered by period. Positions printed here
// are what done, edit and delete accept.
func (a *App) List(ctx context.Context, args []string) error {
	period := ""
	if len(args) > 0 {
		period = args[0]
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	goals, err := a.goalService.List(ctx, period)
	if err != nil {
		return fail(err)
	}
	a.noteGuest(ctx)

	if len(goals) == 0 {
		info("No goals yet. Try: add daily drink water")
		return nil
	}
	for i, g := range goals {
		printlnFn(fmt.Sprintf("%3d. %s", i+1, g))
	}
	return nil
}

// Add creates a goal from "add [period] text...", prompting for what is
// missing.
func (a *App) Add(ctx context.Context, args []string) error {
	period := ""
	if len(args) > 0 && isPeriod(args[0]) {
		period, args = args[0], args[1:]
	}

	text := strings.Join(args, " ")
	if text == "" {
		var err error
		if text, err = getSimpleText(a.reader, "Goal text", os.Stdout); err != nil {
			return err
		}
	}
	if period == "" {
		p, err := getSimpleText(a.reader, "Period (daily/weekly/monthly/yearly, empty for daily)", os.Stdout)
		if err != nil {
			return err
		}
		period = strings.ToLower(p)
		if period == "" {
			period = defaultPeriod
		}
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	g, err := a.goalService.Add(ctx, text, period)
	if err != nil {
		return fail(err)
	}
	a.noteGuest(ctx)
	success("Added %s goal %q", g.GoalType, g.Text)
	return nil
}

func (a *App) SetDone(ctx context.Context, args []string, done bool) error {
	if len(args) == 0 {
		warn("Usage: done|undone <n>")
		return nil
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	g, err := a.goalService.SetDone(ctx, args[0], done)
	if err != nil {
		return fail(err)
	}
	success("%s", g)
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		warn("Usage: edit <n> [new text]")
		return nil
	}

	text := strings.Join(args[1:], " ")
	if text == "" {
		var err error
		if text, err = getSimpleText(a.reader, "New text", os.Stdout); err != nil {
			return err
		}
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	g, err := a.goalService.Edit(ctx, args[0], text)
	if err != nil {
		return fail(err)
	}
	success("%s", g)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		warn("Usage: delete <n>")
		return nil
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	if err := a.goalService.Delete(ctx, args[0]); err != nil {
		return fail(err)
	}
	success("Deleted")
	return nil
}

// Cleanup removes daily goals completed before the retention window.
func (a *App) Cleanup(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	n, err := a.goalService.Cleanup(ctx)
	if err != nil {
		return fail(err)
	}
	success("Removed %d old daily goal(s)", n)
	return nil
}

// noteGuest refreshes the prompt after the server may have created a guest.
func (a *App) noteGuest(ctx context.Context) {
	if a.authService.User() == nil {
		_ = a.refreshUser(ctx)
	}
}
