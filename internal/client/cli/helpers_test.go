package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/dmitrijs2005/goalkeeper/internal/client/client"
	"github.com/dmitrijs2005/goalkeeper/internal/client/models"
	"github.com/fatih/color"
)

// captureOutput routes the printer to buffers with colors off.
func captureOutput(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	origOut, origErr, origNoColor, origPrintln := stdout, stderr, color.NoColor, printlnFn
	stdout, stderr, color.NoColor = out, errOut, true
	printlnFn = func(a ...any) (int, error) { return io.WriteString(out, fmt.Sprintln(a...)) }
	t.Cleanup(func() {
		stdout, stderr, color.NoColor, printlnFn = origOut, origErr, origNoColor, origPrintln
	})
	return out, errOut
}

// stubInputs answers text prompts in order and every password prompt with password.
func stubInputs(t *testing.T, password string, texts ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeAuth struct {
	user    *models.User
	err     error
	pingErr error

	gotUser  string
	gotPass  string
	gotEmail string
	calls    []string
}

func (f *fakeAuth) record(call, user string, pass []byte) {
	f.calls = append(f.calls, call)
	f.gotUser, f.gotPass = user, string(pass)
}

func (f *fakeAuth) Register(_ context.Context, user string, pass []byte, email string) (*models.User, error) {
	f.record("register", user, pass)
	f.gotEmail = email
	if f.err != nil {
		return nil, f.err
	}
	f.user = &models.User{ID: "u-2", Username: user}
	return f.user, nil
}

func (f *fakeAuth) Login(_ context.Context, user string, pass []byte) (*models.User, error) {
	f.record("login", user, pass)
	if f.err != nil {
		return nil, f.err
	}
	f.user = &models.User{ID: "u-1", Username: user}
	return f.user, nil
}

func (f *fakeAuth) Promote(_ context.Context, user string, pass []byte) (*models.User, error) {
	f.record("promote", user, pass)
	if f.err != nil {
		return nil, f.err
	}
	f.user = &models.User{ID: f.user.ID, Username: user}
	return f.user, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	if f.err != nil {
		return f.err
	}
	f.user = nil
	return nil
}

func (f *fakeAuth) WhoAmI(context.Context) (*models.User, error) {
	f.calls = append(f.calls, "whoami")
	return f.user, f.err
}

func (f *fakeAuth) User() *models.User { return f.user }

func (f *fakeAuth) Ping(context.Context) error { return f.pingErr }

func (f *fakeAuth) Restore(context.Context) error {
	f.calls = append(f.calls, "restore")
	return nil
}

type fakeGoals struct {
	goals []*models.Goal
	err   error

	period  string
	added   []*models.Goal
	done    map[string]bool
	edited  map[string]string
	deleted []string
	cleaned int64
}

func (f *fakeGoals) List(_ context.Context, period string) ([]*models.Goal, error) {
	f.period = period
	return f.goals, f.err
}

func (f *fakeGoals) Add(_ context.Context, text, period string) (*models.Goal, error) {
	if f.err != nil {
		return nil, f.err
	}
	g := &models.Goal{ID: "g-new", Text: text, GoalType: period}
	f.added = append(f.added, g)
	return g, nil
}

func (f *fakeGoals) SetDone(_ context.Context, ref string, done bool) (*models.Goal, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.done == nil {
		f.done = map[string]bool{}
	}
	f.done[ref] = done
	return &models.Goal{ID: ref, Text: "x", GoalType: "daily", Done: done}, nil
}

func (f *fakeGoals) Edit(_ context.Context, ref, text string) (*models.Goal, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.edited == nil {
		f.edited = map[string]string{}
	}
	f.edited[ref] = text
	return &models.Goal{ID: ref, Text: text, GoalType: "daily"}, nil
}

func (f *fakeGoals) Delete(_ context.Context, ref string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeGoals) Cleanup(context.Context) (int64, error) {
	return f.cleaned, f.err
}

func newTestApp(auth *fakeAuth, goals *fakeGoals) *App {
	return &App{authService: auth, goalService: goals}
}

var errUnavailable = fmt.Errorf("list goals: %w", client.ErrUnavailable)
