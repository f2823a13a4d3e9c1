package cli

import (
	"context"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/goalkeeper/internal/client/client"
	"github.com/dmitrijs2005/goalkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_FromGuest(t *testing.T) {
	out, _ := captureOutput(t)
	auth := &fakeAuth{user: &models.User{ID: "g-1", IsGuest: true}}
	app := newTestApp(auth, &fakeGoals{})
	stubInputs(t, "secret", "alice", " alice@example.org ")

	require.NoError(t, app.Register(context.Background()))

	assert.Equal(t, "alice", auth.gotUser)
	assert.Equal(t, "secret", auth.gotPass)
	assert.Equal(t, "alice@example.org", auth.gotEmail)
	assert.Contains(t, out.String(), "Registered as alice")
	assert.Contains(t, out.String(), "guest goals were moved")
}

func TestRegister_Conflict(t *testing.T) {
	out, errOut := captureOutput(t)
	auth := &fakeAuth{err: fmt.Errorf("register: %w", client.ErrConflict)}
	app := newTestApp(auth, &fakeGoals{})
	stubInputs(t, "secret", "alice", "")

	err := app.Register(context.Background())
	require.ErrorIs(t, err, client.ErrConflict)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "pick another username")
}

func TestRegister_InputError(t *testing.T) {
	captureOutput(t)
	auth := &fakeAuth{}
	app := newTestApp(auth, &fakeGoals{})
	stubInputs(t, "secret")

	require.Error(t, app.Register(context.Background()))
	assert.Empty(t, auth.calls)
}

func TestLogin(t *testing.T) {
	out, errOut := captureOutput(t)
	auth := &fakeAuth{}
	app := newTestApp(auth, &fakeGoals{})
	stubInputs(t, "pw", "bob")

	require.NoError(t, app.Login(context.Background()))
	assert.Contains(t, out.String(), "Logged in as bob")
	assert.True(t, app.isRegistered())

	auth.err = client.ErrUnauthorized
	stubInputs(t, "bad", "bob")
	require.ErrorIs(t, app.Login(context.Background()), client.ErrUnauthorized)
	assert.Contains(t, errOut.String(), "check the username and password")
}

func TestPromote(t *testing.T) {
	out, _ := captureOutput(t)
	auth := &fakeAuth{user: &models.User{ID: "g-1", IsGuest: true}}
	app := newTestApp(auth, &fakeGoals{})
	stubInputs(t, "pw", "carol")

	require.NoError(t, app.Promote(context.Background()))
	assert.Equal(t, "g-1", auth.user.ID)
	assert.Contains(t, out.String(), "Guest account is now carol")

	// a registered user is not prompted again
	out.Reset()
	require.NoError(t, app.Promote(context.Background()))
	assert.Equal(t, []string{"promote"}, auth.calls)
	assert.Contains(t, out.String(), "Already signed in as carol")
}

func TestLogout(t *testing.T) {
	out, _ := captureOutput(t)
	auth := &fakeAuth{user: &models.User{ID: "u-1", Username: "alice"}}
	app := newTestApp(auth, &fakeGoals{})

	require.NoError(t, app.Logout(context.Background()))
	assert.Nil(t, auth.user)
	assert.Contains(t, out.String(), "Logged out")

	auth.err = client.ErrUnavailable
	require.ErrorIs(t, app.Logout(context.Background()), client.ErrUnavailable)
}

func TestWhoAmI(t *testing.T) {
	cases := []struct {
		name string
		user *models.User
		want string
	}{
		{"no session", nil, "No session yet"},
		{"guest", &models.User{ID: "g-1", IsGuest: true}, "Guest g-1"},
		{"named", &models.User{ID: "u-1", Username: "alice", DisplayName: "Alice", TimeZone: "UTC"}, "Alice (alice), timezone UTC"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, _ := captureOutput(t)
			app := newTestApp(&fakeAuth{user: tc.user}, &fakeGoals{})

			require.NoError(t, app.WhoAmI(context.Background()))
			assert.Contains(t, out.String(), tc.want)
		})
	}
}
