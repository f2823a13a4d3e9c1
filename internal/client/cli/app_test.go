package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/goalkeeper/internal/client/client"
	"github.com/dmitrijs2005/goalkeeper/internal/client/config"
	"github.com/dmitrijs2005/goalkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SessionDB = filepath.Join(t.TempDir(), "nested", "session.db")

	app, err := NewApp(cfg)
	require.NoError(t, err)
	assert.NotNil(t, app.authService)
	assert.NotNil(t, app.goalService)
	require.NotNil(t, app.repos)
	app.Close()

	cfg.SessionDB = ""
	app, err = NewApp(cfg)
	require.NoError(t, err)
	assert.Nil(t, app.repos)

	cfg.ServerURL = "ftp://nowhere"
	_, err = NewApp(cfg)
	assert.Error(t, err)
}

func TestSetMode_AnnouncesChangesOnce(t *testing.T) {
	out, _ := captureOutput(t)
	app := newTestApp(&fakeAuth{}, &fakeGoals{})

	app.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, app.Mode())
	assert.Contains(t, out.String(), "server is online")

	out.Reset()
	app.setMode(ModeOnline)
	assert.Empty(t, out.String())

	app.setMode(ModeOffline)
	assert.Equal(t, ModeOffline, app.Mode())
	assert.Contains(t, out.String(), "server is offline")
}

func TestCheckOnline(t *testing.T) {
	captureOutput(t)
	auth := &fakeAuth{pingErr: client.ErrUnavailable}
	app := newTestApp(auth, &fakeGoals{})
	app.pingTimeout = time.Second

	app.checkOnline(context.Background())
	assert.Equal(t, ModeOffline, app.Mode())

	auth.pingErr = nil
	app.checkOnline(context.Background())
	assert.Equal(t, ModeOnline, app.Mode())
}

func TestStartOnlineStatusWatcher_FollowsPings(t *testing.T) {
	captureOutput(t)
	auth := &fakeAuth{}
	app := newTestApp(auth, &fakeGoals{})
	app.pingTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return app.Mode() == ModeOnline }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestGetStatus(t *testing.T) {
	auth := &fakeAuth{}
	app := newTestApp(auth, &fakeGoals{})
	assert.Equal(t, "", app.getStatus())

	app.mode = ModeOnline
	assert.Equal(t, "(online)", app.getStatus())

	auth.user = &models.User{ID: "g", Username: "guest_ab12", IsGuest: true}
	assert.Equal(t, "(guest online)", app.getStatus())
	assert.False(t, app.isRegistered())

	auth.user = &models.User{ID: "u", Username: "alice"}
	assert.Equal(t, "(alice online)", app.getStatus())
	assert.True(t, app.isRegistered())
}
