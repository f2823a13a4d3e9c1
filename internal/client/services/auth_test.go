package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/goalkeeper/internal/client/client"
	"github.com/dmitrijs2005/goalkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_LoginWipesPasswordAndRemembersUser(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, nil)

	pass := []byte("secret")
	u, err := svc.Login(context.Background(), "alice", pass)
	require.NoError(t, err)

	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "secret", fc.gotPass)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0}, pass)
	assert.Same(t, u, svc.User())
}

func TestAuthService_RegisterAndPromote(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, nil)

	u, err := svc.Register(context.Background(), "bob", []byte("pw"), "bob@example.com")
	require.NoError(t, err)
	require.NotNil(t, u.Email)
	assert.Equal(t, "bob@example.com", *u.Email)

	u, err = svc.Promote(context.Background(), "carol", []byte("pw2"))
	require.NoError(t, err)
	assert.Equal(t, "guest-1", u.ID)
	assert.Equal(t, "carol", svc.User().Username)
}

func TestAuthService_ErrorsKeepKind(t *testing.T) {
	fc := &fakeClient{authErr: client.ErrUnauthorized}
	svc := NewAuthService(fc, nil)

	pass := []byte("bad")
	_, err := svc.Login(context.Background(), "alice", pass)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Contains(t, err.Error(), "login")
	assert.Equal(t, []byte{0, 0, 0}, pass)
	assert.Nil(t, svc.User())

	fc.authErr = client.ErrConflict
	_, err = svc.Promote(context.Background(), "alice", []byte("x"))
	require.ErrorIs(t, err, client.ErrConflict)
}

func TestAuthService_LogoutForgetsUser(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, nil)

	_, err := svc.Login(context.Background(), "alice", []byte("pw"))
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background()))
	assert.Nil(t, svc.User())
	assert.False(t, fc.loggedIn)
}

func TestAuthService_WhoAmI(t *testing.T) {
	fc := &fakeClient{user: &models.User{ID: "g", IsGuest: true}}
	svc := NewAuthService(fc, nil)

	u, err := svc.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.True(t, u.IsGuest)
	assert.Same(t, u, svc.User())

	fc.user = nil
	u, err = svc.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestAuthService_Ping(t *testing.T) {
	fc := &fakeClient{pingErr: client.ErrUnavailable}
	svc := NewAuthService(fc, nil)
	assert.ErrorIs(t, svc.Ping(context.Background()), client.ErrUnavailable)

	fc.pingErr = nil
	assert.NoError(t, svc.Ping(context.Background()))
}
