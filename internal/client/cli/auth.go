package cli

import (
	"context"
	"os"
	"strings"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, password and optional email and creates
// an account. Goals of a current guest session move to the new account.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	email, err := getSimpleText(a.reader, "Enter email (optional)", os.Stdout)
	if err != nil {
		return err
	}

	wasGuest := a.authService.User() != nil && a.authService.User().IsGuest

	ctx, cancel := a.call(ctx)
	defer cancel()

	u, err := a.authService.Register(ctx, username, password, strings.TrimSpace(email))
	if err != nil {
		return fail(err)
	}

	success("Registered as %s", u.Username)
	if wasGuest {
		info("Your guest goals were moved to the new account.")
	}
	return nil
}

// Login prompts for credentials and authenticates. A guest session in
// progress is left behind.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.call(ctx)
	defer cancel()

	u, err := a.authService.Login(ctx, username, password)
	if err != nil {
		return fail(err)
	}
	success("Logged in as %s", u.Username)
	return nil
}

// Promote turns the current guest into a registered user, keeping its id
// and goals.
func (a *App) Promote(ctx context.Context) error {
	if a.isRegistered() {
		warn("Already signed in as %s", a.authService.User().Username)
		return nil
	}

	username, err := getSimpleText(a.reader, "Choose a username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.call(ctx)
	defer cancel()

	u, err := a.authService.Promote(ctx, username, password)
	if err != nil {
		return fail(err)
	}
	success("Guest account is now %s", u.Username)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	if err := a.authService.Logout(ctx); err != nil {
		return fail(err)
	}
	success("Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	u, err := a.authService.WhoAmI(ctx)
	if err != nil {
		return fail(err)
	}
	switch {
	case u == nil:
		info("No session yet. Add a goal to start as a guest, or login.")
	case u.IsGuest:
		info("Guest %s (since %s). Use promote to keep your goals under a username.",
			u.ID, u.CreatedAt.Local().Format("2006-01-02"))
	default:
		info("%s (%s), timezone %s", u.DisplayName, u.Username, u.TimeZone)
	}
	return nil
}

// refreshUser picks up the identity the server assigned to this session.
func (a *App) refreshUser(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()
	_, err := a.authService.WhoAmI(ctx)
	return err
}
