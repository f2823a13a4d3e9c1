// Package users provides persistence for identities, both registered users
// and guests.
package users

import (
	"context"

	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts u. Duplicate username, email or session token yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByUsername matches any kind of identity.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetNamedByUsername matches registered identities only.
	GetNamedByUsername(ctx context.Context, username string) (*models.User, error)
	GetGuestByToken(ctx context.Context, token string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Promote turns the guest id into a registered identity and clears its
	// session token. A missing or already registered id yields
	// common.ErrorNotFound.
	Promote(ctx context.Context, id, username, passwordHash string) error
	UpdateProfile(ctx context.Context, u *models.User) error
	// Delete removes the identity and, through the store, its goals.
	Delete(ctx context.Context, id string) error
}
