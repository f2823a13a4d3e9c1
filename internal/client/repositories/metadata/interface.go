// Package metadata stores small client-side values, such as the session
// cookies and the last known identity, as JSON under fixed keys.
package metadata

import (
	"context"
)

const (
	KeySession = "session"
	KeyUser    = "user"
)

type Repository interface {
	// Load decodes the value under key into dest. It reports false when the
	// key is absent.
	Load(ctx context.Context, key string, dest any) (bool, error)
	Save(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
