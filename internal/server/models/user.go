// Package models defines server-side data models persisted in the store.
package models

import "time"

// UserKind distinguishes registered identities from guests.
type UserKind string

const (
	KindNamed     UserKind = "named"
	KindAnonymous UserKind = "anonymous"
)

// DefaultTimeZone is assigned to identities that never set one.
const DefaultTimeZone = "UTC"

// GuestUsernamePrefix prefixes generated guest usernames.
const GuestUsernamePrefix = "guest_"

type User struct {
	ID       string
	Username string
	// Email is optional and unique when present.
	Email *string
	// PasswordHash is a bcrypt hash; empty for guests.
	PasswordHash string
	Kind         UserKind
	// SessionToken is set only while Kind is KindAnonymous.
	SessionToken *string
	DisplayName  *string
	TimeZone     string
	CreatedAt    time.Time
}

// IsGuest reports whether the identity is anonymous.
func (u *User) IsGuest() bool {
	return u.Kind == KindAnonymous
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	c := *u
	c.Email = cloneString(u.Email)
	c.SessionToken = cloneString(u.SessionToken)
	c.DisplayName = cloneString(u.DisplayName)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
