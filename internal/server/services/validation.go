package services

import (
	"net/mail"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
)

// Credential and profile limits.
const (
	MinUsernameLen    = 3
	MaxUsernameLen    = 80
	MinPasswordLen    = 6
	MaxPasswordBytes  = 72 // bcrypt ignores anything longer
	MaxEmailLen       = 120
	MaxDisplayNameLen = 100
	MaxTimeZoneLen    = 50
)

// validateCredentials trims the username and checks both values.
func validateCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	switch n := utf8.RuneCountInString(username); {
	case n < MinUsernameLen:
		return "", common.Detail(common.ErrorValidation, "username must be at least %d characters", MinUsernameLen)
	case n > MaxUsernameLen:
		return "", common.Detail(common.ErrorValidation, "username must be at most %d characters", MaxUsernameLen)
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return "", common.Detail(common.ErrorValidation, "password must be at least %d characters", MinPasswordLen)
	}
	if len(password) > MaxPasswordBytes {
		return "", common.Detail(common.ErrorValidation, "password must be at most %d bytes", MaxPasswordBytes)
	}
	return username, nil
}

// normalizeEmail trims email; an empty result means no email.
func normalizeEmail(email string) (*string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	if len(email) > MaxEmailLen {
		return nil, common.Detail(common.ErrorValidation, "email must be at most %d characters", MaxEmailLen)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, common.Detail(common.ErrorValidation, "email is not a valid address")
	}
	return &email, nil
}

func validateTimeZone(tz string) error {
	if tz == "" || len(tz) > MaxTimeZoneLen {
		return common.Detail(common.ErrorValidation, "timezone must be 1 to %d characters", MaxTimeZoneLen)
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return common.Detail(common.ErrorValidation, "unknown timezone %q", tz)
	}
	return nil
}

func validateDisplayName(name string) (*string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return nil, common.Detail(common.ErrorValidation, "display name must be at most %d characters", MaxDisplayNameLen)
	}
	if name == "" {
		return nil, nil
	}
	return &name, nil
}

// validateGoalText trims text and checks its length.
func validateGoalText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", common.Detail(common.ErrorValidation, "text must not be empty")
	}
	if utf8.RuneCountInString(text) > models.MaxGoalTextLen {
		return "", common.Detail(common.ErrorValidation, "text must be at most %d characters", models.MaxGoalTextLen)
	}
	return text, nil
}

// ParsePeriod validates a period name. The empty string is rejected; callers
// that treat it as "all periods" check for it first.
func ParsePeriod(s string) (models.Period, error) {
	p := models.Period(s)
	if !p.Valid() {
		return "", common.Detail(common.ErrorValidation, "goal_type must be one of daily, weekly, monthly, yearly")
	}
	return p, nil
}
