package common

// SessionCookieName is the default name of the cookie carrying the signed
// session token (authenticated user id or guest token).
const SessionCookieName = "goalkeeper_session"

// RetryAfterSeconds is advertised to clients when storage is unavailable.
const RetryAfterSeconds = 5
