// Package client talks to the GoalKeeper HTTP API.
//
// HTTPClient keeps the session cookie in a cookie jar, so a client that never
// registers is served as a guest exactly like a browser would be.
//
// InitDatabase opens the local SQLite session store. Session and
// RestoreSession move the jar's cookies in and out of it, so a guest keeps
// its goals across restarts.
//
// # Error Handling
//
// Responses are mapped to sentinel errors that callers can match with
// errors.Is: ErrUnavailable (network failures and 503), ErrUnauthorized,
// ErrNotFound, ErrConflict and ErrInvalid. The server's message is available
// through *APIError.
package client
