// ABOUTME: Error taxonomy surfaced by the session store
// ABOUTME: Auth and validation errors are shown inline; sentinels describe verify outcomes

package session

import "errors"

var (
	// ErrSessionRejected means the backend refused the stored token; the session was cleared
	ErrSessionRejected = errors.New("session rejected by backend")

	// ErrVerifyUnavailable means the token could not be checked (network or server failure).
	// The token is kept and the session stays pending.
	ErrVerifyUnavailable = errors.New("session verification unavailable")
)

// Default messages when the backend does not supply one
const (
	msgLoginFailed        = "Login failed"
	msgRegistrationFailed = "Registration failed"
)

// AuthError is a failed login or registration, carrying the message to show the user
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// ValidationError is a local input problem; no request was sent
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UserMessage returns the inline message for auth and validation errors,
// or "" for anything else.
func UserMessage(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	return ""
}
