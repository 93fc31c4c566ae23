// Package common contains shared constants and sentinel errors used across
// Journey Connect components.
package common

const (
	// SessionCookieName is the cookie that carries the session credential
	// issued by the server.
	SessionCookieName = "session_token"

	// ProviderSessionHeader carries the auth provider's one-time session id
	// on POST /api/auth/session.
	ProviderSessionHeader = "X-Session-ID"
)
