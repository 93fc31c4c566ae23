// Package client is the HTTP client for the Journey Connect REST API. It
// keeps the session credential in memory and sends it as a bearer token.
// Non-2xx answers become *APIError values that match the sentinel errors
// in internal/common via errors.Is.
package client
