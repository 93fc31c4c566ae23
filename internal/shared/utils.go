// Package shared holds helpers used by both the server and the CLI.
package shared

// WipeByteArray zeroes b. Use it on secrets read from the terminal once
// they are no longer needed. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
