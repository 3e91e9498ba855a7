// Package id draws random identifiers from crypto/rand.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// RequestCodePrefix is the literal prefix of every request ticket code.
const RequestCodePrefix = "REQ-"

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewID32 returns 32 lowercase hex characters. Used for X-Request-Id.
func NewID32() string { return randomHex(16) }

// NewRequestCode returns "REQ-" and 8 uppercase hex characters.
// Uniqueness is enforced by the store, not here.
func NewRequestCode() string {
	return RequestCodePrefix + strings.ToUpper(randomHex(4))
}
