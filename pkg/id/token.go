package id

import (
	"crypto/rand"
	"encoding/hex"
)

// GetSecureToken generates an unguessable opaque token of n random bytes,
// hex encoded. Used for single-use credentials embedded in links; must not
// be replaced with a sortable or sequential id.
func GetSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
