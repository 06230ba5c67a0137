package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHex returns a random hex string of n bytes, used as the request id
// on runs outside the lambda runtime
func RandomHex(n int) (string, error) {
	buffer := make([]byte, n)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}

	return hex.EncodeToString(buffer), nil
}
