package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashHex returns the hexadecimal sha256 digest of the given bytes,
// used to derive deterministic cache keys from payloads
func HashHex(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}
