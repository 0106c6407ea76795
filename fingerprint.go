package ttcache

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// newFingerprint mints a random 128-bit nonce encoded as a 32-hex-char
// string. A UUIDv4's 16 raw bytes hex-encode to exactly that shape.
func newFingerprint() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
