package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// refreshSecretBytes is the entropy of a raw refresh secret. 64 bytes keeps
// the secret comfortably above the 256-bit floor.
const refreshSecretBytes = 64

// NewRefreshSecret returns a fresh opaque refresh secret, base64-encoded for
// transport. The raw value is handed to the client exactly once and never
// persisted.
func NewRefreshSecret() (string, error) {
	buf := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// HashRefreshSecret digests the encoded secret for storage and comparison,
// so the store never holds a usable credential.
func HashRefreshSecret(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h)
}
