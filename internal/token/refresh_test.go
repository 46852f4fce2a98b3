package token

import (
	"encoding/base64"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshSecret(t *testing.T) {
	raw, err := NewRefreshSecret()
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Len(t, decoded, refreshSecretBytes)

	other, err := NewRefreshSecret()
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)
}

func TestHashRefreshSecret(t *testing.T) {
	raw, err := NewRefreshSecret()
	require.NoError(t, err)

	digest := HashRefreshSecret(raw)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), digest)

	// Deterministic, and never equal to the raw secret.
	assert.Equal(t, digest, HashRefreshSecret(raw))
	assert.NotEqual(t, raw, digest)
}
