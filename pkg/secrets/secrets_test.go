package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "assent/pkg/domain-errors"
)

// TestGenerate verifies generated keys carry the prefix and full entropy.
func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	// 32 bytes base64url without padding is 43 characters.
	assert.Len(t, a, len(KeyPrefix)+43)
	assert.True(t, strings.HasPrefix(a, KeyPrefix))
	assert.NotEqual(t, a, b)
}

// TestHashAndVerify verifies the hash round-trip and error mapping.
// Invariant: mismatches surface as CodeUnauthorized, never as raw bcrypt errors.
func TestHashAndVerify(t *testing.T) {
	t.Run("round-trip verifies", func(t *testing.T) {
		hash, err := Hash("my-api-key")
		require.NoError(t, err)
		assert.NoError(t, Verify("my-api-key", hash))
	})

	t.Run("wrong secret is unauthorized", func(t *testing.T) {
		hash, err := Hash("my-api-key")
		require.NoError(t, err)

		err = Verify("other-key", hash)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("empty secret fails validation", func(t *testing.T) {
		_, err := Hash("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("over-long secret fails validation", func(t *testing.T) {
		long := make([]byte, 100)
		for i := range long {
			long[i] = 'k'
		}
		_, err := Hash(string(long))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
