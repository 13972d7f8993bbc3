package passwords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("pw1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "pw1", hash, "hash must not be the plaintext")

	assert.True(t, Verify(hash, "pw1"))
	assert.False(t, Verify(hash, "pw2"))
}

func TestVerify_GarbageHash(t *testing.T) {
	assert.False(t, Verify("not-a-bcrypt-hash", "pw1"))
}

func TestHash_DifferentSaltsPerCall(t *testing.T) {
	a, err := Hash("pw1")
	require.NoError(t, err)
	b, err := Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
