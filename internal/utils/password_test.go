package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "S3cret"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret"))
}

func TestPasswordTruncatedAt72Bytes(t *testing.T) {
	long := strings.Repeat("a", MaxPasswordBytes)

	hash, err := HashPassword(long+"tail-one", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, long))
	assert.True(t, VerifyPassword(hash, long+"tail-two"))
	assert.False(t, VerifyPassword(hash, long[:MaxPasswordBytes-1]))
}

func TestBurnPasswordCheckDoesNotPanic(t *testing.T) {
	BurnPasswordCheck("anything")
	BurnPasswordCheck("")
}
