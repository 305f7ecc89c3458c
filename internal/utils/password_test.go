package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestArgonRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(hash))

	ok, err := VerifyPassword("s3cret-pass", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, IsBcryptHash(string(legacy)))
	assert.True(t, NeedsRehash(string(legacy)))

	ok, err := VerifyPassword("old-pass", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("nope", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMalformedHash(t *testing.T) {
	_, err := VerifyPassword("x", "$argon2id$broken")
	assert.Error(t, err)
}
