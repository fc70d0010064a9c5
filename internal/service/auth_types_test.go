package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHMACTokenHasher(t *testing.T) {
	hasher := HMACTokenHasher{Key: []byte("key-one")}

	stored, err := hasher.Hash("some-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "some-secret", stored)

	assert.True(t, hasher.Matches("some-secret", stored))
	assert.False(t, hasher.Matches("other-secret", stored))
	assert.False(t, hasher.Matches("some-secret", "not base64!!"))

	otherKey := HMACTokenHasher{Key: []byte("key-two")}
	assert.False(t, otherKey.Matches("some-secret", stored))
}

func TestHMACTokenHasherIsDeterministic(t *testing.T) {
	hasher := HMACTokenHasher{Key: []byte("key")}
	first, err := hasher.Hash("secret")
	require.NoError(t, err)
	second, err := hasher.Hash("secret")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBcryptPasswordHasher(t *testing.T) {
	hasher := BcryptPasswordHasher{Cost: bcrypt.MinCost}

	hash, err := hasher.Hash("pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", hash)

	assert.True(t, hasher.Matches("pw123456", hash))
	assert.False(t, hasher.Matches("wrong", hash))
}
