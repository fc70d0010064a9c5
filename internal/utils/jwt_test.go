package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssueAndParse(t *testing.T) {
	manager := JWTManager{Secret: []byte("secret"), Issuer: "habitbeat", AccessTokenTTL: 15 * time.Minute}

	token, ttl, err := manager.IssueAccessToken("account-1", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, ttl)

	claims, err := manager.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "account-1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "habitbeat", claims.Issuer)
}

func TestJWTRejectsWrongKey(t *testing.T) {
	manager := JWTManager{Secret: []byte("secret")}
	token, _, err := manager.IssueAccessToken("account-1", "a@x.com")
	require.NoError(t, err)

	other := JWTManager{Secret: []byte("different")}
	_, err = other.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestJWTRejectsExpired(t *testing.T) {
	manager := JWTManager{Secret: []byte("secret"), AccessTokenTTL: -time.Minute}
	token, _, err := manager.IssueAccessToken("account-1", "a@x.com")
	require.NoError(t, err)

	_, err = manager.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestJWTRejectsGarbage(t *testing.T) {
	manager := JWTManager{Secret: []byte("secret")}
	_, err := manager.ParseAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}
