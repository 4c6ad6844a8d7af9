package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenAndParseToken(t *testing.T) {
	secret := "bf284d03-ba65-42d4-a9fe-0d2fbfe61060"

	token, expiresAt, err := GenToken("admin", []byte(secret), time.Hour)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	_, err = ParseToken(token, "another-secret")
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	secret := "s3cret"
	token, _, err := GenToken("admin", []byte(secret), -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}
