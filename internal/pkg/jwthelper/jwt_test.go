package jwthelper

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = []byte("0123456789abcdef0123")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(key, 42, "curl/8.0", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(key, token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "curl/8.0", claims.UserAgent)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "42", claims.Subject)
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	a, err := GenerateToken(key, 1, "ua", time.Hour)
	require.NoError(t, err)
	b, err := GenerateToken(key, 1, "ua", time.Hour)
	require.NoError(t, err)

	ca, err := ParseToken(key, a)
	require.NoError(t, err)
	cb, err := ParseToken(key, b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := GenerateToken(key, 1, "ua", -time.Minute)
	require.NoError(t, err)

	valid, err := GenerateToken(key, 1, "ua", time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, CustomClaims{UserID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		key   []byte
		token string
	}{
		{name: "expired", key: key, token: expired},
		{name: "wrong key", key: []byte("another-key-0123456789"), token: valid},
		{name: "garbage", key: key, token: "not.a.token"},
		{name: "alg none", key: key, token: unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.key, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
