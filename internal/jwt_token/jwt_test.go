package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
)

var jwtService = NewJWTService("test-signing-key", "test-issuer")

var principal = domain.Principal{UserID: "admin", Role: domain.RolePolicymaker}

func Test_GenerateAccessToken(t *testing.T) {
	now := time.Now()
	token, expiresAt, err := jwtService.GenerateAccessToken(principal, "Chief Analyst", now, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.UserID)
	assert.Equal(t, "policymaker", claims.Role)
	assert.Equal(t, "Chief Analyst", claims.Name)
	assert.NotEmpty(t, claims.SessionID)
	assert.Equal(t, principal, claims.Principal())
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, _, err := jwtService.GenerateAccessToken(principal, "", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "token has expired", de.Message)
}

func Test_ValidateToken_WrongKeyOrIssuer(t *testing.T) {
	token, _, err := NewJWTService("other-key", "test-issuer").GenerateAccessToken(principal, "", time.Now(), time.Hour)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	token, _, err = NewJWTService("test-signing-key", "someone-else").GenerateAccessToken(principal, "", time.Now(), time.Hour)
	require.NoError(t, err)
	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_UnknownRole(t *testing.T) {
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "x",
		Role:   "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "test-issuer",
			Audience:  []string{audience},
		},
	})
	token, err := forged.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Adapter(t *testing.T) {
	token, expiresAt, err := jwtService.GenerateAccessToken(principal, "", time.Now(), time.Hour)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, principal, claims.Principal)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt, time.Second)
}
