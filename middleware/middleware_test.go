package middleware

import (
	"testing"
	"time"

	"roadsafe/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("64f0c0ffee0ddba11ca75e11")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "64f0c0ffee0ddba11ca75e11", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateJWTRejectsMissingBearerPrefix(t *testing.T) {
	token, err := GenerateToken("64f0c0ffee0ddba11ca75e11")
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("Bearer not.a.token")
	assert.Error(t, err)

	_, err = ValidateJWT("")
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpiredToken(t *testing.T) {
	claims := &Claims{
		UserID: "64f0c0ffee0ddba11ca75e11",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	require.NoError(t, err)

	_, err = ValidateJWT("Bearer " + token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	claims := &Claims{UserID: "64f0c0ffee0ddba11ca75e11"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("someone-else"))
	require.NoError(t, err)

	_, err = ValidateJWT("Bearer " + token)
	assert.Error(t, err)
}
