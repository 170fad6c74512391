package utils

import (
	"testing"
	"time"

	"Backend-NetZero/src/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Run("ClaimsSurviveGenerateAndParse", func(t *testing.T) {
		token, err := GenerateJWT("68b0f00000000000000000aa", "acme@example.com", models.RoleSupplier)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := ParseJWT(token)
		require.NoError(t, err)
		assert.Equal(t, "68b0f00000000000000000aa", claims.UserID)
		assert.Equal(t, "acme@example.com", claims.Email)
		assert.Equal(t, models.RoleSupplier, claims.Role)

		// หมดอายุตาม AccessTokenTTL
		require.NotNil(t, claims.ExpiresAt)
		require.NotNil(t, claims.IssuedAt)
		assert.InDelta(t, AccessTokenTTL.Seconds(),
			claims.ExpiresAt.Sub(claims.IssuedAt.Time).Seconds(), 2)
	})

	t.Run("EmptyAndGarbageTokensRejected", func(t *testing.T) {
		_, err := ParseJWT("")
		assert.Error(t, err)
		_, err = ParseJWT("not.a.jwt")
		assert.Error(t, err)
	})

	t.Run("ForeignSigningMethodRejected", func(t *testing.T) {
		// alg none ผ่านไม่ได้ถึงจะ decode ออก
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: "x", Role: models.RoleAdmin})
		tokenStr, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ParseJWT(tokenStr)
		assert.Error(t, err)
	})
}

func TestNewRefreshToken(t *testing.T) {
	a, err := NewRefreshToken()
	require.NoError(t, err)
	b, err := NewRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 64) // 32 bytes hex
	assert.NotEqual(t, a, b)
}

func TestTokenLifetimes(t *testing.T) {
	// refresh token ต้องอยู่นานกว่า access token ไม่งั้น rotate ไม่มีความหมาย
	assert.Greater(t, RefreshTokenTTL, AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, AccessTokenTTL)
}
