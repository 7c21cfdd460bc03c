package jwtmw

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewGenerator は各種設定でGeneratorが正しく生成されることを検証します。
func TestNewGenerator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		secret     string
		expiration time.Duration
		want       time.Duration
	}{
		{"standard config", "my-secret-key", time.Hour, time.Hour},
		{"zero falls back to seven days", "secret", 0, 7 * 24 * time.Hour},
		{"negative falls back to seven days", "s", -time.Minute, DefaultExpiration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := NewGenerator(tt.secret, tt.expiration)

			require.NotNil(t, gen)
			assert.Equal(t, tt.secret, string(gen.secret))
			assert.Equal(t, tt.want, gen.expiration)
		})
	}
}

// TestGenerator_GenerateToken は生成されたトークンが正しいクレームを含むことを検証します。
func TestGenerator_GenerateToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator("test-secret", DefaultExpiration)
	gen.now = func() time.Time { return issued }

	tokenStr, err := gen.GenerateToken("user-1", "user@example.com", "User One")
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return issued }))
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "HS256", token.Method.Alg())

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "User One", claims.Name)
	assert.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issued.Add(7*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

// TestGenerator_Verify はトークン検証の成功・失敗ケースを検証します。
func TestGenerator_Verify(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator("test-secret", time.Hour)
	gen.now = func() time.Time { return now }

	valid, err := gen.GenerateToken("user-42", "u@example.com", "U")
	require.NoError(t, err)

	other := NewGenerator("wrong-secret", time.Hour)
	other.now = gen.now
	wrongSecret, err := other.GenerateToken("user-42", "u@example.com", "U")
	require.NoError(t, err)

	noSubject := signWith(t, "test-secret", jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	})
	noExpiry := signWith(t, "test-secret", jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42"},
	})

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		id, err := gen.Verify(valid)
		require.NoError(t, err)
		assert.Equal(t, Identity{UserID: "user-42", Email: "u@example.com", Name: "U"}, id)
	})

	rejected := map[string]string{
		"malformed":    "not.a.valid.token",
		"random":       "randomstring",
		"wrong secret": wrongSecret,
		"none alg":     noneToken,
		"no subject":   noSubject,
		"no expiry":    noExpiry,
	}
	for name, tok := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := gen.Verify(tok)
			assert.True(t, errors.Is(err, ErrInvalidToken), "expected ErrInvalidToken, got %v", err)
		})
	}

	t.Run("expired token", func(t *testing.T) {
		later := NewGenerator("test-secret", time.Hour)
		later.now = func() time.Time { return now.Add(2 * time.Hour) }

		_, err := later.Verify(valid)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

// TestGenerator_GenerateToken_DifferentUsersProduceDifferentTokens は異なるユーザーに対して異なるトークンが生成されることを検証します。
func TestGenerator_GenerateToken_DifferentUsersProduceDifferentTokens(t *testing.T) {
	t.Parallel()

	gen := NewGenerator("test-secret", time.Hour)

	token1, _ := gen.GenerateToken("a", "user1@example.com", "A")
	token2, _ := gen.GenerateToken("b", "user2@example.com", "B")

	assert.NotEqual(t, token1, token2)
}

func signWith(t *testing.T, secret string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}
