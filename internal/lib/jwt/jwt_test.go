package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestNewToken_ParseToken(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := NewToken("user-123", secret, now)
	require.NoError(t, err)

	userID, err := ParseToken(token, secret, now)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestParseToken_ExpiryWindow(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := NewToken("user-123", secret, issued)
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{name: "at issue", at: issued},
		{name: "half way", at: issued.Add(30 * time.Minute)},
		{name: "last second", at: issued.Add(TokenTTL - time.Second)},
		{name: "at expiry", at: issued.Add(TokenTTL), wantErr: ErrTokenExpired},
		{name: "after expiry", at: issued.Add(2 * TokenTTL), wantErr: ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := ParseToken(token, secret, tt.at)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-123", userID)
		})
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	now := time.Now()

	token, err := NewToken("user-123", []byte("right-secret"), now)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("wrong-secret"), now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Malformed(t *testing.T) {
	_, err := ParseToken("not.a.jwt", secret, time.Now())
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		UserID:           "user-123",
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(signed, secret, now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RequiresExpiry(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-123"})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(signed, secret, time.Now())
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RequiresUserID(t *testing.T) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(signed, secret, now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
