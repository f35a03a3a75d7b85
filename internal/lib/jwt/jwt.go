package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is fixed; tokens are not refreshed.
const TokenTTL = time.Hour

var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims binds a token to exactly one user.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// NewToken signs an HS256 token for userID that expires TokenTTL after now.
func NewToken(userID string, secret []byte, now time.Time) (string, error) {
	const op = "lib.jwt.NewToken"

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return tokenString, nil
}

// ParseToken verifies tokenString as of now and returns the embedded user id.
// Every failure is reported as ErrTokenExpired or ErrInvalidToken.
func ParseToken(tokenString string, secret []byte, now time.Time) (string, error) {
	const op = "lib.jwt.ParseToken"

	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return "", fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}

	if claims.UserID == "" {
		return "", fmt.Errorf("%s: %w: empty user id", op, ErrInvalidToken)
	}

	return claims.UserID, nil
}
