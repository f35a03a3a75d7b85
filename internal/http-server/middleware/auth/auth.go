package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	resp "auth-api/internal/lib/api/response"
	"auth-api/internal/lib/jwt"
	"auth-api/internal/lib/logger/sl"

	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
)

type ctxKey struct{}

// New returns a middleware that admits only requests carrying a valid
// "Authorization: Bearer <token>" header and stores the token's user id in
// the request context. now is consulted on every request.
func New(log *slog.Logger, secret []byte, now func() time.Time) func(next http.Handler) http.Handler {
	const op = "middleware.auth"

	log = log.With(slog.String("op", op))

	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				log.Error("authorization header is missing")
				unauthorized(w, r, "No token provided.")
				return
			}

			token := jwtauth.TokenFromHeader(r)
			if token == "" {
				log.Error("bearer token is missing")
				unauthorized(w, r, "Invalid token format.")
				return
			}

			userID, err := jwt.ParseToken(token, secret, now())
			if err != nil {
				log.Error("failed to verify token", sl.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					unauthorized(w, r, "Token expired.")
					return
				}
				unauthorized(w, r, "Invalid token.")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

// UserID returns the user id stored by the middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Err(msg))
}
