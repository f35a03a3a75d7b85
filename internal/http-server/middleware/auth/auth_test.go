package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auth-api/internal/lib/jwt"
	"auth-api/internal/lib/logger/handlers/slogdiscard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func newTestHandler(now time.Time) http.Handler {
	mw := New(slogdiscard.NewDiscardLogger(), secret, func() time.Time { return now })

	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(id))
	}))
}

func TestMiddleware(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	valid, err := jwt.NewToken("user-1", secret, issued)
	require.NoError(t, err)
	foreign, err := jwt.NewToken("user-1", []byte("other-secret"), issued)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		at       time.Time
		wantCode int
		wantBody string
		wantErr  string
	}{
		{name: "valid", header: "Bearer " + valid, at: issued, wantCode: http.StatusOK, wantBody: "user-1"},
		{name: "lowercase scheme", header: "bearer " + valid, at: issued, wantCode: http.StatusOK, wantBody: "user-1"},
		{name: "missing header", at: issued, wantCode: http.StatusUnauthorized, wantErr: "No token provided."},
		{name: "no scheme", header: valid, at: issued, wantCode: http.StatusUnauthorized, wantErr: "Invalid token format."},
		{name: "empty bearer", header: "Bearer ", at: issued, wantCode: http.StatusUnauthorized, wantErr: "Invalid token format."},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", at: issued, wantCode: http.StatusUnauthorized, wantErr: "Invalid token format."},
		{name: "garbage", header: "Bearer garbage", at: issued, wantCode: http.StatusUnauthorized, wantErr: "Invalid token."},
		{name: "foreign signature", header: "Bearer " + foreign, at: issued, wantCode: http.StatusUnauthorized, wantErr: "Invalid token."},
		{name: "expired", header: "Bearer " + valid, at: issued.Add(jwt.TokenTTL), wantCode: http.StatusUnauthorized, wantErr: "Token expired."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			newTestHandler(tt.at).ServeHTTP(rr, req)

			require.Equal(t, tt.wantCode, rr.Code)
			if tt.wantErr == "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
				return
			}

			var body struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantErr, body.Error)
		})
	}
}
