package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptTokens_RoundTrip(t *testing.T) {
	tokens := NewAttemptTokens("test-secret")

	signed, err := tokens.Issue("attempt-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	id, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "attempt-1", id)
}

func TestAttemptTokens_Rejects(t *testing.T) {
	tokens := NewAttemptTokens("test-secret")

	expired, err := tokens.Issue("attempt-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = tokens.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewAttemptTokens("other-secret").Issue("attempt-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = tokens.Verify(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noID := jwt.NewWithClaims(jwt.SigningMethodHS256, AttemptClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := noID.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequire(t *testing.T) {
	tokens := NewAttemptTokens("test-secret")
	var seen string
	h := tokens.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AttemptID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	signed, err := tokens.Issue("attempt-7", time.Now().Add(time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + signed, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + signed, http.StatusUnauthorized},
		{"garbage", "Bearer garbage", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Equal(t, "attempt-7", seen)
}
