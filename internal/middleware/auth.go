// Package middleware holds the HTTP middleware shared by the API handlers.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wikiquiz/backend/internal/models"
)

type contextKey string

const attemptIDKey contextKey = "attempt_id"

var ErrInvalidToken = errors.New("invalid attempt token")

// AttemptClaims binds a bearer token to a single quiz attempt.
type AttemptClaims struct {
	AttemptID string `json:"attempt_id"`
	jwt.RegisteredClaims
}

// AttemptTokens issues and checks HS256 tokens for quiz attempts.
type AttemptTokens struct {
	secret []byte
	now    func() time.Time
}

func NewAttemptTokens(secret string) *AttemptTokens {
	return &AttemptTokens{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for attemptID that expires at expiresAt.
func (t *AttemptTokens) Issue(attemptID string, expiresAt time.Time) (string, error) {
	claims := AttemptClaims{
		AttemptID: attemptID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(t.now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign attempt token: %w", err)
	}
	return signed, nil
}

// Verify parses a signed token and returns the attempt it was issued for.
func (t *AttemptTokens) Verify(signed string) (string, error) {
	var claims AttemptClaims
	_, err := jwt.ParseWithClaims(signed, &claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.AttemptID == "" {
		return "", fmt.Errorf("%w: missing attempt_id", ErrInvalidToken)
	}
	return claims.AttemptID, nil
}

// Require rejects requests without a valid bearer token and stores the
// token's attempt id in the request context.
func (t *AttemptTokens) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		signed, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || signed == "" {
			writeError(w, http.StatusUnauthorized, "Missing attempt token")
			return
		}

		attemptID, err := t.Verify(signed)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired attempt token")
			return
		}

		ctx := context.WithValue(r.Context(), attemptIDKey, attemptID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AttemptID returns the attempt id stored by Require.
func AttemptID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(attemptIDKey).(string)
	return id, ok
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}
