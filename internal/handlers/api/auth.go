package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// ctxCallerKey is the context key for the authenticated caller address
type ctxCallerKey struct{}

var errMissingToken = errors.New("missing bearer token")

// IssueToken signs an HS256 token whose subject is the caller address
func IssueToken(secret []byte, caller models.Address, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   caller.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// requireAuth enforces a valid JWT and injects the caller address into the request context
func requireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := authenticate(r, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxCallerKey{}, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, secret []byte) (models.Address, error) {
	tokenStr, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || tokenStr == "" {
		return models.ZeroAddress, errMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return models.ZeroAddress, err
	}

	caller, err := models.ParseAddress(claims.Subject)
	if err != nil {
		return models.ZeroAddress, err
	}
	if caller.IsZero() {
		return models.ZeroAddress, models.ErrInvalidAddress
	}

	return caller, nil
}

// callerFromContext returns the address set by requireAuth
func callerFromContext(ctx context.Context) models.Address {
	caller, _ := ctx.Value(ctxCallerKey{}).(models.Address)
	return caller
}
