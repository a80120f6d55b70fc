// Package mwauth extracts the caller identity from HS256 bearer tokens issued
// by the managed auth backend.
package mwauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"eventsBooking/internal/lib/api/response"
	"eventsBooking/internal/lib/logger/sl"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKey struct{}

var ErrNoToken = errors.New("no bearer token")

// UserID returns the authenticated user, if any.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return id, ok
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Optional admits anonymous requests but rejects malformed or forged tokens.
func Optional(log *slog.Logger, secret string) func(next http.Handler) http.Handler {
	return middleware(log, secret, false)
}

// Required rejects requests without a valid token.
func Required(log *slog.Logger, secret string) func(next http.Handler) http.Handler {
	return middleware(log, secret, true)
}

func middleware(log *slog.Logger, secret string, required bool) func(next http.Handler) http.Handler {
	log = log.With(slog.String("component", "middleware/auth"))

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			id, err := ParseRequest(r, secret)
			switch {
			case errors.Is(err, ErrNoToken) && !required:
				next.ServeHTTP(w, r)
				return
			case err != nil:
				log.Warn("rejected bearer token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		}

		return http.HandlerFunc(fn)
	}
}

// ParseRequest validates the Authorization header and returns the token subject.
func ParseRequest(r *http.Request, secret string) (uuid.UUID, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return uuid.Nil, ErrNoToken
	}

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return uuid.Nil, errors.New("malformed authorization header")
	}

	if secret == "" {
		return uuid.Nil, errors.New("token verification is not configured")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token subject: %w", err)
	}

	return id, nil
}
