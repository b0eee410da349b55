package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated caller behind a request. Token keeps the
// Authorization header value so it can be forwarded to collaborators.
type Principal struct {
	UserID string
	Email  string
	Token  string
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Middleware resolves "Authorization: Bearer <jwt>" into a Principal.
// Requests without a usable token continue anonymously.
func Middleware(secret []byte, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			p, err := Parse(secret, raw)
			if err != nil {
				log.Debug("bearer token rejected", "path", r.URL.Path, "err", err)
				next.ServeHTTP(w, r)
				return
			}
			p.Token = header
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func Parse(secret []byte, raw string) (Principal, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, err
	}
	if !tok.Valid || c.Subject == "" {
		return Principal{}, fmt.Errorf("token has no subject")
	}
	return Principal{UserID: c.Subject, Email: c.Email}, nil
}

// Issue signs an HS256 token for userID. Used by tests and local tooling.
func Issue(secret []byte, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}
