// Package identity resolves the holder behind an HTTP request.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/dinofightergenesis/dinofighterg/internal/session"
)

// Provider extracts the authenticated holder ID from a request. Failures
// wrap session.ErrNotAuthenticated.
type Provider interface {
	Identify(r *http.Request) (string, error)
}

type contextKey struct{}

// WithHolder stores a holder ID on ctx.
func WithHolder(ctx context.Context, holderID string) context.Context {
	return context.WithValue(ctx, contextKey{}, holderID)
}

// HolderFromContext returns the holder stored by Middleware.
func HolderFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// Middleware rejects unauthenticated requests with 401 and stores the
// holder ID on the request context otherwise.
func Middleware(p Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			holderID, err := p.Identify(r)
			if err != nil {
				log.WithError(err).Debug("identify request")
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithHolder(r.Context(), holderID)))
		})
	}
}

// HeaderProvider trusts a header set by an upstream gateway.
type HeaderProvider struct {
	Header string
}

func (p HeaderProvider) Identify(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(p.Header))
	if id == "" {
		return "", fmt.Errorf("missing %s header: %w", p.Header, session.ErrNotAuthenticated)
	}
	return id, nil
}

// JWTProvider verifies HS256 bearer tokens and uses the subject claim as the
// holder ID.
type JWTProvider struct {
	secret []byte
	issuer string
	skew   time.Duration
}

func NewJWTProvider(secret, issuer string) *JWTProvider {
	return &JWTProvider{
		secret: []byte(strings.TrimSpace(secret)),
		issuer: issuer,
		skew:   2 * time.Minute,
	}
}

func (p *JWTProvider) Identify(r *http.Request) (string, error) {
	tokenString := extractBearer(r.Header.Get("Authorization"))
	if tokenString == "" {
		// Browsers cannot set headers on websocket upgrades.
		tokenString = r.URL.Query().Get("access_token")
	}
	if tokenString == "" {
		return "", fmt.Errorf("missing bearer token: %w", session.ErrNotAuthenticated)
	}
	sub, err := p.subject(tokenString)
	if err != nil {
		return "", fmt.Errorf("%w: %w", session.ErrNotAuthenticated, err)
	}
	return sub, nil
}

func (p *JWTProvider) subject(tokenString string) (string, error) {
	if len(p.secret) == 0 {
		return "", errors.New("auth secret not configured")
	}
	opts := []jwt.ParserOption{
		jwt.WithLeeway(p.skew),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// Sign issues a token for holderID. Used by operator tooling and tests.
func (p *JWTProvider) Sign(holderID string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   holderID,
		Issuer:    p.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func extractBearer(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
