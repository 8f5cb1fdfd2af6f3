package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Scopes granted to staff applications.
const (
	ScopeGymRead  = "gym:read"
	ScopeGymWrite = "gym:write"
)

type contextKey string

const claimsKey contextKey = "gym-auth-claims"

// WithClaims stores claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext retrieves claims stored by WithClaims.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// Skipper allows callers to bypass authentication for specific requests.
type Skipper func(r *http.Request) bool

// SkipOperational bypasses health and metrics endpoints and CORS preflights.
func SkipOperational(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
}

// Middleware validates bearer tokens and enforces read/write scopes by HTTP method.
type Middleware struct {
	Config  Config
	Skipper Skipper
}

// NewMiddleware constructs a middleware with optional skipper.
func NewMiddleware(cfg Config, skipper Skipper) Middleware {
	return Middleware{Config: cfg, Skipper: skipper}
}

// Wrap wraps an http.Handler with authentication.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Skipper != nil && m.Skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parseRequest(r)
		if err != nil {
			writeDenied(w, http.StatusUnauthorized, err.Error())
			return
		}
		if required := RequiredScopes(r.Method); !claims.HasAnyScope(required...) {
			writeDenied(w, http.StatusForbidden, "scope "+required[0]+" required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequiredScopes lists the scopes that each grant access for method.
func RequiredScopes(method string) []string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return []string{ScopeGymRead, ScopeGymWrite}
	default:
		return []string{ScopeGymWrite}
	}
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, ErrInvalidToken
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return Parse(token, m.Config)
}

func writeDenied(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}
