package httputil

import (
	"context"
	"net/http"
	"strings"

	"github.com/rayanh/salary-tracker/internal/domain"
	"github.com/rayanh/salary-tracker/internal/pkg/ctxlog"
	"github.com/rayanh/salary-tracker/internal/pkg/policy"
)

// CORSMiddleware creates CORS middleware that handles preflight requests
// and adds appropriate CORS headers to responses.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if originsSet[origin] || originsSet["*"] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type contextKey string

const principalKey contextKey = "principal"

// TokenVerifier checks a bearer token and returns the principal it encodes.
type TokenVerifier interface {
	Verify(token string) (*domain.Principal, error)
}

// Authenticate resolves the bearer token into a request principal.
//
// Paths on the policy's open list are passed through untouched. An absent
// or non-Bearer Authorization header means the request proceeds
// unauthenticated and authorization decides its fate. Only a present but
// unverifiable token is rejected here, with the token error's own code.
func Authenticate(verifier TokenVerifier, pol *policy.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if pol.Open(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(header, " ")
			if header == "" || !found || !strings.EqualFold(scheme, "Bearer") {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				HandleError(r.Context(), w, err)
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			ctx = ctxlog.With(ctx, "user_id", principal.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize enforces the access policy for every request. It runs after
// Authenticate and is the only place a missing principal is rejected.
func Authorize(pol *policy.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := pol.Check(r.URL.Path, PrincipalFrom(r.Context())); err != nil {
				HandleError(r.Context(), w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal stores the authenticated principal on the context.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the authenticated principal from context.
// Returns nil for unauthenticated requests.
func PrincipalFrom(ctx context.Context) *domain.Principal {
	if p, ok := ctx.Value(principalKey).(*domain.Principal); ok {
		return p
	}
	return nil
}
