package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/auth"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/http/response"
)

type authErrorKey struct{}

// Authenticate resolves the bearer token into an actor on the request
// context. It never rejects; RequireActor and RequireRole do.
func Authenticate(authn *auth.Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				ctx = context.WithValue(ctx, authErrorKey{}, errors.New("authorization header must use the Bearer scheme"))
			} else if actor, err := authn.Parse(strings.TrimSpace(token)); err != nil {
				ctx = context.WithValue(ctx, authErrorKey{}, auth.ErrInvalidToken)
			} else {
				ctx = auth.WithActor(ctx, actor)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	err, _ := r.Context().Value(authErrorKey{}).(error)
	if err == nil {
		err = auth.ErrMissingToken
	}
	response.Error(w, http.StatusUnauthorized, err)
}

// RequireActor rejects requests without a valid bearer token with 401
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.ActorFromContext(r.Context()); !ok {
			unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and actors outside roles with 403
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := auth.ActorFromContext(r.Context())
			if !ok {
				unauthorized(w, r)
				return
			}
			if _, ok := allowed[actor.Role]; !ok {
				response.Error(w, http.StatusForbidden, errors.New("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
