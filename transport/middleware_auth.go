package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/roastline/storefront/application/user"
	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/utils/errors"
)

// AuthMiddleware validates the external auth provider's bearer token and
// embeds the resulting identity into the request context. Webhook and catalog
// endpoints stay public.
func AuthMiddleware(userApp user.UserApp) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Public paths
			path := r.URL.Path
			if isPublicPath(path, r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			// Check Authorization header
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				writeError(w, errors.SetCustomError(constant.ErrUnauthorize))
				return
			}
			token := strings.TrimPrefix(auth, "Bearer ")

			identity, err := userApp.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, errors.SetCustomError(constant.ErrUnauthorize))
				return
			}

			if strings.HasPrefix(path, "/admin/") && identity.Role != constant.RoleAdmin {
				writeError(w, errors.SetCustomError(constant.ErrForbidden))
				return
			}

			ctx := context.WithValue(r.Context(), constant.UserIDKey, identity.UserID)
			ctx = context.WithValue(ctx, constant.UserEmailKey, identity.Email)
			ctx = context.WithValue(ctx, constant.UserRoleKey, identity.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// isPublicPath defines which endpoints are public (no auth required)
func isPublicPath(path, method string) bool {
	if strings.HasPrefix(path, "/swagger/") || strings.HasPrefix(path, "/webhooks/") || strings.HasPrefix(path, "/internal/") {
		return true
	}
	if method == http.MethodGet && (path == "/products" || strings.HasPrefix(path, "/products/")) {
		return true
	}

	return false
}
