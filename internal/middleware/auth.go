package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/auth"
)

type contextKey string

const authContextKey contextKey = "authContext"

type AuthContext struct {
	UserID string
	Role   auth.UserRole
	Email  string
	Name   string
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	writeAuthErrorDebug(w, status, code, message, "")
}

func writeAuthErrorDebug(w http.ResponseWriter, status int, code string, message string, debug string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload := map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	}

	if os.Getenv("APP_ENV") == "development" && strings.TrimSpace(debug) != "" {
		payload["debug"] = debug
	}

	_ = json.NewEncoder(w).Encode(payload)
}

// StaffAuth gates staff routes: a valid token from the external auth service
// plus a role that intersects the route's required role set.
func StaffAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := auth.VerifyAccessToken(token, jwtSecret)
			if err != nil {
				writeAuthErrorDebug(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token required", err.Error())
				return
			}

			if claims.Role != auth.RoleAdmin && claims.Role != auth.RoleEmployee {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Staff access required")
				return
			}

			required := auth.RequiredRolesForAPI(r.URL.Path, r.Method)
			if !auth.RoleAllowed(claims.Role, required) {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "You do not have permission to access this resource")
				return
			}

			name := ""
			if claims.Name != nil {
				name = *claims.Name
			}
			authCtx := &AuthContext{
				UserID: claims.UserID,
				Role:   claims.Role,
				Email:  claims.Email,
				Name:   name,
			}

			ctx := WithAuthContext(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
