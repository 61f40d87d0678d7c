// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// UserIDKey is the context key for user ID.
	UserIDKey ContextKey = "user_id"
	// PropertyIDsKey is the context key for the token's property scope.
	PropertyIDsKey ContextKey = "property_ids"
)

// Claims represents JWT claims. PropertyIDs lists the properties the token
// may access; empty means unrestricted.
type Claims struct {
	jwt.RegisteredClaims
	PropertyIDs []string `json:"property_ids"`
}

// Auth creates JWT authentication middleware.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization header format"}`, http.StatusUnauthorized)
				return
			}

			tokenString := parts[1]

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil || !token.Valid {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, PropertyIDsKey, claims.PropertyIDs)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID gets user ID from context.
func GetUserID(ctx context.Context) string {
	if v := ctx.Value(UserIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetPropertyIDs gets the token's property scope from context.
func GetPropertyIDs(ctx context.Context) []string {
	if v := ctx.Value(PropertyIDsKey); v != nil {
		return v.([]string)
	}
	return nil
}

// CanAccessProperty checks whether the context's token covers a property.
// An empty scope means unrestricted access.
func CanAccessProperty(ctx context.Context, propertyID string) bool {
	ids := GetPropertyIDs(ctx)
	if len(ids) == 0 {
		return true
	}
	for _, id := range ids {
		if id == propertyID {
			return true
		}
	}
	return false
}
