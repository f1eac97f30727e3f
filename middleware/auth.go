package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey avoids collisions with other packages' context values.
type contextKey string

// UserIDKey is the key under which the authenticated user id is stored in
// the request context.
const UserIDKey contextKey = "userID"

// UserID returns the authenticated user id from the request context, if the
// JWT middleware ran for this request.
func UserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(UserIDKey).(int)
	return id, ok
}

// JWTMiddleware verifies the bearer token from the Authorization header and
// puts the authenticated user id on the request context. It is only mounted
// when REQUIRE_AUTH=true; by default every route is open, matching the
// trust model of the original system.
func JWTMiddleware(next http.Handler) http.Handler {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable not set.")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, "Authorization header format must be Bearer {token}", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenMalformed):
				http.Error(w, "Malformed token", http.StatusUnauthorized)
			case errors.Is(err, jwt.ErrTokenSignatureInvalid):
				http.Error(w, "Invalid token signature", http.StatusUnauthorized)
			case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
				http.Error(w, "Token is either expired or not active yet", http.StatusUnauthorized)
			default:
				http.Error(w, "Couldn't handle this token: validation error", http.StatusUnauthorized)
			}
			return
		}
		if !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok {
				if userID, err := strconv.Atoi(sub); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}
