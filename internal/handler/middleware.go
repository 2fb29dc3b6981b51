package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/oblozinskyroman/stars/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	tokenKey  contextKey = "accessToken"
)

// TokenValidator resolves a bearer token to a user id.
type TokenValidator func(ctx context.Context, token string) (string, error)

// NewJWTValidator validates Supabase-issued HS256 access tokens locally,
// without a round trip to the auth API.
func NewJWTValidator(secret string) TokenValidator {
	return func(_ context.Context, tokenString string) (string, error) {
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil {
			return "", err
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			return "", fmt.Errorf("invalid token claims")
		}
		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			return "", fmt.Errorf("token has no subject")
		}
		return sub, nil
	}
}

// NewRemoteValidator resolves tokens through the auth API. Used when no JWT
// secret is configured (dev mode included).
func NewRemoteValidator(api port.AuthAPI) TokenValidator {
	return func(ctx context.Context, token string) (string, error) {
		user, err := api.GetUser(ctx, token)
		if err != nil {
			return "", err
		}
		return user.ID, nil
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// RequireAuth rejects requests without a valid bearer token and injects the
// user id into the context.
func RequireAuth(validate TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userID, err := validate(r.Context(), token)
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth injects the user id when a valid token is present and lets the
// request through either way. Routes whose auth decision lives in the service
// layer (the provider form checks identity only after the honeypot) use this.
func OptionalAuth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if token := bearerToken(r); token != "" {
				ctx = context.WithValue(ctx, tokenKey, token)
				if userID, err := validate(ctx, token); err == nil {
					ctx = context.WithValue(ctx, userIDKey, userID)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user id from context.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// AccessTokenFromContext extracts the raw bearer token from context.
func AccessTokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey).(string)
	return v
}
