package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rallydesk/rallydesk/internal/adapter/http/response"
	"github.com/rallydesk/rallydesk/internal/apperror"
)

type contextKey string

const actorKey contextKey = "actor_id"

// AuthMiddleware extracts the caller identity from a bearer token. The token
// subject is the organizer's user ID; ownership itself is checked further down
// by the usecases.
type AuthMiddleware struct {
	secret []byte
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret)}
}

func (m *AuthMiddleware) RequireActor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.FromError(w, apperror.Unauthenticated("Authorization header required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.FromError(w, apperror.Unauthenticated("Invalid authorization header format"))
			return
		}

		actorID, err := m.parseSubject(parts[1])
		if err != nil {
			response.FromError(w, apperror.Unauthenticated("Invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (m *AuthMiddleware) parseSubject(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return subject, nil
}

// ActorID retrieves the authenticated caller ID from the request context.
// Empty when the request never passed RequireActor.
func ActorID(ctx context.Context) string {
	if id, ok := ctx.Value(actorKey).(string); ok {
		return id
	}
	return ""
}
