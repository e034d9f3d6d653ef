package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Verifier проверяет bearer-токен и возвращает id пользователя, которому он выдан.
type Verifier interface {
	Verify(token string) (string, error)
}

// Middleware отклоняет запросы без валидного токена и кладёт id пользователя
// в контекст запроса. Ответ с отказом рисует onError.
func Middleware(v Verifier, onError func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := v.Verify(BearerToken(r))
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// BearerToken достаёт токен из заголовка "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// StatusFor: 401, если токена нет, 403, если он невалиден.
func StatusFor(err error) int {
	if errors.Is(err, ErrMissingToken) {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID возвращает id аутентифицированного пользователя из контекста.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
