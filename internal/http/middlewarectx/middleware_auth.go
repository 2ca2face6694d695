// Package middlewarectx содержит HTTP middleware для обработки и проверки JWT токенов.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization,
// валидирует его через сервис аутентификации и в случае успеха добавляет в контекст
// имя пользователя и роль для дальнейшего использования в обработчиках.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/warrenposo/cloudmining-backend/internal/http/response"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// User — ключ для имени пользователя в контексте
	User Key = "username"
	// Role — ключ для роли пользователя в контексте
	Role Key = "role"
	// UserUID — ключ для идентификатора профиля в контексте
	UserUID Key = "user_uid"
)

// Service описывает интерфейс сервиса для валидации JWT токена
// и самовосстановления профиля.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.Profile, string, bool, error)
	EnsureProfile(ctx context.Context, uid, email, username string) *models.Profile
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет имя пользователя, роль и UID в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const op = "middlewarectx.JWTMiddleware"

			log = log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			profile, _, valid, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil || !valid {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			// Роль и UID берутся из профиля, а не из claims: пропавший
			// профиль пересоздаётся, а при неудаче роль понижается до user.
			account := authService.EnsureProfile(r.Context(), profile.UID, profile.Email, profile.Username)

			ctx := context.WithValue(r.Context(), User, profile.Username)
			ctx = context.WithValue(ctx, Role, account.Role)
			ctx = context.WithValue(ctx, UserUID, account.UID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
