package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/warrenposo/cloudmining-backend/internal/http/response"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// AdminOnlyMiddleware пропускает запрос дальше только с ролью admin в контексте.
func AdminOnlyMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(Role).(string)
			if !ok || role != models.RoleAdmin {
				log.Error("admin access denied", slog.String("role", role))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
