// Package restart реализует HTTP-обработчик сброса сессии покупки:
// действие "назад" или "новая покупка".
package restart

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/warrenposo/cloudmining-backend/internal/http/middlewarectx"
	"github.com/warrenposo/cloudmining-backend/internal/http/response"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы сброса сессии покупки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики сброса сессии.
type Service interface {
	Restart(ctx context.Context, username string) error
}

// New создает новый Handler сброса сессии.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сбросить сессию покупки
// @Description Отбрасывает текущую сессию, форма снова доступна.
// @Tags Purchase
// @Produce  json
// @Success 200 {object} map[string]any "Сессия сброшена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /purchase/restart [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.restart"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Restart(r.Context(), username); err != nil {
		log.Error("failed to restart purchase", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not restart purchase"))
		return
	}

	log.Info("purchase session discarded", slog.String("username", username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"restarted": true,
	}))
}
