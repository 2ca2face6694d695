// Package dashboard реализует HTTP-обработчик сводки личного кабинета.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/warrenposo/cloudmining-backend/internal/http/middlewarectx"
	"github.com/warrenposo/cloudmining-backend/internal/http/response"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/services/account"
)

// Handler обрабатывает HTTP-запросы сводки кабинета.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики сводки кабинета.
type Service interface {
	Dashboard(ctx context.Context, username string) (*account.Dashboard, error)
}

// New создает новый Handler сводки кабинета.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводка личного кабинета
// @Description Возвращает профиль, баланс, показатели майнинга и последние операции.
// @Tags Account
// @Produce  json
// @Success 200 {object} map[string]any "Сводка кабинета"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.dashboard"

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

	dashboard, err := h.service.Dashboard(r.Context(), username)
	if err != nil {
		log.Error("failed to build dashboard", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build dashboard"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(dashboard))
}
