// Package planlist реализует HTTP-обработчик списка купленных планов профиля.
package planlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/warrenposo/cloudmining-backend/internal/http/middlewarectx"
	"github.com/warrenposo/cloudmining-backend/internal/http/response"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// Handler обрабатывает HTTP-запросы списка купленных планов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка купленных планов.
type Service interface {
	Plans(ctx context.Context, username string, limit, offset int) ([]*models.UserPlan, error)
}

// New создает новый Handler списка купленных планов.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список купленных планов пользователя
// @Tags Account
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Купленные планы"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /account/plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.planlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.Plans(r.Context(), username, limit, offset)
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list plans"))
		return
	}

	log.Info("plans listed", "count", len(res))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(res),
		"plans":      res,
	}))
}
