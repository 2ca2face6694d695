// Package depositlist реализует HTTP-обработчик списка депозитов профиля.
package depositlist

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

// Handler обрабатывает HTTP-запросы списка депозитов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка депозитов.
type Service interface {
	Deposits(ctx context.Context, username string, limit, offset int) ([]*models.Deposit, error)
}

// New создает новый Handler списка депозитов.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список депозитов пользователя
// @Tags Account
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Депозиты пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /deposits [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.depositlist"

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

	res, err := h.service.Deposits(r.Context(), username, limit, offset)
	if err != nil {
		log.Error("failed to list deposits", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list deposits"))
		return
	}

	log.Info("deposits listed", "count", len(res))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(res),
		"deposits":   res,
	}))
}
