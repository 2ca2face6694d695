// Package overview реализует HTTP-обработчики списков админ-консоли:
// профили, депозиты, выводы, обращения и показатели майнинга всех
// пользователей. Ресурс задаётся сегментом URL.
package overview

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/warrenposo/cloudmining-backend/internal/http/response"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// Handler обрабатывает HTTP-запросы списков админ-консоли.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики админ-консоли.
type Service interface {
	Profiles(ctx context.Context, limit, offset int) ([]*models.Profile, error)
	Deposits(ctx context.Context, limit, offset int) ([]*models.Deposit, error)
	Withdrawals(ctx context.Context, limit, offset int) ([]*models.Withdrawal, error)
	Tickets(ctx context.Context, limit, offset int) ([]*models.TicketInfo, error)
	Stats(ctx context.Context, limit, offset int) ([]*models.MiningStatInfo, error)
}

// New создает новый Handler списков админ-консоли.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Списки админ-консоли
// @Description Возвращает страницу ресурса: users, deposits, withdrawals, tickets или stats.
// @Tags Admin
// @Produce  json
// @Param resource path string true "Ресурс" Enums(users, deposits, withdrawals, tickets, stats)
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Страница ресурса"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Неизвестный ресурс"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/{resource} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.overview"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	resource := chi.URLParam(r, "resource")

	var data any
	switch resource {
	case "users":
		data, err = h.service.Profiles(r.Context(), limit, offset)
	case "deposits":
		data, err = h.service.Deposits(r.Context(), limit, offset)
	case "withdrawals":
		data, err = h.service.Withdrawals(r.Context(), limit, offset)
	case "tickets":
		data, err = h.service.Tickets(r.Context(), limit, offset)
	case "stats":
		data, err = h.service.Stats(r.Context(), limit, offset)
	default:
		log.Error("unknown admin resource", slog.String("resource", resource))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown resource"))
		return
	}
	if err != nil {
		log.Error("failed to list resource", sl.Err(err), slog.String("resource", resource))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list "+resource))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"resource": resource,
		"items":    data,
	}))
}
