// Package updatestat реализует HTTP-обработчик записи показателей майнинга
// профиля администратором.
package updatestat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/warrenposo/cloudmining-backend/internal/http/response"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// Request — структура входных данных для записи показателей.
type Request struct {
	Username    string  `json:"username" validate:"required"`
	Hashrate    float64 `json:"hashrate" validate:"gte=0"`
	EarningsUSD float64 `json:"earnings_usd" validate:"gte=0"`
}

// Handler обрабатывает HTTP-запросы записи показателей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики записи показателей.
type Service interface {
	UpdateStat(ctx context.Context, stat models.MiningStat) error
}

// New создает новый Handler записи показателей.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Записать показатели майнинга
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Показатели профиля"
// @Success 200 {object} map[string]any "Показатели записаны"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/stats [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.updatestat"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.UpdateStat(r.Context(), models.MiningStat{
		Username:    req.Username,
		Hashrate:    req.Hashrate,
		EarningsUSD: req.EarningsUSD,
	}); err != nil {
		log.Error("failed to update stat", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update stat"))
		return
	}

	log.Info("stat updated", slog.String("username", req.Username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"username": req.Username,
	}))
}
