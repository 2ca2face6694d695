// Package withdrawcreate реализует HTTP-обработчик заявки на вывод средств.
//
// Сумма больше текущего баланса отклоняется без записи. Баланс при создании
// заявки не списывается: расчёт выполняет администратор вне сервиса.
package withdrawcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/warrenposo/cloudmining-backend/internal/http/middlewarectx"
	"github.com/warrenposo/cloudmining-backend/internal/http/response"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/models"
	"github.com/warrenposo/cloudmining-backend/internal/services/account"
)

// Handler обрабатывает HTTP-запросы на вывод средств.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики вывода средств.
type Service interface {
	CreateWithdrawal(ctx context.Context, username string, req models.DummyWithdrawal) (int, error)
}

// New создает новый Handler вывода средств.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать заявку на вывод
// @Description Создает pending-заявку на вывод. Сумма больше баланса отклоняется.
// @Tags Account
// @Accept  json
// @Produce  json
// @Param request body models.DummyWithdrawal true "Сумма, адрес и валюта вывода"
// @Success 200 {object} map[string]any "Идентификатор заявки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Сумма превышает баланс"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /withdrawals [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.withdrawcreate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyWithdrawal
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

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.CreateWithdrawal(r.Context(), username, req)
	if err != nil {
		if errors.Is(err, account.ErrInsufficientBalance) {
			log.Info("withdrawal exceeds balance", slog.Float64("amount", req.AmountUSD))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to create withdrawal", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create withdrawal"))
		return
	}

	log.Info("withdrawal created", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id": id,
	}))
}
