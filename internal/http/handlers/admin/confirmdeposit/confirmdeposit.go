// Package confirmdeposit реализует HTTP-обработчик ручного подтверждения
// депозита администратором: перевод в confirmed и зачисление на баланс.
package confirmdeposit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/warrenposo/cloudmining-backend/internal/http/response"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/storage/repository"
)

// Handler обрабатывает HTTP-запросы подтверждения депозита.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подтверждения депозита.
type Service interface {
	ConfirmDeposit(ctx context.Context, txID string) error
}

// New создает новый Handler подтверждения депозита.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подтвердить депозит
// @Description Переводит pending-депозит в confirmed и зачисляет сумму на баланс владельца.
// @Tags Admin
// @Produce  json
// @Param txID path string true "Идентификатор транзакции"
// @Success 200 {object} map[string]any "Депозит подтверждён"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 409 {object} response.ErrorResponse "Депозит не в статусе pending"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/deposits/{txID}/confirm [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.confirmdeposit"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	txID := chi.URLParam(r, "txID")
	if txID == "" {
		log.Error("tx id is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("tx id is required"))
		return
	}

	if err := h.service.ConfirmDeposit(r.Context(), txID); err != nil {
		if errors.Is(err, repository.ErrDepositNotPending) {
			log.Error("deposit is not pending", slog.String("tx_id", txID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("deposit is not pending"))
			return
		}
		log.Error("failed to confirm deposit", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not confirm deposit"))
		return
	}

	log.Info("deposit confirmed", slog.String("tx_id", txID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tx_id":     txID,
		"confirmed": true,
	}))
}
