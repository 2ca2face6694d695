// Package confirm реализует HTTP-обработчик подтверждения покупки.
//
// Handler запускает сагу записи депозита и пользовательского плана и при
// успехе возвращает детали оплаты: адрес расчёта, платёжный URI и суммы.
package confirm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/warrenposo/cloudmining-backend/internal/http/middlewarectx"
	"github.com/warrenposo/cloudmining-backend/internal/http/response"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/models"
	"github.com/warrenposo/cloudmining-backend/internal/services/purchase"
)

// Handler обрабатывает HTTP-запросы подтверждения покупки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подтверждения покупки.
type Service interface {
	Confirm(ctx context.Context, username string) (*models.PaymentDetails, error)
}

// New создает новый Handler подтверждения покупки.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подтвердить покупку
// @Description Записывает депозит и план, возвращает детали оплаты.
// @Tags Purchase
// @Produce  json
// @Success 200 {object} map[string]any "Детали оплаты"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 409 {object} response.ErrorResponse "Недопустимое состояние сессии"
// @Failure 500 {object} response.ErrorResponse "Запись не удалась, сессия осталась в preview"
// @Router /purchase/confirm [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.confirm"

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

	details, err := h.service.Confirm(r.Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrNoSession):
			log.Error("session not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("purchase session not found"))
		case errors.Is(err, purchase.ErrWrongState):
			log.Error("wrong session state")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("operation is not allowed in current state"))
		default:
			log.Error("failed to confirm purchase", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not confirm purchase, try again"))
		}
		return
	}

	log.Info("purchase confirmed", slog.String("tx_id", details.TxID))
	render.JSON(w, r, response.StatusOKWithData(details))
}
