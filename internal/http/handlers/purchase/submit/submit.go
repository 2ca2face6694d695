// Package submit реализует HTTP-обработчик завершения формы покупки.
//
// Handler фиксирует курс конвертации и переводит сессию в состояние preview.
// Отсутствующий или нулевой курс оставляет сессию в form.
package submit

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

// Handler обрабатывает HTTP-запросы построения превью покупки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики построения превью.
type Service interface {
	Submit(ctx context.Context, username string) (*models.PurchaseSession, error)
}

// New создает новый Handler построения превью.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Построить превью покупки
// @Description Фиксирует курс конвертации и переводит сессию в preview.
// @Tags Purchase
// @Produce  json
// @Success 200 {object} map[string]any "Сессия покупки в состоянии preview"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 409 {object} response.ErrorResponse "Недопустимое состояние сессии"
// @Failure 422 {object} response.ErrorResponse "Шлюз не выбран"
// @Failure 503 {object} response.ErrorResponse "Курс конвертации недоступен"
// @Router /purchase/submit [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.submit"

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

	session, err := h.service.Submit(r.Context(), username)
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
		case errors.Is(err, purchase.ErrNoGateway):
			log.Error("gateway is not selected")
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("gateway is not selected"))
		case errors.Is(err, purchase.ErrBadRate):
			log.Error("conversion rate unavailable", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("conversion rate is unavailable, try again later"))
		default:
			log.Error("failed to build preview", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not build preview"))
		}
		return
	}

	log.Info("preview built", slog.Float64("crypto_amount", session.CryptoAmount))
	render.JSON(w, r, response.StatusOKWithData(session))
}
