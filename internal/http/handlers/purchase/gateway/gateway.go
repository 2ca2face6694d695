// Package gateway реализует HTTP-обработчик выбора платёжного шлюза в потоке
// покупки. Цена плана вне границ шлюза сбрасывает выбор и возвращает ошибку.
package gateway

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
	"github.com/warrenposo/cloudmining-backend/internal/services/purchase"
)

// Handler обрабатывает HTTP-запросы выбора шлюза.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики выбора шлюза.
type Service interface {
	SelectGateway(ctx context.Context, username, gatewayID string) (*models.PurchaseSession, error)
}

// New создает новый Handler выбора шлюза.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Выбрать платёжный шлюз
// @Description Привязывает шлюз к сессии покупки. Цена вне границ шлюза сбрасывает выбор.
// @Tags Purchase
// @Accept  json
// @Produce  json
// @Param request body models.DummyPurchaseGateway true "Идентификатор шлюза"
// @Success 200 {object} map[string]any "Сессия покупки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Сессия или шлюз не найдены"
// @Failure 409 {object} response.ErrorResponse "Недопустимое состояние сессии"
// @Failure 422 {object} response.ErrorResponse "Цена плана вне границ шлюза"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /purchase/gateway [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.gateway"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPurchaseGateway
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

	session, err := h.service.SelectGateway(r.Context(), username, req.Gateway)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrGatewayOutOfRange):
			log.Info("gateway out of range", slog.String("gateway", req.Gateway))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ErrorWithData(err.Error(), session))
		case errors.Is(err, purchase.ErrNoSession), errors.Is(err, purchase.ErrGatewayNotFound):
			log.Error("not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, purchase.ErrWrongState):
			log.Error("wrong session state", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("operation is not allowed in current state"))
		default:
			log.Error("failed to select gateway", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not select gateway"))
		}
		return
	}

	log.Info("gateway selected", slog.String("gateway", req.Gateway))
	render.JSON(w, r, response.StatusOKWithData(session))
}
