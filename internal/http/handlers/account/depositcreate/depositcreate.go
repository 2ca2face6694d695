// Package depositcreate реализует HTTP-обработчик прямой заявки на пополнение
// со страницы депозита. Сумма проверяется по границам шлюза и конвертируется
// по текущему курсу.
package depositcreate

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

// Handler обрабатывает HTTP-запросы на прямое пополнение.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики прямого пополнения.
type Service interface {
	CreateDeposit(ctx context.Context, username string, req models.DummyDeposit) (*models.PaymentDetails, error)
}

// New создает новый Handler прямого пополнения.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать заявку на пополнение
// @Description Создает pending-депозит и возвращает детали оплаты.
// @Tags Account
// @Accept  json
// @Produce  json
// @Param request body models.DummyDeposit true "Шлюз и сумма в USD"
// @Success 200 {object} map[string]any "Детали оплаты"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Шлюз не найден"
// @Failure 422 {object} response.ErrorResponse "Сумма вне границ шлюза"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Failure 503 {object} response.ErrorResponse "Курс конвертации недоступен"
// @Router /deposits [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.depositcreate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyDeposit
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

	details, err := h.service.CreateDeposit(r.Context(), username, req)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrGatewayNotFound):
			log.Error("gateway not found", slog.String("gateway", req.Gateway))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("gateway not found"))
		case errors.Is(err, account.ErrAmountOutOfRange):
			log.Info("amount out of range", slog.Float64("amount", req.AmountUSD))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, account.ErrBadRate):
			log.Error("conversion rate unavailable", sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("conversion rate is unavailable, try again later"))
		default:
			log.Error("failed to create deposit", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create deposit"))
		}
		return
	}

	log.Info("deposit created", slog.String("tx_id", details.TxID))
	render.JSON(w, r, response.StatusOKWithData(details))
}
