// Package start реализует HTTP-обработчик начала покупки тарифного плана.
//
// Handler проверяет достаточность средств и создаёт сессию покупки в
// состоянии form. Нехватка средств возвращается структурированной ошибкой
// с требуемой суммой, балансом и дефицитом.
package start

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

// Handler обрабатывает HTTP-запросы начала покупки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики начала покупки.
type Service interface {
	Start(ctx context.Context, username, planID string) (*models.PurchaseSession, error)
}

// New создает новый Handler начала покупки.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Начать покупку плана
// @Description Создает сессию покупки в состоянии form. При нехватке средств возвращает дефицит.
// @Tags Purchase
// @Accept  json
// @Produce  json
// @Param request body models.DummyPurchaseStart true "План для покупки"
// @Success 200 {object} map[string]any "Сессия покупки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Недостаточно средств"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /purchase/start [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.start"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPurchaseStart
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

	session, err := h.service.Start(r.Context(), username, req.PlanID)
	if err != nil {
		var insufErr *purchase.InsufficientFundsError
		switch {
		case errors.As(err, &insufErr):
			log.Info("insufficient funds", slog.Float64("deficit", insufErr.DeficitUSD))
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.ErrorWithData("insufficient funds", insufErr.InsufficientFunds))
		case errors.Is(err, purchase.ErrPlanNotFound):
			log.Error("plan not found", slog.String("plan_id", req.PlanID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("plan not found"))
		default:
			log.Error("failed to start purchase", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not start purchase"))
		}
		return
	}

	log.Info("purchase started", slog.String("plan_id", req.PlanID))
	render.JSON(w, r, response.StatusOKWithData(session))
}
