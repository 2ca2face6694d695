// Package respondticket реализует HTTP-обработчик ответа администратора на
// обращение в поддержку.
package respondticket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/warrenposo/cloudmining-backend/internal/http/response"
	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/models"
	"github.com/warrenposo/cloudmining-backend/internal/services/ticket"
)

// Handler обрабатывает HTTP-запросы ответа на обращение.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики ответа на обращение.
type Service interface {
	Respond(ctx context.Context, id int, req models.DummyTicketResponse) error
}

// New создает новый Handler ответа на обращение.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Ответить на обращение
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор обращения"
// @Param request body models.DummyTicketResponse true "Ответ и новый статус"
// @Success 200 {object} map[string]any "Ответ сохранён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Обращение не найдено"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/tickets/{id}/respond [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.respondticket"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		log.Error("invalid ticket id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid ticket id"))
		return
	}

	var req models.DummyTicketResponse
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

	if err := h.service.Respond(r.Context(), id, req); err != nil {
		if errors.Is(err, ticket.ErrTicketNotFound) {
			log.Error("ticket not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("ticket not found"))
			return
		}
		log.Error("failed to respond ticket", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not respond ticket"))
		return
	}

	log.Info("ticket answered", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id": id,
	}))
}
