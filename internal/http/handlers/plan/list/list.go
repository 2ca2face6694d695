// Package list реализует HTTP-обработчик страницы тарифных планов.
//
// Возвращает статический каталог планов с маркетинговым процентом продаж,
// платёжные шлюзы и снимок текущих цен активов. Страница публичная и не
// требует авторизации.
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/warrenposo/cloudmining-backend/internal/catalog"
	"github.com/warrenposo/cloudmining-backend/internal/http/response"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// Rates описывает источник снимка цен для витрины планов.
type Rates interface {
	Snapshot() map[string]float64
}

// Handler обрабатывает HTTP-запросы каталога планов.
type Handler struct {
	log   *slog.Logger
	rates Rates
}

// New создает новый Handler каталога планов.
func New(log *slog.Logger, rates Rates) *Handler {
	return &Handler{
		log:   log,
		rates: rates,
	}
}

type planView struct {
	models.Plan
	SoldPercent float64 `json:"sold_percent"`
}

// ServeHTTP godoc
// @Summary Каталог тарифных планов
// @Description Возвращает планы, платёжные шлюзы и снимок цен активов.
// @Tags Plans
// @Produce  json
// @Success 200 {object} map[string]any "Каталог планов"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	plans := catalog.Plans()
	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		views = append(views, planView{
			Plan:        p,
			SoldPercent: catalog.SoldPercent(p),
		})
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plans":    views,
		"gateways": catalog.Gateways(),
		"prices":   h.rates.Snapshot(),
	}))
}
