// Package api предоставляет маршруты основного приложения.
package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/account/dashboard"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/account/depositcreate"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/account/depositlist"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/account/planlist"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/account/withdrawcreate"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/account/withdrawlist"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/admin/confirmdeposit"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/admin/overview"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/admin/respondticket"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/admin/updatestat"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/auth/login"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/auth/register"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/health"
	planlistpublic "github.com/warrenposo/cloudmining-backend/internal/http/handlers/plan/list"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/purchase/confirm"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/purchase/gateway"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/purchase/restart"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/purchase/start"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/purchase/submit"
	"github.com/warrenposo/cloudmining-backend/internal/http/handlers/ticket/create"
	ticketlist "github.com/warrenposo/cloudmining-backend/internal/http/handlers/ticket/list"
	"github.com/warrenposo/cloudmining-backend/internal/http/middlewarectx"
	"github.com/warrenposo/cloudmining-backend/internal/pricefeed"
	accountservice "github.com/warrenposo/cloudmining-backend/internal/services/account"
	adminservice "github.com/warrenposo/cloudmining-backend/internal/services/admin"
	authservice "github.com/warrenposo/cloudmining-backend/internal/services/auth"
	purchaseservice "github.com/warrenposo/cloudmining-backend/internal/services/purchase"
	ticketservice "github.com/warrenposo/cloudmining-backend/internal/services/ticket"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authSrv *authservice.AuthService,
	purchaseSrv *purchaseservice.Service, accountSrv *accountservice.Service,
	ticketSrv *ticketservice.Service, adminSrv *adminservice.Service, prices *pricefeed.Client) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger).ServeHTTP)
		r.Post("/register", register.New(logger, authSrv).ServeHTTP)
		r.Post("/login", login.New(logger, authSrv).ServeHTTP)
		r.Get("/plans", planlistpublic.New(logger, prices).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authSrv, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/purchase/start", start.New(logger, purchaseSrv).ServeHTTP)
			r.Post("/purchase/gateway", gateway.New(logger, purchaseSrv).ServeHTTP)
			r.Post("/purchase/submit", submit.New(logger, purchaseSrv).ServeHTTP)
			r.Post("/purchase/confirm", confirm.New(logger, purchaseSrv).ServeHTTP)
			r.Post("/purchase/restart", restart.New(logger, purchaseSrv).ServeHTTP)

			r.Get("/dashboard", dashboard.New(logger, accountSrv).ServeHTTP)
			r.Post("/deposits", depositcreate.New(logger, accountSrv).ServeHTTP)
			r.Get("/deposits", depositlist.New(logger, accountSrv).ServeHTTP)
			r.Post("/withdrawals", withdrawcreate.New(logger, accountSrv).ServeHTTP)
			r.Get("/withdrawals", withdrawlist.New(logger, accountSrv).ServeHTTP)
			r.Get("/account/plans", planlist.New(logger, accountSrv).ServeHTTP)

			r.Post("/tickets", create.New(logger, ticketSrv).ServeHTTP)
			r.Get("/tickets", ticketlist.New(logger, ticketSrv).ServeHTTP)

			// Административная консоль
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Get("/admin/{resource}", overview.New(logger, adminSrv).ServeHTTP)
				r.Post("/admin/deposits/{txID}/confirm", confirmdeposit.New(logger, adminSrv).ServeHTTP)
				r.Post("/admin/tickets/{id}/respond", respondticket.New(logger, ticketSrv).ServeHTTP)
				r.Post("/admin/stats", updatestat.New(logger, adminSrv).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
