// Package subscriptionpayments предоставляет маршруты приложения.
package subscriptionpayments

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-payments/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/subscription-payments/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/subscription-payments/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-payments/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/subscription-payments/internal/http/handlers/payment/paymentexecute"
	"github.com/magabrotheeeer/subscription-payments/internal/http/handlers/payment/paymentstatus"
	"github.com/magabrotheeeer/subscription-payments/internal/http/handlers/plan/list"
	"github.com/magabrotheeeer/subscription-payments/internal/http/handlers/plan/my"
	"github.com/magabrotheeeer/subscription-payments/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/subscription-payments/internal/services/auth"
	paymentservice "github.com/magabrotheeeer/subscription-payments/internal/services/payment"
	planservice "github.com/magabrotheeeer/subscription-payments/internal/services/plan"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authSvc *authservice.AuthService, planSvc *planservice.PlanService, paymentSvc *paymentservice.PaymentService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authSvc).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authSvc).ServeHTTP)
		r.Get("/plans", list.New(logger, planSvc).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authSvc, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/payment/create", paymentcreate.New(logger, paymentSvc, planSvc).ServeHTTP)
			r.Post("/payment/execute", paymentexecute.New(logger, paymentSvc).ServeHTTP)
			r.Get("/payment/status/{paymentID}", paymentstatus.New(logger, paymentSvc).ServeHTTP)
			r.Get("/user/subscriptions", my.New(logger, planSvc).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
