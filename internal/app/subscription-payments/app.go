// Package subscriptionpayments собирает приложение: хранилище, миграции,
// кеш, RabbitMQ, клиент шлюза, сервисы и HTTP-сервер.
package subscriptionpayments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-payments/internal/bkash"
	"github.com/magabrotheeeer/subscription-payments/internal/cache"
	"github.com/magabrotheeeer/subscription-payments/internal/config"
	"github.com/magabrotheeeer/subscription-payments/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-payments/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-payments/internal/migrations"
	authservice "github.com/magabrotheeeer/subscription-payments/internal/services/auth"
	paymentservice "github.com/magabrotheeeer/subscription-payments/internal/services/payment"
	planservice "github.com/magabrotheeeer/subscription-payments/internal/services/plan"
	"github.com/magabrotheeeer/subscription-payments/internal/storage/repository"
)

type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitConnectionString, 5, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetPaymentQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(rabbitCh)

	gatewayClient := bkash.NewClient(bkash.Config{
		BaseURL:     cfg.Bkash.BaseURL,
		AppKey:      cfg.Bkash.AppKey,
		AppSecret:   cfg.Bkash.AppSecret,
		Username:    cfg.Bkash.Username,
		Password:    cfg.Bkash.Password,
		CallbackURL: cfg.Bkash.CallbackURL,
		Currency:    cfg.Bkash.Currency,
		Timeout:     cfg.Bkash.Timeout,
	})

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authSvc := authservice.NewAuthService(db, jwtMaker)
	planSvc := planservice.NewPlanService(db, cacheRedis, logger)
	paymentSvc := paymentservice.NewPaymentService(db, gatewayClient, publisher, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authSvc, planSvc, paymentSvc)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.rabbitConn.Close()
		_ = a.db.DB.Close()
		return err
	}
}
