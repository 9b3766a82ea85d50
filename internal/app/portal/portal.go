// Package portal собирает REST-приложение портала: хранилище, кеш,
// брокер сообщений, объектное хранилище, сервисы и HTTP-сервер.
package portal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/kunalverma25/wifi-portal/internal/cache"
	"github.com/kunalverma25/wifi-portal/internal/config"
	"github.com/kunalverma25/wifi-portal/internal/lib/jwt"
	"github.com/kunalverma25/wifi-portal/internal/migrations"
	"github.com/kunalverma25/wifi-portal/internal/rabbitmq"
	authservice "github.com/kunalverma25/wifi-portal/internal/services/auth"
	notificationservice "github.com/kunalverma25/wifi-portal/internal/services/notification"
	paymentservice "github.com/kunalverma25/wifi-portal/internal/services/payment"
	planservice "github.com/kunalverma25/wifi-portal/internal/services/plan"
	userservice "github.com/kunalverma25/wifi-portal/internal/services/user"
	"github.com/kunalverma25/wifi-portal/internal/storage/objectstore"
	"github.com/kunalverma25/wifi-portal/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер портала и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New создаёт приложение портала: подключает базу, применяет миграции,
// инициализирует кеш, брокер, объектное хранилище и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Queues)
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch)

	store, err := objectstore.New(ctx, cfg.ObjectStore)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, cacheRedis, publisher, jwtMaker, logger, cfg.OTPTTL, cfg.ResetTokenTTL)
	paymentService := paymentservice.New(db, db, db, db, store, publisher, logger)
	userService := userservice.New(db, db, db, publisher, logger)
	notificationService := notificationservice.New(db, logger)
	planService := planservice.New(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:         authService,
		Payment:      paymentService,
		User:         userService,
		Notification: notificationService,
		Plan:         planService,
		Uploads:      store,
		Storage:      db,
		JWTMaker:     jwtMaker,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   conn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
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
		_ = a.amqp.Close()
		_ = a.db.DB.Close()
		return err
	}
}
