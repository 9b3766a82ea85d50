// Package portal предоставляет маршруты REST API портала.
package portal

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/kunalverma25/wifi-portal/internal/http/handlers/auth/forgotpassword"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/auth/login"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/auth/profile"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/auth/register"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/auth/resetpassword"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/auth/sendotp"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/auth/verifyemail"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/auth/verifyotp"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/health"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/notification/notificationcreate"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/notification/notificationlist"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/notification/notificationmarkall"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/notification/notificationmarkread"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/notification/notificationremove"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/payment/paymentapprove"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/payment/paymentcreate"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/payment/paymentlist"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/payment/paymentreject"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/payment/paymentremove"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/payment/paymentstats"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/payment/paymentupcoming"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/plan/planactive"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/plan/plancreate"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/plan/planlist"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/plan/planremove"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/plan/planupdate"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/upload/screenshot"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/user/userlist"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/user/userremove"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/user/userstats"
	"github.com/kunalverma25/wifi-portal/internal/http/handlers/user/userstatus"
	"github.com/kunalverma25/wifi-portal/internal/http/middlewarectx"
	"github.com/kunalverma25/wifi-portal/internal/lib/jwt"
	authservice "github.com/kunalverma25/wifi-portal/internal/services/auth"
	notificationservice "github.com/kunalverma25/wifi-portal/internal/services/notification"
	paymentservice "github.com/kunalverma25/wifi-portal/internal/services/payment"
	planservice "github.com/kunalverma25/wifi-portal/internal/services/plan"
	userservice "github.com/kunalverma25/wifi-portal/internal/services/user"
	"github.com/kunalverma25/wifi-portal/internal/storage/objectstore"
	"github.com/kunalverma25/wifi-portal/internal/storage/repository"
)

// Services собирает зависимости, необходимые маршрутам портала.
type Services struct {
	Auth         *authservice.Service
	Payment      *paymentservice.Service
	User         *userservice.Service
	Notification *notificationservice.Service
	Plan         *planservice.Service
	Uploads      *objectstore.Store
	Storage      *repository.Storage
	JWTMaker     jwt.Maker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/send-otp", sendotp.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/verify-otp", verifyotp.New(logger, s.Auth).ServeHTTP)
		r.Get("/auth/verify-email", verifyemail.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/forgot-password", forgotpassword.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/reset-password", resetpassword.New(logger, s.Auth).ServeHTTP)
		r.Get("/payment-plans/active", planactive.New(logger, s.Plan).ServeHTTP)
		r.Get("/health", health.New(logger, s.Storage).ServeHTTP)

		// Группа с JWT аутентификацией. Профиль доступен и неактивному
		// аккаунту: клиент опрашивает его, чтобы заметить деактивацию.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWTMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/auth/profile", profile.New(logger, s.Auth).ServeHTTP)
		})

		// Группа для активных аккаунтов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWTMaker, logger))
			r.Use(middlewarectx.AccountStatusMiddleware(logger, s.Auth))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/payments", paymentcreate.New(logger, s.Payment).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, s.Payment).ServeHTTP)
			r.Get("/payments/stats", paymentstats.New(logger, s.Payment).ServeHTTP)
			r.Post("/uploads/payment-screenshot", screenshot.New(logger, s.Uploads).ServeHTTP)

			r.Get("/notifications", notificationlist.New(logger, s.Notification).ServeHTTP)
			r.Post("/notifications/{id}/read", notificationmarkread.New(logger, s.Notification).ServeHTTP)
			r.Post("/notifications/read-all", notificationmarkall.New(logger, s.Notification).ServeHTTP)
			r.Delete("/notifications/{id}", notificationremove.New(logger, s.Notification).ServeHTTP)
		})

		// Группа административных маршрутов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWTMaker, logger))
			r.Use(middlewarectx.AccountStatusMiddleware(logger, s.Auth))
			r.Use(middlewarectx.AdminOnlyMiddleware(logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/users", userlist.New(logger, s.User).ServeHTTP)
			r.Get("/users/stats", userstats.New(logger, s.User).ServeHTTP)
			r.Patch("/users/{uid}/status", userstatus.New(logger, s.User).ServeHTTP)
			r.Delete("/users/{uid}", userremove.New(logger, s.User).ServeHTTP)

			r.Post("/payments/{id}/approve", paymentapprove.New(logger, s.Payment).ServeHTTP)
			r.Post("/payments/{id}/reject", paymentreject.New(logger, s.Payment).ServeHTTP)
			r.Delete("/payments/{id}", paymentremove.New(logger, s.Payment).ServeHTTP)
			r.Get("/payments/upcoming", paymentupcoming.New(logger, s.Payment).ServeHTTP)

			r.Post("/notifications", notificationcreate.New(logger, s.Notification).ServeHTTP)

			r.Post("/payment-plans", plancreate.New(logger, s.Plan).ServeHTTP)
			r.Get("/payment-plans", planlist.New(logger, s.Plan).ServeHTTP)
			r.Put("/payment-plans/{id}", planupdate.New(logger, s.Plan).ServeHTTP)
			r.Delete("/payment-plans/{id}", planremove.New(logger, s.Plan).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
