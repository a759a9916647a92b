package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/booknest/booknest-server/internal/handlers"
	"github.com/booknest/booknest-server/internal/mailer"
	"github.com/booknest/booknest-server/internal/oauth"
	"github.com/booknest/booknest-server/internal/repository"
	"github.com/booknest/booknest-server/internal/service"
	"github.com/booknest/booknest-server/pkg/config"
	"github.com/booknest/booknest-server/pkg/database"
	"github.com/booknest/booknest-server/pkg/events"
	"github.com/booknest/booknest-server/pkg/logger"
	mw "github.com/booknest/booknest-server/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var rateLimiter repository.OTPRateLimiter = repository.NoopRateLimiter{}
	if opts, err := redis.ParseURL(cfg.Redis.URL); err == nil {
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, OTP throttling disabled", "error", err)
		} else {
			rateLimiter = repository.NewOTPRateLimiter(redisClient)
			defer redisClient.Close()
		}
	} else {
		logger.Warn("Invalid redis URL, OTP throttling disabled", "error", err)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if bus, err := events.NewNATSPublisher(cfg.NATS.URL); err != nil {
		logger.Warn("NATS unavailable, events disabled", "error", err)
	} else {
		publisher = bus
		defer bus.Close()
	}

	userRepo := repository.NewUserRepository(pool)
	bookRepo := repository.NewBookRepository(pool)

	mailService := buildMailer(cfg)

	authService := service.NewAuthService(userRepo, rateLimiter, mailService, publisher, cfg)
	bookService := service.NewBookService(bookRepo)
	google := oauth.NewGoogleProvider(cfg.Google)

	h := handlers.New(authService, bookService, google, cfg)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("booknest-api"))
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Frontend.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/send-otp", h.SendOTP)
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(h.RequireJWT()).Get("/me", h.Me)
			r.Get("/google", h.GoogleLogin)
			r.Get("/google/callback", h.GoogleCallback)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", h.ListBooks)
			r.Get("/{id}", h.GetBook)
			r.With(h.RequireJWT("seller")).Post("/", h.CreateBook)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func buildMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		return mailer.NewDevMailer()
	}
	if cfg.Email.MailerSendKey != "" {
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}
	return mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
}
