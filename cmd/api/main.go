package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinichq/booking-api/internal/config"
	"github.com/clinichq/booking-api/internal/email"
	adminHandler "github.com/clinichq/booking-api/internal/handler/admin"
	appointmentHandler "github.com/clinichq/booking-api/internal/handler/appointment"
	authHandler "github.com/clinichq/booking-api/internal/handler/auth"
	doctorHandler "github.com/clinichq/booking-api/internal/handler/doctor"
	patientHandler "github.com/clinichq/booking-api/internal/handler/patient"
	paymentHandler "github.com/clinichq/booking-api/internal/handler/payment"
	"github.com/clinichq/booking-api/internal/middleware"
	"github.com/clinichq/booking-api/internal/repository/postgres"
	"github.com/clinichq/booking-api/internal/router"
	authService "github.com/clinichq/booking-api/internal/service/auth"
	bookingService "github.com/clinichq/booking-api/internal/service/booking"
	doctorService "github.com/clinichq/booking-api/internal/service/doctor"
	patientService "github.com/clinichq/booking-api/internal/service/patient"
	paymentService "github.com/clinichq/booking-api/internal/service/payment"
	"github.com/clinichq/booking-api/pkg/auth"
	"github.com/clinichq/booking-api/pkg/logger"
	"github.com/clinichq/booking-api/pkg/media"
	"github.com/clinichq/booking-api/pkg/metrics"
	"github.com/clinichq/booking-api/pkg/payment"
	"github.com/clinichq/booking-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || cfg.Logging.Level == "" {
		level = logger.InfoLevel
	}
	log.Logger = *logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Logging.Pretty,
	}).Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var cache *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse redis URL")
		}
		cache = redis.NewClient(opts)
		defer cache.Close()
	}

	uploader, err := media.NewCloudinaryUploader(media.Config{
		CloudName: cfg.Secrets.CloudinaryCloudName,
		APIKey:    cfg.Secrets.CloudinaryAPIKey,
		APISecret: cfg.Secrets.CloudinaryAPISecret,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init media uploader")
	}

	var emailSvc email.Service
	if cfg.Secrets.SMTPHost != "" {
		emailSvc = email.NewSMTPService(email.Config{
			Host:     cfg.Secrets.SMTPHost,
			Port:     cfg.Secrets.SMTPPort,
			User:     cfg.Secrets.SMTPUser,
			Password: cfg.Secrets.SMTPPassword,
			From:     cfg.Secrets.SMTPFrom,
		})
	} else {
		log.Warn().Msg("SMTP not configured, notification emails disabled")
		emailSvc = email.NewNoopService()
	}

	gateway := payment.NewRazorpayGateway(payment.Config{
		KeyID:         cfg.Secrets.RazorpayKeyID,
		KeySecret:     cfg.Secrets.RazorpayKeySecret,
		WebhookSecret: cfg.Secrets.RazorpayWebhookSecret,
		Currency:      cfg.Booking.Currency,
	})

	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	slotRepo := postgres.NewSlotRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	orderRepo := postgres.NewOrderRepository(db)

	jwtSvc := auth.NewJWTService(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour,
		cfg.JWT.Issuer,
	)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	m := metrics.NewMetrics("booking_api")

	authSvc := authService.NewService(patientRepo, doctorRepo, jwtSvc, hasher, cfg.Admin)
	doctorSvc := doctorService.NewService(doctorRepo, slotRepo, hasher, uploader, cache, cfg.Redis.CacheTTL)
	patientSvc := patientService.NewService(patientRepo, uploader)
	bookingSvc := bookingService.NewService(appointmentRepo, doctorRepo, patientRepo, slotRepo, emailSvc, m, cfg.Booking.StrictLifecycle)
	paymentSvc := paymentService.NewService(appointmentRepo, orderRepo, gateway, m, cfg.Booking.StrictLifecycle, cfg.Booking.CallbackURL)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		authMiddleware,
		db,
		authHandler.NewHandler(authSvc),
		doctorHandler.NewHandler(doctorSvc, bookingSvc),
		appointmentHandler.NewHandler(bookingSvc),
		patientHandler.NewHandler(patientSvc),
		paymentHandler.NewHandler(paymentSvc),
		adminHandler.NewHandler(doctorSvc, bookingSvc),
		router.Config{
			RequestTimeout: cfg.Server.RequestTimeout,
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
			CORS:           middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
