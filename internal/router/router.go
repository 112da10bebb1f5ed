package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clinichq/booking-api/internal/handler"
	adminHandler "github.com/clinichq/booking-api/internal/handler/admin"
	appointmentHandler "github.com/clinichq/booking-api/internal/handler/appointment"
	authHandler "github.com/clinichq/booking-api/internal/handler/auth"
	doctorHandler "github.com/clinichq/booking-api/internal/handler/doctor"
	patientHandler "github.com/clinichq/booking-api/internal/handler/patient"
	paymentHandler "github.com/clinichq/booking-api/internal/handler/payment"
	"github.com/clinichq/booking-api/internal/middleware"
	"github.com/clinichq/booking-api/internal/model"
)

type Config struct {
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	CORS           middleware.CORSConfig
}

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	db           *sqlx.DB
	authH        *authHandler.Handler
	doctorH      *doctorHandler.Handler
	appointmentH *appointmentHandler.Handler
	patientH     *patientHandler.Handler
	paymentH     *paymentHandler.Handler
	adminH       *adminHandler.Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	db *sqlx.DB,
	authH *authHandler.Handler,
	doctorH *doctorHandler.Handler,
	appointmentH *appointmentHandler.Handler,
	patientH *patientHandler.Handler,
	paymentH *paymentHandler.Handler,
	adminH *adminHandler.Handler,
	cfg Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: cfg.RequestTimeout}),
		middleware.CORS(cfg.CORS),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   cfg.RateLimitRPS,
		Burst: cfg.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return &Router{
		engine:       engine,
		auth:         auth,
		db:           db,
		authH:        authH,
		doctorH:      doctorH,
		appointmentH: appointmentH,
		patientH:     patientH,
		paymentH:     paymentH,
		adminH:       adminH,
	}
}

func (r *Router) Setup() {
	r.engine.GET("/health", handler.Health(r.db))
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	// Public surface: auth, the doctor directory and the gateway
	// webhook, which authenticates by signature instead of a token.
	r.authH.RegisterRoutes(api)
	r.doctorH.RegisterPublicRoutes(api)
	r.paymentH.RegisterWebhook(api)

	patients := api.Group("")
	patients.Use(r.auth.Authenticate(), r.auth.RequireActor(model.ActorPatient))
	r.appointmentH.RegisterRoutes(patients)
	r.patientH.RegisterRoutes(patients)
	r.paymentH.RegisterRoutes(patients)

	doctors := api.Group("")
	doctors.Use(r.auth.Authenticate(), r.auth.RequireActor(model.ActorDoctor))
	r.doctorH.RegisterRoutes(doctors)

	admins := api.Group("")
	admins.Use(r.auth.Authenticate(), r.auth.RequireActor(model.ActorAdmin))
	r.adminH.RegisterRoutes(admins)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
