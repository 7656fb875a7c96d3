package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cityhealth/clinic-api/internal/api/handler"
	"github.com/cityhealth/clinic-api/internal/api/middleware"
	"github.com/cityhealth/clinic-api/internal/core/domain"
	"github.com/cityhealth/clinic-api/internal/core/ports"
	"github.com/cityhealth/clinic-api/internal/core/service"
	"github.com/cityhealth/clinic-api/internal/core/session"
	"github.com/cityhealth/clinic-api/internal/infrastructure/config"
	mongodb "github.com/cityhealth/clinic-api/internal/infrastructure/db/mongo"
	redisdb "github.com/cityhealth/clinic-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger, security ports.SecurityRecorder) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	loc, err := cfg.FacilityLocation()
	if err != nil {
		return nil, err
	}

	// --- Dependencies ---
	issuer := session.NewIssuer(cfg.SessionSecret, cfg.SessionTTL)
	reader := session.NewReader(cfg.SessionSecret)

	userRepo := mongodb.NewUserRepository(db)
	encounterRepo := mongodb.NewEncounterRepository(db)
	throttle := redisdb.NewLoginThrottle(rdb)

	authService := service.NewAuthService(userRepo, issuer, throttle, log)
	encounterService := service.NewEncounterService(encounterRepo, loc, log)

	cookie := handler.CookieSettings{Name: cfg.CookieName, TTL: issuer.TTL(), Secure: cfg.CookieSecure}
	authHandler := handler.NewAuthHandler(authService, cookie, security)
	encounterHandler := handler.NewEncounterHandler(encounterService)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("clinic"))
	e.Use(middleware.Gateway(middleware.GatewayConfig{
		Reader:     reader,
		CookieName: cfg.CookieName,
		Secure:     cfg.CookieSecure,
		Security:   security,
	}))

	// --- Auth entry points ---
	e.POST("/api/v1/auth/login", authHandler.Login)
	e.POST("/api/v1/auth/logout", authHandler.Logout)

	// --- Encounter entry points (session + role gated) ---
	v1 := e.Group("/api/v1", middleware.RequireSession(reader, cfg.CookieName, cfg.CookieSecure))
	v1.POST("/encounters", encounterHandler.Create, middleware.RBAC(domain.RoleRegistration))
	v1.POST("/encounters/:id/triage", encounterHandler.CompleteTriage, middleware.RBAC(domain.RoleTriage, domain.RoleAdmin))
	v1.POST("/encounters/:id/consultation/start", encounterHandler.StartConsultation, middleware.RBAC(domain.RoleDoctor))
	v1.PUT("/encounters/:id/consultation", encounterHandler.SaveConsultation, middleware.RBAC(domain.RoleDoctor))

	// --- Navigation placeholders for the gateway's redirect targets ---
	e.GET("/login", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"page": "login"})
	})
	e.GET("/denied", func(c echo.Context) error {
		return c.JSON(http.StatusForbidden, map[string]string{"page": "denied"})
	})

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e, nil
}
