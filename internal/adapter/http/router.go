package http

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ict-ticketing/internal/adapter/middleware"
	"ict-ticketing/internal/domain/user"
	"ict-ticketing/internal/infrastructure/metrics"
	"ict-ticketing/internal/usecase/auth"
	"ict-ticketing/internal/usecase/inventory"
	"ict-ticketing/internal/usecase/ticket"
	"ict-ticketing/pkg/id"
)

type RouterDeps struct {
	Auth      *auth.Usecase
	Inventory *inventory.Usecase
	Tickets   *ticket.Usecase

	// nil disables Idempotency-Key replay
	Redis          *redis.Client
	IdempotencyTTL time.Duration

	Metrics *metrics.Metrics
	Log     *zap.Logger

	// optional dependency probes for GET /health
	HealthChecks map[string]HealthCheck
}

func NewRouter(d RouterDeps) *echo.Echo {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: id.NewID32}))
	e.Use(middleware.RequestLogger(log))
	// metrics sit outside Recover so recovered panics are counted as 500s
	if d.Metrics != nil {
		e.Use(d.Metrics.EchoMiddleware())
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}
	e.Use(echomw.Recover())

	e.GET("/health", NewHealthHandler(d.HealthChecks, log.Named("health")).Health)

	api := e.Group("/api")
	authn := middleware.Authenticate(d.Auth, log)
	approverOnly := middleware.RequireRole(user.RoleApprover)
	adminOnly := middleware.RequireRole(user.RoleAdmin)

	ah := NewAuthHandler(d.Auth, log)
	authG := api.Group("/auth")
	authG.POST("/signup", ah.Signup)
	authG.POST("/token", ah.Token)
	authG.GET("/me", ah.Me, authn)

	ih := NewInventoryHandler(d.Inventory, log)
	inv := api.Group("/inventory", authn)
	inv.GET("", ih.List)
	inv.POST("", ih.Add, adminOnly)
	inv.PATCH("/:device_id/status", ih.SetStatus, adminOnly)
	inv.DELETE("/:device_id", ih.Delete, adminOnly)

	rh := NewRequestHandler(d.Tickets, log)
	req := api.Group("/requests", authn)
	req.POST("", rh.Submit, middleware.Idempotency(d.Redis, d.IdempotencyTTL, log))
	req.GET("/me", rh.ListMine)
	req.GET("/pending", rh.ListPending, approverOnly)
	req.POST("/:id/approve", rh.Approve, approverOnly)
	req.POST("/:id/reject", rh.Reject, approverOnly)
	req.POST("/:id/issue", rh.Issue, adminOnly)

	return e
}
