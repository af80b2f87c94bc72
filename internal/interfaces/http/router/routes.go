package router

import (
	"github.com/dormdesk/backend/internal/infrastructure/auth"
	"github.com/dormdesk/backend/internal/infrastructure/logger"
	"github.com/dormdesk/backend/internal/interfaces/http/apidoc"
	"github.com/dormdesk/backend/internal/interfaces/http/handler"
	"github.com/dormdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by New
type Handlers struct {
	Health    *handler.HealthHandler
	Buildings *handler.BuildingHandler
	Rooms     *handler.RoomHandler
	Tenants   *handler.TenantHandler
	Contracts *handler.ContractHandler
	Readings  *handler.MeterReadingHandler
	Bills     *handler.BillHandler
	Payments  *handler.PaymentHandler
	Dashboard *handler.DashboardHandler
	Events    *handler.EventStreamHandler
}

// Options configure the engine built by New
type Options struct {
	ServiceName    string
	Logger         *zap.Logger
	TokenValidator middleware.TokenValidator
	TracingEnabled bool
	// Meter records HTTP metrics when set
	Meter          metric.Meter
	CORS           middleware.CORSConfig
	MaxBodyBytes   int64
	TrustedProxies []string
	// SubmitLimiter throttles POST /me/payments per uid when set
	SubmitLimiter  *middleware.RateLimiter
	Swagger        middleware.SwaggerConfig
}

// New builds the gin engine with the middleware chain and every route of
// the API
func New(h Handlers, opts Options) (*gin.Engine, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(opts.Logger),
		logger.Recovery(opts.Logger),
		middleware.Tracing(opts.ServiceName, opts.TracingEnabled),
		middleware.SpanErrorMarker(),
		middleware.Secure(),
		middleware.CORSWithConfig(opts.CORS),
	)
	if opts.MaxBodyBytes > 0 {
		engine.Use(middleware.BodyLimit(opts.MaxBodyBytes))
	}
	if opts.Meter != nil {
		metrics, err := middleware.HTTPMetrics(opts.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(metrics)
	}

	engine.GET("/health", h.Health.Health)
	apidoc.Register(engine, middleware.SwaggerProtection(opts.Swagger,
		middleware.JWTAuthWithConfig(jwtConfig(opts))))

	r := NewRouter(engine)
	r.Register(adminRoutes(h)).
		Register(renterRoutes(h, opts.SubmitLimiter)).
		Register(streamRoutes(h))

	api := r.Setup(
		middleware.JWTAuthWithConfig(jwtConfig(opts)),
		middleware.TracingAttributeInjector(),
	)
	api.GET("/health", h.Health.Health)

	return engine, nil
}

func jwtConfig(opts Options) middleware.JWTMiddlewareConfig {
	cfg := middleware.DefaultJWTConfig(opts.TokenValidator)
	cfg.Logger = opts.Logger
	return cfg
}

// adminRoutes are the property manager's routes
func adminRoutes(h Handlers) *DomainGroup {
	admin := NewDomainGroup("admin", "").Use(middleware.RequireRole(auth.RoleAdmin))

	admin.Group("buildings", "/buildings").
		POST("", h.Buildings.Create).
		GET("", h.Buildings.List).
		GET("/:id", h.Buildings.Get).
		PUT("/:id", h.Buildings.Update).
		DELETE("/:id", h.Buildings.Delete)

	admin.Group("rooms", "/rooms").
		POST("", h.Rooms.Create).
		GET("", h.Rooms.List).
		GET("/:id", h.Rooms.Get).
		PUT("/:id", h.Rooms.Update).
		PUT("/:id/status", h.Rooms.SetStatus).
		DELETE("/:id", h.Rooms.Delete)

	admin.Group("tenants", "/tenants").
		POST("", h.Tenants.MoveIn).
		GET("", h.Tenants.List).
		GET("/:id", h.Tenants.Get).
		PUT("/:id", h.Tenants.UpdateProfile).
		POST("/:id/reassign", h.Tenants.Reassign).
		POST("/:id/move-out", h.Tenants.MoveOut)

	admin.Group("contracts", "/contracts").
		POST("", h.Contracts.Create).
		GET("", h.Contracts.List).
		GET("/:id", h.Contracts.Get).
		POST("/:id/terminate", h.Contracts.Terminate)

	admin.Group("meter-readings", "/meter-readings").
		POST("", h.Readings.Record).
		GET("", h.Readings.List).
		GET("/previous", h.Readings.Previous).
		GET("/:id", h.Readings.Get)

	admin.Group("bills", "/bills").
		POST("", h.Bills.Generate).
		GET("", h.Bills.List).
		GET("/summary", h.Bills.Summary).
		POST("/run", h.Bills.RunMonthly).
		GET("/:id", h.Bills.Get).
		POST("/:id/confirm-paid", h.Bills.ConfirmPaid)

	admin.Group("payments", "/payments").
		GET("", h.Payments.List).
		GET("/summary", h.Payments.Summary).
		GET("/:id", h.Payments.Get).
		POST("/:id/approve", h.Payments.Approve).
		POST("/:id/reject", h.Payments.Reject)

	admin.GET("/dashboard", h.Dashboard.Get)
	return admin
}

// renterRoutes are scoped to the caller's own tenancy. Admins may use them
// too and see every record.
func renterRoutes(h Handlers, limiter *middleware.RateLimiter) *DomainGroup {
	me := NewDomainGroup("me", "/me").
		Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleTenant))

	submit := []gin.HandlerFunc{h.Payments.Submit}
	if limiter != nil {
		submit = append([]gin.HandlerFunc{middleware.RateLimitByKey(limiter, middleware.KeyByUID)}, submit...)
	}

	me.GET("/bills", h.Bills.List).
		GET("/bills/:id", h.Bills.Get).
		POST("/bills/:id/slip-upload-url", h.Payments.RequestSlipUpload).
		POST("/payments", submit...).
		GET("/payments", h.Payments.List)
	return me
}

func streamRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("events", "/events").
		Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleTenant)).
		GET("/stream", h.Events.Stream)
}
