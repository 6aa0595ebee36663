package router

import (
	_ "github.com/erp/stockscan/docs"
	"github.com/erp/stockscan/internal/infrastructure/auth"
	"github.com/erp/stockscan/internal/infrastructure/config"
	"github.com/erp/stockscan/internal/infrastructure/logger"
	"github.com/erp/stockscan/internal/interfaces/http/handler"
	"github.com/erp/stockscan/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers groups the API handlers mounted by NewEngine
type Handlers struct {
	Scan          *handler.ScanHandler
	Configuration *handler.ConfigurationHandler
	System        *handler.SystemHandler
}

// EngineConfig holds what NewEngine needs besides the handlers
type EngineConfig struct {
	HTTP        config.HTTPConfig
	Tracing     middleware.TracingConfig
	Meter       metric.Meter
	Logger      *zap.Logger
	ReleaseMode bool

	// Auth protects the API routes when set. /health stays public.
	Auth *auth.JWTService
	// Profiling labels request goroutines for Pyroscope.
	Profiling bool
	// Swagger guards /swagger; the route answers 404 unless enabled.
	Swagger middleware.SwaggerConfig
}

// NewEngine builds the gin engine with the middleware chain and every API
// route mounted. Middleware order matters: RequestID runs before tracing and
// logging so both carry the request_id.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(cfg.Tracing),
		middleware.SpanAttributes(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(cfg.Meter),
		middleware.Profiling(cfg.Profiling),
		middleware.Secure(),
		middleware.CORS(cors),
	)
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	var swaggerAuth gin.HandlerFunc
	if cfg.Auth != nil {
		swaggerAuth = middleware.JWTAuth(cfg.Auth)
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, swaggerAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	authenticated := func(g *DomainGroup) *DomainGroup {
		if cfg.Auth != nil {
			g.Use(middleware.JWTAuth(cfg.Auth))
		}
		return g
	}
	scoped := func(scope string, next gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.Auth == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{middleware.RequireScope(scope), next}
	}

	api := NewAPI("v1")
	if h.Scan != nil {
		api.Add(authenticated(NewDomainGroup("/shipments")).
			POST("/:id/scan", scoped(auth.ScopeScan, h.Scan.Scan)...).
			GET("/:id/moves", scoped(auth.ScopeScan, h.Scan.Moves)...).
			GET("/:id/pending-moves", scoped(auth.ScopeScan, h.Scan.PendingMoves)...))
	}
	if h.Configuration != nil {
		api.Add(authenticated(NewDomainGroup("/scanner")).
			GET("/configuration", scoped(auth.ScopeScan, h.Configuration.Get)...).
			PUT("/configuration", scoped(auth.ScopeConfigure, h.Configuration.Update)...))
	}
	if h.System != nil {
		api.Add(NewDomainGroup("/system").GET("/info", h.System.GetSystemInfo))
	}
	api.Mount(engine)

	return engine, nil
}
