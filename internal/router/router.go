package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/config"
	"github.com/jwalitptl/dental-api/internal/handler/consent"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

const APIPrefix = "/api/v1"

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// HealthHandler mounts health checks and metrics outside authentication.
type HealthHandler interface {
	RegisterRoutes(gin.IRouter)
}

// PublicHandler mounts routes that work without a session, like sign-in.
type PublicHandler interface {
	RegisterPublicRoutes(*gin.RouterGroup)
}

type Handlers struct {
	Health HealthHandler
	Public []PublicHandler
	// Protected handlers run behind bearer authentication.
	Protected []Handler
}

type Config struct {
	Server    config.ServerConfig
	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig
}

type Router struct {
	engine   *gin.Engine
	auth     middleware.Authenticator
	handlers Handlers
}

func NewRouter(cfg Config, auth middleware.Authenticator, handlers Handlers, log *logger.Logger, m *metrics.Metrics) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.AuditClient(),
		middleware.Recovery(log),
		middleware.Logger(log, m),
		middleware.SecurityHeaders(cfg.Server.HSTS),
		middleware.CORS(cfg.CORS),
	)
	if cfg.RateLimit.Enabled {
		engine.Use(middleware.NewRateLimiter(cfg.RateLimit).RateLimit())
	}
	if cfg.Server.Timeout > 0 {
		engine.Use(middleware.Timeout(cfg.Server.Timeout))
	}
	engine.Use(middleware.BodyLimitExcept(middleware.DefaultBodyLimit, APIPrefix+consent.UploadRoute))

	return &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group(APIPrefix)

	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}

	for _, h := range r.handlers.Public {
		h.RegisterPublicRoutes(api)
	}

	protected := api.Group("")
	protected.Use(
		middleware.Authenticate(r.auth),
		middleware.Cache(middleware.PatientDataCache()),
	)
	for _, h := range r.handlers.Protected {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
