package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-console/internal/handler"
	"github.com/jwalitptl/clinic-console/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-console/internal/middleware"
)

type Router struct {
	engine  *gin.Engine
	h       *handler.Handler
	metrics *prometheus.Handler
}

type RouterConfig struct {
	CORSConfig     middleware.CORSConfig
	RequestTimeout time.Duration
	Logger         zerolog.Logger
	// Debug keeps gin in debug mode.
	Debug bool
}

func NewRouter(h *handler.Handler, metrics *prometheus.Handler, config RouterConfig) *Router {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New() // Use New() instead of Default() for more control

	r := &Router{
		engine:  engine,
		h:       h,
		metrics: metrics,
	}

	// RequestID first: the logger and recovery read the logger it attaches.
	engine.Use(
		middleware.RequestID(config.Logger),
		middleware.Recovery(),
		middleware.Logger(),
		metrics.Middleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
		middleware.CORS(config.CORSConfig),
	)

	return r
}

func (r *Router) Setup() {
	r.h.RegisterHealth(r.engine)
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.h.RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
