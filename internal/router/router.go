package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/dentika/clinic-api/internal/handler/health"
	"github.com/dentika/clinic-api/internal/middleware"
	"github.com/dentika/clinic-api/pkg/logger"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine *gin.Engine
	cache  *middleware.ResponseCache

	healthH      *health.Handler
	userH        Handler
	patientH     Handler
	treatmentH   Handler
	courseH      Handler
	appointmentH Handler
	imageH       Handler

	metrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type Config struct {
	RateLimit     rate.Limit
	RateBurst     int
	Timeout       time.Duration
	CacheTTL      time.Duration
	CacheCleanup  time.Duration
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
}

func NewRouter(
	config Config,
	log *logger.Logger,
	healthH *health.Handler,
	userH Handler,
	patientH Handler,
	treatmentH Handler,
	courseH Handler,
	appointmentH Handler,
	imageH Handler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:       engine,
		cache:        middleware.NewResponseCache(config.CacheTTL, config.CacheCleanup),
		healthH:      healthH,
		userH:        userH,
		patientH:     patientH,
		treatmentH:   treatmentH,
		courseH:      courseH,
		appointmentH: appointmentH,
		imageH:       imageH,
		metrics:      initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.ErrorHandler(log),
		r.metricsMiddleware(),
		middleware.Timeout(config.Timeout),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
		middleware.CORS(config.CORSConfig),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

// Setup mounts every route. Each resource group runs behind its own
// response-cache partition; groups whose mutations touch another
// resource's listings flush that partition too.
func (r *Router) Setup() {
	r.healthH.RegisterRoutes(r.engine.Group(""))
	r.engine.GET("/metrics", r.healthH.MetricsHandler)

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.userH.RegisterRoutes(api.Group("", r.cache.Middleware("users")))
	r.patientH.RegisterRoutes(api.Group("", r.cache.Middleware("patients")))
	r.treatmentH.RegisterRoutes(api.Group("", r.cache.Middleware("treatments")))

	// course and image mutations change what the patient views show
	r.courseH.RegisterRoutes(api.Group("", r.cache.Middleware("patient-treatments", "patients")))
	r.imageH.RegisterRoutes(api.Group("", r.cache.Middleware("images", "patients")))

	r.appointmentH.RegisterRoutes(api.Group("", r.cache.Middleware("appointments")))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
