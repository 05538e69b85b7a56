package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/riskboard/internal/application/dto"
	"github.com/turtacn/riskboard/internal/config"
	"github.com/turtacn/riskboard/internal/interfaces/http/handlers"
	"github.com/turtacn/riskboard/internal/interfaces/http/middleware"
	"github.com/turtacn/riskboard/pkg/constants"
	apperrors "github.com/turtacn/riskboard/pkg/errors"
	"github.com/turtacn/riskboard/pkg/logger"
)

const etagMaxAge = time.Minute

// Handlers groups the endpoint handlers mounted by the router.
type Handlers struct {
	Health   *handlers.HealthHandler
	Datasets *handlers.DatasetHandler
	Risk     *handlers.RiskHandler
	Insights *handlers.InsightsHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	config   *config.Config
	logger   logger.Logger
	handlers Handlers
	tracer   trace.Tracer
	recorder middleware.HTTPRecorder
	gatherer prometheus.Gatherer
	server   *http.Server
}

// NewRouter 创建路由器
// A nil gatherer serves the default prometheus registry.
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	h Handlers,
	tracer trace.Tracer,
	recorder middleware.HTTPRecorder,
	gatherer prometheus.Gatherer,
) *Router {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := &Router{
		engine:   gin.New(),
		config:   cfg,
		logger:   log.WithComponent("http"),
		handlers: h,
		tracer:   tracer,
		recorder: recorder,
		gatherer: gatherer,
	}
	r.setupRoutes()
	return r
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 全局中间件
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Observability(r.tracer, r.recorder))
	r.engine.Use(middleware.Logging(r.logger))

	// CORS 配置
	r.engine.Use(cors.New(corsConfig(r.config.Server.AllowedOrigins)))

	// 健康检查路由
	r.engine.GET("/health", r.handlers.Health.HealthCheck)
	r.engine.GET("/ready", r.handlers.Health.ReadinessCheck)
	r.engine.GET("/live", r.handlers.Health.LivenessCheck)

	// Prometheus metrics
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	// Pprof 性能分析（仅在非生产环境）
	if r.config.Server.Environment != "production" {
		pprof.Register(r.engine)
	}

	// API 路由组
	v1 := r.engine.Group("/api/v1")
	{
		datasets := v1.Group("/datasets", middleware.ETagCache(etagMaxAge))
		{
			datasets.GET("", r.handlers.Datasets.ListDatasets)
			datasets.GET("/:name", r.handlers.Datasets.PreviewDataset)
			datasets.GET("/:name/export", r.handlers.Datasets.ExportDataset)
		}

		risk := v1.Group("/risk")
		{
			risk.POST("/score", r.handlers.Risk.ScoreUpload)
			risk.POST("/score/export", r.handlers.Risk.ExportUpload)
			risk.GET("/sample", r.handlers.Risk.ScoreSample)
			risk.GET("/profiles", r.handlers.Risk.RiskProfiles)
		}

		v1.GET("/geographic", r.handlers.Insights.Geographic)
		v1.GET("/recommendations", r.handlers.Insights.Recommendations)
		v1.GET("/charts/:chart", middleware.ETagCache(etagMaxAge), r.handlers.Insights.Chart)
	}

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		err := apperrors.NewError(constants.ErrCodeNotFound, http.StatusNotFound,
			"The requested resource was not found", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, dto.ErrorResponse(err, c.GetString(string(constants.ContextKeyTraceID))))
	})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", constants.HeaderRequestID, "If-None-Match"},
		ExposeHeaders: []string{constants.HeaderRequestID, "ETag", "Content-Disposition", "X-Cache"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Engine exposes the gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (r *Router) Run(ctx context.Context) error {
	r.server = &http.Server{
		Addr:              r.config.Server.Address(),
		Handler:           r.engine,
		ReadTimeout:       time.Duration(r.config.Server.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(r.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(r.config.Server.IdleTimeout) * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info(ctx, "Starting HTTP server", logger.Fields{"address": r.server.Addr})
		if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	r.logger.Info(context.Background(), "Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer cancel()
	if err := r.server.Shutdown(shutdownCtx); err != nil {
		r.logger.Error(shutdownCtx, "Server forced to shutdown", err)
		return err
	}
	r.logger.Info(shutdownCtx, "HTTP server stopped")
	return nil
}
