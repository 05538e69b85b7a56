// Package server assembles the dashboard API from configuration.
package server

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	appservice "github.com/turtacn/riskboard/internal/application/service"
	"github.com/turtacn/riskboard/internal/config"
	domainservice "github.com/turtacn/riskboard/internal/domain/service"
	"github.com/turtacn/riskboard/internal/infrastructure/charts"
	"github.com/turtacn/riskboard/internal/infrastructure/datastore"
	"github.com/turtacn/riskboard/internal/infrastructure/monitoring"
	"github.com/turtacn/riskboard/internal/infrastructure/persistence/redis"
	httpapi "github.com/turtacn/riskboard/internal/interfaces/http"
	"github.com/turtacn/riskboard/internal/interfaces/http/handlers"
	"github.com/turtacn/riskboard/pkg/logger"
)

// Server owns the HTTP router and the background components it depends on.
type Server struct {
	cfg     *config.Config
	log     logger.Logger
	router  *httpapi.Router
	store   *datastore.Store
	cache   *datastore.TableCache
	watcher *datastore.Watcher
	redis   *redis.RedisConnection
	tracing *monitoring.TracingManager
}

// Options overrides process-wide collaborators, mainly for tests.
type Options struct {
	// Registry receives the metrics; nil uses a fresh registry.
	Registry *prometheus.Registry
	// Tracing replaces the manager built from cfg.Tracing.
	Tracing *monitoring.TracingManager
}

// New wires every component described by cfg. Redis is dialled only when enabled; a failed
// dial is fatal so that a misconfigured cache does not go unnoticed.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*Server, error) {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := monitoring.NewMetrics(reg)

	tracing := opts.Tracing
	if tracing == nil {
		tm, err := monitoring.NewTracingManager(&cfg.Tracing, log)
		if err != nil {
			return nil, err
		}
		tracing = tm
	}

	loader := datastore.NewLoader(log, metrics, cfg.Data.LoadConcurrency)
	cache := datastore.NewTableCache(loader, cfg.Cache.TTL, cfg.Cache.CleanupInterval, metrics)
	store := datastore.NewStore(cfg.Data.Dir, cache, cfg.Data.LoadConcurrency)

	s := &Server{cfg: cfg, log: log, store: store, cache: cache, tracing: tracing}

	checks := map[string]handlers.HealthCheck{
		"data_dir": func(context.Context) error { return store.Check() },
	}

	var exportCache appservice.ExportCache
	if cfg.Redis.Enabled {
		conn := redis.NewRedisConnection(&cfg.Redis, log)
		if err := conn.Connect(ctx); err != nil {
			return nil, err
		}
		s.redis = conn
		exportCache = redis.NewExportCache(conn.GetClient(), cfg.Redis.ExportTTL, log)
		checks["redis"] = conn.Ping
	}

	if cfg.Data.Watch {
		w, err := datastore.NewWatcher(cfg.Data.Dir, cache, log)
		if err != nil {
			log.Warn(ctx, "Data directory watch disabled", logger.Fields{"dir": cfg.Data.Dir, "error": err.Error()})
		} else {
			s.watcher = w
		}
	}

	opt := appservice.OptionsFromConfig(cfg)
	opt.Tracer = tracing
	scorer := domainservice.NewRiskScorer(domainservice.WithMissingPolicy(opt.MissingPolicy))
	projector := domainservice.NewClusterProjector()

	datasetSvc := appservice.NewDatasetAppService(store, opt, log)
	riskSvc := appservice.NewRiskAppService(store, loader, scorer, projector, exportCache, metrics, opt, log)
	insightsSvc := appservice.NewInsightsAppService(store, opt, log)
	chartSvc := appservice.NewChartAppService(store, charts.NewRenderer(), scorer, projector, opt, log)

	s.router = httpapi.NewRouter(cfg, log, httpapi.Handlers{
		Health:   handlers.NewHealthHandler(checks, log),
		Datasets: handlers.NewDatasetHandler(datasetSvc, log),
		Risk:     handlers.NewRiskHandler(riskSvc, cfg.Server.MaxUploadBytes, log),
		Insights: handlers.NewInsightsHandler(insightsSvc, chartSvc, log),
	}, tracing.Tracer(), metrics, reg)
	return s, nil
}

// Router returns the HTTP router.
func (s *Server) Router() *httpapi.Router {
	return s.router
}

// Run serves until ctx is cancelled, then releases every component.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if s.watcher != nil {
		g.Go(func() error {
			s.watcher.Run(ctx)
			return nil
		})
	}
	g.Go(func() error {
		return s.router.Run(ctx)
	})

	err := g.Wait()
	s.Close(context.Background())
	return err
}

// Close releases the watcher, the Redis connection and the tracer.
func (s *Server) Close(ctx context.Context) {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.log.Warn(ctx, "Failed to close watcher", logger.Fields{"error": err.Error()})
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.Warn(ctx, "Failed to close redis", logger.Fields{"error": err.Error()})
		}
	}
	if err := s.tracing.Shutdown(ctx); err != nil {
		s.log.Warn(ctx, "Failed to flush traces", logger.Fields{"error": err.Error()})
	}
	s.cache.Flush()
}
