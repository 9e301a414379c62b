package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/tabletennis-scoring-service/internal/app/matches"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/app/players"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/app/rankings"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/app/teams"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/config"
	httpserver "github.com/preston-bernstein/tabletennis-scoring-service/internal/http"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/http/handlers"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/http/middleware"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/id"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/logging"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/metrics"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/poller"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/snapshots"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/store"
	"github.com/preston-bernstein/tabletennis-scoring-service/internal/tracing"
)

var (
	metricsSetup = metrics.Setup
	tracingSetup = tracing.Setup
)

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	store         store.Store
	matches       *matches.Service
	rankings      *rankings.Service
	httpServer    httpServer
	metricsServer httpServer
	poller        Poller
	syncer        *snapshots.Syncer
	metricsStop   func(context.Context) error
	tracingStop   func(context.Context) error
}

// New opens the configured store and wires services, telemetry and the HTTP stack.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(ctx, cfg, logger, nil)
}

func newServerWithMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	}

	st, err := openStoreWithRetry(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	driver := cfg.Store.Driver
	if driver == "" {
		driver = config.DriverMemory
	}
	logger.Info("store opened", slog.String(logging.FieldDriver, driver))

	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)
	tracingShutdown := buildTracing(ctx, cfg, logger)

	snaps := buildSnapshots(cfg, st, logger)

	matchOpts := []matches.Option{
		matches.WithMetrics(recorder),
		matches.WithLogger(logger),
		matches.WithDefaults(matches.Defaults{
			MaxEncountersPerPlayer: cfg.Rules.DefaultMaxEncountersPerPlayer,
			AllowPairRepeat:        cfg.Rules.AllowPairRepeat,
			TiebreakerIgnoresCap:   cfg.Rules.TiebreakerIgnoresCap,
		}),
	}
	if snaps.writer != nil {
		matchOpts = append(matchOpts, matches.WithArchiver(snaps.writer))
	}
	matchSvc := matches.NewService(st, matchOpts...)
	rankingSvc := rankings.NewService(st)

	var plr Poller
	if cfg.Rankings.RefreshEnabled {
		var writer poller.SnapshotWriter
		if snaps.writer != nil {
			writer = snaps.writer
		}
		plr = poller.New(rankingSvc, writer, logger, recorder, cfg.Rankings.RefreshInterval)
	}

	srv := &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		store:         st,
		matches:       matchSvc,
		rankings:      rankingSvc,
		metricsServer: metricsSrv,
		poller:        plr,
		syncer:        snaps.syncer,
		metricsStop:   metricsShutdown,
		tracingStop:   tracingShutdown,
	}
	srv.httpServer = srv.buildHTTPServer(st, snaps.store)
	return srv, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, st store.Store, httpSrv httpServer, plr Poller) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		store:      st,
		httpServer: httpSrv,
		poller:     plr,
	}
}

func (s *Server) buildHTTPServer(st store.Store, snapStore snapshots.Store) httpServer {
	deps := handlers.Deps{
		Players:  players.NewService(st, id.UUID{}, s.logger),
		Teams:    teams.NewService(st, id.UUID{}, s.logger),
		Matches:  s.matches,
		Rankings: s.rankings,
		Logger:   s.logger,
	}
	if snapStore != nil {
		deps.Snapshots = snapStore
	}
	var refresher handlers.RankingsRefresher
	if s.poller != nil {
		deps.Status = s.poller.Status
		refresher = s.poller
	}

	router := httpserver.NewRouter(handlers.NewHandler(deps), handlers.NewAdminHandler(refresher, s.logger))
	wrapped := middleware.LoggingMiddleware(s.logger, s.metrics, router)
	return newNetHTTPServer(":"+s.cfg.Port, wrapped)
}

// Run backfills archives, starts the refresher and HTTP servers, then waits
// for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	if s.syncer != nil {
		if n := s.syncer.Run(ctx); n > 0 {
			logging.Info(s.logger, "archived finished matches", slog.Int(logging.FieldCount, n))
		}
	}
	s.startMetrics()
	s.startServer(stop)
	if s.poller != nil {
		s.poller.Start(ctx)
	}

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.poller != nil {
		if err := s.poller.Stop(shutdownCtx); err != nil {
			logging.Error(s.logger, "failed to stop rankings refresher", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.tracingStop != nil {
		if err := s.tracingStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "tracing shutdown failed", "error", err)
		}
	}

	// The store goes last so in-flight requests drain against it.
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logging.Error(s.logger, "store close failed", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readHeaderTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func buildTracing(ctx context.Context, cfg config.Config, logger *slog.Logger) func(context.Context) error {
	shutdown, err := tracingSetup(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		logging.Warn(logger, "tracing setup failed, continuing without spans", "error", err)
		return nil
	}
	return shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
