package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/energy-dashboard/internal/pkg/config"
	"github.com/anicoll/energy-dashboard/internal/pkg/dashboard"
	"github.com/anicoll/energy-dashboard/internal/pkg/database"
	"github.com/anicoll/energy-dashboard/internal/pkg/database/migration"
	"github.com/anicoll/energy-dashboard/internal/pkg/metrics"
	"github.com/anicoll/energy-dashboard/internal/pkg/model"
	"github.com/anicoll/energy-dashboard/internal/pkg/mqtt"
	"github.com/anicoll/energy-dashboard/internal/pkg/publisher"
	"github.com/anicoll/energy-dashboard/internal/pkg/resync"
	"github.com/anicoll/energy-dashboard/internal/pkg/server"
)

const shutdownTimeout = 10 * time.Second

// ServeCommand runs the HTTP API, the optional resync schedule and the MQTT publisher.
func ServeCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return run(c.Context, cfg)
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return config.Config{}, err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("preset") {
		preset := model.Preset(c.String("preset"))
		if !preset.Valid() {
			return config.Config{}, fmt.Errorf("%w: %q", dashboard.ErrInvalidPreset, preset)
		}
		cfg.DefaultPreset = preset
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()

	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.Level = atomicLevel
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	return logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

// openStore connects to the database when one is configured. A nil store means the
// dashboard is served from demo data.
func openStore(ctx context.Context, cfg config.StoreConfig) (*database.Database, error) {
	if cfg.DatabaseURL == "" {
		zap.L().Warn("DATABASE_URL not set, serving demo data")
		return nil, nil
	}
	if cfg.MigrationsFolder != "" {
		if err := migration.Migrate(cfg.DatabaseURL, cfg.MigrationsFolder); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return database.NewDatabase(pool), nil
}

func newService(cfg config.Config, store *database.Database, opts ...func(*dashboard.Service)) (*dashboard.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	var s dashboard.Store
	if store != nil {
		s = store
	}
	return dashboard.New(s, dashboard.Config{
		StoreConfigured: store != nil,
		StatusLimit:     cfg.StoreCfg.StatusLimit,
		RunLimit:        cfg.StoreCfg.RunLimit,
		Location:        loc,
	}, opts...), nil
}

func run(ctx context.Context, cfg config.Config) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	store, err := openStore(ctx, cfg.StoreCfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc, err := newService(cfg, store, dashboard.WithObserver(m))
	if err != nil {
		return err
	}

	pub := publisher.New(cfg.MqttCfg.Device)
	if cfg.MqttCfg.Host != "" {
		mqttSvc := mqtt.New(mqtt.NewClient(cfg.MqttCfg.Host, cfg.MqttCfg.Username, cfg.MqttCfg.Password, publisher.Identifier(cfg.MqttCfg.Device)))
		if err := mqttSvc.Connect(); err != nil {
			return err
		}
		if err := pub.Register("mqtt", mqttSvc); err != nil {
			return err
		}
	}

	tracker := dashboard.NewTracker(svc, pub)
	resyncClient := resync.NewClient(cfg.ResyncCfg.BackendURL, cfg.ResyncCfg.Timeout)

	handler, err := server.New(tracker, resyncClient,
		server.WithDefaultPreset(cfg.DefaultPreset),
		server.WithTokenHash(cfg.ResyncCfg.TokenHash),
		server.WithCorsOrigins(cfg.CorsOrigins),
		server.WithMetrics(m),
	).Handler(ctx)
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler:      handler,
		Addr:         cfg.HTTPAddr,
		WriteTimeout: cfg.ResyncCfg.Timeout + 15*time.Second,
		ReadTimeout:  15 * time.Second,
	}
	eg.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	job := refreshJob(ctx, tracker, resyncClient, m, cfg.DefaultPreset)
	eg.Go(func() error {
		job()
		return nil
	})
	if cfg.ResyncCfg.Schedule != "" {
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		eg.Go(func() error {
			return schedule(ctx, cfg.ResyncCfg.Schedule, loc, job)
		})
	}

	return eg.Wait()
}

var errCron = errors.New("cron error")

// schedule runs job on spec until ctx is done, waiting for a running job to finish.
func schedule(ctx context.Context, spec string, loc *time.Location, job func()) error {
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, job); err != nil {
		return fmt.Errorf("%w: %w", errCron, err)
	}
	c.Start()
	zap.L().Info("scheduled dashboard refresh", zap.String("schedule", spec))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

type resyncObserver interface {
	ResyncFinished(err error)
}

// refreshJob asks the backend to resync, when one is configured, and then refreshes the
// tracked dashboard. Failures are logged and never stop the service.
func refreshJob(ctx context.Context, r Refresher, s Syncer, obs resyncObserver, preset model.Preset) func() {
	return func() {
		logger := zap.L()
		if s.Configured() {
			result, err := s.Sync(ctx)
			obs.ResyncFinished(err)
			if err != nil {
				logger.Error("scheduled resync failed", zap.Error(err))
			} else {
				logger.Info("scheduled resync finished", zap.Int("rows", result.RowsProcessed()))
			}
		}
		if _, err := r.Refresh(ctx, preset); err != nil {
			if errors.Is(err, dashboard.ErrSuperseded) || errors.Is(err, context.Canceled) {
				logger.Debug("scheduled refresh abandoned", zap.Error(err))
				return
			}
			logger.Error("scheduled refresh failed", zap.Error(err))
		}
	}
}
