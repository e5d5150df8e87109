package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

const (
	DefaultStatusLimit = 100
	DefaultRunLimit    = 20
)

// Store is the remote tabular store. Every read returns rows in the order documented
// per method and has no side effects.
type Store interface {
	// DailyMetrics returns rows with from <= day <= to, ascending by day.
	DailyMetrics(ctx context.Context, from, to time.Time) ([]model.DailyRow, error)
	// SourceStatuses returns the most recent status events, newest first.
	SourceStatuses(ctx context.Context, limit int) ([]model.StatusRow, error)
	// IngestionRuns returns the most recent runs, newest first.
	IngestionRuns(ctx context.Context, limit int) ([]model.RunRow, error)
}

// Observer receives assembly outcomes, e.g. for metrics.
type Observer interface {
	AssemblyFinished(preset model.Preset, source string, err error, took time.Duration)
	ReadFailed(read string)
}

// Config controls where dashboards come from and how many status and run rows are read.
type Config struct {
	// StoreConfigured selects between store reads and the demo dashboard.
	StoreConfigured bool
	StatusLimit     int
	RunLimit        int
	// Location decides which calendar day "today" is.
	Location *time.Location
}

type Service struct {
	store    Store
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
	observer Observer
}

// WithClock overrides the source of the current time.
func WithClock(now func() time.Time) func(*Service) {
	return func(s *Service) {
		s.now = now
	}
}

// WithObserver reports every assembly and failed read to o.
func WithObserver(o Observer) func(*Service) {
	return func(s *Service) {
		s.observer = o
	}
}

// WithLogger replaces the global zap logger.
func WithLogger(l *zap.Logger) func(*Service) {
	return func(s *Service) {
		s.logger = l
	}
}

func New(store Store, cfg Config, opts ...func(*Service)) *Service {
	if cfg.StatusLimit <= 0 {
		cfg.StatusLimit = DefaultStatusLimit
	}
	if cfg.RunLimit <= 0 {
		cfg.RunLimit = DefaultRunLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	s := &Service{
		store:  store,
		cfg:    cfg,
		logger: zap.L(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assemble builds the dashboard for preset. With an unconfigured store it returns the demo
// dashboard without reading anything. Otherwise the three reads run concurrently and the
// first failure fails the whole assembly; partial results are dropped.
func (s *Service) Assemble(ctx context.Context, preset model.Preset) (*model.Dashboard, error) {
	started := time.Now()
	now := s.now().In(s.cfg.Location)

	rng, err := ResolveRange(preset, now)
	if err != nil {
		return nil, err
	}

	if !s.cfg.StoreConfigured {
		s.logger.Debug("store not configured, serving demo dashboard", zap.Stringer("preset", preset))
		d := Demo(now)
		s.finished(preset, "demo", nil, started)
		return d, nil
	}

	var (
		daily    []model.DailyRow
		statuses []model.StatusRow
		runs     []model.RunRow
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		daily, err = s.store.DailyMetrics(egCtx, rng.WindowStart, rng.End)
		return s.wrapRead(ReadDailyMetrics, err)
	})
	eg.Go(func() (err error) {
		statuses, err = s.store.SourceStatuses(egCtx, s.cfg.StatusLimit)
		return s.wrapRead(ReadSourceStatus, err)
	})
	eg.Go(func() (err error) {
		runs, err = s.store.IngestionRuns(egCtx, s.cfg.RunLimit)
		return s.wrapRead(ReadIngestionRuns, err)
	})
	if err := eg.Wait(); err != nil {
		s.logger.Error("dashboard assembly failed", zap.Stringer("preset", preset), zap.Error(err))
		s.finished(preset, "store", err, started)
		return nil, err
	}

	points := WithRollingAverage(MapDailyRows(daily))
	current := between(points, rng.StartDay(), rng.EndDay())
	previous := between(points, rng.CompareStartDay(), rng.CompareEndDay())

	s.logger.Debug("dashboard assembled",
		zap.Stringer("preset", preset),
		zap.String("start", rng.StartDay()),
		zap.String("end", rng.EndDay()),
		zap.Int("fetched_days", len(points)),
		zap.Int("current_days", len(current)),
		zap.Int("previous_days", len(previous)),
		zap.Int("status_events", len(statuses)),
		zap.Int("runs", len(runs)),
	)
	s.finished(preset, "store", nil, started)

	return &model.Dashboard{
		Kpis:           BuildKpis(current, previous),
		EnergySeries:   current,
		HotWaterSeries: current,
		EvSeries:       current,
		SourceStatus:   DedupeLatestStatuses(statuses),
		IngestionAudit: MapIngestionRuns(runs),
		HasData:        len(current) > 0,
		GeneratedAt:    now,
	}, nil
}

func (s *Service) wrapRead(read string, err error) error {
	if err == nil {
		return nil
	}
	if s.observer != nil {
		s.observer.ReadFailed(read)
	}
	return &ReadError{Read: read, Err: err}
}

func (s *Service) finished(preset model.Preset, source string, err error, started time.Time) {
	if s.observer != nil {
		s.observer.AssemblyFinished(preset, source, err, time.Since(started))
	}
}

// ParsePreset validates a preset string, falling back to def when raw is empty.
func ParsePreset(raw string, def model.Preset) (model.Preset, error) {
	if raw == "" {
		raw = def.String()
	}
	p := model.Preset(raw)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPreset, raw)
	}
	return p, nil
}
