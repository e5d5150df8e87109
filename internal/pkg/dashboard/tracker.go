package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

type assembler interface {
	Assemble(ctx context.Context, preset model.Preset) (*model.Dashboard, error)
}

type sink interface {
	Publish(ctx context.Context, d *model.Dashboard) error
}

// Tracker keeps the most recently requested dashboard. A refresh started later always
// wins: older in-flight refreshes are cancelled and their results discarded.
type Tracker struct {
	assembler assembler
	sink      sink
	logger    *zap.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     *model.Dashboard
	preset     model.Preset

	// publishMu orders sink writes; published is the generation last handed to the sink.
	publishMu sync.Mutex
	published uint64
}

// NewTracker returns a tracker. sink may be nil.
func NewTracker(a assembler, s sink) *Tracker {
	return &Tracker{
		assembler: a,
		sink:      s,
		logger:    zap.L(),
	}
}

func (t *Tracker) Refresh(ctx context.Context, preset model.Preset) (*model.Dashboard, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.generation++
	gen := t.generation
	t.cancel = cancel
	t.mu.Unlock()

	d, err := t.assembler.Assemble(ctx, preset)

	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		t.logger.Debug("discarding superseded dashboard refresh", zap.Stringer("preset", preset))
		return nil, ErrSuperseded
	}
	t.cancel = nil
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	t.latest = d
	t.preset = preset
	t.mu.Unlock()

	t.publish(context.WithoutCancel(ctx), gen, d)
	return d, nil
}

// publish hands d to the sink unless a newer generation has already been published.
func (t *Tracker) publish(ctx context.Context, gen uint64, d *model.Dashboard) {
	if t.sink == nil {
		return
	}
	t.publishMu.Lock()
	defer t.publishMu.Unlock()
	if gen <= t.published {
		t.logger.Debug("skipping publish of superseded dashboard")
		return
	}
	t.published = gen
	if err := t.sink.Publish(ctx, d); err != nil {
		t.logger.Error("failed to publish dashboard", zap.Error(err))
	}
}

// Latest returns the last successfully refreshed dashboard and its preset, or nil.
func (t *Tracker) Latest() (*model.Dashboard, model.Preset) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest, t.preset
}
