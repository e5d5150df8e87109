package cmd

import (
	"context"
	"sync"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
	"github.com/anicoll/energy-dashboard/internal/pkg/resync"
)

// MockRefresher is a mock implementation of the Refresher interface.
type MockRefresher struct {
	RefreshFunc func(ctx context.Context, preset model.Preset) (*model.Dashboard, error)

	mu      sync.Mutex
	presets []model.Preset
}

func (m *MockRefresher) Refresh(ctx context.Context, preset model.Preset) (*model.Dashboard, error) {
	m.mu.Lock()
	m.presets = append(m.presets, preset)
	m.mu.Unlock()
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, preset)
	}
	return &model.Dashboard{}, nil
}

func (m *MockRefresher) Presets() []model.Preset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Preset(nil), m.presets...)
}

// MockSyncer is a mock implementation of the Syncer interface.
type MockSyncer struct {
	ConfiguredValue bool
	SyncFunc        func(ctx context.Context) (resync.Result, error)

	mu    sync.Mutex
	calls int
}

func (m *MockSyncer) Configured() bool {
	return m.ConfiguredValue
}

func (m *MockSyncer) Sync(ctx context.Context) (resync.Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.SyncFunc != nil {
		return m.SyncFunc(ctx)
	}
	return resync.Result{Success: true}, nil
}

func (m *MockSyncer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
