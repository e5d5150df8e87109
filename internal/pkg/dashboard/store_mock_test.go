package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

// MockStore is a Store whose reads are replaced per test.
type MockStore struct {
	DailyMetricsFunc   func(ctx context.Context, from, to time.Time) ([]model.DailyRow, error)
	SourceStatusesFunc func(ctx context.Context, limit int) ([]model.StatusRow, error)
	IngestionRunsFunc  func(ctx context.Context, limit int) ([]model.RunRow, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockStore) record(read string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, read)
}

func (m *MockStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockStore) DailyMetrics(ctx context.Context, from, to time.Time) ([]model.DailyRow, error) {
	m.record(ReadDailyMetrics)
	if m.DailyMetricsFunc != nil {
		return m.DailyMetricsFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *MockStore) SourceStatuses(ctx context.Context, limit int) ([]model.StatusRow, error) {
	m.record(ReadSourceStatus)
	if m.SourceStatusesFunc != nil {
		return m.SourceStatusesFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockStore) IngestionRuns(ctx context.Context, limit int) ([]model.RunRow, error) {
	m.record(ReadIngestionRuns)
	if m.IngestionRunsFunc != nil {
		return m.IngestionRunsFunc(ctx, limit)
	}
	return nil, nil
}

type recordingObserver struct {
	mu          sync.Mutex
	failedReads []string
	sources     []string
	errs        []error
}

func (o *recordingObserver) AssemblyFinished(_ model.Preset, source string, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sources = append(o.sources, source)
	o.errs = append(o.errs, err)
}

func (o *recordingObserver) ReadFailed(read string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failedReads = append(o.failedReads, read)
}
