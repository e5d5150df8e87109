package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

var fixedNow = time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store Store, configured bool, opts ...func(*Service)) *Service {
	t.Helper()
	opts = append([]func(*Service){
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(zaptest.NewLogger(t)),
	}, opts...)
	return New(store, Config{StoreConfigured: configured}, opts...)
}

func dailyRows(start string, brutto ...float64) []model.DailyRow {
	first, _ := time.Parse(model.DayLayout, start)
	rows := make([]model.DailyRow, 0, len(brutto))
	for i, b := range brutto {
		rows = append(rows, model.DailyRow{
			Day:             first.AddDate(0, 0, i).Format(model.DayLayout),
			BruttoKwh:       toPtr(b),
			NettoKwh:        toPtr(b - 10),
			EvKwh:           toPtr(10.0),
			AvgTemperatureC: toPtr(-1.5),
		})
	}
	return rows
}

func TestAssemble_ThisMonth(t *testing.T) {
	checked := fixedNow.Add(-time.Hour)
	finished := fixedNow.Add(-50 * time.Minute)
	var gotFrom, gotTo time.Time
	var gotStatusLimit, gotRunLimit int

	store := &MockStore{
		DailyMetricsFunc: func(_ context.Context, from, to time.Time) ([]model.DailyRow, error) {
			gotFrom, gotTo = from, to
			// lookback only
			rows := dailyRows("2023-12-20", 500, 500, 500, 500, 500)
			// comparison period, brutto 650
			rows = append(rows, dailyRows("2023-12-25", 90, 90, 90, 90, 90, 90, 110)...)
			rows = append(rows, dailyRows("2024-01-01", 100, 102, 105, 110, 112, 115, 120)...)
			return rows, nil
		},
		SourceStatusesFunc: func(_ context.Context, limit int) ([]model.StatusRow, error) {
			gotStatusLimit = limit
			return []model.StatusRow{
				{SourceName: "Veitur", CheckedAt: checked, Status: "success"},
				{SourceName: "Veitur", CheckedAt: checked.Add(-24 * time.Hour), Status: "failed"},
			}, nil
		},
		IngestionRunsFunc: func(_ context.Context, limit int) ([]model.RunRow, error) {
			gotRunLimit = limit
			return []model.RunRow{{ID: 7, StartedAt: checked, FinishedAt: &finished, Status: "success", SourceCount: 1, SuccessCount: 1}}, nil
		},
	}

	d, err := newTestService(t, store, true).Assemble(context.Background(), model.PresetThisMonth)
	require.NoError(t, err)

	assert.Equal(t, "2023-09-03", gotFrom.Format(model.DayLayout))
	assert.Equal(t, "2024-01-07", gotTo.Format(model.DayLayout))
	assert.Equal(t, DefaultStatusLimit, gotStatusLimit)
	assert.Equal(t, DefaultRunLimit, gotRunLimit)

	assert.True(t, d.HasData)
	assert.Equal(t, fixedNow, d.GeneratedAt)
	require.Len(t, d.EnergySeries, 7)
	assert.Equal(t, "2024-01-01", d.EnergySeries[0].Day)
	assert.Equal(t, "2024-01-07", d.EnergySeries[6].Day)
	assert.Equal(t, d.EnergySeries, d.HotWaterSeries)
	assert.Equal(t, d.EnergySeries, d.EvSeries)

	// the rolling average is computed over the fetched history before slicing, so
	// the first reported day already averages the 12 days before it.
	require.NotNil(t, d.EnergySeries[0].RollingAverageKwh)
	assert.Equal(t, 262.5, *d.EnergySeries[0].RollingAverageKwh)

	brutto, ok := d.Kpi(model.KpiBrutto)
	require.True(t, ok)
	assert.Equal(t, 764.0, brutto.Value)
	require.NotNil(t, brutto.DeltaPercent)
	assert.Equal(t, 17.5, *brutto.DeltaPercent)

	ev, _ := d.Kpi(model.KpiEV)
	assert.Equal(t, 70.0, ev.Value)
	assert.Equal(t, 0.0, *ev.DeltaPercent)

	hotWater, _ := d.Kpi(model.KpiHotWater)
	assert.Zero(t, hotWater.Value)
	assert.Nil(t, hotWater.DeltaPercent)

	weather, _ := d.Kpi(model.KpiWeather)
	assert.Equal(t, -1.5, weather.Value)
	assert.Nil(t, weather.DeltaPercent)

	require.Len(t, d.SourceStatus, 1)
	assert.Equal(t, model.HealthHealthy, d.SourceStatus[0].Health)
	assert.Equal(t, checked, d.SourceStatus[0].CheckedAt)

	require.Len(t, d.IngestionAudit, 1)
	assert.Equal(t, "600s", d.IngestionAudit[0].DurationLabel())
}

func TestAssemble_EmptyReportingWindow(t *testing.T) {
	store := &MockStore{
		DailyMetricsFunc: func(context.Context, time.Time, time.Time) ([]model.DailyRow, error) {
			return dailyRows("2023-12-01", 10, 20, 30), nil
		},
	}

	d, err := newTestService(t, store, true).Assemble(context.Background(), model.PresetThisMonth)
	require.NoError(t, err)

	assert.False(t, d.HasData)
	assert.Empty(t, d.EnergySeries)
	require.Len(t, d.Kpis, 5)
	for _, kpi := range d.Kpis {
		assert.Zero(t, kpi.Value, kpi.Key)
		assert.Nil(t, kpi.DeltaPercent, kpi.Key)
	}
}

func TestAssemble_ReadFailureFailsWholeAssembly(t *testing.T) {
	boom := errors.New("connection reset by peer")
	tests := map[string]struct {
		store *MockStore
		read  string
	}{
		"daily metrics": {
			store: &MockStore{DailyMetricsFunc: func(context.Context, time.Time, time.Time) ([]model.DailyRow, error) {
				return nil, boom
			}},
			read: ReadDailyMetrics,
		},
		"source status": {
			store: &MockStore{SourceStatusesFunc: func(context.Context, int) ([]model.StatusRow, error) {
				return nil, boom
			}},
			read: ReadSourceStatus,
		},
		"ingestion runs": {
			store: &MockStore{IngestionRunsFunc: func(context.Context, int) ([]model.RunRow, error) {
				return nil, boom
			}},
			read: ReadIngestionRuns,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			obs := &recordingObserver{}
			d, err := newTestService(t, tt.store, true, WithObserver(obs)).Assemble(context.Background(), model.PresetLast30Days)

			assert.Nil(t, d)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrReadFailure)
			assert.ErrorIs(t, err, boom)
			var readErr *ReadError
			require.ErrorAs(t, err, &readErr)
			assert.Equal(t, tt.read, readErr.Read)
			assert.Equal(t, fmt.Sprintf("failed to load %s: connection reset by peer", tt.read), err.Error())
			assert.Equal(t, []string{tt.read}, obs.failedReads)
			assert.Equal(t, []string{"store"}, obs.sources)
		})
	}
}

func TestAssemble_ReadsRunConcurrently(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var started sync.WaitGroup
	started.Add(3)
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()
	barrier := func(ctx context.Context) error {
		started.Done()
		select {
		case <-allStarted:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	store := &MockStore{
		DailyMetricsFunc: func(ctx context.Context, _, _ time.Time) ([]model.DailyRow, error) {
			return nil, barrier(ctx)
		},
		SourceStatusesFunc: func(ctx context.Context, _ int) ([]model.StatusRow, error) {
			return nil, barrier(ctx)
		},
		IngestionRunsFunc: func(ctx context.Context, _ int) ([]model.RunRow, error) {
			return nil, barrier(ctx)
		},
	}

	_, err := newTestService(t, store, true).Assemble(ctx, model.PresetLast3Months)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ReadDailyMetrics, ReadSourceStatus, ReadIngestionRuns}, store.Calls())
}

func TestAssemble_FirstFailureCancelsOtherReads(t *testing.T) {
	boom := errors.New("permission denied for schema energy")
	store := &MockStore{
		DailyMetricsFunc: func(ctx context.Context, _, _ time.Time) ([]model.DailyRow, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		SourceStatusesFunc: func(context.Context, int) ([]model.StatusRow, error) {
			return nil, boom
		},
		IngestionRunsFunc: func(ctx context.Context, _ int) ([]model.RunRow, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	_, err := newTestService(t, store, true).Assemble(context.Background(), model.PresetThisMonth)

	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, ReadSourceStatus, readErr.Read)
	assert.ErrorIs(t, err, boom)
}

func TestAssemble_UnconfiguredStoreServesDemo(t *testing.T) {
	store := &MockStore{}
	obs := &recordingObserver{}

	d, err := newTestService(t, store, false, WithObserver(obs)).Assemble(context.Background(), model.PresetLast30Days)
	require.NoError(t, err)

	assert.Empty(t, store.Calls())
	assert.True(t, d.HasData)
	assert.Len(t, d.EnergySeries, demoDays)
	assert.Equal(t, []string{"demo"}, obs.sources)
}

func TestAssemble_InvalidPreset(t *testing.T) {
	for _, configured := range []bool{true, false} {
		store := &MockStore{}
		_, err := newTestService(t, store, configured).Assemble(context.Background(), model.Preset("forever"))
		assert.ErrorIs(t, err, ErrInvalidPreset)
		assert.Empty(t, store.Calls())
	}
}

func TestAssemble_CustomLimitsAndLocation(t *testing.T) {
	var statusLimit, runLimit int
	var to time.Time
	store := &MockStore{
		DailyMetricsFunc: func(_ context.Context, _, end time.Time) ([]model.DailyRow, error) {
			to = end
			return nil, nil
		},
		SourceStatusesFunc: func(_ context.Context, limit int) ([]model.StatusRow, error) {
			statusLimit = limit
			return nil, nil
		},
		IngestionRunsFunc: func(_ context.Context, limit int) ([]model.RunRow, error) {
			runLimit = limit
			return nil, nil
		},
	}
	svc := New(store, Config{
		StoreConfigured: true,
		StatusLimit:     5,
		RunLimit:        3,
		Location:        time.FixedZone("UTC-14", -14*60*60),
	}, WithClock(func() time.Time { return fixedNow }), WithLogger(zaptest.NewLogger(t)))

	_, err := svc.Assemble(context.Background(), model.PresetThisMonth)
	require.NoError(t, err)
	assert.Equal(t, 5, statusLimit)
	assert.Equal(t, 3, runLimit)
	assert.Equal(t, "2024-01-06", to.Format(model.DayLayout))
}
