package dashboard

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

func pointsWithBrutto(values ...float64) []model.DailyPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return lo.Map(values, func(v float64, i int) model.DailyPoint {
		return model.DailyPoint{Day: start.AddDate(0, 0, i).Format(model.DayLayout), BruttoKwh: v}
	})
}

func TestMapDailyRows(t *testing.T) {
	rows := []model.DailyRow{
		{Day: "2024-01-01", BruttoKwh: toPtr(12.345678), EvKwh: toPtr(3.1), NettoKwh: toPtr(9.244), HotWaterUsage: toPtr(1.666), AvgTemperatureC: toPtr(-2.004)},
		{Day: "2024-01-02"},
	}

	points := MapDailyRows(rows)

	require.Len(t, points, 2)
	assert.Equal(t, model.DailyPoint{
		Day:             "2024-01-01",
		BruttoKwh:       12.35,
		EvKwh:           3.1,
		NettoKwh:        9.24,
		HotWaterUsage:   1.67,
		AvgTemperatureC: -2,
	}, points[0])
	assert.Equal(t, model.DailyPoint{Day: "2024-01-02"}, points[1])
	assert.Nil(t, points[1].RollingAverageKwh)
}

func TestWithRollingAverage_NeedsSevenPriorPoints(t *testing.T) {
	points := WithRollingAverage(pointsWithBrutto(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))

	for i := range 7 {
		assert.Nil(t, points[i].RollingAverageKwh, "index %d", i)
	}
	for i := 7; i < len(points); i++ {
		assert.NotNil(t, points[i].RollingAverageKwh, "index %d", i)
	}
	assert.Equal(t, 4.0, *points[7].RollingAverageKwh)
	assert.Equal(t, 4.5, *points[8].RollingAverageKwh)
	assert.Equal(t, 5.0, *points[9].RollingAverageKwh)
}

func TestWithRollingAverage_WindowIsNinetyPriorEntries(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	points := WithRollingAverage(pointsWithBrutto(values...))

	// index 95 averages entries 5..94, index 99 averages 9..98.
	assert.Equal(t, 49.5, *points[95].RollingAverageKwh)
	assert.Equal(t, 53.5, *points[99].RollingAverageKwh)
	// up to index 90 the whole prefix is used.
	assert.Equal(t, 44.5, *points[90].RollingAverageKwh)
}

func TestWithRollingAverage_RoundsAndDoesNotMutateInput(t *testing.T) {
	in := pointsWithBrutto(1, 1, 1, 1, 1, 1, 2, 0)
	out := WithRollingAverage(in)

	assert.Equal(t, 1.14, *out[7].RollingAverageKwh)
	for _, p := range in {
		assert.Nil(t, p.RollingAverageKwh)
	}
}

func TestWithRollingAverage_Empty(t *testing.T) {
	assert.Empty(t, WithRollingAverage(nil))
}
