package dashboard

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

const (
	rollingWindowEntries = 90
	rollingMinEntries    = 7
)

// MapDailyRows normalises raw rows: NULL metrics become 0 and every metric is rounded
// to 2 decimals. Row order is kept.
func MapDailyRows(rows []model.DailyRow) []model.DailyPoint {
	return lo.Map(rows, func(row model.DailyRow, _ int) model.DailyPoint {
		return model.DailyPoint{
			Day:             row.Day,
			BruttoKwh:       toNumber(row.BruttoKwh),
			EvKwh:           toNumber(row.EvKwh),
			NettoKwh:        toNumber(row.NettoKwh),
			HotWaterUsage:   toNumber(row.HotWaterUsage),
			AvgTemperatureC: toNumber(row.AvgTemperatureC),
		}
	})
}

func toNumber(v *float64) float64 {
	if v == nil {
		return 0
	}
	return round2(*v)
}

// WithRollingAverage returns a copy of points where each point carries the mean brutto of
// up to 90 preceding entries. Entries, not calendar days: gaps in the series stretch the
// window. Points with fewer than 7 predecessors get no average.
func WithRollingAverage(points []model.DailyPoint) []model.DailyPoint {
	out := make([]model.DailyPoint, len(points))
	for i, point := range points {
		earlier := points[max(0, i-rollingWindowEntries):i]
		if len(earlier) < rollingMinEntries {
			point.RollingAverageKwh = nil
			out[i] = point
			continue
		}
		sum := decimal.Zero
		for _, e := range earlier {
			sum = sum.Add(decimal.NewFromFloat(e.BruttoKwh))
		}
		avg := sum.Div(decimal.NewFromInt(int64(len(earlier)))).Round(2).InexactFloat64()
		point.RollingAverageKwh = &avg
		out[i] = point
	}
	return out
}

// between keeps points whose day lies in [from, to]; ISO dates compare lexically.
func between(points []model.DailyPoint, from, to string) []model.DailyPoint {
	return lo.Filter(points, func(p model.DailyPoint, _ int) bool {
		return p.Day >= from && p.Day <= to
	})
}
