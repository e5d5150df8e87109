package dashboard

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

type metric func(model.DailyPoint) float64

var (
	bruttoKwh     metric = func(p model.DailyPoint) float64 { return p.BruttoKwh }
	nettoKwh      metric = func(p model.DailyPoint) float64 { return p.NettoKwh }
	evKwh         metric = func(p model.DailyPoint) float64 { return p.EvKwh }
	hotWaterUsage metric = func(p model.DailyPoint) float64 { return p.HotWaterUsage }
	temperature   metric = func(p model.DailyPoint) float64 { return p.AvgTemperatureC }
)

// BuildKpis sums the current period per metric and compares it to the previous one.
// The order is fixed: brutto, netto, ev, hot water, weather.
//
// Delta is ((current - previous) / previous) * 100 rounded to 1 decimal and absent when the
// previous sum is 0. Weather is the mean temperature of the current period (0 when empty)
// and never has a delta.
func BuildKpis(current, previous []model.DailyPoint) []model.KpiEntry {
	sumEntry := func(key model.KpiKey, label string, unit model.Unit, m metric) model.KpiEntry {
		value := sumMetric(current, m)
		return model.KpiEntry{
			Key:          key,
			Label:        label,
			Value:        value,
			Unit:         unit,
			DeltaPercent: toDelta(value, sumMetric(previous, m)),
		}
	}

	return []model.KpiEntry{
		sumEntry(model.KpiBrutto, "Brutto", model.UnitKiloWattHour, bruttoKwh),
		sumEntry(model.KpiNetto, "Netto", model.UnitKiloWattHour, nettoKwh),
		sumEntry(model.KpiEV, "EV", model.UnitKiloWattHour, evKwh),
		sumEntry(model.KpiHotWater, "Hot Water", model.UnitCubicMetre, hotWaterUsage),
		{
			Key:   model.KpiWeather,
			Label: "Weather",
			Value: meanMetric(current, temperature),
			Unit:  model.UnitDegreeC,
		},
	}
}

func sumMetric(points []model.DailyPoint, m metric) float64 {
	return decimalSum(points, m).Round(2).InexactFloat64()
}

func meanMetric(points []model.DailyPoint, m metric) float64 {
	if len(points) == 0 {
		return 0
	}
	return decimalSum(points, m).Div(decimal.NewFromInt(int64(len(points)))).Round(1).InexactFloat64()
}

func decimalSum(points []model.DailyPoint, m metric) decimal.Decimal {
	return lo.Reduce(points, func(sum decimal.Decimal, p model.DailyPoint, _ int) decimal.Decimal {
		return sum.Add(decimal.NewFromFloat(m(p)))
	}, decimal.Zero)
}

func toDelta(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	cur, prev := decimal.NewFromFloat(current), decimal.NewFromFloat(previous)
	return toPtr(cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64())
}
