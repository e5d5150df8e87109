package dashboard

import (
	"math"
	"time"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

const demoDays = 30

// Demo returns a statically shaped dashboard with synthetic values for the 30 days up to
// now. It satisfies the same contract as an assembled dashboard.
func Demo(now time.Time) *model.Dashboard {
	today := calendarDay(now)
	series := make([]model.DailyPoint, 0, demoDays)
	for i := range demoDays {
		daysAgo := float64(demoDays - 1 - i)
		brutto := 72 + math.Sin(daysAgo/4)*8 + math.Mod(daysAgo, 5)
		ev := 8 + math.Cos(daysAgo/5)*3
		series = append(series, model.DailyPoint{
			Day:               today.AddDate(0, 0, -(demoDays - 1 - i)).Format(model.DayLayout),
			BruttoKwh:         round2(brutto),
			EvKwh:             round2(ev),
			NettoKwh:          round2(brutto - ev),
			HotWaterUsage:     round2(1.7 + math.Sin(daysAgo/7)*0.3),
			AvgTemperatureC:   round2(2 + math.Sin(daysAgo/8)*3),
			RollingAverageKwh: toPtr(69.4),
		})
	}

	latest := series[len(series)-1]
	latestDay, _ := time.Parse(model.DayLayout, latest.Day)
	checkedAt := now.UTC()

	return &model.Dashboard{
		Kpis: []model.KpiEntry{
			{Key: model.KpiBrutto, Label: "Brutto", Value: sumMetric(series, bruttoKwh), Unit: model.UnitKiloWattHour, DeltaPercent: toPtr(-2.8)},
			{Key: model.KpiNetto, Label: "Netto", Value: sumMetric(series, nettoKwh), Unit: model.UnitKiloWattHour, DeltaPercent: toPtr(-1.9)},
			{Key: model.KpiEV, Label: "EV", Value: sumMetric(series, evKwh), Unit: model.UnitKiloWattHour, DeltaPercent: toPtr(3.6)},
			{Key: model.KpiHotWater, Label: "Hot Water", Value: sumMetric(series, hotWaterUsage), Unit: model.UnitCubicMetre, DeltaPercent: toPtr(0.7)},
			{
				Key:   model.KpiWeather,
				Label: "Weather (" + latestDay.Format("02.01.2006") + ")",
				Value: round(latest.AvgTemperatureC, 1),
				Unit:  model.UnitDegreeC,
			},
		},
		EnergySeries:   series,
		HotWaterSeries: series,
		EvSeries:       series,
		SourceStatus: []model.SourceStatusEntry{
			{SourceName: "HS Veitur", Health: model.HealthHealthy, CheckedAt: checkedAt},
			{SourceName: "Open-Meteo", Health: model.HealthHealthy, CheckedAt: checkedAt},
			{SourceName: "Veitur", Health: model.HealthHealthy, CheckedAt: checkedAt},
			{
				SourceName: "Zaptec",
				Health:     model.HealthWarning,
				CheckedAt:  checkedAt,
				Message:    toPtr("Returned rows outside requested range in latest run."),
			},
		},
		IngestionAudit: []model.AuditEntry{
			{
				ID:           111,
				StartedAt:    checkedAt.Add(-8 * time.Minute),
				FinishedAt:   toPtr(checkedAt.Add(-6 * time.Minute)),
				Status:       "completed",
				SourceCount:  4,
				SuccessCount: 4,
			},
			{
				ID:           110,
				StartedAt:    checkedAt.Add(-24 * time.Hour),
				FinishedAt:   toPtr(checkedAt.Add(-24*time.Hour + 4*time.Minute)),
				Status:       "completed",
				SourceCount:  4,
				SuccessCount: 3,
				FailureCount: 1,
				Details:      map[string]any{"warning": "Zaptec returned partial window overlap."},
			},
		},
		HasData:     true,
		GeneratedAt: now,
	}
}
