package model

import (
	"math"
	"strconv"
	"time"
)

type DailyPoint struct {
	Day               string   `json:"day"`
	BruttoKwh         float64  `json:"bruttoKwh"`
	EvKwh             float64  `json:"evKwh"`
	NettoKwh          float64  `json:"nettoKwh"`
	HotWaterUsage     float64  `json:"hotWaterUsage"`
	AvgTemperatureC   float64  `json:"avgTemperatureC"`
	RollingAverageKwh *float64 `json:"rollingAverageKwh"`
}

// DateRange holds calendar dates, each at midnight UTC so day arithmetic is exact.
// WindowStart only bounds the daily-metrics fetch, it is never reported.
type DateRange struct {
	Start        time.Time
	End          time.Time
	CompareStart time.Time
	CompareEnd   time.Time
	WindowStart  time.Time
}

// Days returns the inclusive number of days in the reporting window.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// CompareDays returns the inclusive number of days in the comparison window.
func (r DateRange) CompareDays() int {
	return int(r.CompareEnd.Sub(r.CompareStart).Hours()/24) + 1
}

// StartDay, EndDay, CompareStartDay and CompareEndDay format the boundaries like DailyPoint.Day.
func (r DateRange) StartDay() string        { return r.Start.Format(DayLayout) }
func (r DateRange) EndDay() string          { return r.End.Format(DayLayout) }
func (r DateRange) CompareStartDay() string { return r.CompareStart.Format(DayLayout) }
func (r DateRange) CompareEndDay() string   { return r.CompareEnd.Format(DayLayout) }

type KpiEntry struct {
	Key          KpiKey   `json:"key"`
	Label        string   `json:"label"`
	Value        float64  `json:"value"`
	Unit         Unit     `json:"unit"`
	DeltaPercent *float64 `json:"deltaPercent"`
}

type SourceStatusEntry struct {
	SourceName string    `json:"sourceName"`
	Health     Health    `json:"health"`
	CheckedAt  time.Time `json:"checkedAt"`
	Message    *string   `json:"message"`
}

type AuditEntry struct {
	ID           int64          `json:"id"`
	StartedAt    time.Time      `json:"startedAt"`
	FinishedAt   *time.Time     `json:"finishedAt"`
	Status       string         `json:"status"`
	SourceCount  int            `json:"sourceCount"`
	SuccessCount int            `json:"successCount"`
	FailureCount int            `json:"failureCount"`
	Details      map[string]any `json:"details"`
}

// NoDuration is rendered for runs that are still in flight or carry inconsistent timestamps.
const NoDuration = "—"

// DurationLabel renders the run duration in whole seconds, e.g. "42s".
func (a AuditEntry) DurationLabel() string {
	if a.FinishedAt == nil {
		return NoDuration
	}
	d := a.FinishedAt.Sub(a.StartedAt)
	if d <= 0 {
		return NoDuration
	}
	return strconv.FormatInt(int64(math.Round(d.Seconds())), 10) + "s"
}

// Dashboard is the aggregate handed to the presentation layer. The three series share
// the same points and are viewed through different metrics.
type Dashboard struct {
	Kpis           []KpiEntry          `json:"kpis"`
	EnergySeries   []DailyPoint        `json:"energySeries"`
	HotWaterSeries []DailyPoint        `json:"hotWaterSeries"`
	EvSeries       []DailyPoint        `json:"evSeries"`
	SourceStatus   []SourceStatusEntry `json:"sourceStatus"`
	IngestionAudit []AuditEntry        `json:"ingestionAudit"`
	HasData        bool                `json:"hasData"`
	GeneratedAt    time.Time           `json:"generatedAt"`
}

func (d *Dashboard) Kpi(key KpiKey) (KpiEntry, bool) {
	for _, k := range d.Kpis {
		if k.Key == key {
			return k, true
		}
	}
	return KpiEntry{}, false
}
