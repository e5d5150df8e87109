package model

import "time"

// DailyRow is one row of energy.dashboard_daily. Every metric may be NULL.
type DailyRow struct {
	Day             string
	BruttoKwh       *float64
	EvKwh           *float64
	NettoKwh        *float64
	HotWaterUsage   *float64
	AvgTemperatureC *float64
}

// StatusRow is one health check of energy.source_status.
type StatusRow struct {
	SourceName string
	CheckedAt  time.Time
	Status     string
	Message    *string
}

// RunRow is one execution of the ingestion process from energy.ingestion_runs.
type RunRow struct {
	ID           int64
	StartedAt    time.Time
	FinishedAt   *time.Time
	Status       string
	SourceCount  int
	SuccessCount int
	FailureCount int
	Details      map[string]any
}
