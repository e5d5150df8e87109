package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

// DailyMetrics returns the daily rows with from <= day <= to, oldest first. Only the
// calendar dates of from and to are used, independent of the session time zone.
func (db *Database) DailyMetrics(ctx context.Context, from, to time.Time) ([]model.DailyRow, error) {
	const query = `
	SELECT to_char(day, 'YYYY-MM-DD'), brutto_kwh, ev_kwh, netto_kwh, hot_water_usage, avg_temperature_c
	FROM energy.dashboard_daily
	WHERE day >= $1::date AND day <= $2::date
	ORDER BY day ASC;
	`

	rows, err := db.pool.Query(ctx, query, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDailyRows(rows)
}

func scanDailyRows(rows pgx.Rows) ([]model.DailyRow, error) {
	var daily []model.DailyRow
	for rows.Next() {
		var row model.DailyRow
		if err := rows.Scan(&row.Day, &row.BruttoKwh, &row.EvKwh, &row.NettoKwh, &row.HotWaterUsage, &row.AvgTemperatureC); err != nil {
			return nil, err
		}
		daily = append(daily, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return daily, nil
}

// SourceStatuses returns the latest status events across all sources, newest first.
func (db *Database) SourceStatuses(ctx context.Context, limit int) ([]model.StatusRow, error) {
	const query = `
	SELECT source_name, checked_at, status, message
	FROM energy.source_status
	ORDER BY checked_at DESC
	LIMIT $1;
	`

	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStatusRows(rows)
}

func scanStatusRows(rows pgx.Rows) ([]model.StatusRow, error) {
	var statuses []model.StatusRow
	for rows.Next() {
		var status model.StatusRow
		if err := rows.Scan(&status.SourceName, &status.CheckedAt, &status.Status, &status.Message); err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return statuses, nil
}

// IngestionRuns returns the latest ingestion runs, newest first.
func (db *Database) IngestionRuns(ctx context.Context, limit int) ([]model.RunRow, error) {
	const query = `
	SELECT id, started_at, finished_at, status, source_count, success_count, failure_count, details
	FROM energy.ingestion_runs
	ORDER BY started_at DESC
	LIMIT $1;
	`

	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRunRows(rows)
}

func scanRunRows(rows pgx.Rows) ([]model.RunRow, error) {
	var runs []model.RunRow
	for rows.Next() {
		var run model.RunRow
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.SourceCount, &run.SuccessCount, &run.FailureCount, &run.Details); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
