package database

import (
	"context"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

// UpsertDaily writes daily rows, replacing existing days.
func (db *Database) UpsertDaily(ctx context.Context, rows []model.DailyRow) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO energy.dashboard_daily (day, brutto_kwh, ev_kwh, netto_kwh, hot_water_usage, avg_temperature_c)
			VALUES ($1::date, $2, $3, $4, $5, $6)
			ON CONFLICT (day) DO UPDATE SET
				brutto_kwh = EXCLUDED.brutto_kwh,
				ev_kwh = EXCLUDED.ev_kwh,
				netto_kwh = EXCLUDED.netto_kwh,
				hot_water_usage = EXCLUDED.hot_water_usage,
				avg_temperature_c = EXCLUDED.avg_temperature_c
		`, row.Day, row.BruttoKwh, row.EvKwh, row.NettoKwh, row.HotWaterUsage, row.AvgTemperatureC); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// RecordRun stores a finished ingestion run together with the status each source reported
// in it.
func (db *Database) RecordRun(ctx context.Context, run model.RunRow, statuses []model.StatusRow) (int64, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO energy.ingestion_runs (started_at, finished_at, status, source_count, success_count, failure_count, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, run.StartedAt, run.FinishedAt, run.Status, run.SourceCount, run.SuccessCount, run.FailureCount, run.Details).Scan(&id); err != nil {
		return 0, err
	}

	for _, status := range statuses {
		if _, err := tx.Exec(ctx, `
			INSERT INTO energy.source_status (source_name, checked_at, status, message, run_id)
			VALUES ($1, $2, $3, $4, $5)
		`, status.SourceName, status.CheckedAt, status.Status, status.Message, id); err != nil {
			return 0, err
		}
	}

	return id, tx.Commit(ctx)
}
