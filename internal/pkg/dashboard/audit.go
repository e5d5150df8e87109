package dashboard

import (
	"github.com/samber/lo"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

// MapIngestionRuns reshapes run rows into audit entries, keeping their order.
func MapIngestionRuns(rows []model.RunRow) []model.AuditEntry {
	return lo.Map(rows, func(row model.RunRow, _ int) model.AuditEntry {
		return model.AuditEntry{
			ID:           row.ID,
			StartedAt:    row.StartedAt,
			FinishedAt:   row.FinishedAt,
			Status:       row.Status,
			SourceCount:  row.SourceCount,
			SuccessCount: row.SuccessCount,
			FailureCount: row.FailureCount,
			Details:      row.Details,
		}
	})
}
