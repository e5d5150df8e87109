package dashboard

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

// DedupeLatestStatuses keeps the most recent event per source, sorted by source name.
// An event only replaces the stored one when its timestamp is strictly later, so input
// order never matters.
func DedupeLatestStatuses(rows []model.StatusRow) []model.SourceStatusEntry {
	latest := make(map[string]model.StatusRow, len(rows))
	for _, row := range rows {
		existing, ok := latest[row.SourceName]
		if !ok || row.CheckedAt.After(existing.CheckedAt) {
			latest[row.SourceName] = row
		}
	}

	entries := lo.MapToSlice(latest, func(name string, row model.StatusRow) model.SourceStatusEntry {
		return model.SourceStatusEntry{
			SourceName: name,
			Health:     ClassifyHealth(row.Status),
			CheckedAt:  row.CheckedAt,
			Message:    row.Message,
		}
	})
	slices.SortFunc(entries, func(a, b model.SourceStatusEntry) int {
		return strings.Compare(a.SourceName, b.SourceName)
	})
	return entries
}

// ClassifyHealth maps a free-form status string to a tier. Unknown strings are errors.
func ClassifyHealth(status string) model.Health {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ok", "healthy", "success":
		return model.HealthHealthy
	case "warning", "degraded", "partial":
		return model.HealthWarning
	default:
		return model.HealthError
	}
}
