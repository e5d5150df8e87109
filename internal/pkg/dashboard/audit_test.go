package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

func TestMapIngestionRuns(t *testing.T) {
	started := time.Date(2024, 1, 7, 6, 0, 0, 0, time.UTC)
	finished := started.Add(95 * time.Second)
	rows := []model.RunRow{
		{ID: 12, StartedAt: started.Add(time.Hour), Status: "running"},
		{
			ID:           11,
			StartedAt:    started,
			FinishedAt:   &finished,
			Status:       "partial_success",
			SourceCount:  4,
			SuccessCount: 3,
			FailureCount: 1,
			Details:      map[string]any{"source_results": []any{"zaptec"}},
		},
	}

	got := MapIngestionRuns(rows)

	require.Len(t, got, 2)
	assert.Equal(t, int64(12), got[0].ID)
	assert.Nil(t, got[0].FinishedAt)
	assert.Equal(t, model.NoDuration, got[0].DurationLabel())
	assert.Equal(t, model.AuditEntry{
		ID:           11,
		StartedAt:    started,
		FinishedAt:   &finished,
		Status:       "partial_success",
		SourceCount:  4,
		SuccessCount: 3,
		FailureCount: 1,
		Details:      map[string]any{"source_results": []any{"zaptec"}},
	}, got[1])
	assert.Equal(t, "95s", got[1].DurationLabel())
}
