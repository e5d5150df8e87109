package dashboard

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPreset is returned for a preset outside model.Presets.
	ErrInvalidPreset = errors.New("invalid preset")
	// ErrReadFailure matches every *ReadError.
	ErrReadFailure = errors.New("read failure")
	// ErrSuperseded is returned by Tracker.Refresh when a newer refresh started before this one finished.
	ErrSuperseded = errors.New("refresh superseded by a newer request")
)

// Names of the three store reads, used in errors, logs and metrics.
const (
	ReadDailyMetrics  = "dashboard_daily"
	ReadSourceStatus  = "source_status"
	ReadIngestionRuns = "ingestion_runs"
)

// ReadError reports which store read failed an assembly.
type ReadError struct {
	Read string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Read, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func (e *ReadError) Is(target error) bool {
	return target == ErrReadFailure
}
