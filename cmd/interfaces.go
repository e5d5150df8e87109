package cmd

import (
	"context"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
	"github.com/anicoll/energy-dashboard/internal/pkg/resync"
)

// Refresher is what the scheduled job expects from the dashboard tracker.
type Refresher interface {
	Refresh(ctx context.Context, preset model.Preset) (*model.Dashboard, error)
}

// Syncer is what the scheduled job expects from the resync client.
type Syncer interface {
	Configured() bool
	Sync(ctx context.Context) (resync.Result, error)
}
