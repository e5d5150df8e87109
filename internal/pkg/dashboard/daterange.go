package dashboard

import (
	"fmt"
	"time"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

// rollingLookbackDays is how far before the reporting window daily metrics are fetched,
// so the first reported days already have a full rolling-average history.
const rollingLookbackDays = 120

// ResolveRange maps a preset to concrete calendar boundaries. The calendar day of now is
// taken in now's location.
func ResolveRange(preset model.Preset, now time.Time) (model.DateRange, error) {
	end := calendarDay(now)

	var start time.Time
	switch preset {
	case model.PresetThisMonth:
		start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	case model.PresetLast30Days:
		start = end.AddDate(0, 0, -29)
	case model.PresetLast3Months:
		start = end.AddDate(0, -3, 1)
	default:
		return model.DateRange{}, fmt.Errorf("%w: %q", ErrInvalidPreset, preset)
	}

	compareEnd := start.AddDate(0, 0, -1)
	span := max(1, int(end.Sub(start).Hours()/24)+1)

	return model.DateRange{
		Start:        start,
		End:          end,
		CompareStart: compareEnd.AddDate(0, 0, -(span - 1)),
		CompareEnd:   compareEnd,
		WindowStart:  start.AddDate(0, 0, -rollingLookbackDays),
	}, nil
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
