package model

type Preset string

func (p Preset) String() string {
	return string(p)
}

const (
	PresetThisMonth   Preset = "thisMonth"
	PresetLast30Days  Preset = "last30Days"
	PresetLast3Months Preset = "last3Months"
)

var Presets = []Preset{
	PresetThisMonth,
	PresetLast30Days,
	PresetLast3Months,
}

func (p Preset) Valid() bool {
	for _, known := range Presets {
		if p == known {
			return true
		}
	}
	return false
}

type Unit string

const (
	UnitKiloWattHour Unit = "kWh"
	UnitCubicMetre   Unit = "m³"
	UnitDegreeC      Unit = "°C"
)

type KpiKey string

func (k KpiKey) String() string {
	return string(k)
}

const (
	KpiBrutto   KpiKey = "brutto"
	KpiNetto    KpiKey = "netto"
	KpiEV       KpiKey = "ev"
	KpiHotWater KpiKey = "hot_water"
	KpiWeather  KpiKey = "weather"
)

// Health is the normalised tier of a source status string.
type Health string

func (h Health) String() string {
	return string(h)
}

const (
	HealthHealthy Health = "healthy"
	HealthWarning Health = "warning"
	HealthError   Health = "error"
)

// DayLayout is the ISO calendar date format used for DailyPoint.Day and range boundaries.
const DayLayout = "2006-01-02"
