package model

type RegisterDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

// RegisterMessage is the Home Assistant MQTT discovery payload for one sensor.
type RegisterMessage struct {
	Tilda             string         `json:"~"`
	Name              string         `json:"name"`
	ID                string         `json:"unique_id"`
	StateTopic        string         `json:"state_topic"`
	UnitOfMeasurement string         `json:"unit_of_measurement,omitempty"`
	ValueTemplate     string         `json:"value_template"`
	Device            RegisterDevice `json:"device"`
}

// SensorState is published on a sensor's state topic.
type SensorState struct {
	Value             string `json:"value"`
	UnitOfMeasurement string `json:"unit_of_measurement,omitempty"`
	DeltaPercent      string `json:"delta_percent,omitempty"`
}

// Reading is one KPI flattened for sensor sinks. Values are preformatted so sinks and change
// detection compare exactly what gets published.
type Reading struct {
	Identifier   string
	Slug         string
	Name         string
	Value        string
	Unit         string
	DeltaPercent string
}
