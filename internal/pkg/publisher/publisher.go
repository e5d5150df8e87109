package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

var ErrAlreadyRegistered = errors.New("publisher already registered")

type sink interface {
	// Write publishes the readings that changed since the last dashboard.
	Write(ctx context.Context, readings []model.Reading) error
}

// Publisher fans assembled dashboards out to the registered sinks as KPI readings.
type Publisher struct {
	identifier string
	logger     *zap.Logger

	mu    sync.RWMutex
	sinks map[string]sink

	sensors sync.Map
}

// New returns a publisher whose readings are identified by device.
func New(device string) *Publisher {
	return &Publisher{
		identifier: Identifier(device),
		logger:     zap.L(),
		sinks:      make(map[string]sink),
	}
}

// Identifier turns a display name into a sensor-safe id.
func Identifier(name string) string {
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}

func (p *Publisher) Register(name string, s sink) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sinks[name]; ok {
		return ErrAlreadyRegistered
	}
	p.sinks[name] = s
	return nil
}

// Publish writes the KPIs of d that changed to every sink. A failing sink is logged and
// skipped. Readings count as sent once at least one sink accepted them, so a round where
// every sink fails is retried on the next dashboard.
func (p *Publisher) Publish(ctx context.Context, d *model.Dashboard) error {
	if d == nil {
		return nil
	}

	readings := make([]model.Reading, 0, len(d.Kpis))
	for _, kpi := range d.Kpis {
		reading := p.toReading(kpi)
		if !p.shouldUpdate(reading) {
			continue
		}
		readings = append(readings, reading)
	}
	if len(readings) == 0 {
		p.logger.Debug("no sensor changes to publish")
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	written := false
	for name, s := range p.sinks {
		if err := s.Write(ctx, readings); err != nil {
			p.logger.Error("failed to publish data", zap.Error(err), zap.String("publisher", name))
			continue
		}
		written = true
		p.logger.Debug("updated sensors", zap.Int("count", len(readings)), zap.String("publisher", name))
	}
	if written {
		for _, reading := range readings {
			p.sensors.Store(sensorKey(reading), sensorValue(reading))
		}
	}
	return nil
}

func (p *Publisher) toReading(kpi model.KpiEntry) model.Reading {
	reading := model.Reading{
		Identifier: p.identifier,
		Slug:       Identifier(kpi.Key.String()),
		Name:       kpi.Label,
		Value:      decimal.NewFromFloat(kpi.Value).StringFixed(2),
		Unit:       string(kpi.Unit),
	}
	if kpi.DeltaPercent != nil {
		reading.DeltaPercent = decimal.NewFromFloat(*kpi.DeltaPercent).StringFixed(1)
	}
	return reading
}

func (p *Publisher) shouldUpdate(r model.Reading) bool {
	oldValue, exists := p.sensors.Load(sensorKey(r))
	if exists && strings.EqualFold(sensorValue(r), oldValue.(string)) {
		return false
	}
	if !exists {
		p.logger.Info("configured sensor", zap.String("device", r.Identifier), zap.String("sensor", r.Slug), zap.String("value", r.Value))
	}
	return true
}

func sensorKey(r model.Reading) string {
	return fmt.Sprintf("%s_%s", r.Identifier, r.Slug)
}

func sensorValue(r model.Reading) string {
	return r.Value + "|" + r.DeltaPercent
}
