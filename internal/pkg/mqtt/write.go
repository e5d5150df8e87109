package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

const discoveryPrefix = "homeassistant/sensor"

func (s *Service) Write(ctx context.Context, readings []model.Reading) error {
	for _, r := range readings {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.registerSensor(r); err != nil {
			return fmt.Errorf("register sensor %s: %w", r.Slug, err)
		}
		if err := s.publishState(r); err != nil {
			return fmt.Errorf("publish sensor %s: %w", r.Slug, err)
		}
	}
	return nil
}

func (s *Service) registerSensor(r model.Reading) error {
	key := r.Identifier + "_" + r.Slug
	s.mu.Lock()
	_, exists := s.configured[key]
	s.mu.Unlock()
	if exists {
		return nil
	}

	payload, err := json.Marshal(registerMsg(r))
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/%s/config", discoveryPrefix, key)
	if err := wait(s.client.Publish(topic, 1, true, payload), 5*time.Second); err != nil {
		return err
	}

	s.mu.Lock()
	s.configured[key] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("registered sensor", zap.String("topic", topic))
	return nil
}

func (s *Service) publishState(r model.Reading) error {
	payload, err := json.Marshal(model.SensorState{
		Value:             r.Value,
		UnitOfMeasurement: r.Unit,
		DeltaPercent:      r.DeltaPercent,
	})
	if err != nil {
		return err
	}
	return wait(s.client.Publish(stateTopic(r), 0, false, payload), 10*time.Second)
}

func stateTopic(r model.Reading) string {
	return fmt.Sprintf("%s/%s/%s/state", discoveryPrefix, r.Identifier, r.Slug)
}

func registerMsg(r model.Reading) model.RegisterMessage {
	return model.RegisterMessage{
		Tilda:             fmt.Sprintf("%s/%s/%s", discoveryPrefix, r.Identifier, r.Slug),
		Name:              r.Name,
		ID:                r.Identifier + "_" + r.Slug,
		StateTopic:        "~/state",
		UnitOfMeasurement: r.Unit,
		ValueTemplate:     "{{ value_json.value }}",
		Device: model.RegisterDevice{
			Name:         r.Identifier,
			Identifiers:  []string{r.Identifier},
			Model:        "Energy Dashboard",
			Manufacturer: "energy-dashboard",
		},
	}
}
