package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

var errTimeout = errors.New("mqtt operation timed out")

type client interface {
	Connect() paho_mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) paho_mqtt.Token
}

// Service publishes KPI readings as Home Assistant sensors.
type Service struct {
	client client
	logger *zap.Logger

	mu         sync.Mutex
	configured map[string]struct{}
}

func New(c client) *Service {
	return &Service{
		client:     c,
		logger:     zap.L(),
		configured: make(map[string]struct{}),
	}
}

// NewClient builds a paho client for a broker at host, e.g. tcp://homeassistant.local:1883.
func NewClient(host, username, password, clientID string) paho_mqtt.Client {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(host).
		SetClientID(clientID).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true)
	return paho_mqtt.NewClient(opts)
}

func (s *Service) Connect() error {
	if err := wait(s.client.Connect(), 5*time.Second); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	return nil
}

func wait(token paho_mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return errTimeout
	}
	return token.Error()
}
