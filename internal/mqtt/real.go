package mqtt

import (
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client      paho.Client
	statusTopic string
}

// NewRealPublisher connects to broker. The broker marks the scheduler offline
// on the status topic under base if the connection drops.
func NewRealPublisher(broker, base, clientID string, logger *slog.Logger) (*RealPublisher, error) {
	statusTopic := StatusTopic(base)
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(ClientID(clientID)).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(statusTopic, Offline, 1, true).
		SetOnConnectHandler(func(c paho.Client) {
			logger.Info("MQTT connected", "broker", broker)
			c.Publish(statusTopic, 1, true, Online)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn("MQTT connection lost", "broker", broker, "error", err)
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealPublisher{
		client:      client,
		statusTopic: statusTopic,
	}, nil
}

// Publish sends payload with QoS 1.
func (p *RealPublisher) Publish(topic string, payload []byte, retained bool) error {
	token := p.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close marks the scheduler offline and disconnects.
func (p *RealPublisher) Close() error {
	token := p.client.Publish(p.statusTopic, 1, true, Offline)
	token.WaitTimeout(time.Second)
	p.client.Disconnect(1000)
	return nil
}
