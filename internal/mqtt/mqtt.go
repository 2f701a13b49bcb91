// Package mqtt forwards scheduler events to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmylchreest/plugsunset/internal/events"
)

// Publisher sends payloads to a broker.
type Publisher interface {
	// Publish sends payload to topic. Failures are reported, never fatal.
	Publish(topic string, payload []byte, retained bool) error

	// Close disconnects from the broker.
	Close() error
}

// Availability payloads published to the status topic
const (
	Online  = "online"
	Offline = "offline"
)

// Payload is the JSON body of every event message.
type Payload struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// FormatPayload renders an event for the wire.
func FormatPayload(e events.Event) ([]byte, error) {
	data := e.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return json.Marshal(Payload{
		Type:      string(e.Type),
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		Data:      data,
	})
}

// EventTopic returns the topic an event type is published to, e.g.
// plugsunset/events/plug/state_applied.
func EventTopic(base string, t events.EventType) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.ReplaceAll(string(t), ".", "/")
}

// StatusTopic returns the retained availability topic under base.
func StatusTopic(base string) string {
	return strings.TrimSuffix(base, "/") + "/status"
}

// ClientID returns prefix with a random suffix so restarts don't collide with
// a session the broker still holds open.
func ClientID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
