package mqtt

import (
	"context"
	"log/slog"

	"github.com/jmylchreest/plugsunset/internal/events"
)

const queueSize = 64

// Forwarder relays bus events to a Publisher without blocking the scheduler.
type Forwarder struct {
	pub    Publisher
	base   string
	queue  chan events.Event
	logger *slog.Logger
}

// NewForwarder creates a Forwarder publishing under the base topic.
func NewForwarder(pub Publisher, base string, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{
		pub:    pub,
		base:   base,
		queue:  make(chan events.Event, queueSize),
		logger: logger,
	}
}

// Handle queues an event, dropping it if the queue is full.
func (f *Forwarder) Handle(e events.Event) {
	select {
	case f.queue <- e:
	default:
		f.logger.Warn("MQTT queue full, dropping event", "type", e.Type)
	}
}

// Run publishes queued events until ctx is done, then drains what is left.
func (f *Forwarder) Run(ctx context.Context) {
	for {
		select {
		case e := <-f.queue:
			f.send(e)
		case <-ctx.Done():
			for {
				select {
				case e := <-f.queue:
					f.send(e)
				default:
					return
				}
			}
		}
	}
}

func (f *Forwarder) send(e events.Event) {
	payload, err := FormatPayload(e)
	if err != nil {
		f.logger.Error("Failed to format MQTT payload", "type", e.Type, "error", err)
		return
	}
	// scheduled transitions are retained so new subscribers see the plan
	retained := e.Type == events.TransitionScheduled
	topic := EventTopic(f.base, e.Type)
	if err := f.pub.Publish(topic, payload, retained); err != nil {
		f.logger.Warn("MQTT publish failed", "topic", topic, "error", err)
		return
	}
	f.logger.Debug("MQTT event published", "topic", topic)
}
