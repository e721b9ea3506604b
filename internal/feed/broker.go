package feed

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Broker fans encoded events out to every server instance, including this one.
type Broker interface {
	Publish(ctx context.Context, data []byte) error
}

// BrokerPublisher publishes through a Broker instead of the local hub.
type BrokerPublisher struct {
	broker Broker
}

func NewBrokerPublisher(b Broker) *BrokerPublisher {
	return &BrokerPublisher{broker: b}
}

func (p *BrokerPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.broker.Publish(ctx, data)
}

// Notify builds and publishes an event. Failures are logged; a request never
// fails because the feed is unavailable.
func Notify(ctx context.Context, p Publisher, eventType string, payload interface{}) {
	e, err := NewEvent(eventType, payload)
	if err != nil {
		slog.Error("failed to encode feed event", "type", eventType, "error", err)
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish feed event", "type", eventType, "error", err)
	}
}
