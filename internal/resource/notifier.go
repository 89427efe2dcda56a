package resource

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-console/internal/store"
	"github.com/jwalitptl/clinic-console/pkg/messaging"
	"github.com/jwalitptl/clinic-console/pkg/metrics"
)

const eventMessageType = "store.event"

// BrokerNotifier publishes store events on a messaging.Broker.
type BrokerNotifier struct {
	broker  messaging.Broker
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewBrokerNotifier(broker messaging.Broker, m *metrics.Metrics, logger zerolog.Logger) *BrokerNotifier {
	return &BrokerNotifier{broker: broker, metrics: m, logger: logger}
}

func (n *BrokerNotifier) Notify(ctx context.Context, topic string, ev store.Event) error {
	msg := messaging.Message{Type: eventMessageType, Payload: ev}
	if err := n.broker.Publish(ctx, topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	n.metrics.CountNotification(topic, "out")
	n.logger.Debug().
		Str("topic", topic).
		Str("entity", ev.Entity).
		Str("kind", string(ev.Kind)).
		Msg("refresh notification published")
	return nil
}

// decodeEvent reads a store event out of a broker message.
func decodeEvent(payload []byte) (store.Event, error) {
	var msg struct {
		Type    string      `json:"type"`
		Payload store.Event `json:"payload"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return store.Event{}, fmt.Errorf("failed to decode notification: %w", err)
	}
	if msg.Type != eventMessageType {
		return store.Event{}, fmt.Errorf("unexpected notification type %q", msg.Type)
	}
	return msg.Payload, nil
}
