package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope every broker carries.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// MessageBroker is the handler-style view of a Broker.
type MessageBroker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string, handler func([]byte) error) error
	Close() error
}

// Pinger is implemented by brokers that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
