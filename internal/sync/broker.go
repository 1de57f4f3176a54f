package sync

import (
	"context"
	"fmt"

	"github.com/nhle/taskapp/internal/model"
)

// Handler receives the raw payload of each message on a subscribed topic.
type Handler func(payload []byte)

// Broker opens connections to a message broker.
type Broker interface {
	Connect(ctx context.Context) (Conn, error)
}

// Conn is one live broker connection.
type Conn interface {
	// Subscribe registers handler for topic and returns once the broker
	// has acknowledged the subscription.
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Done is closed when the connection is lost.
	Done() <-chan struct{}

	// Err returns the reason the connection was lost, if known.
	Err() error

	// Close tears the connection down. It is safe to call more than once.
	Close() error
}

// Publisher sends a payload to a topic. The dev backend uses it to
// announce task changes.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}

// NewBroker returns the broker selected by cfg.Kind.
func NewBroker(cfg model.BrokerConfig) (Broker, error) {
	switch cfg.Kind {
	case "", "mqtt":
		return &MQTTBroker{URL: cfg.URL, ClientPrefix: "taskapp"}, nil
	case "redis":
		return &RedisBroker{URL: cfg.URL}, nil
	default:
		return nil, fmt.Errorf("unknown broker kind %q", cfg.Kind)
	}
}

// NewPublisher returns a connected publisher for the broker selected by
// cfg.Kind.
func NewPublisher(ctx context.Context, cfg model.BrokerConfig) (Publisher, error) {
	switch cfg.Kind {
	case "", "mqtt":
		return DialMQTTPublisher(ctx, cfg.URL)
	case "redis":
		return NewRedisPublisher(cfg.URL)
	default:
		return nil, fmt.Errorf("unknown broker kind %q", cfg.Kind)
	}
}
