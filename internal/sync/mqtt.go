package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const mqttQoS = 1

// MQTTBroker connects to an MQTT broker over tcp://, ssl://, ws:// or
// wss://. Reconnection is left to the Subscriber.
type MQTTBroker struct {
	URL          string
	ClientPrefix string
}

// Connect dials the broker with a fresh client id.
func (b *MQTTBroker) Connect(ctx context.Context) (Conn, error) {
	conn := &mqttConn{done: make(chan struct{})}

	client := mqtt.NewClient(mqttOptions(b.URL, b.ClientPrefix).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			conn.lost(err)
		}))

	if err := waitToken(ctx, client.Connect()); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("connecting to %s: %w", b.URL, err)
	}

	conn.client = client
	return conn, nil
}

func mqttOptions(url, prefix string) *mqtt.ClientOptions {
	if prefix == "" {
		prefix = "taskapp"
	}
	return mqtt.NewClientOptions().
		AddBroker(url).
		SetClientID(prefix + "-" + uuid.NewString()[:8]).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(10 * time.Second).
		SetKeepAlive(30 * time.Second)
}

// waitToken blocks until tok completes or ctx ends.
func waitToken(ctx context.Context, tok mqtt.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

type mqttConn struct {
	client mqtt.Client
	done   chan struct{}

	mu     gosync.Mutex
	err    error
	closed bool
}

func (c *mqttConn) Subscribe(ctx context.Context, topic string, handler Handler) error {
	tok := c.client.Subscribe(topic, mqttQoS, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	})
	if err := waitToken(ctx, tok); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	return nil
}

func (c *mqttConn) Done() <-chan struct{} { return c.done }

func (c *mqttConn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *mqttConn) lost(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.err = err
	close(c.done)
}

func (c *mqttConn) Close() error {
	c.lost(nil)
	c.client.Disconnect(250)
	return nil
}

// MQTTPublisher publishes with QoS 1 over a single connection.
type MQTTPublisher struct {
	client mqtt.Client
}

// DialMQTTPublisher connects a publisher. Unlike subscribers, publishers
// let paho reconnect on their own.
func DialMQTTPublisher(ctx context.Context, url string) (*MQTTPublisher, error) {
	opts := mqttOptions(url, "taskapp-pub").SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if err := waitToken(ctx, client.Connect()); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	return &MQTTPublisher{client: client}, nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := waitToken(ctx, p.client.Publish(topic, mqttQoS, false, payload)); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
