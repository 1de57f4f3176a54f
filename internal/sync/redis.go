package sync

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/redis/go-redis/v9"
)

// RedisBroker subscribes through Redis PUBLISH/SUBSCRIBE. URL uses the
// redis:// scheme understood by redis.ParseURL.
type RedisBroker struct {
	URL string
}

// Connect opens a client and checks it with PING.
func (b *RedisBroker) Connect(ctx context.Context) (Conn, error) {
	opts, err := redis.ParseURL(b.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to %s: %w", opts.Addr, err)
	}

	return &redisConn{client: client, done: make(chan struct{})}, nil
}

type redisConn struct {
	client *redis.Client
	done   chan struct{}

	mu     gosync.Mutex
	pubsub *redis.PubSub
	err    error
	closed bool
	wg     gosync.WaitGroup
}

func (c *redisConn) Subscribe(ctx context.Context, topic string, handler Handler) error {
	ps := c.client.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	c.mu.Lock()
	c.pubsub = ps
	c.mu.Unlock()

	ch := ps.Channel()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for msg := range ch {
			handler([]byte(msg.Payload))
		}
		c.lost(nil)
	}()
	return nil
}

func (c *redisConn) Done() <-chan struct{} { return c.done }

func (c *redisConn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *redisConn) lost(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.err = err
	close(c.done)
}

func (c *redisConn) Close() error {
	c.lost(nil)

	c.mu.Lock()
	ps := c.pubsub
	c.mu.Unlock()

	if ps != nil {
		_ = ps.Close()
	}
	c.wg.Wait()
	return c.client.Close()
}

// RedisPublisher publishes with PUBLISH.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher for url. The connection is opened
// lazily on first publish.
func NewRedisPublisher(url string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return &RedisPublisher{client: redis.NewClient(opts)}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
