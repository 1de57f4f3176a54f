// Package sync keeps the client in step with the backends by listening
// to the per-user change topic on a message broker.
package sync

import (
	"context"
	"log"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskapp/internal/session"
)

// RefreshMsg is a tea.Msg sent once for every message received on the
// user's topic, whatever its payload. Consumers refetch tasks and unread
// notifications in response.
type RefreshMsg struct {
	UserID     string
	Generation uint64
	Topic      string
}

// StatusMsg is a tea.Msg reporting connection changes.
type StatusMsg struct {
	Generation uint64
	Connected  bool
	Err        error
}

// TopicFunc maps a user id to the topic that carries their changes.
type TopicFunc func(userID string) string

// Subscriber holds at most one broker subscription, bound to the current
// authenticated session.
type Subscriber struct {
	broker     Broker
	topicFor   TopicFunc
	minBackoff time.Duration
	maxBackoff time.Duration

	events chan tea.Msg
	// sending is held shared by every send; Stop takes it exclusively to
	// wait out sends that raced the cancellation.
	sending gosync.RWMutex

	mu     gosync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Subscriber. It does nothing until Start or OnSession.
func New(broker Broker, topicFor TopicFunc, minBackoff, maxBackoff time.Duration) *Subscriber {
	return &Subscriber{
		broker:     broker,
		topicFor:   topicFor,
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
		events:     make(chan tea.Msg, 16),
	}
}

// OnSession is a session.Watcher. It subscribes on entering the
// authenticated state and tears the subscription down on any other state
// before returning.
func (s *Subscriber) OnSession(snap session.Snapshot) {
	if snap.Authenticated() {
		s.Start(snap.Context(), snap.Session.User.ID, snap.Generation)
		return
	}
	s.Stop()
}

// Start replaces any running subscription with one for userID. It ends
// when parent is cancelled or Stop is called.
func (s *Subscriber) Start(parent context.Context, userID string, generation uint64) {
	s.Stop()

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	t := target{userID: userID, generation: generation, topic: s.topicFor(userID)}
	go s.run(ctx, t, done)
}

// Stop cancels the running subscription, waits for its connection to
// close and discards any refresh not yet consumed.
func (s *Subscriber) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	// Sends that began before cancel finish here; later ones see ctx done.
	s.sending.Lock()
	s.sending.Unlock()

	for {
		select {
		case <-s.events:
		default:
			return
		}
	}
}

// Events delivers RefreshMsg and StatusMsg values.
func (s *Subscriber) Events() <-chan tea.Msg {
	return s.events
}

// WaitForNextResult returns a tea.Cmd that waits for the next event.
// Call it again after handling each event to keep listening.
func (s *Subscriber) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-s.events
		if !ok {
			return nil
		}
		return msg
	}
}

type target struct {
	userID     string
	generation uint64
	topic      string
}

// run connects, subscribes and waits, reconnecting with exponential
// backoff until ctx ends.
func (s *Subscriber) run(ctx context.Context, t target, done chan struct{}) {
	defer close(done)

	bo := newBackoff(s.minBackoff, s.maxBackoff)
	handler := func([]byte) {
		s.send(ctx, RefreshMsg{UserID: t.userID, Generation: t.generation, Topic: t.topic}, true)
	}

	for {
		conn, err := s.connect(ctx, t.topic, handler)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("sync: subscribing to %s: %v", t.topic, err)
			s.status(ctx, StatusMsg{Generation: t.generation, Err: err})
			if !sleep(ctx, bo.Next()) {
				return
			}
			continue
		}

		bo.Reset()
		s.status(ctx, StatusMsg{Generation: t.generation, Connected: true})

		select {
		case <-ctx.Done():
			_ = conn.Close()
			return
		case <-conn.Done():
			lostErr := conn.Err()
			_ = conn.Close()
			log.Printf("sync: connection for %s lost: %v", t.topic, lostErr)
			s.status(ctx, StatusMsg{Generation: t.generation, Err: lostErr})
			if !sleep(ctx, bo.Next()) {
				return
			}
		}
	}
}

func (s *Subscriber) connect(ctx context.Context, topic string, handler Handler) (Conn, error) {
	conn, err := s.broker.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if err := conn.Subscribe(ctx, topic, handler); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// status sends a StatusMsg without blocking; a full channel drops it.
func (s *Subscriber) status(ctx context.Context, msg StatusMsg) {
	s.send(ctx, msg, false)
}

// send enqueues msg unless ctx has ended. A blocking send waits for room
// or cancellation; otherwise a full channel drops msg.
func (s *Subscriber) send(ctx context.Context, msg tea.Msg, block bool) {
	s.sending.RLock()
	defer s.sending.RUnlock()

	if ctx.Err() != nil {
		return
	}
	if !block {
		select {
		case s.events <- msg:
		default:
		}
		return
	}
	select {
	case s.events <- msg:
	case <-ctx.Done():
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
