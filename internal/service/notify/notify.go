// internal/service/notify/notify.go

package notify

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// RefreshEvent announces that the loader published a fresh snapshot.
type RefreshEvent struct {
	WindowDays int       `json:"window_days"`
	Places     int       `json:"places"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Notifier fans refresh events out to interested consumers (websocket
// sessions, other instances).
type Notifier interface {
	// NotifyRefresh publishes a refresh event
	NotifyRefresh(ev RefreshEvent)

	// Subscribe registers a handler and returns an unsubscribe func
	Subscribe(fn func(RefreshEvent)) func()
}

// LocalNotifier delivers refresh events to in-process subscribers only.
type LocalNotifier struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(RefreshEvent)
}

// NewLocalNotifier creates an in-process notifier
func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{
		handlers: make(map[int]func(RefreshEvent)),
	}
}

// NotifyRefresh delivers the event to every subscriber
func (n *LocalNotifier) NotifyRefresh(ev RefreshEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, fn := range n.handlers {
		fn(ev)
	}
}

// Subscribe registers a handler
func (n *LocalNotifier) Subscribe(fn func(RefreshEvent)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.handlers[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.handlers, id)
	}
}

// NATSNotifier publishes refresh events over NATS so that every instance
// subscribed to the subject repushes its sessions, while also delivering
// locally through its embedded subscriber set.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
	local   *LocalNotifier
}

// NewNATSNotifier creates a NATS-backed notifier. Incoming messages on
// the subject are fanned out to local subscribers.
func NewNATSNotifier(conn *nats.Conn, subject string) (*NATSNotifier, error) {
	n := &NATSNotifier{
		conn:    conn,
		subject: subject,
		local:   NewLocalNotifier(),
	}

	_, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		var ev RefreshEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("Discarding malformed refresh message: %v", err)
			return
		}
		n.local.NotifyRefresh(ev)
	})
	if err != nil {
		return nil, err
	}

	return n, nil
}

// NotifyRefresh publishes the event to the NATS subject. Local delivery
// happens when the message comes back through the subscription, so every
// instance (this one included) takes the same path.
func (n *NATSNotifier) NotifyRefresh(ev RefreshEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Failed to marshal refresh event: %v", err)
		return
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		log.Printf("Failed to publish refresh event: %v", err)
		// Degrade to local delivery so connected sessions still repaint
		n.local.NotifyRefresh(ev)
	}
}

// Subscribe registers a handler for refresh events
func (n *NATSNotifier) Subscribe(fn func(RefreshEvent)) func() {
	return n.local.Subscribe(fn)
}
