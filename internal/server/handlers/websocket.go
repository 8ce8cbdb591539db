// internal/server/handlers/websocket.go

package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"placemap/internal/domain/filter"
	"placemap/internal/domain/geo"
	"placemap/internal/domain/place"
	"placemap/internal/metrics"
	"placemap/internal/service/loader"
	"placemap/internal/service/notify"
	"placemap/internal/service/view"
)

// clientMessage is one inbound UI event from the map frontend.
type clientMessage struct {
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
	Days  int    `json:"days,omitempty"`

	South float64 `json:"south,omitempty"`
	West  float64 `json:"west,omitempty"`
	North float64 `json:"north,omitempty"`
	East  float64 `json:"east,omitempty"`
}

// viewMessage is the outbound render payload pushed after each
// recomputation pass.
type viewMessage struct {
	Type string `json:"type"`
	view.Result
	ActiveLabels []string `json:"active_labels"`
	Categories   []string `json:"categories"`
	WindowDays   int      `json:"window_days"`
}

// MapSessionConfig contains configuration for WebSocket map sessions
type MapSessionConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64

	// Quiescent delay before a viewport change is applied
	Debounce time.Duration

	// Time window used until the client picks one
	DefaultWindowDays int
}

// DefaultMapSessionConfig returns the default session configuration
func DefaultMapSessionConfig() MapSessionConfig {
	return MapSessionConfig{
		WriteWait:         10 * time.Second,
		PongWait:          60 * time.Second,
		PingPeriod:        (60 * time.Second * 9) / 10,
		MaxMessageSize:    64 * 1024,
		Debounce:          300 * time.Millisecond,
		DefaultWindowDays: 14,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced at the router; the map is read-only
		return true
	},
}

// mapSession is one connected map client: its filter selection, its
// viewport and its time window. All state transitions run on the
// session's run goroutine, so passes never race; a newer event simply
// supersedes the output of an older one.
type mapSession struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	inbound chan clientMessage
	refresh chan struct{}
	done    chan struct{}
	closer  sync.Once

	loader  *loader.Loader
	reducer *view.Reducer
	config  MapSessionConfig

	windowDays int
	selection  filter.Selection
	viewport   *geo.Viewport
}

// MapWebSocketHandler upgrades map clients and runs their sessions.
// Loader refresh notifications repush every connected session.
func MapWebSocketHandler(
	l *loader.Loader,
	reducer *view.Reducer,
	notifier notify.Notifier,
	config MapSessionConfig,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade to WebSocket: %v", err)
			return
		}

		session := &mapSession{
			id:         uuid.NewString(),
			conn:       conn,
			send:       make(chan []byte, 16),
			inbound:    make(chan clientMessage, 16),
			refresh:    make(chan struct{}, 1),
			done:       make(chan struct{}),
			loader:     l,
			reducer:    reducer,
			config:     config,
			windowDays: config.DefaultWindowDays,
		}

		unsubscribe := notifier.Subscribe(func(notify.RefreshEvent) {
			select {
			case session.refresh <- struct{}{}:
			default:
			}
		})

		metrics.ActiveSessions.Inc()
		log.Printf("New map session %s from %s", session.id, r.RemoteAddr)

		go session.writePump()
		go session.readPump()
		go func() {
			defer unsubscribe()
			defer metrics.ActiveSessions.Dec()
			// The request context dies with the upgrade handler; the
			// session outlives it.
			session.run(context.Background())
		}()
	}
}

// run owns the session state: it applies inbound events, debounces
// viewport changes, and pushes a fresh view after every transition.
func (s *mapSession) run(ctx context.Context) {
	snapshot, err := s.loader.Load(ctx, s.windowDays)
	if err != nil {
		log.Printf("Session %s: initial load failed: %v", s.id, err)
	}
	if snapshot != nil {
		s.selection = filter.Full(snapshot.Categories)
	} else {
		s.selection = filter.Full(nil)
	}
	s.push(snapshot)

	var (
		debounce  *time.Timer
		debounceC <-chan time.Time
		pending   *geo.Viewport
	)
	stopDebounce := func() {
		if debounce != nil {
			debounce.Stop()
			debounce = nil
			debounceC = nil
		}
	}

	for {
		select {
		case <-s.done:
			stopDebounce()
			return

		case msg := <-s.inbound:
			switch msg.Type {
			case "toggle":
				s.selection = s.selection.Toggle(msg.Label)
				s.push(s.currentSnapshot(ctx))

			case "viewport":
				// Only the latest value within the quiescent window
				// survives; older ones are discarded.
				pending = &geo.Viewport{South: msg.South, West: msg.West, North: msg.North, East: msg.East}
				stopDebounce()
				debounce = time.NewTimer(s.config.Debounce)
				debounceC = debounce.C

			case "window":
				if msg.Days <= 0 {
					log.Printf("Session %s: ignoring non-positive window %d", s.id, msg.Days)
					continue
				}
				s.windowDays = msg.Days
				s.reload(ctx, false)

			case "refresh":
				s.reload(ctx, true)
			}

		case <-debounceC:
			s.viewport = pending
			stopDebounce()
			s.push(s.currentSnapshot(ctx))

		case <-s.refresh:
			s.reload(ctx, false)
		}
	}
}

// reload fetches the snapshot for the current window (forcing past the
// cache when asked), rebases the selection to the possibly changed
// category universe, and repushes.
func (s *mapSession) reload(ctx context.Context, force bool) {
	var (
		snapshot = s.currentSnapshot(ctx)
		err      error
	)
	if force {
		if fresh, ferr := s.loader.Refresh(ctx, s.windowDays); ferr == nil {
			snapshot = fresh
		} else {
			err = ferr
		}
	} else if fresh, lerr := s.loader.Load(ctx, s.windowDays); lerr == nil {
		snapshot = fresh
	} else {
		err = lerr
	}
	if err != nil {
		// The previous snapshot stays authoritative
		log.Printf("Session %s: reload failed, keeping last snapshot: %v", s.id, err)
	}

	if snapshot != nil {
		s.selection = s.selection.Rebase(snapshot.Categories)
	}
	s.push(snapshot)
}

// currentSnapshot resolves the snapshot a recomputation pass should
// read: the memoized one, refreshed through the loader when its TTL has
// lapsed. A failed refresh falls back to whatever is cached.
func (s *mapSession) currentSnapshot(ctx context.Context) *place.Snapshot {
	snapshot, err := s.loader.Load(ctx, s.windowDays)
	if err != nil {
		return s.loader.Cached(s.windowDays)
	}
	return snapshot
}

// push runs one reduction pass and queues the render payload. A nil
// snapshot pushes an empty but coherent view.
func (s *mapSession) push(snapshot *place.Snapshot) {
	result := s.reducer.Reduce(snapshot, s.selection, s.viewport)

	var categories []string
	windowDays := s.windowDays
	if snapshot != nil {
		categories = snapshot.Categories
	}

	payload, err := json.Marshal(viewMessage{
		Type:         "view",
		Result:       result,
		ActiveLabels: s.selection.ActiveLabels(),
		Categories:   categories,
		WindowDays:   windowDays,
	})
	if err != nil {
		log.Printf("Session %s: failed to marshal view: %v", s.id, err)
		return
	}

	select {
	case s.send <- payload:
	default:
		// Slow consumer: drop this frame, a newer pass will supersede it
	}
}

// readPump pumps messages from the WebSocket connection into the
// session's run loop
func (s *mapSession) readPump() {
	defer s.closeConnection()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.config.PongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(s.config.PongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Session %s: WebSocket error: %v", s.id, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("Session %s: discarding malformed message: %v", s.id, err)
			continue
		}

		select {
		case s.inbound <- msg:
		case <-s.done:
			return
		}
	}
}

// writePump pumps queued payloads to the WebSocket connection
func (s *mapSession) writePump() {
	ticker := time.NewTicker(s.config.PingPeriod)
	defer func() {
		ticker.Stop()
		s.closeConnection()
	}()

	for {
		select {
		case payload, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			return
		}
	}
}

// closeConnection tears the session down once, whichever pump exits
// first.
func (s *mapSession) closeConnection() {
	s.closer.Do(func() {
		close(s.done)
		s.conn.Close()
		log.Printf("Map session %s closed", s.id)
	})
}
