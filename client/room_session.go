package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SessionState reports where a room session is in its lifecycle.
type SessionState int32

const (
	StateDisconnected SessionState = iota
	StateSubscribing
	StateLive
)

func (s SessionState) String() string {
	switch s {
	case StateSubscribing:
		return "subscribing"
	case StateLive:
		return "live"
	default:
		return "disconnected"
	}
}

const reconnectDelay = 2 * time.Second

// wsEvent mirrors the fan-out wire envelope.
type wsEvent struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

// RoomSession maintains a live view of one room: it fetches the backlog over
// HTTP, then subscribes to the room's fan-out channel and appends pushed
// messages as they arrive. On a dropped subscription it resubscribes and
// refetches the backlog to cover the gap; duplicates are discarded by id.
type RoomSession struct {
	client *Client
	slug   string

	// OnMessage, when set before Open, is invoked for every message newly
	// appended to the view. Called from the session goroutine.
	OnMessage func(RoomMessage)

	dial func(ctx context.Context, wsURL string) (*websocket.Conn, error)

	mu       sync.RWMutex
	state    SessionState
	messages []RoomMessage
	seen     map[int64]bool
	conn     *websocket.Conn

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRoomSession constructs a session for one room. Open starts it.
func NewRoomSession(c *Client, roomSlug string) *RoomSession {
	return &RoomSession{
		client: c,
		slug:   roomSlug,
		seen:   make(map[int64]bool),
		dial: func(ctx context.Context, wsURL string) (*websocket.Conn, error) {
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
			return conn, err
		},
	}
}

// State returns the current lifecycle state.
func (s *RoomSession) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Messages returns a snapshot of the current view, oldest first.
func (s *RoomSession) Messages() []RoomMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Open fetches the backlog, subscribes to the room channel, and starts the
// session goroutine. It returns once the session is live.
func (s *RoomSession) Open(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	if err := s.connect(runCtx); err != nil {
		cancel()
		close(s.done)
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		return err
	}

	go s.run(runCtx)
	return nil
}

// Close tears down the subscription and stops the session goroutine.
func (s *RoomSession) Close() {
	if s.cancel == nil {
		return
	}
	s.cancel()

	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()

	<-s.done

	s.mu.Lock()
	s.state = StateDisconnected
	s.mu.Unlock()
}

func (s *RoomSession) wsURL() string {
	base := strings.Replace(s.client.BaseURL, "http", "ws", 1)
	u := base + "/ws/chat/rooms/" + s.slug
	if s.client.Token != "" {
		u += "?token=" + url.QueryEscape(s.client.Token)
	}
	return u
}

// connect brings the session to live: subscribe first, then fetch the
// backlog, so no message published in between is missed.
func (s *RoomSession) connect(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateSubscribing
	s.mu.Unlock()

	conn, err := s.dial(ctx, s.wsURL())
	if err != nil {
		return err
	}

	history, err := s.client.RoomHistory(ctx, s.slug)
	if err != nil {
		conn.Close()
		return err
	}

	s.mu.Lock()
	s.conn = conn
	for _, msg := range history {
		s.appendLocked(msg)
	}
	s.state = StateLive
	s.mu.Unlock()
	return nil
}

// appendLocked adds a message to the view unless its id was already seen.
// Caller holds s.mu.
func (s *RoomSession) appendLocked(msg RoomMessage) bool {
	if s.seen[msg.ID] {
		return false
	}
	s.seen[msg.ID] = true
	s.messages = append(s.messages, msg)
	return true
}

func (s *RoomSession) run(ctx context.Context) {
	defer close(s.done)

	for {
		s.readLoop(ctx)

		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
			s.conn = nil
		}
		s.state = StateSubscribing
		s.mu.Unlock()

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
			// The kept view plus the refetched backlog covers the gap;
			// appendLocked drops anything already seen.
			if err := s.connect(ctx); err == nil {
				break
			}
		}
	}
}

func (s *RoomSession) readLoop(ctx context.Context) {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return
	}

	for {
		var ev wsEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}
		if ev.Event != "message:new" {
			continue
		}
		var msg RoomMessage
		if err := json.Unmarshal(ev.Data, &msg); err != nil {
			continue
		}

		s.mu.Lock()
		added := s.appendLocked(msg)
		s.mu.Unlock()

		if added && s.OnMessage != nil {
			s.OnMessage(msg)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}
