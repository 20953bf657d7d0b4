package client

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is how often a conversation session refetches the
// thread when no interval is given.
const DefaultPollInterval = 2 * time.Second

// ConversationSession maintains a view of one order conversation by polling
// the thread endpoint on a fixed interval. Each successful poll replaces the
// view wholesale; failed polls keep the previous view and retry on the next
// tick.
type ConversationSession struct {
	client         *Client
	conversationID int64
	interval       time.Duration

	// OnUpdate, when set before Start, is invoked after every poll that
	// changed the view. Called from the polling goroutine.
	OnUpdate func([]ConversationMessage)

	mu       sync.RWMutex
	polling  bool
	messages []ConversationMessage

	cancel context.CancelFunc
	done   chan struct{}
}

// NewConversationSession constructs a session for one conversation. A zero
// interval selects DefaultPollInterval.
func NewConversationSession(c *Client, conversationID int64, interval time.Duration) *ConversationSession {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ConversationSession{
		client:         c,
		conversationID: conversationID,
		interval:       interval,
	}
}

// Polling reports whether the session is actively refreshing.
func (s *ConversationSession) Polling() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.polling
}

// Messages returns a snapshot of the current view, oldest first.
func (s *ConversationSession) Messages() []ConversationMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ConversationMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Start polls immediately, then on every interval tick until Stop or context
// cancellation. The first poll runs before Start returns so callers see an
// initialized view.
func (s *ConversationSession) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.mu.Lock()
	s.polling = true
	s.mu.Unlock()

	s.poll(runCtx)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.poll(runCtx)
			}
		}
	}()
}

// Stop halts polling. The last fetched view remains readable.
func (s *ConversationSession) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done

	s.mu.Lock()
	s.polling = false
	s.mu.Unlock()
}

func (s *ConversationSession) poll(ctx context.Context) {
	msgs, err := s.client.ConversationMessages(ctx, s.conversationID)
	if err != nil {
		// Transient failure: keep the previous view, retry next tick.
		return
	}

	s.mu.Lock()
	changed := len(msgs) != len(s.messages)
	if !changed {
		for i := range msgs {
			if msgs[i].ID != s.messages[i].ID {
				changed = true
				break
			}
		}
	}
	s.messages = msgs
	s.mu.Unlock()

	if changed && s.OnUpdate != nil {
		s.OnUpdate(msgs)
	}
}
