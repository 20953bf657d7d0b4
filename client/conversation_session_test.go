package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conversationServer serves one conversation thread whose contents tests
// mutate between polls.
type conversationServer struct {
	mu       sync.Mutex
	messages []ConversationMessage
	polls    int
	*httptest.Server
}

func newConversationServer(t *testing.T, initial []ConversationMessage) *conversationServer {
	s := &conversationServer{messages: initial}
	mux := http.NewServeMux()
	mux.HandleFunc("/marketplace/conversations/5/messages", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.polls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"messages": s.messages})
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)
	return s
}

func (s *conversationServer) setMessages(msgs []ConversationMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = msgs
}

func (s *conversationServer) pollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

func convMsg(id int64, content string, senderID int64) ConversationMessage {
	return ConversationMessage{ID: id, Content: content, Sender: SenderRef{ID: senderID}, CreatedAt: time.Now().UTC().Truncate(time.Second)}
}

func TestConversationSessionInitialPoll(t *testing.T) {
	server := newConversationServer(t, []ConversationMessage{convMsg(1, "about order #90", 7)})
	session := NewConversationSession(New(server.URL, "token"), 5, 10*time.Millisecond)

	session.Start(context.Background())
	defer session.Stop()

	// Start polls synchronously before returning.
	require.True(t, session.Polling())
	view := session.Messages()
	require.Len(t, view, 1)
	assert.Equal(t, int64(1), view[0].ID)
}

func TestConversationSessionPicksUpNewMessages(t *testing.T) {
	server := newConversationServer(t, []ConversationMessage{convMsg(1, "about order #90", 7)})
	session := NewConversationSession(New(server.URL, "token"), 5, 10*time.Millisecond)

	updates := make(chan []ConversationMessage, 16)
	session.OnUpdate = func(msgs []ConversationMessage) { updates <- msgs }

	session.Start(context.Background())
	defer session.Stop()

	server.setMessages([]ConversationMessage{
		convMsg(1, "about order #90", 7),
		convMsg(2, "shipping tomorrow", 8),
	})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case msgs := <-updates:
			if len(msgs) == 2 {
				assert.Equal(t, int64(2), msgs[1].ID)
				return
			}
		case <-deadline:
			t.Fatal("poll never picked up the new message")
		}
	}
}

func TestConversationSessionKeepsViewOnFailedPoll(t *testing.T) {
	server := newConversationServer(t, []ConversationMessage{convMsg(1, "about order #90", 7)})
	session := NewConversationSession(New(server.URL, "token"), 5, 10*time.Millisecond)
	session.Start(context.Background())
	require.Len(t, session.Messages(), 1)
	session.Stop()

	// Point the session at a dead server: polls fail, view survives.
	dead := NewConversationSession(New(server.URL, "token"), 5, 10*time.Millisecond)
	dead.Start(context.Background())
	server.Close()
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, dead.Messages(), 1)
	dead.Stop()
}

func TestConversationSessionStop(t *testing.T) {
	server := newConversationServer(t, nil)
	session := NewConversationSession(New(server.URL, "token"), 5, 10*time.Millisecond)

	session.Start(context.Background())
	session.Stop()
	require.False(t, session.Polling())

	polls := server.pollCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, polls, server.pollCount())

	// Stopping again is a no-op.
	session.Stop()
}

func TestConversationSessionDefaultInterval(t *testing.T) {
	session := NewConversationSession(New("http://example.invalid", ""), 5, 0)
	assert.Equal(t, DefaultPollInterval, session.interval)
}
