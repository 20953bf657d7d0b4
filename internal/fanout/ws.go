package fanout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messaging-service/internal/identity"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
)

// ConnInfo describes one live websocket subscription for event reporting.
type ConnInfo struct {
	ConnID      string
	StudentID   int64
	IP          string
	RequestID   string
	TraceID     string
	RoomSlug    string
	ConnectedAt time.Time
}

// RoomStreamHandler upgrades clients onto a room's fan-out channel.
// Public rooms are world-readable, so identity is optional; anonymous
// subscribers are reported with student id 0.
type RoomStreamHandler struct {
	hub      *Hub
	rooms    repositories.RoomRepository
	resolver identity.Resolver
}

// NewRoomStreamHandler constructs a RoomStreamHandler.
func NewRoomStreamHandler(hub *Hub, rooms repositories.RoomRepository, resolver identity.Resolver) *RoomStreamHandler {
	return &RoomStreamHandler{hub: hub, rooms: rooms, resolver: resolver}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection, subscribes it to the room's channel, and
// pumps fan-out events until the peer goes away. Subscribe and unsubscribe
// are strictly paired: the unsubscribe runs in the same goroutine that owns
// the connection, on every exit path.
func (h *RoomStreamHandler) Handle(c *gin.Context) {
	slug := c.Param("slug")

	ctx, span := otel.Tracer("messaging-service/fanout").Start(c.Request.Context(), "ws.subscribe")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	if _, err := h.rooms.GetRoomBySlug(ctx, slug); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	var studentID int64
	if claims, err := h.resolver.Resolve(identity.CredentialFromRequest(c.Request)); err == nil {
		studentID = claims.StudentID
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	sub, err := h.hub.Subscribe(ChannelForRoom(slug))
	if err != nil {
		conn.Close()
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		StudentID:   studentID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		RoomSlug:    slug,
		ConnectedAt: time.Now(),
	}

	observability.IncFanoutEvent("ws_connect")
	emitWSEvent(ctx, "ws_connect", info, "")

	// Writer: forwards fan-out events until the subscription closes.
	go func() {
		for ev := range sub.C {
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("websocket write error: %v", err)
				observability.IncFanoutEvent("ws_error")
				emitWSEvent(context.Background(), "ws_error", info, err.Error())
				conn.Close()
				return
			}
		}
	}()

	// Reader: detects the close; every exit path unsubscribes exactly once.
	go func() {
		var closeReason string
		defer func() {
			h.hub.Unsubscribe(sub)
			conn.Close()
			observability.IncFanoutEvent("ws_disconnect")
			emitWSEvent(context.Background(), "ws_disconnect", info, closeReason)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncFanoutEvent("ws_error")
					emitWSEvent(context.Background(), "ws_error", info, closeReason)
				}
				return
			}
		}
	}()
}

func emitWSEvent(ctx context.Context, event string, info ConnInfo, reason string) {
	_ = observability.PublishEvent(ctx, observability.RoomStreamEventsKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Service:   "messaging-service",
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"room_slug":   info.RoomSlug,
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"student_id": info.StudentID,
				"ip":         info.IP,
			},
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
