package observability

// Routing keys for the messaging streams on the portal's topic exchange.
// Consumers bind per stream: operational room-connection events on one key,
// the audit trail on another.
const (
	RoomStreamEventsKey = "ws_events.rooms"
	AuditRoutingKey     = "audit.messaging"
)

// EventEnvelope wraps messaging events published to the portal exchange.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Service   string      `json:"service"`
	Payload   interface{} `json:"payload"`
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
