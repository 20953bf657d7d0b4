package telemetry

import (
	"context"
	"log"
	"time"
)

type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error
}

// AuditEmitter ships audit envelopes for messaging actions (sends, pin
// changes, conversation creation) to the portal's event exchange.
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	StudentID     *int64       `json:"student_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

type AuditPayload struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

// Emit publishes one audit record. A nil emitter or publisher is a no-op so
// handlers never need to guard.
func (e *AuditEmitter) Emit(ctx context.Context, level, text, requestID string, studentID *int64) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "audit_log",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		StudentID:     studentID,
		Payload: AuditPayload{
			Level: level,
			Text:  text,
		},
	}

	if err := e.publisher.PublishJSON(ctx, e.routingKey, envelope, nil); err != nil {
		log.Printf("audit publish failed: %v", err)
	}
}
