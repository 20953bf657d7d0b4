package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// ConversationMessageRepository defines interactions for conversation messages.
type ConversationMessageRepository interface {
	CreateConversationMessage(ctx context.Context, conversationID, senderID int64, content string) (models.ConversationMessageView, error)
	ListConversationMessages(ctx context.Context, conversationID int64) ([]models.ConversationMessageView, error)
}

// ConversationMessageRepo is a sqlx-backed implementation.
type ConversationMessageRepo struct {
	db *sqlx.DB
}

// NewConversationMessageRepo constructs a ConversationMessageRepo.
func NewConversationMessageRepo(db *sqlx.DB) *ConversationMessageRepo {
	return &ConversationMessageRepo{db: db}
}

// CreateConversationMessage appends a message and returns it with the
// sender's current display name.
func (r *ConversationMessageRepo) CreateConversationMessage(ctx context.Context, conversationID, senderID int64, content string) (models.ConversationMessageView, error) {
	const query = `WITH m AS (
            INSERT INTO marketplace_messages (conversation_id, sender_id, content)
            VALUES ($1, $2, $3)
            RETURNING id, sender_id, content, created_at
        )
        SELECT m.id, m.content, m.created_at, s.id AS sender_id, s.full_name
        FROM m JOIN students s ON s.id = m.sender_id`

	var view models.ConversationMessageView
	row := r.db.QueryRowxContext(ctx, query, conversationID, senderID, content)
	if err := row.Scan(&view.ID, &view.Content, &view.CreatedAt, &view.Sender.ID, &view.Sender.FullName); err != nil {
		return models.ConversationMessageView{}, err
	}
	return view, nil
}

// ListConversationMessages returns all messages ascending by (created_at, id).
func (r *ConversationMessageRepo) ListConversationMessages(ctx context.Context, conversationID int64) ([]models.ConversationMessageView, error) {
	const query = `SELECT m.id, m.content, m.created_at, s.id AS sender_id, s.full_name
        FROM marketplace_messages m
        JOIN students s ON s.id = m.sender_id
        WHERE m.conversation_id=$1
        ORDER BY m.created_at ASC, m.id ASC`

	rows, err := r.db.QueryxContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.ConversationMessageView
	for rows.Next() {
		var view models.ConversationMessageView
		if err := rows.Scan(&view.ID, &view.Content, &view.CreatedAt, &view.Sender.ID, &view.Sender.FullName); err != nil {
			return nil, err
		}
		msgs = append(msgs, view)
	}
	return msgs, rows.Err()
}
