package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository abstracts order-scoped conversation persistence.
type ConversationRepository interface {
	CreateForOrder(ctx context.Context, orderID, buyerID, sellerID int64, initialMessage string) (models.Conversation, bool, error)
	GetConversation(ctx context.Context, conversationID int64) (models.Conversation, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// CreateForOrder creates the conversation for an order and seeds it with the
// buyer's initial message, atomically. Creation is idempotent by order id: a
// second call returns the existing conversation without a second seed
// message. The bool result reports whether a conversation was created.
func (r *ConversationRepo) CreateForOrder(ctx context.Context, orderID, buyerID, sellerID int64, initialMessage string) (models.Conversation, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Conversation{}, false, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var conv models.Conversation
	err = tx.QueryRowxContext(ctx, `INSERT INTO marketplace_conversations (order_id, buyer_id, seller_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (order_id) DO NOTHING
        RETURNING id, order_id, buyer_id, seller_id, created_at`, orderID, buyerID, sellerID).
		Scan(&conv.ID, &conv.OrderID, &conv.BuyerID, &conv.SellerID, &conv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Conflict on order_id: the conversation already exists.
		err = tx.GetContext(ctx, &conv, `SELECT id, order_id, buyer_id, seller_id, created_at
            FROM marketplace_conversations WHERE order_id=$1`, orderID)
		if err != nil {
			return models.Conversation{}, false, err
		}
		if err = tx.Commit(); err != nil {
			return models.Conversation{}, false, err
		}
		return conv, false, nil
	}
	if err != nil {
		return models.Conversation{}, false, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO marketplace_messages (conversation_id, sender_id, content)
        VALUES ($1, $2, $3)`, conv.ID, buyerID, initialMessage); err != nil {
		return models.Conversation{}, false, err
	}

	if err = tx.Commit(); err != nil {
		return models.Conversation{}, false, err
	}
	return conv, true, nil
}

// GetConversation fetches a conversation by id.
func (r *ConversationRepo) GetConversation(ctx context.Context, conversationID int64) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, order_id, buyer_id, seller_id, created_at
        FROM marketplace_conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}
