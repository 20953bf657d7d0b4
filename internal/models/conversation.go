package models

import "time"

// Conversation is a private two-party thread between the buyer and seller
// of one marketplace order. Exactly one conversation exists per order and
// both roles are fixed at creation.
type Conversation struct {
	ID        int64     `db:"id" json:"id"`
	OrderID   int64     `db:"order_id" json:"orderId"`
	BuyerID   int64     `db:"buyer_id" json:"buyerId"`
	SellerID  int64     `db:"seller_id" json:"sellerId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// IsParticipant reports whether the student is the buyer or seller.
func (c Conversation) IsParticipant(studentID int64) bool {
	return c.BuyerID == studentID || c.SellerID == studentID
}

// ConversationMessage is the persisted form of a conversation-scoped message.
type ConversationMessage struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID int64     `db:"conversation_id" json:"conversationId"`
	SenderID       int64     `db:"sender_id" json:"senderId"`
	Content        string    `db:"content" json:"content"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// SenderRef is the denormalized sender block on conversation messages.
type SenderRef struct {
	ID       int64  `db:"sender_id" json:"id"`
	FullName string `db:"full_name" json:"fullName"`
}

// ConversationMessageView is the wire shape served to conversation
// participants. Delivery to the other party is poll-driven, so there is no
// fan-out payload variant.
type ConversationMessageView struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Sender    SenderRef `json:"sender"`
}
