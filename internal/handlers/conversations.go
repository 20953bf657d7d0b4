package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/middleware"
	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

// ConversationsHandler serves order-scoped buyer/seller threads.
//
// Non-participants get the same not-found response as unknown ids, so a
// valid session cannot be used to probe which conversations exist.
type ConversationsHandler struct {
	conversations repositories.ConversationRepository
	messages      repositories.ConversationMessageRepository
	audit         *telemetry.AuditEmitter
}

// NewConversationsHandler builds a ConversationsHandler.
func NewConversationsHandler(conversations repositories.ConversationRepository, messages repositories.ConversationMessageRepository, audit *telemetry.AuditEmitter) *ConversationsHandler {
	return &ConversationsHandler{conversations: conversations, messages: messages, audit: audit}
}

// Get returns the conversation envelope to its buyer or seller.
func (h *ConversationsHandler) Get(c *gin.Context) {
	conv, ok := h.authorizedConversation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// History returns all messages of the conversation, oldest first. Both
// participants see identical content; delivery of new messages is via each
// client's own poll, not push.
func (h *ConversationsHandler) History(c *gin.Context) {
	conv, ok := h.authorizedConversation(c)
	if !ok {
		return
	}

	msgs, err := h.messages.ListConversationMessages(c.Request.Context(), conv.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// Send appends a message from the calling participant. No fan-out.
func (h *ConversationsHandler) Send(c *gin.Context) {
	conv, ok := h.authorizedConversation(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	studentID, _ := middleware.StudentID(c)
	msg, err := h.messages.CreateConversationMessage(c.Request.Context(), conv.ID, studentID, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}
	observability.IncMessageAppended("conversation")

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// CreateForOrder is called by the order-placement workflow when an order is
// placed. Creation is idempotent by order id: replaying the call returns
// the existing conversation and never seeds a second initial message.
func (h *ConversationsHandler) CreateForOrder(c *gin.Context) {
	var req struct {
		OrderID        int64  `json:"order_id" binding:"required"`
		BuyerID        int64  `json:"buyer_id" binding:"required"`
		SellerID       int64  `json:"seller_id" binding:"required"`
		InitialMessage string `json:"initial_message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.BuyerID == req.SellerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "buyer and seller must differ"})
		return
	}
	initial := strings.TrimSpace(req.InitialMessage)
	if initial == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "initial_message is required"})
		return
	}

	conv, created, err := h.conversations.CreateForOrder(c.Request.Context(), req.OrderID, req.BuyerID, req.SellerID, initial)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create conversation"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		observability.IncMessageAppended("conversation")
		h.audit.Emit(c.Request.Context(), "INFO",
			fmt.Sprintf("conversation created for order %d", req.OrderID),
			requestIDFromContext(c), nil)
	}
	c.JSON(status, gin.H{"conversation": conv})
}

// authorizedConversation loads the conversation and enforces participant
// access. It writes the error response itself when access fails.
func (h *ConversationsHandler) authorizedConversation(c *gin.Context) (models.Conversation, bool) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return models.Conversation{}, false
	}

	studentID, ok := middleware.StudentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return models.Conversation{}, false
	}

	conv, err := h.conversations.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		}
		return models.Conversation{}, false
	}

	if !conv.IsParticipant(studentID) {
		// Same shape as an unknown id.
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return models.Conversation{}, false
	}

	return conv, true
}
