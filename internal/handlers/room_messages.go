package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/fanout"
	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

// RoomMessagesHandler serves room history and message sends.
type RoomMessagesHandler struct {
	rooms       repositories.RoomRepository
	messages    repositories.RoomMessageRepository
	broadcaster fanout.Broadcaster
	audit       *telemetry.AuditEmitter
}

// NewRoomMessagesHandler builds a RoomMessagesHandler.
func NewRoomMessagesHandler(rooms repositories.RoomRepository, messages repositories.RoomMessageRepository, broadcaster fanout.Broadcaster, audit *telemetry.AuditEmitter) *RoomMessagesHandler {
	return &RoomMessagesHandler{rooms: rooms, messages: messages, broadcaster: broadcaster, audit: audit}
}

// History returns up to the most recent 100 messages of a room, oldest
// first. Fetching history is the signal that an authenticated student is
// viewing the room, so it also overwrites their last-active room.
func (h *RoomMessagesHandler) History(c *gin.Context) {
	slug := c.Param("slug")

	room, err := h.rooms.GetRoomBySlug(c.Request.Context(), slug)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "room not found"})
		return
	}

	limit := repositories.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if parsed > repositories.DefaultHistoryLimit {
			parsed = repositories.DefaultHistoryLimit
		}
		limit = parsed
	}

	msgs, err := h.messages.ListRoomMessages(c.Request.Context(), room.ID, room.Slug, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	if studentID, ok := middleware.StudentID(c); ok {
		if err := h.rooms.SetLastActiveRoom(c.Request.Context(), studentID, room.ID); err != nil {
			log.Printf("set last active room failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"room": room, "messages": msgs})
}

// Send appends a message to the room and publishes it on the room's
// fan-out channel. A publish failure is swallowed: the append already
// succeeded and late joiners will see the message in history.
func (h *RoomMessagesHandler) Send(c *gin.Context) {
	studentID, ok := middleware.StudentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
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

	room, err := h.rooms.GetRoomBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "room not found"})
		return
	}

	msg, err := h.messages.CreateRoomMessage(c.Request.Context(), room.ID, room.Slug, studentID, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}
	observability.IncMessageAppended("room")

	if err := h.broadcaster.Publish(fanout.ChannelForRoom(room.Slug), fanout.EventNewMessage, msg); err != nil {
		log.Printf("fanout publish failed for room %s: %v", room.Slug, err)
		observability.IncFanoutPublishError()
	}

	h.audit.Emit(c.Request.Context(), "INFO", "room message sent to "+room.Slug,
		requestIDFromContext(c), studentIDFromContext(c))

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
