package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/middleware"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

// RoomsHandler serves the room directory and per-student room state.
type RoomsHandler struct {
	rooms repositories.RoomRepository
	audit *telemetry.AuditEmitter
}

// NewRoomsHandler builds a RoomsHandler.
func NewRoomsHandler(rooms repositories.RoomRepository, audit *telemetry.AuditEmitter) *RoomsHandler {
	return &RoomsHandler{rooms: rooms, audit: audit}
}

// ListRooms returns all rooms in directory order, annotated with the
// requesting student's pin and last-active state. Anonymous requests get
// the bare directory. Seeding happens at startup, so this is a pure read.
func (h *RoomsHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}

	views := make([]models.RoomView, 0, len(rooms))

	studentID, authenticated := middleware.StudentID(c)
	if !authenticated {
		for _, room := range rooms {
			views = append(views, models.RoomView{Room: room})
		}
		c.JSON(http.StatusOK, gin.H{"rooms": views})
		return
	}

	pinned, err := h.rooms.PinnedRoomIDs(c.Request.Context(), studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pinned rooms"})
		return
	}
	lastActiveID, err := h.rooms.LastActiveRoomID(c.Request.Context(), studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load last active room"})
		return
	}

	for _, room := range rooms {
		views = append(views, models.RoomView{
			Room:         room,
			Pinned:       pinned[room.ID],
			IsLastActive: lastActiveID != nil && *lastActiveID == room.ID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"rooms": views})
}

// SetPin pins or unpins a room for the authenticated student. Both
// directions are idempotent.
func (h *RoomsHandler) SetPin(c *gin.Context) {
	studentID, ok := middleware.StudentID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		RoomSlug string `json:"roomSlug" binding:"required"`
		Pin      *bool  `json:"pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomSlug and pin are required"})
		return
	}

	room, err := h.rooms.GetRoomBySlug(c.Request.Context(), req.RoomSlug)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "room not found"})
		return
	}

	if err := h.rooms.SetPin(c.Request.Context(), studentID, room.ID, *req.Pin); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update pin"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("room %s pin set to %t", room.Slug, *req.Pin),
		requestIDFromContext(c), studentIDFromContext(c))

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
