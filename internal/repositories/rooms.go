package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrRoomNotFound = errors.New("room not found")

// RoomRepository abstracts the room directory and per-student room state.
type RoomRepository interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	GetRoomBySlug(ctx context.Context, slug string) (models.Room, error)
	PinnedRoomIDs(ctx context.Context, studentID int64) (map[int64]bool, error)
	SetPin(ctx context.Context, studentID, roomID int64, pin bool) error
	LastActiveRoomID(ctx context.Context, studentID int64) (*int64, error)
	SetLastActiveRoom(ctx context.Context, studentID, roomID int64) error
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// ListRooms returns all rooms in directory insertion order, so seeded rooms
// keep the same relative position across requests.
func (r *RoomRepo) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.SelectContext(ctx, &rooms, `SELECT id, slug, name, description, created_at FROM chat_rooms ORDER BY id ASC`)
	return rooms, err
}

// GetRoomBySlug fetches a room by its slug.
func (r *RoomRepo) GetRoomBySlug(ctx context.Context, slug string) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT id, slug, name, description, created_at FROM chat_rooms WHERE slug=$1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// PinnedRoomIDs returns the set of room ids the student has pinned.
func (r *RoomRepo) PinnedRoomIDs(ctx context.Context, studentID int64) (map[int64]bool, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT room_id FROM chat_room_pins WHERE student_id=$1`, studentID); err != nil {
		return nil, err
	}
	pinned := make(map[int64]bool, len(ids))
	for _, id := range ids {
		pinned[id] = true
	}
	return pinned, nil
}

// SetPin idempotently creates or removes the pin row. Pinning twice is the
// same as pinning once; unpinning a never-pinned room is a no-op.
func (r *RoomRepo) SetPin(ctx context.Context, studentID, roomID int64, pin bool) error {
	if pin {
		_, err := r.db.ExecContext(ctx, `INSERT INTO chat_room_pins (student_id, room_id) VALUES ($1, $2)
            ON CONFLICT (student_id, room_id) DO NOTHING`, studentID, roomID)
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_room_pins WHERE student_id=$1 AND room_id=$2`, studentID, roomID)
	return err
}

// LastActiveRoomID returns the student's last active room, if any.
func (r *RoomRepo) LastActiveRoomID(ctx context.Context, studentID int64) (*int64, error) {
	var roomID *int64
	err := r.db.GetContext(ctx, &roomID, `SELECT last_active_room_id FROM students WHERE id=$1`, studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return roomID, err
}

// SetLastActiveRoom overwrites the student's last active room. Latest value
// wins; nothing is appended.
func (r *RoomRepo) SetLastActiveRoom(ctx context.Context, studentID, roomID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE students SET last_active_room_id=$2 WHERE id=$1`, studentID, roomID)
	return err
}
