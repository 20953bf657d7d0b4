package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// DefaultHistoryLimit caps room history reads.
const DefaultHistoryLimit = 100

// RoomMessageRepository defines interactions for room-scoped messages.
type RoomMessageRepository interface {
	CreateRoomMessage(ctx context.Context, roomID int64, roomSlug string, studentID int64, content string) (models.RoomMessageView, error)
	ListRoomMessages(ctx context.Context, roomID int64, roomSlug string, limit int) ([]models.RoomMessageView, error)
}

// RoomMessageRepo is a sqlx-backed implementation.
type RoomMessageRepo struct {
	db *sqlx.DB
}

// NewRoomMessageRepo constructs a RoomMessageRepo.
func NewRoomMessageRepo(db *sqlx.DB) *RoomMessageRepo {
	return &RoomMessageRepo{db: db}
}

// CreateRoomMessage appends a message with a server-assigned timestamp and
// returns it denormalized with the sender's current name and avatar.
func (r *RoomMessageRepo) CreateRoomMessage(ctx context.Context, roomID int64, roomSlug string, studentID int64, content string) (models.RoomMessageView, error) {
	const query = `WITH m AS (
            INSERT INTO chat_messages (room_id, student_id, content)
            VALUES ($1, $2, $3)
            RETURNING id, student_id, content, created_at
        )
        SELECT m.id, m.content, m.created_at, s.id AS student_id, s.full_name, s.avatar_url
        FROM m JOIN students s ON s.id = m.student_id`

	var view models.RoomMessageView
	row := r.db.QueryRowxContext(ctx, query, roomID, studentID, content)
	if err := row.Scan(&view.ID, &view.Content, &view.CreatedAt, &view.Student.ID, &view.Student.FullName, &view.Student.AvatarURL); err != nil {
		return models.RoomMessageView{}, err
	}
	view.RoomSlug = roomSlug
	return view, nil
}

// ListRoomMessages returns up to limit of the most recent messages in
// ascending (created_at, id) order. The sender block reflects the student
// row at read time.
func (r *RoomMessageRepo) ListRoomMessages(ctx context.Context, roomID int64, roomSlug string, limit int) ([]models.RoomMessageView, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	const query = `SELECT m.id, m.content, m.created_at, s.id AS student_id, s.full_name, s.avatar_url
        FROM chat_messages m
        JOIN students s ON s.id = m.student_id
        WHERE m.room_id=$1
        ORDER BY m.created_at DESC, m.id DESC
        LIMIT $2`

	rows, err := r.db.QueryxContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.RoomMessageView
	for rows.Next() {
		var view models.RoomMessageView
		if err := rows.Scan(&view.ID, &view.Content, &view.CreatedAt, &view.Student.ID, &view.Student.FullName, &view.Student.AvatarURL); err != nil {
			return nil, err
		}
		view.RoomSlug = roomSlug
		msgs = append(msgs, view)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query walks newest-first for the limit; history is served oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
