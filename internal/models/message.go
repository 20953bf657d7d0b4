package models

import "time"

// RoomMessage is the persisted form of a room-scoped message. Messages are
// immutable and never deleted; order within a room is (created_at, id).
type RoomMessage struct {
	ID        int64     `db:"id" json:"id"`
	RoomID    int64     `db:"room_id" json:"roomId"`
	StudentID int64     `db:"student_id" json:"studentId"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// RoomMessageView is the denormalized wire shape served by history and
// carried whole in fan-out events, so subscribers never need a second
// round trip that could race the message log.
type RoomMessageView struct {
	ID        int64      `json:"id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	RoomSlug  string     `json:"roomSlug"`
	Student   StudentRef `json:"student"`
}
