package models

import "time"

// Room is a public broadcast chat room. The slug is immutable once created
// and rooms are never deleted.
type Room struct {
	ID          int64     `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// RoomView is a room annotated with the requesting student's state.
// Anonymous requests always see pinned=false and isLastActive=false.
type RoomView struct {
	Room
	Pinned       bool `json:"pinned"`
	IsLastActive bool `json:"isLastActive"`
}

// RoomPin marks a room as pinned by a student. At most one row per
// (student, room) pair.
type RoomPin struct {
	StudentID int64     `db:"student_id" json:"studentId"`
	RoomID    int64     `db:"room_id" json:"roomId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
