package models

import "time"

// Student is a portal participant. Rows are owned by the portal's
// registration flow; the messaging core only reads them.
type Student struct {
	ID               int64     `db:"id" json:"id"`
	FullName         string    `db:"full_name" json:"fullName"`
	Email            string    `db:"email" json:"email"`
	AvatarURL        *string   `db:"avatar_url" json:"avatarUrl"`
	LastActiveRoomID *int64    `db:"last_active_room_id" json:"lastActiveRoomId"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// StudentRef is the denormalized sender block embedded in message payloads.
// Name and avatar reflect the student row at read time, not a snapshot.
type StudentRef struct {
	ID        int64   `db:"student_id" json:"id"`
	FullName  string  `db:"full_name" json:"fullName"`
	AvatarURL *string `db:"avatar_url" json:"avatarUrl"`
}
