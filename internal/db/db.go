package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chat_rooms (
            id SERIAL PRIMARY KEY,
            slug TEXT NOT NULL UNIQUE,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS students (
            id SERIAL PRIMARY KEY,
            full_name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            avatar_url TEXT,
            last_active_room_id INT REFERENCES chat_rooms(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS chat_room_pins (
            student_id INT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
            room_id INT NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY(student_id, room_id)
        );`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
            id BIGSERIAL PRIMARY KEY,
            room_id INT NOT NULL REFERENCES chat_rooms(id),
            student_id INT NOT NULL REFERENCES students(id),
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_room_order
            ON chat_messages (room_id, created_at, id);`,
		`CREATE TABLE IF NOT EXISTS marketplace_conversations (
            id SERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL UNIQUE,
            buyer_id INT NOT NULL REFERENCES students(id),
            seller_id INT NOT NULL REFERENCES students(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS marketplace_messages (
            id BIGSERIAL PRIMARY KEY,
            conversation_id INT NOT NULL REFERENCES marketplace_conversations(id) ON DELETE CASCADE,
            sender_id INT NOT NULL REFERENCES students(id),
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_marketplace_messages_conversation_order
            ON marketplace_messages (conversation_id, created_at, id);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
