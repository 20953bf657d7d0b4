package db

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// SeedRoom is one entry of the fixed room directory shipped with the portal.
type SeedRoom struct {
	Slug        string
	Name        string
	Description string
}

// DefaultRooms is the seed set every deployment provisions. Insertion order
// here is the directory order clients see.
var DefaultRooms = []SeedRoom{
	{
		Slug:        "new-arrivals",
		Name:        "🛬 New Arrivals · Fall 2025",
		Description: "Coordinate arrival plans, airport pickups, and first-day questions.",
	},
	{
		Slug:        "housing-roommates",
		Name:        "🏠 Housing & Roommates",
		Description: "Find roommates and share housing tips around IIT and Chicago.",
	},
	{
		Slug:        "cs-cyber-cohort",
		Name:        "💻 CS & Cybersecurity Cohort",
		Description: "Connect with peers in CS, Cyber, Data Science, and related programs.",
	},
}

// ProvisionDefaultRooms upserts the seed rooms once at startup, keyed by
// slug. An existing room keeps its name and description; blank fields are
// filled in. Running this at startup keeps the room list endpoint a pure
// read and avoids two first-readers racing to seed.
func ProvisionDefaultRooms(db *sqlx.DB) error {
	const upsert = `INSERT INTO chat_rooms (slug, name, description) VALUES ($1, $2, $3)
        ON CONFLICT (slug) DO UPDATE SET
            name = CASE WHEN chat_rooms.name = '' THEN EXCLUDED.name ELSE chat_rooms.name END,
            description = CASE WHEN chat_rooms.description = '' THEN EXCLUDED.description ELSE chat_rooms.description END`

	for _, room := range DefaultRooms {
		if _, err := db.Exec(upsert, room.Slug, room.Name, room.Description); err != nil {
			return err
		}
	}
	log.Printf("room directory provisioned: %d seed rooms", len(DefaultRooms))
	return nil
}
