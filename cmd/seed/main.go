package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/eventsphere/eventsphere-api/config"
	"github.com/eventsphere/eventsphere-api/pkg/helpers"
)

// Seeds one owner, one attendee, and a demo event with the attendee
// registered. Safe to run repeatedly.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ownerID := seedUser(db, "demoOwner", "owner@eventsphere.dev", hash, "owner")
	userID := seedUser(db, "demoUser", "user@eventsphere.dev", hash, "user")
	fmt.Printf("seeded users: owner=%s user=%s password=%s\n", ownerID, userID, password)

	title := "EventSphere Launch Meetup"
	start := time.Now().AddDate(0, 1, 0).Truncate(time.Hour)

	var eventID int64
	err = db.QueryRow(`SELECT id FROM events WHERE owner_id = $1 AND title = $2`, ownerID, title).Scan(&eventID)
	if err == sql.ErrNoRows {
		err = db.QueryRow(`
			INSERT INTO events (title, description, start_date, end_date, deadline, location, capacity, owner_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, title, "Kickoff meetup for the demo environment.",
			start, start.Add(3*time.Hour), start.Add(-48*time.Hour),
			"Jakarta Convention Center", 100, ownerID).Scan(&eventID)
	}
	if err != nil {
		log.Fatalf("failed to seed event: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO event_attendees (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`, eventID, userID); err != nil {
		log.Fatalf("failed to register demo attendee: %v", err)
	}
	fmt.Printf("seeded event id=%d with one registered attendee\n", eventID)
}

func seedUser(db *sql.DB, username, email, hash, role string) string {
	var id string
	err := db.QueryRow(`
		INSERT INTO users (username, email, password, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, username, email, hash, role).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	return id
}
