package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// Maintenance script: purges canceled proposals and their orphaned
// ranks. Run with DATABASE_URL set, e.g.
//
//	go run scripts/clean_proposals.go
func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	// Connect to database
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Test connection
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	fmt.Println("Connected to database")

	// Step 1: Delete ranks on canceled proposals
	result, err := db.Exec(`
		DELETE FROM ranks
		WHERE proposal_id IN (
			SELECT id FROM proposals
			WHERE status = 'CANCELED'
		)
	`)
	if err != nil {
		log.Printf("Warning deleting ranks: %v", err)
	} else {
		rows, _ := result.RowsAffected()
		fmt.Printf("Deleted %d orphaned ranks\n", rows)
	}

	// Step 2: Delete the canceled proposals themselves
	result, err = db.Exec(`
		DELETE FROM proposals
		WHERE status = 'CANCELED'
	`)
	if err != nil {
		log.Printf("Warning deleting proposals: %v", err)
	} else {
		rows, _ := result.RowsAffected()
		fmt.Printf("Deleted %d canceled proposals\n", rows)
	}

	// Step 3: Delete read notifications older than 30 days
	result, err = db.Exec(`
		DELETE FROM notifications
		WHERE read_at IS NOT NULL
		  AND created_at < NOW() - INTERVAL '30 days'
	`)
	if err != nil {
		log.Printf("Warning deleting notifications: %v", err)
	} else {
		rows, _ := result.RowsAffected()
		fmt.Printf("Deleted %d stale notifications\n", rows)
	}

	fmt.Println("Cleanup complete")
}
