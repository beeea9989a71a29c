// Command seed loads a small sample data set: two teams with region grants,
// three reviewers, and a handful of pending events. Intended for local
// development against an empty database.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"reviewflow/config"
	"reviewflow/db"
)

type seedTeam struct {
	name        string
	description string
	batchSize   int
	regions     []string
}

var teams = []seedTeam{
	{name: "Team Alpha", description: "Handles US and CA events", batchSize: 10, regions: []string{"us-east-1", "ca-central-1"}},
	{name: "Team Beta", description: "Handles EU events", batchSize: 5, regions: []string{"eu-west-1", "eu-central-1"}},
}

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)

	teamIDs := make([]string, len(teams))
	for i, t := range teams {
		if err := tx.QueryRow(ctx,
			`INSERT INTO teams (team_name, description, batch_size) VALUES ($1, $2, $3) RETURNING team_id`,
			t.name, t.description, t.batchSize,
		).Scan(&teamIDs[i]); err != nil {
			log.Fatalf("insert team %s: %v", t.name, err)
		}
		for _, region := range t.regions {
			if _, err := tx.Exec(ctx,
				`INSERT INTO team_regions (team_id, region_code) VALUES ($1, $2)`,
				teamIDs[i], region,
			); err != nil {
				log.Fatalf("grant region %s to %s: %v", region, t.name, err)
			}
		}
	}

	users := []struct {
		username, email, display string
		teamIdx                  int
	}{
		{"alice_a", "alice@example.com", "Alice Alpha", 0},
		{"bob_b", "bob@example.com", "Bob Beta", 1},
		{"charlie_a", "charlie@example.com", "Charlie Alpha", 0},
	}
	for _, u := range users {
		var userID string
		if err := tx.QueryRow(ctx,
			`INSERT INTO users (username, email, team_id, display_name) VALUES ($1, $2, $3, $4) RETURNING user_id`,
			u.username, u.email, teamIDs[u.teamIdx], u.display,
		).Scan(&userID); err != nil {
			log.Fatalf("insert user %s: %v", u.username, err)
		}
		log.Printf("user %s -> %s", u.username, userID)
	}

	if err := seedEvents(ctx, tx); err != nil {
		log.Fatalf("seed events: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}
	log.Printf("seed complete: %d teams, %d users", len(teams), len(users))
}

func seedEvents(ctx context.Context, tx pgx.Tx) error {
	regions := []string{"us-east-1", "ca-central-1", "eu-west-1"}
	for i, region := range regions {
		externalID := fmt.Sprintf("ext-%s", uuid.NewString())
		payload := fmt.Sprintf(`{"type": "sample", "seq": %d}`, i+1)
		if _, err := tx.Exec(ctx,
			`INSERT INTO events (region_code, external_event_id, event_payload, status) VALUES ($1, $2, $3, 'Pending')`,
			region, externalID, payload,
		); err != nil {
			return fmt.Errorf("insert event in %s: %w", region, err)
		}
	}
	return nil
}
