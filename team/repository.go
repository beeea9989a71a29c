package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrTeamNotFound is returned when no team row exists for the identifier.
	ErrTeamNotFound = errors.New("team: not found")
	// ErrUserNotFound is returned when no user row exists for the identifier.
	ErrUserNotFound = errors.New("team: user not found")
)

// PGRepository resolves team and user records. All access is read-only.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetConfig loads the claim eligibility filter for a team: its permitted
// regions and batch size. A team with no region grants yields an empty slice,
// which assignment treats as "no work available" rather than an error.
func (r *PGRepository) GetConfig(ctx context.Context, teamID string) (Config, error) {
	if teamID == "" {
		return Config{}, fmt.Errorf("team: missing team id")
	}

	cfg := Config{TeamID: teamID}
	if err := r.pool.QueryRow(ctx, `SELECT batch_size FROM teams WHERE team_id = $1`, teamID).Scan(&cfg.BatchSize); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Config{}, ErrTeamNotFound
		}
		return Config{}, fmt.Errorf("team: load team: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT region_code FROM team_regions WHERE team_id = $1 ORDER BY region_code`, teamID)
	if err != nil {
		return Config{}, fmt.Errorf("team: list regions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var region string
		if err := rows.Scan(&region); err != nil {
			return Config{}, fmt.Errorf("team: scan region: %w", err)
		}
		cfg.AllowedRegions = append(cfg.AllowedRegions, region)
	}
	if err := rows.Err(); err != nil {
		return Config{}, fmt.Errorf("team: iterate regions: %w", err)
	}

	return cfg, nil
}

// GetUser loads a single user record.
func (r *PGRepository) GetUser(ctx context.Context, userID string) (User, error) {
	if userID == "" {
		return User{}, fmt.Errorf("team: missing user id")
	}

	const query = `
SELECT user_id, username, team_id, display_name, is_active
FROM users
WHERE user_id = $1
`
	var u User
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&u.ID, &u.Username, &u.TeamID, &u.DisplayName, &u.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("team: load user: %w", err)
	}
	return u, nil
}
