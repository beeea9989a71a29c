package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrNotAssigned is returned when the review target does not exist, is not
	// held by the caller, or is no longer Assigned. The three causes are folded
	// deliberately: the remedy is the same in each case (claim again and retry).
	ErrNotAssigned = errors.New("event: not found, not owned, or not assigned")
	// ErrMissingExternalID signals an ingestion defect: the event cannot be
	// addressed in its origin region.
	ErrMissingExternalID = errors.New("event: missing external event id")
)

// Querier is the subset of pgxpool.Pool used for lock-free reads.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// SelectPendingLocked picks up to limit Pending events in the given regions,
// oldest first, taking row locks that skip rows already locked by a concurrent
// claim. Two simultaneous claims therefore never see the same event and
// neither blocks on the other.
func (r *Repository) SelectPendingLocked(ctx context.Context, tx pgx.Tx, regions []string, limit int) ([]string, error) {
	const query = `
SELECT event_id
FROM events
WHERE status = $1 AND region_code = ANY($2::varchar[])
ORDER BY ingested_at
LIMIT $3
FOR UPDATE SKIP LOCKED
`
	rows, err := tx.Query(ctx, query, StatusPending, regions, limit)
	if err != nil {
		return nil, fmt.Errorf("event: select pending: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("event: scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event: iterate pending ids: %w", err)
	}
	return ids, nil
}

// MarkAssigned transitions the locked rows to Assigned and stamps the lease.
func (r *Repository) MarkAssigned(ctx context.Context, tx pgx.Tx, ids []string, userID string) (int64, error) {
	const query = `
UPDATE events
SET status = $1, assigned_user_id = $2, assigned_at = NOW(), updated_at = NOW()
WHERE event_id = ANY($3::uuid[])
`
	tag, err := tx.Exec(ctx, query, StatusAssigned, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("event: mark assigned: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListAssigned reads back the freshly assigned rows for the caller.
func (r *Repository) ListAssigned(ctx context.Context, tx pgx.Tx, ids []string) ([]AssignedEvent, error) {
	const query = `
SELECT event_id, external_event_id, region_code, event_payload
FROM events
WHERE event_id = ANY($1::uuid[])
ORDER BY ingested_at
`
	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("event: list assigned: %w", err)
	}
	defer rows.Close()

	batch := make([]AssignedEvent, 0, len(ids))
	for rows.Next() {
		var e AssignedEvent
		if err := rows.Scan(&e.EventID, &e.ExternalEventID, &e.Region, &e.Payload); err != nil {
			return nil, fmt.Errorf("event: scan assigned: %w", err)
		}
		batch = append(batch, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event: iterate assigned: %w", err)
	}
	return batch, nil
}

// LockForReview fetches the event under an exclusive blocking lock, verifying
// the caller still holds the lease. The lock is held for the remainder of the
// transaction so neither a sweep nor another claim can touch the row mid-review.
func (r *Repository) LockForReview(ctx context.Context, tx pgx.Tx, eventID, userID string) (region string, externalEventID *string, err error) {
	const query = `
SELECT region_code, external_event_id
FROM events
WHERE event_id = $1 AND assigned_user_id = $2 AND status = $3
FOR UPDATE
`
	if err := tx.QueryRow(ctx, query, eventID, userID, StatusAssigned).Scan(&region, &externalEventID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrNotAssigned
		}
		return "", nil, fmt.Errorf("event: lock for review: %w", err)
	}
	return region, externalEventID, nil
}

// MarkCompleted records the review outcome and releases the lease. The row is
// already locked by LockForReview, so no status guard is needed here.
func (r *Repository) MarkCompleted(ctx context.Context, tx pgx.Tx, eventID, userID string, decision Decision, comment *string) error {
	const query = `
UPDATE events
SET status = $1, completed_at = NOW(), assigned_user_id = NULL, assigned_at = NULL,
    review_user_id = $2, reviewed_at = NOW(), review_decision = $3, review_comment = $4,
    updated_at = NOW()
WHERE event_id = $5
`
	if _, err := tx.Exec(ctx, query, StatusCompleted, userID, decision, comment, eventID); err != nil {
		return fmt.Errorf("event: mark completed: %w", err)
	}
	return nil
}

// FindExpired scans for leases older than ttl. The read takes no locks, so the
// result is a point-in-time estimate that the requeue update re-checks.
func (r *Repository) FindExpired(ctx context.Context, q Querier, ttl time.Duration) ([]string, error) {
	const query = `
SELECT event_id
FROM events
WHERE status = $1 AND assigned_at < (NOW() - make_interval(secs => $2))
`
	rows, err := q.Query(ctx, query, StatusAssigned, ttl.Seconds())
	if err != nil {
		return nil, fmt.Errorf("event: find expired: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("event: scan expired id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("event: iterate expired ids: %w", err)
	}
	return ids, nil
}

// RequeuePending returns the given events to Pending, but only rows still
// Assigned at update time: a review may have completed one of them between the
// scan and this update.
func (r *Repository) RequeuePending(ctx context.Context, tx pgx.Tx, ids []string) (int64, error) {
	const query = `
UPDATE events
SET status = $1, assigned_user_id = NULL, assigned_at = NULL, updated_at = NOW()
WHERE event_id = ANY($2::uuid[]) AND status = $3
`
	tag, err := tx.Exec(ctx, query, StatusPending, ids, StatusAssigned)
	if err != nil {
		return 0, fmt.Errorf("event: requeue pending: %w", err)
	}
	return tag.RowsAffected(), nil
}
