package event

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"reviewflow/telemetry"
)

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AssignmentRepository defines the data access required to claim a batch.
type AssignmentRepository interface {
	SelectPendingLocked(ctx context.Context, tx pgx.Tx, regions []string, limit int) ([]string, error)
	MarkAssigned(ctx context.Context, tx pgx.Tx, ids []string, userID string) (int64, error)
	ListAssigned(ctx context.Context, tx pgx.Tx, ids []string) ([]AssignedEvent, error)
}

// AssignmentService hands out batches of Pending events under exclusive,
// time-bounded leases.
type AssignmentService struct {
	pool             TxBeginner
	repo             AssignmentRepository
	defaultBatchSize int
}

func NewAssignmentService(pool TxBeginner, repo AssignmentRepository, defaultBatchSize int) *AssignmentService {
	if repo == nil {
		repo = NewRepository()
	}
	if defaultBatchSize <= 0 {
		defaultBatchSize = 10
	}
	return &AssignmentService{
		pool:             pool,
		repo:             repo,
		defaultBatchSize: defaultBatchSize,
	}
}

// ClaimBatch atomically selects up to maxCount Pending events from the given
// regions, marks them Assigned to userID, and returns them oldest first.
// Concurrent claims skip each other's locked rows, so the returned sets of two
// simultaneous calls never intersect. A team with no configured regions simply
// gets no work; that is not an error.
func (s *AssignmentService) ClaimBatch(ctx context.Context, userID string, regions []string, maxCount int) ([]AssignedEvent, error) {
	if userID == "" {
		return nil, fmt.Errorf("event: missing user id")
	}
	if len(regions) == 0 {
		return []AssignedEvent{}, nil
	}
	if maxCount <= 0 {
		maxCount = s.defaultBatchSize
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("event: begin claim tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ids, err := s.repo.SelectPendingLocked(ctx, tx, regions, maxCount)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("event: commit empty claim tx: %w", err)
		}
		return []AssignedEvent{}, nil
	}

	if _, err := s.repo.MarkAssigned(ctx, tx, ids, userID); err != nil {
		return nil, err
	}

	batch, err := s.repo.ListAssigned(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("event: commit claim tx: %w", err)
	}

	telemetry.EventsAssigned.Add(float64(len(batch)))
	return batch, nil
}
