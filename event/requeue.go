package event

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"reviewflow/telemetry"
)

// DefaultLeaseTTL is applied when the configured TTL is missing or invalid.
// A sweep with a bad TTL still runs rather than failing.
const DefaultLeaseTTL = 30 * time.Minute

// RequeuePool combines transaction begin with the lock-free read used by the
// expiry scan. *pgxpool.Pool satisfies it.
type RequeuePool interface {
	TxBeginner
	Querier
}

// RequeueRepository defines the data access required by the lease sweep.
type RequeueRepository interface {
	FindExpired(ctx context.Context, q Querier, ttl time.Duration) ([]string, error)
	RequeuePending(ctx context.Context, tx pgx.Tx, ids []string) (int64, error)
}

// RequeueService returns events with expired leases to the Pending pool.
// The sweep is idempotent: re-running it with no intervening activity finds
// nothing to do.
type RequeueService struct {
	pool     RequeuePool
	repo     RequeueRepository
	leaseTTL time.Duration
}

func NewRequeueService(pool RequeuePool, repo RequeueRepository, leaseTTL time.Duration) *RequeueService {
	if repo == nil {
		repo = NewRepository()
	}
	if leaseTTL <= 0 {
		log.Printf("event: invalid lease TTL %v, using default %v", leaseTTL, DefaultLeaseTTL)
		leaseTTL = DefaultLeaseTTL
	}
	return &RequeueService{
		pool:     pool,
		repo:     repo,
		leaseTTL: leaseTTL,
	}
}

// RequeueExpired scans for leases older than the TTL and returns the matching
// events to Pending. The scan is a plain read; the update re-checks that each
// row is still Assigned, so a review that completes mid-sweep is left alone and
// shows up as a processed/requeued mismatch rather than a failure. Storage
// failures roll back, are counted in the report, and never abort the caller:
// the sweep is idempotent and the next run picks up whatever this one missed.
func (s *RequeueService) RequeueExpired(ctx context.Context) RequeueReport {
	var report RequeueReport

	ids, err := s.repo.FindExpired(ctx, s.pool, s.leaseTTL)
	if err != nil {
		log.Printf("event: requeue scan failed: %v", err)
		report.Errors++
		return report
	}
	report.Processed = len(ids)
	if len(ids) == 0 {
		return report
	}

	requeued, err := s.requeueTx(ctx, ids)
	if err != nil {
		log.Printf("event: requeue update failed: %v", err)
		report.Errors++
		return report
	}
	report.Requeued = int(requeued)

	if report.Requeued != report.Processed {
		log.Printf("event: requeue mismatch: %d expired at scan, %d requeued; the rest changed state concurrently",
			report.Processed, report.Requeued)
	}

	telemetry.LeasesRequeued.Add(float64(report.Requeued))
	return report
}

func (s *RequeueService) requeueTx(ctx context.Context, ids []string) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("event: begin requeue tx: %w", err)
	}
	defer tx.Rollback(ctx)

	requeued, err := s.repo.RequeuePending(ctx, tx, ids)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("event: commit requeue tx: %w", err)
	}
	return requeued, nil
}
