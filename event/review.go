package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"reviewflow/regional"
	"reviewflow/telemetry"
)

var (
	// ErrInvalidDecision signals a malformed decision value; rejected before any
	// storage access.
	ErrInvalidDecision = errors.New("event: decision must be Approved or Rejected")
	// ErrRegionalDelivery signals the regional authority did not acknowledge the
	// review. The lease is preserved; the caller may retry or wait for the sweep.
	ErrRegionalDelivery = errors.New("event: regional delivery failed")
)

// ReviewRepository defines the data access required to complete a review.
type ReviewRepository interface {
	LockForReview(ctx context.Context, tx pgx.Tx, eventID, userID string) (region string, externalEventID *string, err error)
	MarkCompleted(ctx context.Context, tx pgx.Tx, eventID, userID string, decision Decision, comment *string) error
}

// Notifier delivers a review to the authority for an event's origin region.
type Notifier interface {
	Notify(ctx context.Context, region, externalEventID string, n regional.Notification) error
}

// SubmitReviewParams captures one review submission.
type SubmitReviewParams struct {
	UserID   string
	EventID  string
	Decision Decision
	Rating   *int
	Comment  *string
}

// ReviewService finalises events. A completion is only durable once the
// regional authority has acknowledged it: the notification happens inside the
// same transaction that flips the row to Completed, under the row lock taken
// when the lease is verified.
type ReviewService struct {
	pool     TxBeginner
	repo     ReviewRepository
	notifier Notifier
}

func NewReviewService(pool TxBeginner, repo ReviewRepository, notifier Notifier) *ReviewService {
	if repo == nil {
		repo = NewRepository()
	}
	return &ReviewService{
		pool:     pool,
		repo:     repo,
		notifier: notifier,
	}
}

// SubmitReview validates the caller's lease on the event, forwards the decision
// to the event's regional authority, and on acknowledgement transitions the
// event to Completed. On any delivery failure the transaction rolls back and
// the row is left exactly as it was, still Assigned to the caller. Only the
// lease sweep returns it to Pending.
func (s *ReviewService) SubmitReview(ctx context.Context, params SubmitReviewParams) error {
	if params.EventID == "" {
		return fmt.Errorf("event: missing event id")
	}
	if params.UserID == "" {
		return fmt.Errorf("event: missing user id")
	}
	if !ValidDecision(params.Decision) {
		return ErrInvalidDecision
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("event: begin review tx: %w", err)
	}
	defer tx.Rollback(ctx)

	region, externalEventID, err := s.repo.LockForReview(ctx, tx, params.EventID, params.UserID)
	if err != nil {
		return err
	}
	if externalEventID == nil || *externalEventID == "" {
		return ErrMissingExternalID
	}

	notification := regional.Notification{
		ReviewedBy: params.UserID,
		Decision:   string(params.Decision),
		Rating:     params.Rating,
		Comment:    params.Comment,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.notifier.Notify(ctx, region, *externalEventID, notification); err != nil {
		telemetry.RegionalDeliveryFailures.Inc()
		return fmt.Errorf("%w: %v", ErrRegionalDelivery, err)
	}

	if err := s.repo.MarkCompleted(ctx, tx, params.EventID, params.UserID, params.Decision, params.Comment); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("event: commit review tx: %w", err)
	}

	telemetry.ReviewsCompleted.Inc()
	return nil
}
