package event

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakePool struct {
	tx       *fakeTx
	beginErr error
}

func (f *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	f.tx = &fakeTx{}
	return f.tx, nil
}

func (f *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}

type fakeTx struct {
	rolled    bool
	committed bool
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("fakeTx does not support nested transactions")
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolled = true
	return nil
}

func (f *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}

func (f *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}

func (f *fakeTx) LargeObjects() pgx.LargeObjects {
	panic("not implemented")
}

func (f *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}

func (f *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}

func (f *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not implemented")
}

func (f *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("not implemented")
}

func (f *fakeTx) Conn() *pgx.Conn {
	return nil
}

type fakeAssignmentRepo struct {
	pendingIDs []string
	selectErr  error
	markErr    error
	listErr    error

	gotRegions []string
	gotLimit   int
	gotUserID  string
	marked     []string
}

func (f *fakeAssignmentRepo) SelectPendingLocked(ctx context.Context, tx pgx.Tx, regions []string, limit int) ([]string, error) {
	f.gotRegions = regions
	f.gotLimit = limit
	return f.pendingIDs, f.selectErr
}

func (f *fakeAssignmentRepo) MarkAssigned(ctx context.Context, tx pgx.Tx, ids []string, userID string) (int64, error) {
	if f.markErr != nil {
		return 0, f.markErr
	}
	f.marked = ids
	f.gotUserID = userID
	return int64(len(ids)), nil
}

func (f *fakeAssignmentRepo) ListAssigned(ctx context.Context, tx pgx.Tx, ids []string) ([]AssignedEvent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	batch := make([]AssignedEvent, 0, len(ids))
	for _, id := range ids {
		batch = append(batch, AssignedEvent{EventID: id, Region: "us-east-1"})
	}
	return batch, nil
}

type fakeReviewRepo struct {
	region     string
	externalID *string
	lockErr    error
	markErr    error

	completed         bool
	completedDecision Decision
	completedComment  *string
}

func (f *fakeReviewRepo) LockForReview(ctx context.Context, tx pgx.Tx, eventID, userID string) (string, *string, error) {
	if f.lockErr != nil {
		return "", nil, f.lockErr
	}
	return f.region, f.externalID, nil
}

func (f *fakeReviewRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, eventID, userID string, decision Decision, comment *string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.completed = true
	f.completedDecision = decision
	f.completedComment = comment
	return nil
}

type fakeRequeueRepo struct {
	expiredIDs []string
	findErr    error
	requeueN   int64
	requeueErr error

	gotTTL time.Duration
}

func (f *fakeRequeueRepo) FindExpired(ctx context.Context, q Querier, ttl time.Duration) ([]string, error) {
	f.gotTTL = ttl
	return f.expiredIDs, f.findErr
}

func (f *fakeRequeueRepo) RequeuePending(ctx context.Context, tx pgx.Tx, ids []string) (int64, error) {
	if f.requeueErr != nil {
		return 0, f.requeueErr
	}
	return f.requeueN, nil
}
