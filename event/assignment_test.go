package event

import (
	"context"
	"errors"
	"testing"
)

func TestClaimBatch_EmptyRegionsShortCircuits(t *testing.T) {
	pool := &fakePool{}
	repo := &fakeAssignmentRepo{}
	svc := NewAssignmentService(pool, repo, 10)

	batch, err := svc.ClaimBatch(context.Background(), "user-1", nil, 5)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("expected empty batch, got %d events", len(batch))
	}
	if pool.tx != nil {
		t.Errorf("expected no transaction for a team without regions")
	}
}

func TestClaimBatch_MissingUserID(t *testing.T) {
	svc := NewAssignmentService(&fakePool{}, &fakeAssignmentRepo{}, 10)

	if _, err := svc.ClaimBatch(context.Background(), "", []string{"us-east-1"}, 5); err == nil {
		t.Fatalf("expected error for missing user id")
	}
}

func TestClaimBatch_AssignsAndCommits(t *testing.T) {
	pool := &fakePool{}
	repo := &fakeAssignmentRepo{pendingIDs: []string{"e1", "e2"}}
	svc := NewAssignmentService(pool, repo, 10)

	batch, err := svc.ClaimBatch(context.Background(), "user-1", []string{"us-east-1", "ca-central-1"}, 2)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 events, got %d", len(batch))
	}
	if repo.gotUserID != "user-1" {
		t.Errorf("expected assignment to user-1, got %q", repo.gotUserID)
	}
	if len(repo.marked) != 2 {
		t.Errorf("expected 2 events marked, got %d", len(repo.marked))
	}
	if !pool.tx.committed {
		t.Errorf("expected commit")
	}
}

func TestClaimBatch_NoEligibleEventsCommitsEmpty(t *testing.T) {
	pool := &fakePool{}
	repo := &fakeAssignmentRepo{}
	svc := NewAssignmentService(pool, repo, 10)

	batch, err := svc.ClaimBatch(context.Background(), "user-1", []string{"us-east-1"}, 3)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("expected empty batch, got %d events", len(batch))
	}
	if !pool.tx.committed {
		t.Errorf("expected empty claim to commit")
	}
	if len(repo.marked) != 0 {
		t.Errorf("expected no assignments")
	}
}

func TestClaimBatch_SelectFailureRollsBack(t *testing.T) {
	pool := &fakePool{}
	repo := &fakeAssignmentRepo{selectErr: errors.New("boom")}
	svc := NewAssignmentService(pool, repo, 10)

	if _, err := svc.ClaimBatch(context.Background(), "user-1", []string{"us-east-1"}, 3); err == nil {
		t.Fatalf("expected error")
	}
	if pool.tx.committed {
		t.Errorf("expected no commit on failure")
	}
	if !pool.tx.rolled {
		t.Errorf("expected rollback on failure")
	}
}

func TestClaimBatch_NonPositiveCountUsesDefault(t *testing.T) {
	pool := &fakePool{}
	repo := &fakeAssignmentRepo{}
	svc := NewAssignmentService(pool, repo, 7)

	if _, err := svc.ClaimBatch(context.Background(), "user-1", []string{"us-east-1"}, 0); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if repo.gotLimit != 7 {
		t.Errorf("expected default batch size 7, got %d", repo.gotLimit)
	}
}
