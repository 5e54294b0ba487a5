package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"venturedeck/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestAlertReconcileCreatesAndAutoResolves(t *testing.T) {
	now := time.Now().UTC()
	tx := &repoStubTx{
		// One open alert whose condition has cleared.
		rowsData:   [][]any{{int64(7), "no_revenue"}},
		insertRows: []repoStubRow{{values: []any{int64(8), now}}},
	}
	pool := &repoStubPool{beginTx: tx}
	repo := NewAlertRepository(pool, testTracer())

	signals := []domain.Signal{{
		ProjectID: 1,
		Kind:      domain.KindNegativeROI,
		Severity:  domain.SeverityWarning,
		Message:   "roi per hour below estimated cost",
	}}
	created, resolved, err := repo.Reconcile(context.Background(), 1, signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != 1 {
		t.Fatalf("expected 1 auto-resolved alert, got %d", resolved)
	}
	if len(created) != 1 || created[0].Kind != domain.KindNegativeROI || created[0].ID != 8 {
		t.Fatalf("unexpected created alerts: %+v", created)
	}
	if !tx.committed {
		t.Fatal("expected transaction commit")
	}
	for _, sql := range tx.execSQL {
		if strings.Contains(sql, "auto_resolved = TRUE") {
			return
		}
	}
	t.Fatal("expected an auto-resolve update")
}

func TestAlertReconcileIsIdempotent(t *testing.T) {
	tx := &repoStubTx{
		// The open alert matches the fresh signal kind exactly.
		rowsData: [][]any{{int64(7), "negative_roi"}},
	}
	pool := &repoStubPool{beginTx: tx}
	repo := NewAlertRepository(pool, testTracer())

	signals := []domain.Signal{{
		ProjectID: 1,
		Kind:      domain.KindNegativeROI,
		Severity:  domain.SeverityWarning,
		Message:   "roi per hour below estimated cost",
	}}
	created, resolved, err := repo.Reconcile(context.Background(), 1, signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 0 || resolved != 0 {
		t.Fatalf("expected no changes, got created=%d resolved=%d", len(created), resolved)
	}
	if len(tx.execSQL) != 0 {
		t.Fatalf("expected no writes, got %d", len(tx.execSQL))
	}
	if !tx.committed {
		t.Fatal("expected transaction commit")
	}
}

func TestAlertResolveMarksManual(t *testing.T) {
	pool := &repoStubPool{}
	repo := NewAlertRepository(pool, testTracer())

	if err := repo.Resolve(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.execSQL) != 1 || !strings.Contains(pool.execSQL[0], "auto_resolved = FALSE") {
		t.Fatalf("unexpected SQL: %v", pool.execSQL)
	}
}

func TestAlertResolveUnknownID(t *testing.T) {
	pool := &repoStubPool{
		execTags: []pgconn.CommandTag{pgconn.NewCommandTag("UPDATE 0")},
		queryRowFunc: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return repoStubRow{values: []any{false}}
		},
	}
	repo := NewAlertRepository(pool, testTracer())

	if err := repo.Resolve(context.Background(), 99); err == nil {
		t.Fatal("expected error for unknown alert id")
	}
}

func TestAlertListUnresolvedOnly(t *testing.T) {
	now := time.Now().UTC()
	pool := &repoStubPool{rowsData: [][]any{
		{int64(1), int64(2), "no_revenue", "critical", "no revenue in 30 days", false, nil, false, now},
	}}
	repo := NewAlertRepository(pool, testTracer())

	alerts, err := repo.List(context.Background(), domain.AlertFilter{Unresolved: true, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Kind != domain.KindNoRevenue || alerts[0].Resolved {
		t.Fatalf("unexpected alerts: %+v", alerts)
	}
}
