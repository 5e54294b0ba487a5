package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"venturedeck/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func TestProjectRunMigrationsExecutesSchema(t *testing.T) {
	pool := &repoStubPool{}
	repo := NewProjectRepository(pool, testTracer())

	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.execSQL) == 0 {
		t.Fatal("expected Exec to be called")
	}
}

func TestProjectCreateDefaultsToIdea(t *testing.T) {
	now := time.Now().UTC()
	pool := &repoStubPool{
		queryRowFunc: func(_ context.Context, _ string, args ...any) pgx.Row {
			if got := args[2].(string); got != "idea" {
				t.Fatalf("expected idea state, got %s", got)
			}
			return repoStubRow{values: []any{int64(42), now}}
		},
	}
	repo := NewProjectRepository(pool, testTracer())

	p, err := repo.Create(context.Background(), domain.Project{
		Name:       "  newsletter  ",
		Hypothesis: "a weekly digest people will pay for",
		StartedAt:  now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 42 || p.Name != "newsletter" || p.State != domain.StateIdea {
		t.Fatalf("unexpected project: %+v", p)
	}
}

func TestProjectGetByIDNotFound(t *testing.T) {
	pool := &repoStubPool{
		queryRowFunc: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return repoStubRow{err: pgx.ErrNoRows}
		},
	}
	repo := NewProjectRepository(pool, testTracer())

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectListFiltersByState(t *testing.T) {
	now := time.Now().UTC()
	pool := &repoStubPool{rowsData: [][]any{
		{int64(1), "newsletter", "a weekly digest", "active", now, nil, "", now},
	}}
	repo := NewProjectRepository(pool, testTracer())

	projects, err := repo.List(context.Background(), domain.StateActive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(projects) != 1 || projects[0].State != domain.StateActive {
		t.Fatalf("unexpected projects: %+v", projects)
	}
}

func TestProjectKillRequiresReason(t *testing.T) {
	repo := NewProjectRepository(&repoStubPool{}, testTracer())

	err := repo.SetState(context.Background(), 1, domain.StateKilled, "  ")
	if err == nil {
		t.Fatal("expected error for empty kill reason")
	}
}

func TestProjectSetStateNotFound(t *testing.T) {
	pool := &repoStubPool{execTags: []pgconn.CommandTag{pgconn.NewCommandTag("UPDATE 0")}}
	repo := NewProjectRepository(pool, testTracer())

	err := repo.SetState(context.Background(), 99, domain.StatePaused, "")
	if !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}
