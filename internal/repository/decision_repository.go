package repository

import (
	"context"
	"fmt"

	"venturedeck/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type DecisionRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewDecisionRepository(pool PgxPool, tracer trace.Tracer) *DecisionRepository {
	return &DecisionRepository{pool: pool, tracer: tracer}
}

func (r *DecisionRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "decision-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS decisions (
			id BIGSERIAL PRIMARY KEY,
			project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			kind TEXT NOT NULL CHECK (kind IN ('kill','iterate','scale','pause')),
			justification TEXT NOT NULL,
			origin TEXT NOT NULL CHECK (origin IN ('human','ai','mixed')),
			outcome TEXT NOT NULL CHECK (outcome IN ('accepted','rejected','postponed')),
			rejection_reason TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_decisions_project ON decisions (project_id, created_at DESC);
	`)
	return err
}

// Insert appends one decision. Rows are never updated afterwards.
func (r *DecisionRepository) Insert(ctx context.Context, d domain.Decision) (domain.Decision, error) {
	_, span := r.tracer.Start(ctx, "decision-repo.insert")
	defer span.End()

	if !d.Kind.IsValid() {
		return domain.Decision{}, fmt.Errorf("invalid decision kind: %s", d.Kind)
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO decisions (project_id, kind, justification, origin, outcome, rejection_reason)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		d.ProjectID, string(d.Kind), d.Justification, string(d.Origin), string(d.Outcome), d.RejectionReason,
	)
	if err := row.Scan(&d.ID, &d.CreatedAt); err != nil {
		return domain.Decision{}, fmt.Errorf("insert decision: %w", err)
	}
	return d, nil
}

func (r *DecisionRepository) ListByProject(ctx context.Context, projectID int64, limit int) ([]domain.Decision, error) {
	_, span := r.tracer.Start(ctx, "decision-repo.list-by-project")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, kind, justification, origin, outcome, rejection_reason, created_at
		 FROM decisions
		 WHERE project_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		projectID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDecisions(rows)
}

// RecentRejected returns the latest rejected proposals for a project. The
// advisor feeds these back so it stops repeating advice the user declined.
func (r *DecisionRepository) RecentRejected(ctx context.Context, projectID int64, limit int) ([]domain.Decision, error) {
	_, span := r.tracer.Start(ctx, "decision-repo.recent-rejected")
	defer span.End()

	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, kind, justification, origin, outcome, rejection_reason, created_at
		 FROM decisions
		 WHERE project_id = $1 AND outcome = 'rejected'
		 ORDER BY created_at DESC
		 LIMIT $2`,
		projectID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDecisions(rows)
}

func collectDecisions(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]domain.Decision, error) {
	var decisions []domain.Decision
	for rows.Next() {
		var d domain.Decision
		var kind, origin, outcome string
		if err := rows.Scan(&d.ID, &d.ProjectID, &kind, &d.Justification, &origin, &outcome, &d.RejectionReason, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Kind = domain.DecisionKind(kind)
		d.Origin = domain.DecisionOrigin(origin)
		d.Outcome = domain.DecisionOutcome(outcome)
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}
