package repository

import (
	"context"
	"fmt"

	"venturedeck/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

type AlertRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewAlertRepository(pool PgxPool, tracer trace.Tracer) *AlertRepository {
	return &AlertRepository{pool: pool, tracer: tracer}
}

func (r *AlertRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "alert-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS alerts (
			id BIGSERIAL PRIMARY KEY,
			project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			severity TEXT NOT NULL CHECK (severity IN ('info','warning','critical')),
			message TEXT NOT NULL,
			resolved BOOLEAN NOT NULL DEFAULT FALSE,
			resolved_at TIMESTAMPTZ,
			auto_resolved BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_alerts_project_open ON alerts (project_id) WHERE NOT resolved;
	`)
	return err
}

func (r *AlertRepository) List(ctx context.Context, f domain.AlertFilter) ([]domain.Alert, error) {
	_, span := r.tracer.Start(ctx, "alert-repo.list")
	defer span.End()

	query := `SELECT id, project_id, kind, severity, message, resolved, resolved_at, auto_resolved, created_at
		FROM alerts WHERE TRUE`
	args := make([]any, 0, 2)
	if f.ProjectID != 0 {
		args = append(args, f.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	if f.Unresolved {
		query += " AND NOT resolved"
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// Resolve marks an alert resolved by hand. Resolving an already-resolved
// alert is a no-op.
func (r *AlertRepository) Resolve(ctx context.Context, id int64) error {
	_, span := r.tracer.Start(ctx, "alert-repo.resolve")
	defer span.End()

	tag, err := r.pool.Exec(ctx,
		`UPDATE alerts SET resolved = TRUE, resolved_at = NOW(), auto_resolved = FALSE
		 WHERE id = $1 AND NOT resolved`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM alerts WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("alert %d not found", id)
		}
	}
	return nil
}

// Reconcile brings a project's open alerts in line with the fresh signal set,
// inside one serializable transaction. Open alerts whose kind is absent from
// the signals are auto-resolved; signals without an open alert of their kind
// get a new alert. Running twice with the same signals changes nothing.
func (r *AlertRepository) Reconcile(ctx context.Context, projectID int64, signals []domain.Signal) (created []domain.Alert, resolved int, err error) {
	_, span := r.tracer.Start(ctx, "alert-repo.reconcile")
	defer span.End()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, 0, fmt.Errorf("begin reconcile: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT id, kind FROM alerts WHERE project_id = $1 AND NOT resolved`,
		projectID,
	)
	if err != nil {
		return nil, 0, err
	}
	open := make(map[domain.SignalKind][]int64)
	for rows.Next() {
		var id int64
		var kind string
		if err := rows.Scan(&id, &kind); err != nil {
			rows.Close()
			return nil, 0, err
		}
		k := domain.SignalKind(kind)
		open[k] = append(open[k], id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	fresh := make(map[domain.SignalKind]domain.Signal, len(signals))
	for _, s := range signals {
		fresh[s.Kind] = s
	}

	for kind, ids := range open {
		if _, still := fresh[kind]; still {
			continue
		}
		for _, id := range ids {
			tag, err := tx.Exec(ctx,
				`UPDATE alerts SET resolved = TRUE, resolved_at = NOW(), auto_resolved = TRUE WHERE id = $1`,
				id,
			)
			if err != nil {
				return nil, 0, fmt.Errorf("auto-resolve alert %d: %w", id, err)
			}
			resolved += int(tag.RowsAffected())
		}
	}

	for kind, s := range fresh {
		if _, already := open[kind]; already {
			continue
		}
		a := domain.Alert{
			ProjectID: projectID,
			Kind:      kind,
			Severity:  s.Severity,
			Message:   s.Message,
		}
		row := tx.QueryRow(ctx,
			`INSERT INTO alerts (project_id, kind, severity, message)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at`,
			projectID, string(kind), string(s.Severity), s.Message,
		)
		if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("insert alert %s: %w", kind, err)
		}
		created = append(created, a)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit reconcile: %w", err)
	}
	return created, resolved, nil
}

func scanAlert(row pgx.Row) (domain.Alert, error) {
	var a domain.Alert
	var kind, severity string
	if err := row.Scan(&a.ID, &a.ProjectID, &kind, &severity, &a.Message, &a.Resolved, &a.ResolvedAt, &a.AutoResolved, &a.CreatedAt); err != nil {
		return domain.Alert{}, err
	}
	a.Kind = domain.SignalKind(kind)
	a.Severity = domain.Severity(severity)
	return a, nil
}
