package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"venturedeck/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type ProjectRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewProjectRepository(pool PgxPool, tracer trace.Tracer) *ProjectRepository {
	return &ProjectRepository{pool: pool, tracer: tracer}
}

func (r *ProjectRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "project-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS projects (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			hypothesis TEXT NOT NULL,
			state TEXT NOT NULL CHECK (state IN ('idea','mvp','active','paused','killed','winner')),
			started_at DATE NOT NULL,
			killed_at TIMESTAMPTZ,
			kill_reason TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK ((state = 'killed') = (killed_at IS NOT NULL AND kill_reason <> ''))
		);
		CREATE INDEX IF NOT EXISTS idx_projects_state ON projects (state);
	`)
	return err
}

func (r *ProjectRepository) Create(ctx context.Context, p domain.Project) (domain.Project, error) {
	_, span := r.tracer.Start(ctx, "project-repo.create")
	defer span.End()

	p.Name = strings.TrimSpace(p.Name)
	if p.State == "" {
		p.State = domain.StateIdea
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO projects (name, hypothesis, state, started_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		p.Name, p.Hypothesis, string(p.State), p.StartedAt,
	)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return domain.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	_, span := r.tracer.Start(ctx, "project-repo.get-by-id")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT id, name, hypothesis, state, started_at, killed_at, kill_reason, created_at
		 FROM projects
		 WHERE id = $1`,
		id,
	)
	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) List(ctx context.Context, states ...domain.ProjectState) ([]domain.Project, error) {
	_, span := r.tracer.Start(ctx, "project-repo.list")
	defer span.End()

	query := `SELECT id, name, hypothesis, state, started_at, killed_at, kill_reason, created_at
		FROM projects`
	args := make([]any, 0, 1)
	if len(states) > 0 {
		names := make([]string, len(states))
		for i, s := range states {
			names[i] = string(s)
		}
		args = append(args, names)
		query += ` WHERE state = ANY($1)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// SetState transitions a project's lifecycle state. Entering killed requires
// a non-empty reason; leaving killed clears the kill fields.
func (r *ProjectRepository) SetState(ctx context.Context, id int64, state domain.ProjectState, killReason string) error {
	_, span := r.tracer.Start(ctx, "project-repo.set-state")
	defer span.End()

	if !state.IsValid() {
		return fmt.Errorf("invalid project state: %s", state)
	}

	var tag pgconn.CommandTag
	var err error
	if state == domain.StateKilled {
		if strings.TrimSpace(killReason) == "" {
			return fmt.Errorf("killing a project requires a reason")
		}
		tag, err = r.pool.Exec(ctx,
			`UPDATE projects SET state = $2, killed_at = NOW(), kill_reason = $3 WHERE id = $1`,
			id, string(state), killReason,
		)
	} else {
		tag, err = r.pool.Exec(ctx,
			`UPDATE projects SET state = $2, killed_at = NULL, kill_reason = '' WHERE id = $1`,
			id, string(state),
		)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// ListZombies returns analyzable projects with no metric or decision activity
// since the cutoff. A project with no activity at all counts from its start date.
func (r *ProjectRepository) ListZombies(ctx context.Context, cutoff time.Time) ([]domain.Project, error) {
	_, span := r.tracer.Start(ctx, "project-repo.list-zombies")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, p.hypothesis, p.state, p.started_at, p.killed_at, p.kill_reason, p.created_at
		 FROM projects p
		 LEFT JOIN (SELECT project_id, MAX(day) AS last_day FROM metrics GROUP BY project_id) m
		   ON m.project_id = p.id
		 LEFT JOIN (SELECT project_id, MAX(created_at) AS last_at FROM decisions GROUP BY project_id) d
		   ON d.project_id = p.id
		 WHERE p.state IN ('idea','mvp','active')
		   AND GREATEST(
		         COALESCE(m.last_day, p.started_at),
		         COALESCE(d.last_at::date, p.started_at)
		       ) < $1
		 ORDER BY p.created_at DESC`,
		cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	var state string
	var killedAt *time.Time
	if err := row.Scan(&p.ID, &p.Name, &p.Hypothesis, &state, &p.StartedAt, &killedAt, &p.KillReason, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.State = domain.ProjectState(state)
	p.KilledAt = killedAt
	return &p, nil
}
