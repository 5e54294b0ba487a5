package repository

import (
	"context"
	"fmt"
	"time"

	"venturedeck/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type MetricRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewMetricRepository(pool PgxPool, tracer trace.Tracer) *MetricRepository {
	return &MetricRepository{pool: pool, tracer: tracer}
}

func (r *MetricRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "metric-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS metrics (
			id BIGSERIAL PRIMARY KEY,
			project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			day DATE NOT NULL,
			revenue DOUBLE PRECISION NOT NULL DEFAULT 0,
			hours DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (hours >= 0),
			conversions INT NOT NULL DEFAULT 0 CHECK (conversions >= 0),
			traffic_source TEXT NOT NULL DEFAULT '',
			friction_note TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (project_id, day)
		);
		CREATE INDEX IF NOT EXISTS idx_metrics_project_day ON metrics (project_id, day DESC);
	`)
	return err
}

// Upsert records one day of metrics. A second write for the same
// project/day replaces the first; corrections beat duplicates.
func (r *MetricRepository) Upsert(ctx context.Context, m domain.Metric) (domain.Metric, error) {
	_, span := r.tracer.Start(ctx, "metric-repo.upsert")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO metrics (project_id, day, revenue, hours, conversions, traffic_source, friction_note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (project_id, day) DO UPDATE SET
		   revenue = EXCLUDED.revenue,
		   hours = EXCLUDED.hours,
		   conversions = EXCLUDED.conversions,
		   traffic_source = EXCLUDED.traffic_source,
		   friction_note = EXCLUDED.friction_note
		 RETURNING id, created_at`,
		m.ProjectID, m.Day, m.Revenue, m.Hours, m.Conversions, m.TrafficSource, m.FrictionNote,
	)
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return domain.Metric{}, fmt.Errorf("upsert metric: %w", err)
	}
	return m, nil
}

func (r *MetricRepository) ListByProject(ctx context.Context, projectID int64, limit int) ([]domain.Metric, error) {
	_, span := r.tracer.Start(ctx, "metric-repo.list-by-project")
	defer span.End()

	if limit <= 0 {
		limit = 90
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, day, revenue, hours, conversions, traffic_source, friction_note, created_at
		 FROM metrics
		 WHERE project_id = $1
		 ORDER BY day DESC
		 LIMIT $2`,
		projectID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []domain.Metric
	for rows.Next() {
		var m domain.Metric
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Day, &m.Revenue, &m.Hours, &m.Conversions, &m.TrafficSource, &m.FrictionNote, &m.CreatedAt); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// Summary aggregates a project's full metric history. Projects without
// metrics get a zero-valued summary, not an error.
func (r *MetricRepository) Summary(ctx context.Context, p domain.Project) (domain.ProjectSummary, error) {
	_, span := r.tracer.Start(ctx, "metric-repo.summary")
	defer span.End()

	s := domain.ProjectSummary{Project: p}
	var lastDay *time.Time
	row := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(revenue), 0), COALESCE(SUM(hours), 0),
		        COALESCE(SUM(conversions), 0), COUNT(*), MAX(day)
		 FROM metrics
		 WHERE project_id = $1`,
		p.ID,
	)
	if err := row.Scan(&s.TotalRevenue, &s.TotalHours, &s.Conversions, &s.MetricCount, &lastDay); err != nil {
		return domain.ProjectSummary{}, fmt.Errorf("summarize metrics: %w", err)
	}
	if lastDay != nil {
		s.LastMetricDay = *lastDay
	}
	return s, nil
}

// MonthlyRevenue buckets a project's revenue by calendar month over the
// window [since, now]. Months with no metrics do not appear.
func (r *MetricRepository) MonthlyRevenue(ctx context.Context, projectID int64, since time.Time) ([]domain.MonthRevenue, error) {
	_, span := r.tracer.Start(ctx, "metric-repo.monthly-revenue")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT EXTRACT(YEAR FROM day)::INT, EXTRACT(MONTH FROM day)::INT, SUM(revenue)
		 FROM metrics
		 WHERE project_id = $1 AND day >= $2
		 GROUP BY 1, 2
		 ORDER BY 1, 2`,
		projectID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var months []domain.MonthRevenue
	for rows.Next() {
		var m domain.MonthRevenue
		if err := rows.Scan(&m.Year, &m.Month, &m.Revenue); err != nil {
			return nil, err
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// RevenueDaysCount counts the days with strictly positive revenue since the
// given date. Feeds the no-revenue rule.
func (r *MetricRepository) RevenueDaysCount(ctx context.Context, projectID int64, since time.Time) (int, error) {
	_, span := r.tracer.Start(ctx, "metric-repo.revenue-days-count")
	defer span.End()

	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM metrics WHERE project_id = $1 AND day >= $2 AND revenue > 0`,
		projectID, since,
	).Scan(&n)
	return n, err
}

// LastRevenueDay returns the most recent day with positive revenue, or nil
// when the project has never earned.
func (r *MetricRepository) LastRevenueDay(ctx context.Context, projectID int64) (*time.Time, error) {
	_, span := r.tracer.Start(ctx, "metric-repo.last-revenue-day")
	defer span.End()

	var day *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(day) FROM metrics WHERE project_id = $1 AND revenue > 0`,
		projectID,
	).Scan(&day)
	return day, err
}
