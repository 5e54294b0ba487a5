package service

import (
	"context"
	"fmt"
	"time"

	"venturedeck/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

var fixedNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type stateChange struct {
	id     int64
	state  domain.ProjectState
	reason string
}

type stubProjectRepo struct {
	projects     []domain.Project
	zombies      []domain.Project
	listErr      error
	stateChanges []stateChange
	setStateErr  error
}

func (s *stubProjectRepo) Create(_ context.Context, p domain.Project) (domain.Project, error) {
	p.ID = int64(len(s.projects) + 1)
	p.CreatedAt = fixedNow
	s.projects = append(s.projects, p)
	return p, nil
}

func (s *stubProjectRepo) GetByID(_ context.Context, id int64) (*domain.Project, error) {
	for i := range s.projects {
		if s.projects[i].ID == id {
			p := s.projects[i]
			return &p, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (s *stubProjectRepo) List(_ context.Context, states ...domain.ProjectState) ([]domain.Project, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(states) == 0 {
		return s.projects, nil
	}
	var out []domain.Project
	for _, p := range s.projects {
		for _, st := range states {
			if p.State == st {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (s *stubProjectRepo) SetState(_ context.Context, id int64, state domain.ProjectState, reason string) error {
	if s.setStateErr != nil {
		return s.setStateErr
	}
	s.stateChanges = append(s.stateChanges, stateChange{id: id, state: state, reason: reason})
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i].State = state
			return nil
		}
	}
	return domain.ErrProjectNotFound
}

func (s *stubProjectRepo) ListZombies(_ context.Context, _ time.Time) ([]domain.Project, error) {
	return s.zombies, nil
}

type stubMetricRepo struct {
	summaries   map[int64]domain.ProjectSummary
	summaryErrs map[int64]error
	months      map[int64][]domain.MonthRevenue
	revenueDays map[int64]int
	lastRevenue map[int64]*time.Time
	metrics     []domain.Metric
	upserted    []domain.Metric
}

func (s *stubMetricRepo) Upsert(_ context.Context, m domain.Metric) (domain.Metric, error) {
	m.ID = int64(len(s.upserted) + 1)
	s.upserted = append(s.upserted, m)
	return m, nil
}

func (s *stubMetricRepo) ListByProject(_ context.Context, projectID int64, _ int) ([]domain.Metric, error) {
	var out []domain.Metric
	for _, m := range s.metrics {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubMetricRepo) Summary(_ context.Context, p domain.Project) (domain.ProjectSummary, error) {
	if err := s.summaryErrs[p.ID]; err != nil {
		return domain.ProjectSummary{}, err
	}
	summary, ok := s.summaries[p.ID]
	if !ok {
		return domain.ProjectSummary{Project: p}, nil
	}
	summary.Project = p
	return summary, nil
}

func (s *stubMetricRepo) MonthlyRevenue(_ context.Context, projectID int64, _ time.Time) ([]domain.MonthRevenue, error) {
	return s.months[projectID], nil
}

func (s *stubMetricRepo) RevenueDaysCount(_ context.Context, projectID int64, _ time.Time) (int, error) {
	return s.revenueDays[projectID], nil
}

func (s *stubMetricRepo) LastRevenueDay(_ context.Context, projectID int64) (*time.Time, error) {
	return s.lastRevenue[projectID], nil
}

type reconcileCall struct {
	projectID int64
	signals   []domain.Signal
}

type stubAlertRepo struct {
	alerts         []domain.Alert
	reconcileCalls []reconcileCall
	created        map[int64][]domain.Alert
	autoResolved   int
	reconcileErr   error
	resolvedIDs    []int64
}

func (s *stubAlertRepo) List(_ context.Context, f domain.AlertFilter) ([]domain.Alert, error) {
	var out []domain.Alert
	for _, a := range s.alerts {
		if f.ProjectID != 0 && a.ProjectID != f.ProjectID {
			continue
		}
		if f.Unresolved && a.Resolved {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *stubAlertRepo) Resolve(_ context.Context, id int64) error {
	s.resolvedIDs = append(s.resolvedIDs, id)
	return nil
}

func (s *stubAlertRepo) Reconcile(_ context.Context, projectID int64, signals []domain.Signal) ([]domain.Alert, int, error) {
	if s.reconcileErr != nil {
		return nil, 0, s.reconcileErr
	}
	s.reconcileCalls = append(s.reconcileCalls, reconcileCall{projectID: projectID, signals: signals})
	return s.created[projectID], s.autoResolved, nil
}

type stubDecisionRepo struct {
	inserted  []domain.Decision
	rejected  []domain.Decision
	insertErr error
}

func (s *stubDecisionRepo) RecentRejected(_ context.Context, projectID int64, _ int) ([]domain.Decision, error) {
	var out []domain.Decision
	for _, d := range s.rejected {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *stubDecisionRepo) Insert(_ context.Context, d domain.Decision) (domain.Decision, error) {
	if s.insertErr != nil {
		return domain.Decision{}, s.insertErr
	}
	d.ID = int64(len(s.inserted) + 1)
	d.CreatedAt = fixedNow
	s.inserted = append(s.inserted, d)
	return d, nil
}

func (s *stubDecisionRepo) ListByProject(_ context.Context, projectID int64, _ int) ([]domain.Decision, error) {
	var out []domain.Decision
	for _, d := range s.inserted {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

type stubSettingsStore struct {
	values     map[string]string
	thresholds domain.Thresholds
	thErr      error
}

func (s *stubSettingsStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("setting %s not found", key)
	}
	return v, nil
}

func (s *stubSettingsStore) Set(_ context.Context, key, value string) error {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	return nil
}

func (s *stubSettingsStore) Thresholds(_ context.Context) (domain.Thresholds, error) {
	if s.thErr != nil {
		return domain.Thresholds{}, s.thErr
	}
	return s.thresholds, nil
}

type stubSettings struct {
	thresholds domain.Thresholds
	thErr      error
	maxActive  int
	zombieDays int
}

func (s *stubSettings) Thresholds(_ context.Context) (domain.Thresholds, error) {
	if s.thErr != nil {
		return domain.Thresholds{}, s.thErr
	}
	return s.thresholds, nil
}

func (s *stubSettings) MaxActive(_ context.Context) int {
	if s.maxActive <= 0 {
		return domain.DefaultMaxActive
	}
	return s.maxActive
}

func (s *stubSettings) ZombieDays(_ context.Context) int {
	if s.zombieDays <= 0 {
		return domain.DefaultZombieDays
	}
	return s.zombieDays
}

type dispatchedBatch struct {
	project domain.Project
	alerts  []domain.Alert
}

type stubDispatcher struct {
	batches []dispatchedBatch
}

func (s *stubDispatcher) DispatchAlerts(_ context.Context, project domain.Project, alerts []domain.Alert) {
	s.batches = append(s.batches, dispatchedBatch{project: project, alerts: alerts})
}

func testThresholds() domain.Thresholds {
	return domain.Thresholds{
		KillDays:        domain.DefaultKillDays,
		HourlyCost:      domain.DefaultHourlyCost,
		MaxActive:       domain.DefaultMaxActive,
		GrowthThreshold: domain.DefaultGrowthThreshold,
		ShareThreshold:  domain.DefaultShareThreshold,
		CycleStart:      fixedNow.AddDate(0, 0, -20),
	}
}

var errBoom = fmt.Errorf("boom")
