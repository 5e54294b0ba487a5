package handler

import (
	"context"
	"time"

	"venturedeck/internal/advisor"
	"venturedeck/internal/domain"
	"venturedeck/internal/rules"
	"venturedeck/internal/service"

	"go.opentelemetry.io/otel/trace"
)

var handlerFixedNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func handlerClock() time.Time { return handlerFixedNow }

type stubProjectStore struct {
	projects []domain.Project
	zombies  []domain.Project
	created  []domain.Project
	states   []string
}

func (s *stubProjectStore) Create(_ context.Context, p domain.Project) (domain.Project, error) {
	p.ID = int64(len(s.created) + 1)
	p.CreatedAt = handlerFixedNow
	s.created = append(s.created, p)
	return p, nil
}

func (s *stubProjectStore) GetByID(_ context.Context, id int64) (*domain.Project, error) {
	for i := range s.projects {
		if s.projects[i].ID == id {
			p := s.projects[i]
			return &p, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (s *stubProjectStore) List(_ context.Context, states ...domain.ProjectState) ([]domain.Project, error) {
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

func (s *stubProjectStore) SetState(_ context.Context, id int64, state domain.ProjectState, killReason string) error {
	s.states = append(s.states, string(state))
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i].State = state
			s.projects[i].KillReason = killReason
			return nil
		}
	}
	return domain.ErrProjectNotFound
}

func (s *stubProjectStore) ListZombies(_ context.Context, _ time.Time) ([]domain.Project, error) {
	return s.zombies, nil
}

type stubMetricStore struct {
	metrics     map[int64][]domain.Metric
	summaries   map[int64]domain.ProjectSummary
	months      map[int64][]domain.MonthRevenue
	revenueDays map[int64]int
	lastRevenue map[int64]*time.Time
	upserted    []domain.Metric
}

func (s *stubMetricStore) Upsert(_ context.Context, m domain.Metric) (domain.Metric, error) {
	m.ID = int64(len(s.upserted) + 1)
	s.upserted = append(s.upserted, m)
	return m, nil
}

func (s *stubMetricStore) ListByProject(_ context.Context, projectID int64, _ int) ([]domain.Metric, error) {
	return s.metrics[projectID], nil
}

func (s *stubMetricStore) Summary(_ context.Context, p domain.Project) (domain.ProjectSummary, error) {
	if sum, ok := s.summaries[p.ID]; ok {
		return sum, nil
	}
	return domain.ProjectSummary{Project: p}, nil
}

func (s *stubMetricStore) MonthlyRevenue(_ context.Context, projectID int64, _ time.Time) ([]domain.MonthRevenue, error) {
	return s.months[projectID], nil
}

func (s *stubMetricStore) RevenueDaysCount(_ context.Context, projectID int64, _ time.Time) (int, error) {
	return s.revenueDays[projectID], nil
}

func (s *stubMetricStore) LastRevenueDay(_ context.Context, projectID int64) (*time.Time, error) {
	return s.lastRevenue[projectID], nil
}

type stubAlertStore struct {
	alerts     []domain.Alert
	lastFilter domain.AlertFilter
	resolved   []int64
	resolveErr error
	reconciled map[int64][]domain.Signal
}

func (s *stubAlertStore) List(_ context.Context, f domain.AlertFilter) ([]domain.Alert, error) {
	s.lastFilter = f
	return s.alerts, nil
}

func (s *stubAlertStore) Resolve(_ context.Context, id int64) error {
	if s.resolveErr != nil {
		return s.resolveErr
	}
	s.resolved = append(s.resolved, id)
	return nil
}

func (s *stubAlertStore) Reconcile(_ context.Context, projectID int64, signals []domain.Signal) ([]domain.Alert, int, error) {
	if s.reconciled == nil {
		s.reconciled = make(map[int64][]domain.Signal)
	}
	s.reconciled[projectID] = signals
	return nil, 0, nil
}

type stubDecisionStore struct {
	decisions []domain.Decision
}

func (s *stubDecisionStore) Insert(_ context.Context, d domain.Decision) (domain.Decision, error) {
	d.ID = int64(len(s.decisions) + 1)
	s.decisions = append(s.decisions, d)
	return d, nil
}

func (s *stubDecisionStore) ListByProject(_ context.Context, _ int64, _ int) ([]domain.Decision, error) {
	return s.decisions, nil
}

func (s *stubDecisionStore) RecentRejected(_ context.Context, _ int64, _ int) ([]domain.Decision, error) {
	return nil, nil
}

// stubSettingsStore serves every settings-shaped dependency the services take.
type stubSettingsStore struct {
	values       map[string]string
	thresholds   domain.Thresholds
	thresholdErr error
}

func (s *stubSettingsStore) Get(_ context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *stubSettingsStore) Set(_ context.Context, key, value string) error {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	return nil
}

func (s *stubSettingsStore) Thresholds(_ context.Context) (domain.Thresholds, error) {
	if s.thresholdErr != nil {
		return domain.Thresholds{}, s.thresholdErr
	}
	return s.thresholds, nil
}

func (s *stubSettingsStore) MaxActive(_ context.Context) int  { return domain.DefaultMaxActive }
func (s *stubSettingsStore) ZombieDays(_ context.Context) int { return domain.DefaultZombieDays }

type handlerFixture struct {
	h         *Handler
	projects  *stubProjectStore
	metrics   *stubMetricStore
	alerts    *stubAlertStore
	decisions *stubDecisionStore
	settings  *stubSettingsStore
}

func newHandlerFixture() *handlerFixture {
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	projects := &stubProjectStore{}
	metrics := &stubMetricStore{}
	alerts := &stubAlertStore{}
	decisions := &stubDecisionStore{}
	settings := &stubSettingsStore{
		thresholds: domain.Thresholds{
			KillDays:        domain.DefaultKillDays,
			HourlyCost:      domain.DefaultHourlyCost,
			MaxActive:       domain.DefaultMaxActive,
			GrowthThreshold: domain.DefaultGrowthThreshold,
			ShareThreshold:  domain.DefaultShareThreshold,
			CycleStart:      handlerFixedNow.AddDate(0, 0, -20),
		},
	}

	projectService := service.NewProjectService(tracer, projects, metrics, alerts, decisions, settings)
	projectService.SetClock(handlerClock)
	analysisService := service.NewAnalysisService(tracer, projects, metrics, alerts, settings, rules.NewEngine(handlerClock))
	analysisService.SetClock(handlerClock)
	dashboardService := service.NewDashboardService(tracer, projects, metrics, alerts, settings, nil)
	dashboardService.SetClock(handlerClock)
	settingsService := service.NewSettingsService(tracer, settings)
	settingsService.SetClock(handlerClock)
	promptService := service.NewPromptService(tracer, projects, metrics, decisions, settings)
	promptService.SetClock(handlerClock)

	h := New(tracer, projectService, analysisService, dashboardService, settingsService, promptService,
		advisor.New(tracer, nil, nil, nil))
	return &handlerFixture{
		h:         h,
		projects:  projects,
		metrics:   metrics,
		alerts:    alerts,
		decisions: decisions,
		settings:  settings,
	}
}
