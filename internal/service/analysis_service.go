package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"venturedeck/internal/domain"
	"venturedeck/internal/rules"

	"go.opentelemetry.io/otel/trace"
)

type AnalysisProjectRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, states ...domain.ProjectState) ([]domain.Project, error)
}

type AnalysisMetricRepository interface {
	Summary(ctx context.Context, p domain.Project) (domain.ProjectSummary, error)
	MonthlyRevenue(ctx context.Context, projectID int64, since time.Time) ([]domain.MonthRevenue, error)
	RevenueDaysCount(ctx context.Context, projectID int64, since time.Time) (int, error)
	LastRevenueDay(ctx context.Context, projectID int64) (*time.Time, error)
}

type AnalysisAlertRepository interface {
	Reconcile(ctx context.Context, projectID int64, signals []domain.Signal) ([]domain.Alert, int, error)
}

type AnalysisSettingsRepository interface {
	Thresholds(ctx context.Context) (domain.Thresholds, error)
}

type RuleEngine interface {
	EvaluateProject(in rules.ProjectInputs) []domain.Signal
	EvaluateConcentration(summaries []domain.ProjectSummary, th domain.Thresholds) []domain.Signal
}

// AlertDispatcher pushes freshly created alerts to an outside channel. A nil
// dispatcher means nobody is listening; that is fine.
type AlertDispatcher interface {
	DispatchAlerts(ctx context.Context, project domain.Project, alerts []domain.Alert)
}

// ProjectAnalysis is the outcome of one project's pass: the advisory signals
// plus what the alert reconciliation actually changed.
type ProjectAnalysis struct {
	Project       domain.Project  `json:"project"`
	Signals       []domain.Signal `json:"signals"`
	CreatedAlerts []domain.Alert  `json:"created_alerts"`
	AutoResolved  int             `json:"auto_resolved"`
}

// ProjectFailure records a project whose analysis failed without stopping
// the rest of the portfolio.
type ProjectFailure struct {
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	Error     string `json:"error"`
}

// PortfolioReport is one full analysis pass over every analyzable project.
// Global carries portfolio-wide signals that are never persisted as alerts.
type PortfolioReport struct {
	Projects []ProjectAnalysis `json:"projects"`
	Global   []domain.Signal   `json:"global"`
	Failures []ProjectFailure  `json:"failures,omitempty"`
	RanAt    time.Time         `json:"ran_at"`
}

type AnalysisService struct {
	tracer       trace.Tracer
	projectRepo  AnalysisProjectRepository
	metricRepo   AnalysisMetricRepository
	alertRepo    AnalysisAlertRepository
	settingsRepo AnalysisSettingsRepository
	engine       RuleEngine
	dispatcher   AlertDispatcher
	now          func() time.Time
}

func NewAnalysisService(
	tracer trace.Tracer,
	projectRepo AnalysisProjectRepository,
	metricRepo AnalysisMetricRepository,
	alertRepo AnalysisAlertRepository,
	settingsRepo AnalysisSettingsRepository,
	engine RuleEngine,
) *AnalysisService {
	return &AnalysisService{
		tracer:       tracer,
		projectRepo:  projectRepo,
		metricRepo:   metricRepo,
		alertRepo:    alertRepo,
		settingsRepo: settingsRepo,
		engine:       engine,
		now:          time.Now,
	}
}

// SetDispatcher wires an alert sink after construction; the bot registers
// itself here once it is online.
func (s *AnalysisService) SetDispatcher(d AlertDispatcher) { s.dispatcher = d }

// SetClock replaces the wall clock. Tests only.
func (s *AnalysisService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// AnalyzeProject evaluates one project and reconciles its alerts. Thresholds
// are read fresh; a missing cycle start surfaces as domain.ErrCycleNotStarted.
func (s *AnalysisService) AnalyzeProject(ctx context.Context, projectID int64) (*ProjectAnalysis, error) {
	_, span := s.tracer.Start(ctx, "analysis-service.analyze-project")
	defer span.End()

	th, err := s.settingsRepo.Thresholds(ctx)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.analyzeOne(ctx, *project, th)
}

// AnalyzeAll runs the full pass: every analyzable project independently, then
// the portfolio-wide concentration check. One project failing does not stop
// the others; failures come back in the report.
func (s *AnalysisService) AnalyzeAll(ctx context.Context) (*PortfolioReport, error) {
	_, span := s.tracer.Start(ctx, "analysis-service.analyze-all")
	defer span.End()

	th, err := s.settingsRepo.Thresholds(ctx)
	if err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.List(ctx, domain.AnalyzableStates...)
	if err != nil {
		return nil, fmt.Errorf("list analyzable projects: %w", err)
	}

	report := &PortfolioReport{RanAt: s.now().UTC()}
	for _, p := range projects {
		analysis, err := s.analyzeOne(ctx, p, th)
		if err != nil {
			log.Printf("analysis failed for project %d (%s): %v", p.ID, p.Name, err)
			report.Failures = append(report.Failures, ProjectFailure{ProjectID: p.ID, Name: p.Name, Error: err.Error()})
			continue
		}
		report.Projects = append(report.Projects, *analysis)
	}

	global, err := s.concentrationSignals(ctx, th)
	if err != nil {
		log.Printf("concentration check failed: %v", err)
	} else {
		report.Global = global
	}
	return report, nil
}

func (s *AnalysisService) analyzeOne(ctx context.Context, p domain.Project, th domain.Thresholds) (*ProjectAnalysis, error) {
	summary, err := s.metricRepo.Summary(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("summarize project %d: %w", p.ID, err)
	}

	now := s.now().UTC()
	revenueDays, err := s.metricRepo.RevenueDaysCount(ctx, p.ID, now.AddDate(0, 0, -th.KillDays))
	if err != nil {
		return nil, fmt.Errorf("count revenue days for project %d: %w", p.ID, err)
	}
	lastRevenue, err := s.metricRepo.LastRevenueDay(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("last revenue day for project %d: %w", p.ID, err)
	}
	months, err := s.metricRepo.MonthlyRevenue(ctx, p.ID, now.AddDate(0, 0, -rules.GrowthWindowDays))
	if err != nil {
		return nil, fmt.Errorf("monthly revenue for project %d: %w", p.ID, err)
	}

	signals := s.engine.EvaluateProject(rules.ProjectInputs{
		Summary:        summary,
		Months:         months,
		RevenueDays:    revenueDays,
		LastRevenueDay: lastRevenue,
		Thresholds:     th,
	})

	created, resolved, err := s.alertRepo.Reconcile(ctx, p.ID, signals)
	if err != nil {
		return nil, fmt.Errorf("reconcile alerts for project %d: %w", p.ID, err)
	}

	if s.dispatcher != nil && len(created) > 0 {
		s.dispatcher.DispatchAlerts(ctx, p, created)
	}

	return &ProjectAnalysis{
		Project:       p,
		Signals:       signals,
		CreatedAlerts: created,
		AutoResolved:  resolved,
	}, nil
}

func (s *AnalysisService) concentrationSignals(ctx context.Context, th domain.Thresholds) ([]domain.Signal, error) {
	projects, err := s.projectRepo.List(ctx, domain.StateActive, domain.StateWinner)
	if err != nil {
		return nil, fmt.Errorf("list earning projects: %w", err)
	}
	summaries := make([]domain.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		summary, err := s.metricRepo.Summary(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("summarize project %d: %w", p.ID, err)
		}
		summaries = append(summaries, summary)
	}
	return s.engine.EvaluateConcentration(summaries, th), nil
}
