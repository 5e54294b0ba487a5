package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"venturedeck/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type ProjectRepository interface {
	Create(ctx context.Context, p domain.Project) (domain.Project, error)
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, states ...domain.ProjectState) ([]domain.Project, error)
	SetState(ctx context.Context, id int64, state domain.ProjectState, killReason string) error
	ListZombies(ctx context.Context, cutoff time.Time) ([]domain.Project, error)
}

type MetricRepository interface {
	Upsert(ctx context.Context, m domain.Metric) (domain.Metric, error)
	ListByProject(ctx context.Context, projectID int64, limit int) ([]domain.Metric, error)
	Summary(ctx context.Context, p domain.Project) (domain.ProjectSummary, error)
}

type AlertRepository interface {
	List(ctx context.Context, f domain.AlertFilter) ([]domain.Alert, error)
	Resolve(ctx context.Context, id int64) error
}

type DecisionRepository interface {
	Insert(ctx context.Context, d domain.Decision) (domain.Decision, error)
	ListByProject(ctx context.Context, projectID int64, limit int) ([]domain.Decision, error)
}

type ProjectSettings interface {
	MaxActive(ctx context.Context) int
	ZombieDays(ctx context.Context) int
}

// ProjectDetail is the full picture of one experiment.
type ProjectDetail struct {
	Project   domain.Project        `json:"project"`
	Summary   domain.ProjectSummary `json:"summary"`
	Metrics   []domain.Metric       `json:"metrics"`
	Alerts    []domain.Alert        `json:"alerts"`
	Decisions []domain.Decision     `json:"decisions"`
}

type ProjectService struct {
	tracer       trace.Tracer
	projectRepo  ProjectRepository
	metricRepo   MetricRepository
	alertRepo    AlertRepository
	decisionRepo DecisionRepository
	settings     ProjectSettings
	now          func() time.Time
}

func NewProjectService(
	tracer trace.Tracer,
	projectRepo ProjectRepository,
	metricRepo MetricRepository,
	alertRepo AlertRepository,
	decisionRepo DecisionRepository,
	settings ProjectSettings,
) *ProjectService {
	return &ProjectService{
		tracer:       tracer,
		projectRepo:  projectRepo,
		metricRepo:   metricRepo,
		alertRepo:    alertRepo,
		decisionRepo: decisionRepo,
		settings:     settings,
		now:          time.Now,
	}
}

// SetClock replaces the wall clock. Tests only.
func (s *ProjectService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *ProjectService) Create(ctx context.Context, name, hypothesis string, startedAt time.Time) (domain.Project, error) {
	_, span := s.tracer.Start(ctx, "project-service.create")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Project{}, fmt.Errorf("project name is required")
	}
	if strings.TrimSpace(hypothesis) == "" {
		return domain.Project{}, fmt.Errorf("a hypothesis is required; an experiment without one is a hobby")
	}
	if startedAt.IsZero() {
		startedAt = s.now().UTC()
	}

	return s.projectRepo.Create(ctx, domain.Project{
		Name:       name,
		Hypothesis: hypothesis,
		State:      domain.StateIdea,
		StartedAt:  startedAt,
	})
}

func (s *ProjectService) List(ctx context.Context, states ...domain.ProjectState) ([]domain.Project, error) {
	_, span := s.tracer.Start(ctx, "project-service.list")
	defer span.End()

	for _, st := range states {
		if !st.IsValid() {
			return nil, fmt.Errorf("invalid project state: %s", st)
		}
	}
	return s.projectRepo.List(ctx, states...)
}

func (s *ProjectService) Detail(ctx context.Context, id int64) (*ProjectDetail, error) {
	_, span := s.tracer.Start(ctx, "project-service.detail")
	defer span.End()

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, err := s.metricRepo.Summary(ctx, *project)
	if err != nil {
		return nil, fmt.Errorf("summarize project %d: %w", id, err)
	}
	metrics, err := s.metricRepo.ListByProject(ctx, id, 90)
	if err != nil {
		return nil, fmt.Errorf("list metrics for project %d: %w", id, err)
	}
	alerts, err := s.alertRepo.List(ctx, domain.AlertFilter{ProjectID: id, Unresolved: true})
	if err != nil {
		return nil, fmt.Errorf("list alerts for project %d: %w", id, err)
	}
	decisions, err := s.decisionRepo.ListByProject(ctx, id, 50)
	if err != nil {
		return nil, fmt.Errorf("list decisions for project %d: %w", id, err)
	}

	return &ProjectDetail{
		Project:   *project,
		Summary:   summary,
		Metrics:   metrics,
		Alerts:    alerts,
		Decisions: decisions,
	}, nil
}

// ChangeState moves a project through its lifecycle. Activation is capped by
// the configured portfolio limit; killing requires a reason.
func (s *ProjectService) ChangeState(ctx context.Context, id int64, state domain.ProjectState, killReason string) error {
	_, span := s.tracer.Start(ctx, "project-service.change-state")
	defer span.End()

	if !state.IsValid() {
		return fmt.Errorf("invalid project state: %s", state)
	}
	if state == domain.StateActive {
		if err := s.checkActiveCap(ctx, id); err != nil {
			return err
		}
	}
	return s.projectRepo.SetState(ctx, id, state, killReason)
}

// RecordMetric stores one day of numbers. A repeated day overwrites the
// earlier entry.
func (s *ProjectService) RecordMetric(ctx context.Context, m domain.Metric) (domain.Metric, error) {
	_, span := s.tracer.Start(ctx, "project-service.record-metric")
	defer span.End()

	project, err := s.projectRepo.GetByID(ctx, m.ProjectID)
	if err != nil {
		return domain.Metric{}, err
	}
	if project.State == domain.StateKilled {
		return domain.Metric{}, fmt.Errorf("project %s is killed; no further metrics", project.Name)
	}
	if m.Hours < 0 {
		return domain.Metric{}, fmt.Errorf("hours cannot be negative")
	}
	if m.Conversions < 0 {
		return domain.Metric{}, fmt.Errorf("conversions cannot be negative")
	}
	if m.Day.IsZero() {
		m.Day = s.now().UTC().Truncate(24 * time.Hour)
	}
	if m.Day.After(s.now().UTC()) {
		return domain.Metric{}, fmt.Errorf("cannot record metrics for a future day")
	}
	return s.metricRepo.Upsert(ctx, m)
}

// RecordDecision appends a decision and, when it was accepted, applies its
// state side effect: kill, pause, or promote to winner. Iterating changes
// the work, not the state.
func (s *ProjectService) RecordDecision(ctx context.Context, d domain.Decision) (domain.Decision, error) {
	_, span := s.tracer.Start(ctx, "project-service.record-decision")
	defer span.End()

	if !d.Kind.IsValid() {
		return domain.Decision{}, fmt.Errorf("invalid decision kind: %s", d.Kind)
	}
	if strings.TrimSpace(d.Justification) == "" {
		return domain.Decision{}, fmt.Errorf("a decision needs a justification")
	}
	if d.Outcome == domain.OutcomeRejected && strings.TrimSpace(d.RejectionReason) == "" {
		return domain.Decision{}, fmt.Errorf("rejecting a decision needs a reason")
	}
	if d.Origin == "" {
		d.Origin = domain.OriginHuman
	}
	if d.Outcome == "" {
		d.Outcome = domain.OutcomeAccepted
	}

	project, err := s.projectRepo.GetByID(ctx, d.ProjectID)
	if err != nil {
		return domain.Decision{}, err
	}

	stored, err := s.decisionRepo.Insert(ctx, d)
	if err != nil {
		return domain.Decision{}, err
	}

	if d.Outcome != domain.OutcomeAccepted {
		return stored, nil
	}
	switch d.Kind {
	case domain.DecisionKill:
		err = s.projectRepo.SetState(ctx, d.ProjectID, domain.StateKilled, d.Justification)
	case domain.DecisionPause:
		err = s.projectRepo.SetState(ctx, d.ProjectID, domain.StatePaused, "")
	case domain.DecisionScale:
		err = s.projectRepo.SetState(ctx, d.ProjectID, domain.StateWinner, "")
	}
	if err != nil {
		return domain.Decision{}, fmt.Errorf("apply %s to project %s: %w", d.Kind, project.Name, err)
	}
	return stored, nil
}

func (s *ProjectService) Alerts(ctx context.Context, f domain.AlertFilter) ([]domain.Alert, error) {
	_, span := s.tracer.Start(ctx, "project-service.alerts")
	defer span.End()

	if f.Limit <= 0 {
		f.Limit = 50
	}
	return s.alertRepo.List(ctx, f)
}

func (s *ProjectService) ResolveAlert(ctx context.Context, id int64) error {
	_, span := s.tracer.Start(ctx, "project-service.resolve-alert")
	defer span.End()

	if id <= 0 {
		return fmt.Errorf("invalid alert id")
	}
	return s.alertRepo.Resolve(ctx, id)
}

// Summaries aggregates every project for exports and portfolio views.
func (s *ProjectService) Summaries(ctx context.Context, states ...domain.ProjectState) ([]domain.ProjectSummary, error) {
	_, span := s.tracer.Start(ctx, "project-service.summaries")
	defer span.End()

	projects, err := s.projectRepo.List(ctx, states...)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		summary, err := s.metricRepo.Summary(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("summarize project %d: %w", p.ID, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Zombies lists projects that went quiet: no metrics or decisions for the
// configured number of days.
func (s *ProjectService) Zombies(ctx context.Context) ([]domain.Project, error) {
	_, span := s.tracer.Start(ctx, "project-service.zombies")
	defer span.End()

	days := s.settings.ZombieDays(ctx)
	cutoff := s.now().UTC().AddDate(0, 0, -days)
	return s.projectRepo.ListZombies(ctx, cutoff)
}

func (s *ProjectService) checkActiveCap(ctx context.Context, id int64) error {
	active, err := s.projectRepo.List(ctx, domain.StateActive)
	if err != nil {
		return fmt.Errorf("count active projects: %w", err)
	}
	limit := s.settings.MaxActive(ctx)
	inUse := 0
	for _, p := range active {
		if p.ID != id {
			inUse++
		}
	}
	if inUse >= limit {
		return fmt.Errorf("active project limit reached (%d of %d); kill or pause something first", inUse, limit)
	}
	return nil
}
