package service

import (
	"context"
	"fmt"
	"time"

	"venturedeck/internal/domain"
	"venturedeck/internal/prompt"

	"go.opentelemetry.io/otel/trace"
)

const rejectedLookback = 5

type PromptDecisionRepository interface {
	RecentRejected(ctx context.Context, projectID int64, limit int) ([]domain.Decision, error)
}

// PromptService assembles markdown analysis prompts from live portfolio data.
type PromptService struct {
	tracer       trace.Tracer
	projectRepo  ProjectRepository
	metricRepo   MetricRepository
	decisionRepo PromptDecisionRepository
	settings     SettingsRepository
	now          func() time.Time
}

func NewPromptService(
	tracer trace.Tracer,
	projectRepo ProjectRepository,
	metricRepo MetricRepository,
	decisionRepo PromptDecisionRepository,
	settings SettingsRepository,
) *PromptService {
	return &PromptService{
		tracer:       tracer,
		projectRepo:  projectRepo,
		metricRepo:   metricRepo,
		decisionRepo: decisionRepo,
		settings:     settings,
		now:          time.Now,
	}
}

// SetClock replaces the wall clock. Tests only.
func (s *PromptService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Portfolio builds the weekly analysis prompt. It requires a running cycle;
// there is no meaningful weekly analysis without one.
func (s *PromptService) Portfolio(ctx context.Context, jsonFormat bool) (string, error) {
	_, span := s.tracer.Start(ctx, "prompt-service.portfolio")
	defer span.End()

	th, err := s.settings.Thresholds(ctx)
	if err != nil {
		return "", err
	}
	now := s.now().UTC()

	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list projects: %w", err)
	}

	in := prompt.PortfolioInput{
		Phase:      domain.PhaseFor(th.CycleStart, now),
		Today:      now,
		JSONFormat: jsonFormat,
	}
	for _, p := range projects {
		summary, err := s.metricRepo.Summary(ctx, p)
		if err != nil {
			return "", fmt.Errorf("summarize project %d: %w", p.ID, err)
		}
		in.Summaries = append(in.Summaries, summary)

		rejected, err := s.decisionRepo.RecentRejected(ctx, p.ID, rejectedLookback)
		if err != nil {
			return "", fmt.Errorf("rejected decisions for project %d: %w", p.ID, err)
		}
		for _, d := range rejected {
			in.Rejected = append(in.Rejected, prompt.RejectedDecision{
				ProjectName: p.Name,
				Kind:        d.Kind,
				Reason:      d.RejectionReason,
				Date:        d.CreatedAt,
			})
		}
	}

	return prompt.Portfolio(in), nil
}

// Project builds a deep-dive prompt for one project.
func (s *PromptService) Project(ctx context.Context, projectID int64) (string, error) {
	_, span := s.tracer.Start(ctx, "prompt-service.project")
	defer span.End()

	p, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return "", err
	}
	summary, err := s.metricRepo.Summary(ctx, *p)
	if err != nil {
		return "", fmt.Errorf("summarize project %d: %w", projectID, err)
	}
	metrics, err := s.metricRepo.ListByProject(ctx, projectID, 90)
	if err != nil {
		return "", fmt.Errorf("list metrics for project %d: %w", projectID, err)
	}
	return prompt.Project(summary, metrics), nil
}
