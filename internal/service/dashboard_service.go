package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"venturedeck/internal/cache"
	"venturedeck/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const dashboardCacheKey = "venturedeck:dashboard"

type DashboardSettings interface {
	Thresholds(ctx context.Context) (domain.Thresholds, error)
	ZombieDays(ctx context.Context) int
}

// ProjectCard is one project's row on the dashboard.
type ProjectCard struct {
	Project      domain.Project `json:"project"`
	TotalRevenue float64        `json:"total_revenue"`
	TotalHours   float64        `json:"total_hours"`
	ROIPerHour   *float64       `json:"roi_per_hour,omitempty"`
	MetricCount  int            `json:"metric_count"`
	OpenAlerts   int            `json:"open_alerts"`
}

type PortfolioTotals struct {
	Revenue    float64 `json:"revenue"`
	Hours      float64 `json:"hours"`
	OpenAlerts int     `json:"open_alerts"`
	Active     int     `json:"active"`
}

// Dashboard is the single-screen portfolio view. Phase is nil until the
// 90-day cycle has been started.
type Dashboard struct {
	Phase       *domain.CyclePhase `json:"phase,omitempty"`
	Projects    []ProjectCard      `json:"projects"`
	Totals      PortfolioTotals    `json:"totals"`
	Zombies     []domain.Project   `json:"zombies,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}

type DashboardService struct {
	tracer      trace.Tracer
	projectRepo ProjectRepository
	metricRepo  MetricRepository
	alertRepo   AlertRepository
	settings    DashboardSettings
	snapshots   *cache.Snapshots
	now         func() time.Time
}

func NewDashboardService(
	tracer trace.Tracer,
	projectRepo ProjectRepository,
	metricRepo MetricRepository,
	alertRepo AlertRepository,
	settings DashboardSettings,
	snapshots *cache.Snapshots,
) *DashboardService {
	return &DashboardService{
		tracer:      tracer,
		projectRepo: projectRepo,
		metricRepo:  metricRepo,
		alertRepo:   alertRepo,
		settings:    settings,
		snapshots:   snapshots,
		now:         time.Now,
	}
}

// SetClock replaces the wall clock. Tests only.
func (s *DashboardService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Load returns the dashboard, served from cache when a fresh snapshot exists.
func (s *DashboardService) Load(ctx context.Context) (*Dashboard, error) {
	_, span := s.tracer.Start(ctx, "dashboard-service.load")
	defer span.End()

	if payload, ok := s.snapshots.Get(ctx, dashboardCacheKey); ok {
		var cached Dashboard
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
		log.Printf("discarding malformed dashboard snapshot")
	}

	dashboard, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(dashboard); err == nil {
		s.snapshots.Set(ctx, dashboardCacheKey, payload)
	}
	return dashboard, nil
}

// Invalidate drops the cached snapshot; writers call this after any change
// that should show up on the next load.
func (s *DashboardService) Invalidate(ctx context.Context) {
	s.snapshots.Invalidate(ctx, dashboardCacheKey)
}

func (s *DashboardService) build(ctx context.Context) (*Dashboard, error) {
	now := s.now().UTC()
	dashboard := &Dashboard{GeneratedAt: now}

	th, err := s.settings.Thresholds(ctx)
	switch {
	case err == nil:
		phase := domain.PhaseFor(th.CycleStart, now)
		dashboard.Phase = &phase
	case errors.Is(err, domain.ErrCycleNotStarted):
		// Dashboard still renders; the phase banner just stays empty.
	default:
		return nil, fmt.Errorf("load thresholds: %w", err)
	}

	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	dashboard.Projects = make([]ProjectCard, 0, len(projects))
	for _, p := range projects {
		summary, err := s.metricRepo.Summary(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("summarize project %d: %w", p.ID, err)
		}
		alerts, err := s.alertRepo.List(ctx, domain.AlertFilter{ProjectID: p.ID, Unresolved: true})
		if err != nil {
			return nil, fmt.Errorf("list alerts for project %d: %w", p.ID, err)
		}

		card := ProjectCard{
			Project:      p,
			TotalRevenue: summary.TotalRevenue,
			TotalHours:   summary.TotalHours,
			MetricCount:  summary.MetricCount,
			OpenAlerts:   len(alerts),
		}
		if roi, ok := summary.ROIPerHour(); ok {
			card.ROIPerHour = &roi
		}
		dashboard.Projects = append(dashboard.Projects, card)

		dashboard.Totals.Revenue += summary.TotalRevenue
		dashboard.Totals.Hours += summary.TotalHours
		dashboard.Totals.OpenAlerts += len(alerts)
		if p.State == domain.StateActive {
			dashboard.Totals.Active++
		}
	}

	cutoff := now.AddDate(0, 0, -s.settings.ZombieDays(ctx))
	zombies, err := s.projectRepo.ListZombies(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list zombies: %w", err)
	}
	dashboard.Zombies = zombies

	return dashboard, nil
}
