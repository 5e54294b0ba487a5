package mcp

import (
	"context"

	"venturedeck/internal/domain"
	"venturedeck/internal/service"
)

// PortfolioStore exposes project read/write operations.
type PortfolioStore interface {
	List(ctx context.Context, states ...domain.ProjectState) ([]domain.Project, error)
	Detail(ctx context.Context, id int64) (*service.ProjectDetail, error)
	RecordMetric(ctx context.Context, m domain.Metric) (domain.Metric, error)
	RecordDecision(ctx context.Context, d domain.Decision) (domain.Decision, error)
	Alerts(ctx context.Context, f domain.AlertFilter) ([]domain.Alert, error)
}

// AnalysisRunner exposes the heuristic analysis pass.
type AnalysisRunner interface {
	AnalyzeAll(ctx context.Context) (*service.PortfolioReport, error)
	AnalyzeProject(ctx context.Context, id int64) (*service.ProjectAnalysis, error)
}

// DashboardReader exposes the aggregated portfolio view.
type DashboardReader interface {
	Load(ctx context.Context) (*service.Dashboard, error)
}

// CycleReader exposes the 90-day cycle clock.
type CycleReader interface {
	Phase(ctx context.Context) (domain.CyclePhase, error)
}
