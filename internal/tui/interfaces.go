package tui

import (
	"context"

	"venturedeck/internal/domain"
	"venturedeck/internal/service"
)

// DashboardQuerier provides the aggregated portfolio view to the TUI.
type DashboardQuerier interface {
	Load(ctx context.Context) (*service.Dashboard, error)
}

// ProjectQuerier provides project data to the TUI.
type ProjectQuerier interface {
	List(ctx context.Context, states ...domain.ProjectState) ([]domain.Project, error)
}

// AlertQuerier provides alert data to the TUI.
type AlertQuerier interface {
	Alerts(ctx context.Context, f domain.AlertFilter) ([]domain.Alert, error)
}

// AnalysisTrigger lets the TUI kick off an analysis pass on demand.
type AnalysisTrigger interface {
	AnalyzeAll(ctx context.Context) (*service.PortfolioReport, error)
}

// Services bundles all service dependencies injected into the TUI.
type Services struct {
	Dashboard DashboardQuerier
	Projects  ProjectQuerier
	Alerts    AlertQuerier
	Analysis  AnalysisTrigger
}
