package mcp

import (
	"context"
	"fmt"

	"venturedeck/internal/domain"
	"venturedeck/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, portfolio PortfolioStore, analysis AnalysisRunner) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "projects_list",
		Description: "List experiments, optionally filtered by lifecycle state",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in projectsListInput) (*mcp.CallToolResult, projectsListOutput, error) {
		if portfolio == nil {
			return nil, projectsListOutput{}, fmt.Errorf("project service unavailable")
		}
		state, err := normalizeState(in.State)
		if err != nil {
			return nil, projectsListOutput{}, err
		}
		var states []domain.ProjectState
		if state != "" {
			states = append(states, state)
		}
		projects, err := portfolio.List(ctx, states...)
		if err != nil {
			return nil, projectsListOutput{}, err
		}
		return nil, projectsListOutput{Projects: projects}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "project_get",
		Description: "Get one experiment with its aggregates, metric history, open alerts, and decision log",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in projectGetInput) (*mcp.CallToolResult, projectGetOutput, error) {
		if portfolio == nil {
			return nil, projectGetOutput{}, fmt.Errorf("project service unavailable")
		}
		if in.ProjectID <= 0 {
			return nil, projectGetOutput{}, fmt.Errorf("project_id must be positive")
		}
		detail, err := portfolio.Detail(ctx, in.ProjectID)
		if err != nil {
			return nil, projectGetOutput{}, err
		}
		return nil, projectGetOutput{Detail: detail}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "metrics_record",
		Description: "Record or overwrite one day of metrics for an experiment",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in metricsRecordInput) (*mcp.CallToolResult, metricsRecordOutput, error) {
		if portfolio == nil {
			return nil, metricsRecordOutput{}, fmt.Errorf("project service unavailable")
		}
		if in.ProjectID <= 0 {
			return nil, metricsRecordOutput{}, fmt.Errorf("project_id must be positive")
		}
		day, err := normalizeDay(in.Day)
		if err != nil {
			return nil, metricsRecordOutput{}, err
		}
		stored, err := portfolio.RecordMetric(ctx, domain.Metric{
			ProjectID:     in.ProjectID,
			Day:           day,
			Revenue:       in.Revenue,
			Hours:         in.Hours,
			Conversions:   in.Conversions,
			TrafficSource: in.TrafficSource,
			FrictionNote:  in.FrictionNote,
		})
		if err != nil {
			return nil, metricsRecordOutput{}, err
		}
		return nil, metricsRecordOutput{Metric: stored}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "decision_record",
		Description: "Record a kill/iterate/scale/pause decision; accepted decisions move the project",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in decisionRecordInput) (*mcp.CallToolResult, decisionRecordOutput, error) {
		if portfolio == nil {
			return nil, decisionRecordOutput{}, fmt.Errorf("project service unavailable")
		}
		if in.ProjectID <= 0 {
			return nil, decisionRecordOutput{}, fmt.Errorf("project_id must be positive")
		}
		decision, err := normalizeDecision(in)
		if err != nil {
			return nil, decisionRecordOutput{}, err
		}
		stored, err := portfolio.RecordDecision(ctx, decision)
		if err != nil {
			return nil, decisionRecordOutput{}, err
		}
		return nil, decisionRecordOutput{Decision: stored}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analysis_run",
		Description: "Run the heuristic analysis over every analyzable experiment and reconcile alerts",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ analysisRunInput) (*mcp.CallToolResult, service.PortfolioReport, error) {
		if analysis == nil {
			return nil, service.PortfolioReport{}, fmt.Errorf("analysis service unavailable")
		}
		report, err := analysis.AnalyzeAll(ctx)
		if err != nil {
			return nil, service.PortfolioReport{}, err
		}
		return nil, *report, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "alerts_list",
		Description: "List alerts with optional project and unresolved filters",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in alertsListInput) (*mcp.CallToolResult, alertsListOutput, error) {
		if portfolio == nil {
			return nil, alertsListOutput{}, fmt.Errorf("project service unavailable")
		}
		alerts, err := portfolio.Alerts(ctx, domain.AlertFilter{
			ProjectID:  in.ProjectID,
			Unresolved: in.Unresolved,
			Limit:      normalizeAlertLimit(in.Limit),
		})
		if err != nil {
			return nil, alertsListOutput{}, err
		}
		return nil, alertsListOutput{Alerts: alerts}, nil
	})
}
