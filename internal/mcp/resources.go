package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"venturedeck/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, portfolio PortfolioStore, dashboard DashboardReader, cycle CycleReader) {
	server.AddResource(&mcp.Resource{
		URI:         "portfolio://states",
		Name:        "project-states",
		Description: "Lifecycle states a project can be in",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		states := []domain.ProjectState{
			domain.StateIdea, domain.StateMVP, domain.StateActive,
			domain.StatePaused, domain.StateKilled, domain.StateWinner,
		}
		return jsonResource(req.Params.URI, states)
	})

	server.AddResource(&mcp.Resource{
		URI:         "portfolio://dashboard",
		Name:        "portfolio-dashboard",
		Description: "Cycle phase, per-project cards, totals, and zombie projects",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if dashboard == nil {
			return nil, fmt.Errorf("dashboard service unavailable")
		}
		d, err := dashboard.Load(ctx)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, d)
	})

	server.AddResource(&mcp.Resource{
		URI:         "portfolio://cycle",
		Name:        "cycle-phase",
		Description: "Where the running 90-day cycle stands",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if cycle == nil {
			return nil, fmt.Errorf("settings service unavailable")
		}
		phase, err := cycle.Phase(ctx)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, phase)
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "projects://detail/{id}",
		Name:        "project-detail",
		Description: "Full detail for one experiment",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if portfolio == nil {
			return nil, fmt.Errorf("project service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "projects" || parsed.Host != "detail" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		raw := strings.Trim(strings.TrimSpace(parsed.Path), "/")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		detail, err := portfolio.Detail(ctx, id)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, projectGetOutput{Detail: detail})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "alerts://open{?project_id,limit}",
		Name:        "open-alerts",
		Description: "Unresolved alerts with optional project_id and limit query params",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if portfolio == nil {
			return nil, fmt.Errorf("project service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "alerts" || parsed.Host != "open" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		filter := domain.AlertFilter{Unresolved: true, Limit: defaultAlertLimit}
		if raw := strings.TrimSpace(parsed.Query().Get("project_id")); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid project_id: %s", raw)
			}
			filter.ProjectID = id
		}
		if raw := strings.TrimSpace(parsed.Query().Get("limit")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid limit: %s", raw)
			}
			filter.Limit = normalizeAlertLimit(n)
		}

		alerts, err := portfolio.Alerts(ctx, filter)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, alertsListOutput{Alerts: alerts})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
