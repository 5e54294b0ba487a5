package mcp

import (
	"context"
	"encoding/json"
	"time"

	"venturedeck/internal/domain"
	"venturedeck/internal/service"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubPortfolioStore struct {
	projects  []domain.Project
	detail    *service.ProjectDetail
	alerts    []domain.Alert
	metrics   []domain.Metric
	decisions []domain.Decision

	lastStates []domain.ProjectState
	lastFilter domain.AlertFilter
}

func (s *stubPortfolioStore) List(_ context.Context, states ...domain.ProjectState) ([]domain.Project, error) {
	s.lastStates = states
	return append([]domain.Project(nil), s.projects...), nil
}

func (s *stubPortfolioStore) Detail(_ context.Context, id int64) (*service.ProjectDetail, error) {
	if s.detail == nil || s.detail.Project.ID != id {
		return nil, domain.ErrProjectNotFound
	}
	return s.detail, nil
}

func (s *stubPortfolioStore) RecordMetric(_ context.Context, m domain.Metric) (domain.Metric, error) {
	m.ID = int64(len(s.metrics) + 1)
	s.metrics = append(s.metrics, m)
	return m, nil
}

func (s *stubPortfolioStore) RecordDecision(_ context.Context, d domain.Decision) (domain.Decision, error) {
	d.ID = int64(len(s.decisions) + 1)
	s.decisions = append(s.decisions, d)
	return d, nil
}

func (s *stubPortfolioStore) Alerts(_ context.Context, f domain.AlertFilter) ([]domain.Alert, error) {
	s.lastFilter = f
	return append([]domain.Alert(nil), s.alerts...), nil
}

type stubAnalysisRunner struct {
	report *service.PortfolioReport
	runs   int
}

func (s *stubAnalysisRunner) AnalyzeAll(_ context.Context) (*service.PortfolioReport, error) {
	s.runs++
	return s.report, nil
}

func (s *stubAnalysisRunner) AnalyzeProject(_ context.Context, id int64) (*service.ProjectAnalysis, error) {
	for i := range s.report.Projects {
		if s.report.Projects[i].Project.ID == id {
			return &s.report.Projects[i], nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

type stubDashboardReader struct {
	dashboard *service.Dashboard
}

func (s *stubDashboardReader) Load(_ context.Context) (*service.Dashboard, error) {
	return s.dashboard, nil
}

type stubCycleReader struct {
	phase domain.CyclePhase
	err   error
}

func (s *stubCycleReader) Phase(_ context.Context) (domain.CyclePhase, error) {
	if s.err != nil {
		return domain.CyclePhase{}, s.err
	}
	return s.phase, nil
}

func testServer() (*sdkmcp.Server, *stubPortfolioStore, *stubAnalysisRunner) {
	project := domain.Project{
		ID: 1, Name: "newsletter", Hypothesis: "devs will pay for curated links",
		State: domain.StateActive, StartedAt: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	portfolio := &stubPortfolioStore{
		projects: []domain.Project{project},
		detail: &service.ProjectDetail{
			Project: project,
			Summary: domain.ProjectSummary{Project: project, TotalRevenue: 120, TotalHours: 10, MetricCount: 4},
		},
		alerts: []domain.Alert{{ID: 3, ProjectID: 1, Kind: domain.KindNoRevenue, Severity: domain.SeverityCritical}},
	}
	analysis := &stubAnalysisRunner{
		report: &service.PortfolioReport{
			Projects: []service.ProjectAnalysis{{Project: project}},
			RanAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	dashboard := &stubDashboardReader{dashboard: &service.Dashboard{
		Totals: service.PortfolioTotals{Revenue: 120, Active: 1},
	}}
	cycle := &stubCycleReader{phase: domain.CyclePhase{Name: "experimentation", Day: 20}}

	srv := NewServer(nil, portfolio, analysis, dashboard, cycle, ServerConfig{RequestTimeout: time.Second})
	return srv, portfolio, analysis
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
