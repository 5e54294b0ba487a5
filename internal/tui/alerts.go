package tui

import (
	"context"
	"fmt"
	"strings"

	"venturedeck/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Alert screen message types.
type alertsMsg []domain.Alert
type alertsErrMsg struct{ err error }
type analysisDoneMsg struct {
	created  int
	failures int
}
type analysisErrMsg struct{ err error }

// AlertListModel is the Bubble Tea model for the alerts screen.
type AlertListModel struct {
	services  Services
	alerts    []domain.Alert
	loading   bool
	analyzing bool
	status    string
	err       error
	width     int
	height    int
}

// NewAlertListModel creates a new alert list model.
func NewAlertListModel(svc Services) AlertListModel {
	return AlertListModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial fetch.
func (m AlertListModel) Init() tea.Cmd {
	return m.fetchAlertsCmd()
}

// Update handles incoming messages.
func (m AlertListModel) Update(msg tea.Msg) (AlertListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case alertsMsg:
		m.alerts = []domain.Alert(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case alertsErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case analysisDoneMsg:
		m.analyzing = false
		m.status = fmt.Sprintf("Analysis done: %d new alert(s), %d failure(s)", msg.created, msg.failures)
		return m, m.fetchAlertsCmd()

	case analysisErrMsg:
		m.analyzing = false
		m.status = fmt.Sprintf("Analysis failed: %v", msg.err)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.RunAnalysis):
			if m.analyzing {
				return m, nil
			}
			m.analyzing = true
			m.status = "Running analysis..."
			return m, m.runAnalysisCmd()
		case key.Matches(msg, DefaultKeyMap.Refresh):
			return m, m.fetchAlertsCmd()
		}
	}

	return m, nil
}

// View renders the alert list.
func (m AlertListModel) View() string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Open Alerts"))
	lines = append(lines, SubtextStyle.Render("  a: run analysis  R: refresh"))
	if m.status != "" {
		lines = append(lines, SubtextStyle.Render("  "+m.status))
	}
	lines = append(lines, "")

	switch {
	case m.loading && len(m.alerts) == 0:
		lines = append(lines, SubtextStyle.Render("  Loading alerts..."))
	case m.err != nil:
		lines = append(lines, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	case len(m.alerts) == 0:
		lines = append(lines, SubtextStyle.Render("  No open alerts"))
	default:
		for _, a := range m.alerts {
			lines = append(lines, "  "+FormatAlert(a))
		}
	}

	return BorderStyle.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}

// SetSize updates the model dimensions.
func (m *AlertListModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Alerts returns the loaded alerts (for testing).
func (m AlertListModel) Alerts() []domain.Alert { return m.alerts }

func (m AlertListModel) fetchAlertsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Alerts == nil {
			return alertsErrMsg{err: fmt.Errorf("alert service not available")}
		}
		alerts, err := m.services.Alerts.Alerts(context.Background(), domain.AlertFilter{Unresolved: true, Limit: 50})
		if err != nil {
			return alertsErrMsg{err: err}
		}
		return alertsMsg(alerts)
	}
}

func (m AlertListModel) runAnalysisCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Analysis == nil {
			return analysisErrMsg{err: fmt.Errorf("analysis service not available")}
		}
		report, err := m.services.Analysis.AnalyzeAll(context.Background())
		if err != nil {
			return analysisErrMsg{err: err}
		}
		created := 0
		for _, pa := range report.Projects {
			created += len(pa.CreatedAlerts)
		}
		return analysisDoneMsg{created: created, failures: len(report.Failures)}
	}
}
