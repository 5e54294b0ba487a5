package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"venturedeck/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Dashboard message types.
type dashboardMsg *service.Dashboard
type dashboardErrMsg struct{ err error }
type dashTickMsg time.Time

// DashboardModel is the Bubble Tea model for the portfolio dashboard screen.
type DashboardModel struct {
	services  Services
	dashboard *service.Dashboard
	loading   bool
	err       error
	width     int
	height    int
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(svc Services) DashboardModel {
	return DashboardModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial data fetch.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchDashboardCmd(),
		m.tickCmd(),
	)
}

// Update handles incoming messages.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.dashboard = (*service.Dashboard)(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case dashboardErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case dashTickMsg:
		return m, tea.Batch(
			m.fetchDashboardCmd(),
			m.tickCmd(),
		)

	case tea.KeyMsg:
		if msg.String() == "R" {
			return m, m.fetchDashboardCmd()
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	if m.loading && m.dashboard == nil {
		return SubtextStyle.Render("Loading portfolio...")
	}
	if m.err != nil && m.dashboard == nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.dashboard == nil {
		return SubtextStyle.Render("No data")
	}

	var sections []string

	cycleWidth := m.width - 4
	if cycleWidth > 40 {
		cycleWidth = 40
	}
	cycleBox := BorderStyle.Width(m.width - 2).Render("  " + RenderCycleBar(m.dashboard.Phase, cycleWidth))
	sections = append(sections, cycleBox)

	cardsBox := BorderStyle.Width(m.width - 2).Render(m.renderCards())
	sections = append(sections, cardsBox)

	bottomBox := BorderStyle.Width(m.width - 2).Render(m.renderTotalsAndZombies())
	sections = append(sections, bottomBox)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the model dimensions.
func (m *DashboardModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Dashboard returns the loaded snapshot (for testing).
func (m DashboardModel) Dashboard() *service.Dashboard { return m.dashboard }

func (m DashboardModel) renderCards() string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Projects"))
	lines = append(lines, SubtextStyle.Render("  Name                 State    Revenue   Hours    ROI  Alerts"))
	lines = append(lines, SubtextStyle.Render("  "+strings.Repeat("─", 62)))

	for _, card := range m.dashboard.Projects {
		lines = append(lines, "  "+FormatCard(card))
	}
	if len(m.dashboard.Projects) == 0 {
		lines = append(lines, SubtextStyle.Render("  No projects yet"))
	}

	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderTotalsAndZombies() string {
	t := m.dashboard.Totals
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Totals"))
	lines = append(lines, fmt.Sprintf("  Revenue %s  Hours %.1f  Open alerts %d  Active %d",
		formatMoney(t.Revenue), t.Hours, t.OpenAlerts, t.Active))

	if len(m.dashboard.Zombies) > 0 {
		lines = append(lines, "")
		lines = append(lines, SeverityWarningStyle.Render("  Zombies (no recent activity)"))
		now := time.Now().UTC()
		for _, z := range m.dashboard.Zombies {
			lines = append(lines, fmt.Sprintf("  %-20s started %s", truncate(z.Name, 20), formatAge(z.StartedAt, now)))
		}
	}

	return strings.Join(lines, "\n")
}

func (m DashboardModel) fetchDashboardCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Dashboard == nil {
			return dashboardErrMsg{err: fmt.Errorf("dashboard service not available")}
		}
		d, err := m.services.Dashboard.Load(context.Background())
		if err != nil {
			return dashboardErrMsg{err: err}
		}
		return dashboardMsg(d)
	}
}

func (m DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return dashTickMsg(t)
	})
}
