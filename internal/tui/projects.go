package tui

import (
	"context"
	"fmt"
	"strings"

	"venturedeck/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Project list message types.
type projectsMsg []domain.Project
type projectsErrMsg struct{ err error }

// stateFilters is the cycle order for the 's' key; empty means all states.
var stateFilters = []domain.ProjectState{
	"", domain.StateIdea, domain.StateMVP, domain.StateActive,
	domain.StatePaused, domain.StateKilled, domain.StateWinner,
}

// ProjectListModel is the Bubble Tea model for the project explorer screen.
type ProjectListModel struct {
	services    Services
	projects    []domain.Project
	filterIndex int
	loading     bool
	err         error
	width       int
	height      int
}

// NewProjectListModel creates a new project list model.
func NewProjectListModel(svc Services) ProjectListModel {
	return ProjectListModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial fetch.
func (m ProjectListModel) Init() tea.Cmd {
	return m.fetchProjectsCmd()
}

// Update handles incoming messages.
func (m ProjectListModel) Update(msg tea.Msg) (ProjectListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsMsg:
		m.projects = []domain.Project(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case projectsErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.FilterState):
			m.filterIndex = (m.filterIndex + 1) % len(stateFilters)
			m.loading = true
			return m, m.fetchProjectsCmd()
		case key.Matches(msg, DefaultKeyMap.Refresh):
			return m, m.fetchProjectsCmd()
		}
	}

	return m, nil
}

// View renders the project list.
func (m ProjectListModel) View() string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Projects")+"  "+SubtextStyle.Render(m.filterLabel()))
	lines = append(lines, SubtextStyle.Render("  s: cycle state filter  R: refresh"))
	lines = append(lines, "")

	switch {
	case m.loading && len(m.projects) == 0:
		lines = append(lines, SubtextStyle.Render("  Loading projects..."))
	case m.err != nil:
		lines = append(lines, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	case len(m.projects) == 0:
		lines = append(lines, SubtextStyle.Render("  No projects match"))
	default:
		for _, p := range m.projects {
			lines = append(lines, "  "+FormatProjectRow(p))
		}
	}

	return BorderStyle.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}

// SetSize updates the model dimensions.
func (m *ProjectListModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Projects returns the loaded projects (for testing).
func (m ProjectListModel) Projects() []domain.Project { return m.projects }

// Filter returns the active state filter (for testing).
func (m ProjectListModel) Filter() domain.ProjectState { return stateFilters[m.filterIndex] }

func (m ProjectListModel) filterLabel() string {
	if stateFilters[m.filterIndex] == "" {
		return "filter: all"
	}
	return "filter: " + string(stateFilters[m.filterIndex])
}

func (m ProjectListModel) fetchProjectsCmd() tea.Cmd {
	filter := stateFilters[m.filterIndex]
	return func() tea.Msg {
		if m.services.Projects == nil {
			return projectsErrMsg{err: fmt.Errorf("project service not available")}
		}
		var states []domain.ProjectState
		if filter != "" {
			states = append(states, filter)
		}
		projects, err := m.services.Projects.List(context.Background(), states...)
		if err != nil {
			return projectsErrMsg{err: err}
		}
		return projectsMsg(projects)
	}
}
