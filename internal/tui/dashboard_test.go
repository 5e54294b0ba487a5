package tui

import (
	"strings"
	"testing"

	"venturedeck/internal/domain"
	"venturedeck/internal/service"
)

func TestDashboardUpdateSnapshotMsg(t *testing.T) {
	m := NewDashboardModel(testServices())
	m.SetSize(120, 40)

	d := &service.Dashboard{
		Phase: &domain.CyclePhase{Name: "decision", Day: 50, DaysRemaining: 40},
		Projects: []service.ProjectCard{{
			Project:      domain.Project{Name: "newsletter", State: domain.StateActive},
			TotalRevenue: 250,
		}},
		Totals: service.PortfolioTotals{Revenue: 250, Active: 1},
	}

	updated, _ := m.Update(dashboardMsg(d))
	if updated.Dashboard() == nil || len(updated.Dashboard().Projects) != 1 {
		t.Fatalf("unexpected dashboard: %+v", updated.Dashboard())
	}
}

func TestDashboardViewWithData(t *testing.T) {
	m := NewDashboardModel(testServices())
	m.SetSize(120, 40)
	m.loading = false
	m.dashboard = &service.Dashboard{
		Phase: &domain.CyclePhase{Name: "exploration", Day: 10, DaysRemaining: 80},
		Projects: []service.ProjectCard{{
			Project:      domain.Project{Name: "newsletter", State: domain.StateActive},
			TotalRevenue: 120,
			TotalHours:   10,
		}},
		Totals:  service.PortfolioTotals{Revenue: 120, Hours: 10, Active: 1},
		Zombies: []domain.Project{{Name: "stale"}},
	}

	view := m.View()
	if !strings.Contains(view, "newsletter") {
		t.Fatalf("expected project in view: %s", view)
	}
	if !strings.Contains(view, "Day 10/90") {
		t.Fatalf("expected cycle bar in view: %s", view)
	}
	if !strings.Contains(view, "stale") {
		t.Fatalf("expected zombie in view: %s", view)
	}
}

func TestDashboardViewWithoutCycle(t *testing.T) {
	m := NewDashboardModel(testServices())
	m.SetSize(120, 40)
	m.loading = false
	m.dashboard = &service.Dashboard{}

	view := m.View()
	if !strings.Contains(view, "No 90-day cycle started") {
		t.Fatalf("expected cycle notice in view: %s", view)
	}
}

func TestDashboardViewErrorState(t *testing.T) {
	m := NewDashboardModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(dashboardErrMsg{err: errStub("dial failed")})
	view := updated.View()
	if !strings.Contains(view, "dial failed") {
		t.Fatalf("expected error in view: %s", view)
	}
}

type errStub string

func (e errStub) Error() string { return string(e) }
