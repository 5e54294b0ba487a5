package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"venturedeck/internal/domain"
	"venturedeck/internal/service"

	tele "gopkg.in/telebot.v3"
)

type DashboardLoader interface {
	Load(ctx context.Context) (*service.Dashboard, error)
}

type PortfolioAnalyzer interface {
	AnalyzeAll(ctx context.Context) (*service.PortfolioReport, error)
}

type ProjectLister interface {
	List(ctx context.Context, states ...domain.ProjectState) ([]domain.Project, error)
}

// StartTelegramBot wires the chat frontend and returns the alert dispatcher
// so the analysis loop can push new alerts to subscribers. Returns nil when
// no bot token is configured.
func StartTelegramBot(dashboard DashboardLoader, analysis PortfolioAnalyzer, projects ProjectLister) *AlertDispatcher {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	alerts := NewAlertDispatcher(b)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/portfolio", func(c tele.Context) error {
		d, err := dashboard.Load(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error loading portfolio: %v", err))
		}
		return c.Send(formatDashboard(d))
	})

	b.Handle("/projects", func(c tele.Context) error {
		states, err := parseStateArgs(c.Args())
		if err != nil {
			return c.Send("Usage: /projects | /projects active | /projects idea mvp")
		}
		list, err := projects.List(context.Background(), states...)
		if err != nil {
			return c.Send(fmt.Sprintf("Error listing projects: %v", err))
		}
		if len(list) == 0 {
			return c.Send("No projects match.")
		}
		lines := make([]string, 0, len(list))
		for _, p := range list {
			lines = append(lines, formatProject(p))
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	b.Handle("/analyze", func(c tele.Context) error {
		report, err := analysis.AnalyzeAll(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Analysis failed: %v", err))
		}
		return c.Send(formatReport(report))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		switch mode {
		case "on":
			if alerts.Subscribe(chat.ID) {
				return c.Send("Proactive alerts enabled for this chat.")
			}
			return c.Send("Proactive alerts are already enabled for this chat.")
		case "off":
			if alerts.Unsubscribe(chat.ID) {
				return c.Send("Proactive alerts disabled for this chat.")
			}
			return c.Send("Proactive alerts are already disabled for this chat.")
		default:
			if alerts.IsSubscribed(chat.ID) {
				return c.Send("Alerts status: ON")
			}
			return c.Send("Alerts status: OFF")
		}
	})

	log.Println("Telegram bot started")
	go b.Start()
	return alerts
}

func parseStateArgs(args []string) ([]domain.ProjectState, error) {
	var states []domain.ProjectState
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		state := domain.ProjectState(strings.ToLower(arg))
		if !state.IsValid() {
			return nil, fmt.Errorf("unknown state %q", arg)
		}
		states = append(states, state)
	}
	return states, nil
}

func formatProject(p domain.Project) string {
	return fmt.Sprintf("#%d %s [%s] since %s", p.ID, p.Name, p.State, p.StartedAt.UTC().Format("2006-01-02"))
}

func formatDashboard(d *service.Dashboard) string {
	var sb strings.Builder
	if d.Phase != nil {
		fmt.Fprintf(&sb, "Cycle day %d/90 (%s)\n", d.Phase.Day, d.Phase.Name)
	} else {
		sb.WriteString("No 90-day cycle started.\n")
	}
	fmt.Fprintf(&sb, "Revenue: %.2f | Hours: %.1f | Open alerts: %d | Active: %d\n",
		d.Totals.Revenue, d.Totals.Hours, d.Totals.OpenAlerts, d.Totals.Active)
	for _, card := range d.Projects {
		roi := "-"
		if card.ROIPerHour != nil {
			roi = fmt.Sprintf("%.2f/h", *card.ROIPerHour)
		}
		fmt.Fprintf(&sb, "%s [%s] rev %.2f roi %s alerts %d\n",
			card.Project.Name, card.Project.State, card.TotalRevenue, roi, card.OpenAlerts)
	}
	if len(d.Zombies) > 0 {
		fmt.Fprintf(&sb, "Zombies: %d project(s) with no recent activity", len(d.Zombies))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatReport(r *service.PortfolioReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyzed %d project(s).\n", len(r.Projects))
	for _, pa := range r.Projects {
		if len(pa.CreatedAlerts) == 0 && pa.AutoResolved == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s: %d new alert(s), %d auto-resolved\n",
			pa.Project.Name, len(pa.CreatedAlerts), pa.AutoResolved)
	}
	for _, sig := range r.Global {
		fmt.Fprintf(&sb, "Portfolio: %s\n", sig.Message)
	}
	for _, f := range r.Failures {
		fmt.Fprintf(&sb, "Failed %s: %s\n", f.Name, f.Error)
	}
	return strings.TrimRight(sb.String(), "\n")
}
