package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"venturedeck/internal/domain"

	tele "gopkg.in/telebot.v3"
)

func TestParseAlertMode(t *testing.T) {
	mode, err := parseAlertMode(nil)
	if err != nil || mode != "status" {
		t.Fatalf("expected default status mode, got mode=%q err=%v", mode, err)
	}

	mode, err = parseAlertMode([]string{"on"})
	if err != nil || mode != "on" {
		t.Fatalf("expected on mode, got mode=%q err=%v", mode, err)
	}

	mode, err = parseAlertMode([]string{"OFF"})
	if err != nil || mode != "off" {
		t.Fatalf("expected off mode, got mode=%q err=%v", mode, err)
	}

	if _, err := parseAlertMode([]string{"nope"}); err == nil {
		t.Fatal("expected invalid mode error")
	}
}

func TestAlertDispatcherBroadcast(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewAlertDispatcher(sender)

	if !dispatcher.Subscribe(10) {
		t.Fatal("expected initial subscribe to return true")
	}
	if !dispatcher.Subscribe(20) {
		t.Fatal("expected initial subscribe to return true")
	}
	if dispatcher.Subscribe(10) {
		t.Fatal("expected duplicate subscribe to return false")
	}

	project := domain.Project{ID: 1, Name: "newsletter", State: domain.StateActive}
	alerts := []domain.Alert{{
		ID:        4,
		ProjectID: 1,
		Kind:      domain.KindNoRevenue,
		Severity:  domain.SeverityCritical,
		Message:   "no revenue in the last 30 days",
	}}

	dispatcher.DispatchAlerts(context.Background(), project, alerts)
	if len(sender.messages[10]) != 1 || len(sender.messages[20]) != 1 {
		t.Fatalf("expected one message per subscriber, got %+v", sender.messages)
	}
	body := sender.messages[10][0]
	if !strings.Contains(body, "newsletter") || !strings.Contains(body, "no_revenue") {
		t.Fatalf("unexpected alert body: %s", body)
	}
	if !strings.Contains(body, "[CRITICAL]") {
		t.Fatalf("expected severity marker in body: %s", body)
	}
}

func TestAlertDispatcherUnsubscribe(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewAlertDispatcher(sender)

	dispatcher.Subscribe(10)
	if !dispatcher.Unsubscribe(10) {
		t.Fatal("expected unsubscribe to return true")
	}
	if dispatcher.Unsubscribe(10) {
		t.Fatal("expected second unsubscribe to return false")
	}

	alerts := []domain.Alert{{ID: 1, Kind: domain.KindNegativeROI, Severity: domain.SeverityWarning}}
	dispatcher.DispatchAlerts(context.Background(), domain.Project{Name: "shop"}, alerts)
	if len(sender.messages) != 0 {
		t.Fatalf("expected zero outgoing messages, got %+v", sender.messages)
	}
}

func TestAlertDispatcherNilReceiver(t *testing.T) {
	var dispatcher *AlertDispatcher
	// must not panic; analysis runs with no bot configured
	dispatcher.DispatchAlerts(context.Background(), domain.Project{}, []domain.Alert{{ID: 1}})
}

type fakeSender struct {
	messages map[int64][]string
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.messages == nil {
		f.messages = make(map[int64][]string)
	}

	chat, ok := to.(*tele.Chat)
	if !ok {
		return nil, fmt.Errorf("unexpected recipient type %T", to)
	}
	f.messages[chat.ID] = append(f.messages[chat.ID], fmt.Sprint(what))
	return &tele.Message{}, nil
}
