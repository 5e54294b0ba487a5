package bot

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"venturedeck/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// AlertDispatcher pushes freshly created alerts to subscribed chats. It
// satisfies the analysis service's dispatcher hook.
type AlertDispatcher struct {
	sender messageSender

	mu          sync.RWMutex
	subscribers map[int64]struct{}
}

func NewAlertDispatcher(sender messageSender) *AlertDispatcher {
	return &AlertDispatcher{
		sender:      sender,
		subscribers: make(map[int64]struct{}),
	}
}

func (d *AlertDispatcher) Subscribe(chatID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.subscribers[chatID]; exists {
		return false
	}
	d.subscribers[chatID] = struct{}{}
	return true
}

func (d *AlertDispatcher) Unsubscribe(chatID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.subscribers[chatID]; !exists {
		return false
	}
	delete(d.subscribers, chatID)
	return true
}

func (d *AlertDispatcher) IsSubscribed(chatID int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, exists := d.subscribers[chatID]
	return exists
}

func (d *AlertDispatcher) SubscriberCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers)
}

// DispatchAlerts broadcasts alerts that an analysis pass just created.
// Delivery failures are collected rather than aborting the broadcast; the
// alerts are already persisted either way.
func (d *AlertDispatcher) DispatchAlerts(ctx context.Context, project domain.Project, alerts []domain.Alert) {
	_ = ctx
	if d == nil || d.sender == nil || len(alerts) == 0 {
		return
	}

	chatIDs := d.snapshotSubscribers()
	if len(chatIDs) == 0 {
		return
	}

	msg := formatAlertMessage(project, alerts)
	for _, chatID := range chatIDs {
		if _, err := d.sender.Send(&tele.Chat{ID: chatID}, msg); err != nil {
			log.Printf("alert delivery to chat %d failed: %v", chatID, err)
		}
	}
}

func (d *AlertDispatcher) snapshotSubscribers() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	chatIDs := make([]int64, 0, len(d.subscribers))
	for chatID := range d.subscribers {
		chatIDs = append(chatIDs, chatID)
	}
	sort.Slice(chatIDs, func(i, j int) bool { return chatIDs[i] < chatIDs[j] })
	return chatIDs
}

func parseAlertMode(args []string) (string, error) {
	if len(args) == 0 {
		return "status", nil
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "on":
		return "on", nil
	case "off":
		return "off", nil
	case "status":
		return "status", nil
	default:
		return "", fmt.Errorf("invalid mode")
	}
}

func formatAlertMessage(project domain.Project, alerts []domain.Alert) string {
	lines := make([]string, 0, len(alerts)+1)
	lines = append(lines, fmt.Sprintf("New alerts for %s:", project.Name))
	for _, a := range alerts {
		lines = append(lines, formatAlert(a))
	}
	return strings.Join(lines, "\n")
}

func formatAlert(a domain.Alert) string {
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(a.Severity)), a.Kind, a.Message)
}
