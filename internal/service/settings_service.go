package service

import (
	"context"
	"fmt"
	"time"

	"venturedeck/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Thresholds(ctx context.Context) (domain.Thresholds, error)
}

var knownSettingKeys = map[string]bool{
	domain.SettingCycleStart:      true,
	domain.SettingKillDays:        true,
	domain.SettingHourlyCost:      true,
	domain.SettingMaxActive:       true,
	domain.SettingGrowthThreshold: true,
	domain.SettingShareThreshold:  true,
	domain.SettingZombieDays:      true,
}

type SettingsService struct {
	tracer trace.Tracer
	repo   SettingsRepository
	now    func() time.Time
}

func NewSettingsService(tracer trace.Tracer, repo SettingsRepository) *SettingsService {
	return &SettingsService{tracer: tracer, repo: repo, now: time.Now}
}

// SetClock replaces the wall clock. Tests only.
func (s *SettingsService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	_, span := s.tracer.Start(ctx, "settings-service.get")
	defer span.End()

	if !knownSettingKeys[key] {
		return "", fmt.Errorf("unknown setting: %s", key)
	}
	return s.repo.Get(ctx, key)
}

func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	_, span := s.tracer.Start(ctx, "settings-service.set")
	defer span.End()

	if !knownSettingKeys[key] {
		return fmt.Errorf("unknown setting: %s", key)
	}
	if value == "" {
		return fmt.Errorf("setting %s needs a value", key)
	}
	return s.repo.Set(ctx, key, value)
}

func (s *SettingsService) Thresholds(ctx context.Context) (domain.Thresholds, error) {
	_, span := s.tracer.Start(ctx, "settings-service.thresholds")
	defer span.End()

	return s.repo.Thresholds(ctx)
}

// StartCycle sets the 90-day clock running from the given day, defaulting to
// today. Starting over mid-cycle simply moves the date.
func (s *SettingsService) StartCycle(ctx context.Context, day time.Time) (domain.CyclePhase, error) {
	_, span := s.tracer.Start(ctx, "settings-service.start-cycle")
	defer span.End()

	if day.IsZero() {
		day = s.now().UTC()
	}
	day = day.Truncate(24 * time.Hour)
	if err := s.repo.Set(ctx, domain.SettingCycleStart, day.Format("2006-01-02")); err != nil {
		return domain.CyclePhase{}, fmt.Errorf("store cycle start: %w", err)
	}
	return domain.PhaseFor(day, s.now().UTC()), nil
}

// Phase reports where the running cycle stands; domain.ErrCycleNotStarted
// when there is no cycle.
func (s *SettingsService) Phase(ctx context.Context) (domain.CyclePhase, error) {
	_, span := s.tracer.Start(ctx, "settings-service.phase")
	defer span.End()

	th, err := s.repo.Thresholds(ctx)
	if err != nil {
		return domain.CyclePhase{}, err
	}
	return domain.PhaseFor(th.CycleStart, s.now().UTC()), nil
}
