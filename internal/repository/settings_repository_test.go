package repository

import (
	"context"
	"errors"
	"testing"

	"venturedeck/internal/domain"
)

func TestSettingsMigrationsSeedTunablesNotCycleStart(t *testing.T) {
	pool := &repoStubPool{}
	repo := NewSettingsRepository(pool, testTracer())

	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Schema plus six seeded tunables.
	if len(pool.execSQL) != 7 {
		t.Fatalf("expected 7 Exec calls, got %d", len(pool.execSQL))
	}
}

func TestThresholdsRequireCycleStart(t *testing.T) {
	pool := &repoStubPool{rowsData: [][]any{
		{domain.SettingKillDays, "30"},
	}}
	repo := NewSettingsRepository(pool, testTracer())

	_, err := repo.Thresholds(context.Background())
	if !errors.Is(err, domain.ErrCycleNotStarted) {
		t.Fatalf("expected ErrCycleNotStarted, got %v", err)
	}
}

func TestThresholdsParseStoredValues(t *testing.T) {
	pool := &repoStubPool{rowsData: [][]any{
		{domain.SettingCycleStart, "2026-06-01"},
		{domain.SettingKillDays, "21"},
		{domain.SettingHourlyCost, "35.5"},
		{domain.SettingShareThreshold, "0.7"},
	}}
	repo := NewSettingsRepository(pool, testTracer())

	th, err := repo.Thresholds(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.KillDays != 21 || th.HourlyCost != 35.5 || th.ShareThreshold != 0.7 {
		t.Fatalf("unexpected thresholds: %+v", th)
	}
	// Absent keys fall back to defaults.
	if th.GrowthThreshold != domain.DefaultGrowthThreshold || th.MaxActive != domain.DefaultMaxActive {
		t.Fatalf("expected default fallbacks, got %+v", th)
	}
	if th.CycleStart.Year() != 2026 || th.CycleStart.Month() != 6 {
		t.Fatalf("unexpected cycle start: %v", th.CycleStart)
	}
}

func TestThresholdsIgnoreMalformedValues(t *testing.T) {
	pool := &repoStubPool{rowsData: [][]any{
		{domain.SettingCycleStart, "2026-06-01"},
		{domain.SettingKillDays, "not-a-number"},
		{domain.SettingHourlyCost, "-5"},
	}}
	repo := NewSettingsRepository(pool, testTracer())

	th, err := repo.Thresholds(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.KillDays != domain.DefaultKillDays || th.HourlyCost != domain.DefaultHourlyCost {
		t.Fatalf("expected defaults for malformed values, got %+v", th)
	}
}
