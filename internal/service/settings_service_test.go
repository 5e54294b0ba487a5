package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"venturedeck/internal/domain"
)

func TestSettingsRejectUnknownKeys(t *testing.T) {
	svc := NewSettingsService(testTracer(), &stubSettingsStore{})

	if err := svc.Set(context.Background(), "umbral_inventado", "1"); err == nil {
		t.Fatal("expected error for an unknown key")
	}
	if _, err := svc.Get(context.Background(), "whatever"); err == nil {
		t.Fatal("expected error for an unknown key")
	}
}

func TestStartCycleStoresDateAndReturnsPhase(t *testing.T) {
	store := &stubSettingsStore{}
	svc := NewSettingsService(testTracer(), store)
	svc.SetClock(fixedClock)

	phase, err := svc.StartCycle(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.values[domain.SettingCycleStart] != "2026-08-01" {
		t.Fatalf("unexpected stored date: %q", store.values[domain.SettingCycleStart])
	}
	if phase.Day != 1 || phase.Name != "exploration" {
		t.Fatalf("unexpected phase: %+v", phase)
	}
}

func TestPhaseWithoutCycle(t *testing.T) {
	svc := NewSettingsService(testTracer(), &stubSettingsStore{thErr: domain.ErrCycleNotStarted})

	_, err := svc.Phase(context.Background())
	if !errors.Is(err, domain.ErrCycleNotStarted) {
		t.Fatalf("expected ErrCycleNotStarted, got %v", err)
	}
}
