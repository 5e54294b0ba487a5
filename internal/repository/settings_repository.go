package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"venturedeck/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type SettingsRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSettingsRepository(pool PgxPool, tracer trace.Tracer) *SettingsRepository {
	return &SettingsRepository{pool: pool, tracer: tracer}
}

func (r *SettingsRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "settings-repo.run-migrations")
	defer span.End()

	if _, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`); err != nil {
		return err
	}

	// Seed the tunables, never the cycle start: a cycle begins only when
	// the user says so.
	seed := map[string]string{
		domain.SettingKillDays:        strconv.Itoa(domain.DefaultKillDays),
		domain.SettingHourlyCost:      strconv.FormatFloat(domain.DefaultHourlyCost, 'f', -1, 64),
		domain.SettingMaxActive:       strconv.Itoa(domain.DefaultMaxActive),
		domain.SettingGrowthThreshold: strconv.FormatFloat(domain.DefaultGrowthThreshold, 'f', -1, 64),
		domain.SettingShareThreshold:  strconv.FormatFloat(domain.DefaultShareThreshold, 'f', -1, 64),
		domain.SettingZombieDays:      strconv.Itoa(domain.DefaultZombieDays),
	}
	for key, value := range seed {
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`,
			key, value,
		); err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
	}
	return nil
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	_, span := r.tracer.Start(ctx, "settings-repo.get")
	defer span.End()

	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	return value, err
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, span := r.tracer.Start(ctx, "settings-repo.set")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	return err
}

// Thresholds loads the analysis tunables, falling back to defaults for any
// malformed or missing numeric value. A missing cycle start is not a default
// situation: it returns domain.ErrCycleNotStarted.
func (r *SettingsRepository) Thresholds(ctx context.Context) (domain.Thresholds, error) {
	_, span := r.tracer.Start(ctx, "settings-repo.thresholds")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return domain.Thresholds{}, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return domain.Thresholds{}, err
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return domain.Thresholds{}, err
	}

	t := domain.Thresholds{
		KillDays:        intSetting(values, domain.SettingKillDays, domain.DefaultKillDays),
		HourlyCost:      floatSetting(values, domain.SettingHourlyCost, domain.DefaultHourlyCost),
		MaxActive:       intSetting(values, domain.SettingMaxActive, domain.DefaultMaxActive),
		GrowthThreshold: floatSetting(values, domain.SettingGrowthThreshold, domain.DefaultGrowthThreshold),
		ShareThreshold:  floatSetting(values, domain.SettingShareThreshold, domain.DefaultShareThreshold),
	}

	raw, ok := values[domain.SettingCycleStart]
	if !ok || raw == "" {
		return domain.Thresholds{}, domain.ErrCycleNotStarted
	}
	start, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return domain.Thresholds{}, fmt.Errorf("parse %s %q: %w", domain.SettingCycleStart, raw, err)
	}
	t.CycleStart = start
	return t, nil
}

// MaxActive reads the concurrent-project cap, tolerating an unseeded table.
func (r *SettingsRepository) MaxActive(ctx context.Context) int {
	value, err := r.Get(ctx, domain.SettingMaxActive)
	if err != nil {
		return domain.DefaultMaxActive
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return domain.DefaultMaxActive
	}
	return n
}

// ZombieDays reads the inactivity threshold, tolerating an unseeded table.
func (r *SettingsRepository) ZombieDays(ctx context.Context) int {
	value, err := r.Get(ctx, domain.SettingZombieDays)
	if err != nil {
		return domain.DefaultZombieDays
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return domain.DefaultZombieDays
	}
	return n
}

func intSetting(values map[string]string, key string, fallback int) int {
	raw, ok := values[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func floatSetting(values map[string]string, key string, fallback float64) float64 {
	raw, ok := values[key]
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}
