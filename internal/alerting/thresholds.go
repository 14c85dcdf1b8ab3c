// Package alerting evaluates threshold rules against asset state and manages
// the alert lifecycle (create, deduplicate, resolve).
package alerting

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/tankwatch/tankwatch-api/internal/config"
)

// Thresholds holds the alert trigger levels. Critical thresholds supersede
// warning ones when both are crossed.
type Thresholds struct {
	BatteryWarningVolts  float64 `json:"battery_warning_volts"`
	BatteryCriticalVolts float64 `json:"battery_critical_volts"`

	FuelWarningDays     float64 `json:"fuel_warning_days"`
	FuelCriticalDays    float64 `json:"fuel_critical_days"`
	FuelWarningPercent  float64 `json:"fuel_warning_percent"`
	FuelCriticalPercent float64 `json:"fuel_critical_percent"`
}

// DefaultThresholds returns the built-in trigger levels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BatteryWarningVolts:  3.3,
		BatteryCriticalVolts: 3.2,
		FuelWarningDays:      7,
		FuelCriticalDays:     3,
		FuelWarningPercent:   15,
		FuelCriticalPercent:  10,
	}
}

// ThresholdsLoader provides S3-backed threshold overrides with caching.
// When no S3 object is configured or present, the built-in defaults apply.
type ThresholdsLoader struct {
	loader *config.S3Loader

	mu      sync.RWMutex
	current Thresholds
	logger  *slog.Logger
}

// NewThresholdsLoader creates a loader seeded with the default thresholds.
func NewThresholdsLoader(cfg config.S3LoaderConfig) *ThresholdsLoader {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ThresholdsLoader{
		loader:  config.NewS3Loader(cfg),
		current: DefaultThresholds(),
		logger:  logger,
	}
}

// Current returns the thresholds in effect.
func (t *ThresholdsLoader) Current() Thresholds {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// MaybeRefresh checks whether the S3 object should be re-fetched and, if so,
// refreshes in the background so webhook processing is never blocked on S3.
func (t *ThresholdsLoader) MaybeRefresh(ctx context.Context) {
	if !t.loader.IsEnabled() || !t.loader.NeedsRefresh() {
		return
	}
	go t.refresh(context.WithoutCancel(ctx))
}

func (t *ThresholdsLoader) refresh(ctx context.Context) {
	result, err := t.loader.Fetch(ctx)
	if err != nil {
		// S3Loader already logged the error
		return
	}
	if result == nil || result.NotChanged {
		return
	}

	// Override on top of defaults so a partial JSON file is valid.
	next := DefaultThresholds()
	if err := json.Unmarshal(result.Data, &next); err != nil {
		t.logger.Error("failed to parse thresholds JSON", "error", err)
		return
	}

	t.mu.Lock()
	t.current = next
	t.mu.Unlock()

	t.logger.Info("alert thresholds updated from S3",
		"battery_warning_volts", next.BatteryWarningVolts,
		"battery_critical_volts", next.BatteryCriticalVolts,
		"fuel_warning_days", next.FuelWarningDays,
		"fuel_critical_days", next.FuelCriticalDays,
	)
}
