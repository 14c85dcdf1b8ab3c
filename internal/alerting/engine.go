package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tankwatch/tankwatch-api/internal/models"
	"github.com/tankwatch/tankwatch-api/internal/repository"
)

// outcome is the result of evaluating one rule against an asset snapshot.
type outcome int

const (
	outcomeNone    outcome = iota // No data, or no state change required
	outcomeBreach                 // Condition is true: raise unless already active
	outcomeRecover                // Condition is back to normal: resolve if active
)

// decision carries the rule evaluation plus the detail needed for the row.
type decision struct {
	outcome   outcome
	severity  models.AlertSeverity
	message   string
	trigger   *float64
	threshold *float64
}

// Engine evaluates threshold rules for one asset per webhook record and
// applies the resulting alert actions. Alert failures are reported to the
// caller but must never abort the rest of a batch.
type Engine struct {
	alerts     repository.AlertRepository
	thresholds *ThresholdsLoader
	logger     *slog.Logger
}

// NewEngine creates an alert engine. loader may be nil, in which case the
// built-in default thresholds apply.
func NewEngine(alerts repository.AlertRepository, loader *ThresholdsLoader, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{alerts: alerts, thresholds: loader, logger: logger}
}

// Evaluate runs all rules for the asset's current state against its previous
// snapshot (nil on first sighting) and applies create/resolve actions.
// Returns the number of alerts created.
func (e *Engine) Evaluate(ctx context.Context, current, previous *models.Asset) (int, error) {
	t := DefaultThresholds()
	if e.thresholds != nil {
		e.thresholds.MaybeRefresh(ctx)
		t = e.thresholds.Current()
	}

	rules := []struct {
		alertType models.AlertType
		decision  decision
	}{
		{models.AlertTypeLowBattery, evalBattery(current, t)},
		{models.AlertTypeLowFuel, evalFuel(current, t)},
		{models.AlertTypeDeviceOffline, evalOffline(current, previous)},
	}

	created := 0
	for _, rule := range rules {
		n, err := e.apply(ctx, current.ID, rule.alertType, rule.decision)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

// apply turns one rule decision into repository actions, deduplicating
// against the existing active alert for (asset, type).
func (e *Engine) apply(ctx context.Context, assetID string, alertType models.AlertType, d decision) (int, error) {
	switch d.outcome {
	case outcomeBreach:
		existing, err := e.alerts.GetActive(ctx, assetID, alertType)
		if err != nil {
			return 0, fmt.Errorf("query active %s alert: %w", alertType, err)
		}
		if existing != nil {
			// Already alerted; the open alert persists until resolved.
			return 0, nil
		}
		alert := &models.Alert{
			AssetID:        assetID,
			Type:           alertType,
			Severity:       d.severity,
			Message:        d.message,
			TriggerValue:   d.trigger,
			ThresholdValue: d.threshold,
			TriggeredAt:    time.Now().UTC(),
		}
		if err := e.alerts.Create(ctx, alert); err != nil {
			return 0, fmt.Errorf("create %s alert: %w", alertType, err)
		}
		e.logger.Info("alert triggered",
			"asset_id", assetID,
			"type", alertType,
			"severity", d.severity,
		)
		return 1, nil

	case outcomeRecover:
		existing, err := e.alerts.GetActive(ctx, assetID, alertType)
		if err != nil {
			return 0, fmt.Errorf("query active %s alert: %w", alertType, err)
		}
		if existing == nil {
			return 0, nil
		}
		if err := e.alerts.Resolve(ctx, existing.ID, time.Now().UTC()); err != nil {
			return 0, fmt.Errorf("resolve %s alert: %w", alertType, err)
		}
		e.logger.Info("alert resolved", "asset_id", assetID, "type", alertType)
		return 0, nil

	default:
		return 0, nil
	}
}

// evalBattery checks the battery voltage thresholds. A missing voltage makes
// no decision either way.
func evalBattery(a *models.Asset, t Thresholds) decision {
	if a.BatteryVoltage == nil {
		return decision{outcome: outcomeNone}
	}
	v := *a.BatteryVoltage
	switch {
	case v < t.BatteryCriticalVolts:
		threshold := t.BatteryCriticalVolts
		return decision{
			outcome:   outcomeBreach,
			severity:  models.SeverityCritical,
			message:   fmt.Sprintf("Battery voltage %.2fV below critical threshold %.2fV", v, threshold),
			trigger:   a.BatteryVoltage,
			threshold: &threshold,
		}
	case v < t.BatteryWarningVolts:
		threshold := t.BatteryWarningVolts
		return decision{
			outcome:   outcomeBreach,
			severity:  models.SeverityWarning,
			message:   fmt.Sprintf("Battery voltage %.2fV below warning threshold %.2fV", v, threshold),
			trigger:   a.BatteryVoltage,
			threshold: &threshold,
		}
	default:
		return decision{outcome: outcomeRecover}
	}
}

// evalFuel checks days-remaining and fill-percent thresholds. Either metric
// crossing its critical bound makes the whole decision critical.
func evalFuel(a *models.Asset, t Thresholds) decision {
	days := a.DaysRemaining
	pct := a.CurrentLevelPercent
	if days == nil && pct == nil {
		return decision{outcome: outcomeNone}
	}

	if days != nil && *days <= t.FuelCriticalDays {
		threshold := t.FuelCriticalDays
		return decision{
			outcome:   outcomeBreach,
			severity:  models.SeverityCritical,
			message:   fmt.Sprintf("Estimated %.1f days of fuel remaining (critical threshold %.0f days)", *days, threshold),
			trigger:   days,
			threshold: &threshold,
		}
	}
	if pct != nil && *pct <= t.FuelCriticalPercent {
		threshold := t.FuelCriticalPercent
		return decision{
			outcome:   outcomeBreach,
			severity:  models.SeverityCritical,
			message:   fmt.Sprintf("Fuel level %.1f%% at or below critical threshold %.0f%%", *pct, threshold),
			trigger:   pct,
			threshold: &threshold,
		}
	}
	if days != nil && *days <= t.FuelWarningDays {
		threshold := t.FuelWarningDays
		return decision{
			outcome:   outcomeBreach,
			severity:  models.SeverityWarning,
			message:   fmt.Sprintf("Estimated %.1f days of fuel remaining (warning threshold %.0f days)", *days, threshold),
			trigger:   days,
			threshold: &threshold,
		}
	}
	if pct != nil && *pct <= t.FuelWarningPercent {
		threshold := t.FuelWarningPercent
		return decision{
			outcome:   outcomeBreach,
			severity:  models.SeverityWarning,
			message:   fmt.Sprintf("Fuel level %.1f%% at or below warning threshold %.0f%%", *pct, threshold),
			trigger:   pct,
			threshold: &threshold,
		}
	}
	return decision{outcome: outcomeRecover}
}

// evalOffline raises only on the online-to-offline transition, so a device
// that stays offline does not re-alert every webhook cycle. Coming back
// online resolves the open alert.
func evalOffline(current, previous *models.Asset) decision {
	if current.Online {
		return decision{outcome: outcomeRecover}
	}
	if previous != nil && previous.Online {
		return decision{
			outcome:  outcomeBreach,
			severity: models.SeverityCritical,
			message:  "Device went offline",
		}
	}
	// Still offline, or first sighting: no transition to report.
	return decision{outcome: outcomeNone}
}
