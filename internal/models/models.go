// Package models defines the domain models for the application.
package models

import "time"

// ========================================
// Location
// ========================================

// Location is a customer site containing one or more monitored assets.
// Locations are created on first sighting of their vendor GUID and
// overwritten (never deleted) on every subsequent webhook mentioning them.
type Location struct {
	ID                  string     `json:"id"`
	ExternalGUID        string     `json:"external_guid"` // Vendor (Gasbot) location GUID
	Name                string     `json:"name"`
	Address             string     `json:"address,omitempty"`
	CustomerName        string     `json:"customer_name,omitempty"`
	Latitude            *float64   `json:"latitude,omitempty"`
	Longitude           *float64   `json:"longitude,omitempty"`
	CurrentLevelPercent *float64   `json:"current_level_percent,omitempty"` // Aggregated fill level across assets
	LastTelemetryAt     *time.Time `json:"last_telemetry_at,omitempty"`
	Disabled            bool       `json:"disabled"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ========================================
// Asset
// ========================================

// Asset is a physical tank/telemetry unit reporting fuel level and device
// health. Each webhook delivery is an authoritative full snapshot: all
// mutable fields are overwritten on update, never merged.
type Asset struct {
	ID           string  `json:"id"`
	LocationID   *string `json:"location_id,omitempty"` // Nullable only transiently during partial-failure isolation
	ExternalGUID string  `json:"external_guid"`         // Vendor asset GUID
	SerialNumber string  `json:"serial_number"`

	DeviceSerialNumber string `json:"device_serial_number,omitempty"`
	DeviceState        string `json:"device_state,omitempty"`
	Commodity          string `json:"commodity,omitempty"` // Product in the tank (diesel, ULP, water...)

	CapacityLitres         *float64 `json:"capacity_litres,omitempty"`
	CurrentLevelLitres     *float64 `json:"current_level_litres,omitempty"`
	CurrentLevelPercent    *float64 `json:"current_level_percent,omitempty"`
	RawFillPercent         *float64 `json:"raw_fill_percent,omitempty"`
	CalibratedFillPercent  *float64 `json:"calibrated_fill_percent,omitempty"`
	UllageLitres           *float64 `json:"ullage_litres,omitempty"` // Remaining capacity, clamped >= 0
	DailyConsumptionLitres *float64 `json:"daily_consumption_litres,omitempty"`
	DaysRemaining          *float64 `json:"days_remaining,omitempty"`

	Online          bool       `json:"online"`
	BatteryVoltage  *float64   `json:"battery_voltage,omitempty"`
	TemperatureC    *float64   `json:"temperature_c,omitempty"`
	LastTelemetryAt *time.Time `json:"last_telemetry_at,omitempty"`

	RawPayload string `json:"-"` // Vendor record as received, kept for audit

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ========================================
// Reading (append-only time series)
// ========================================

// Reading is one immutable snapshot of an asset's state at the telemetry
// timestamp. Rows are never updated or deleted; duplicate timestamps are
// allowed (a re-sent webhook produces duplicate rows by design).
type Reading struct {
	ID      string `json:"id"`
	AssetID string `json:"asset_id"`

	LevelLitres            *float64 `json:"level_litres,omitempty"`
	LevelPercent           *float64 `json:"level_percent,omitempty"`
	Online                 bool     `json:"online"`
	BatteryVoltage         *float64 `json:"battery_voltage,omitempty"`
	TemperatureC           *float64 `json:"temperature_c,omitempty"`
	DeviceState            string   `json:"device_state,omitempty"`
	DailyConsumptionLitres *float64 `json:"daily_consumption_litres,omitempty"`
	DaysRemaining          *float64 `json:"days_remaining,omitempty"`

	ReadingAt time.Time `json:"reading_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ========================================
// Alerts
// ========================================

// AlertType identifies the threshold rule that raised an alert.
type AlertType string

const (
	AlertTypeLowBattery    AlertType = "low_battery"
	AlertTypeLowFuel       AlertType = "low_fuel"
	AlertTypeDeviceOffline AlertType = "device_offline"
)

// AlertSeverity is the severity of a threshold breach.
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert records a threshold breach, open until explicitly resolved.
// Invariant: at most one active alert per (asset, type) pair.
type Alert struct {
	ID             string        `json:"id"`
	AssetID        string        `json:"asset_id"`
	Type           AlertType     `json:"type"`
	Severity       AlertSeverity `json:"severity"`
	Message        string        `json:"message"`
	TriggerValue   *float64      `json:"trigger_value,omitempty"`   // The observed value that crossed the threshold
	ThresholdValue *float64      `json:"threshold_value,omitempty"` // The threshold it crossed
	Active         bool          `json:"active"`
	TriggeredAt    time.Time     `json:"triggered_at"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty"`
}

// ========================================
// Sync log
// ========================================

// SyncStatus is the outcome of a single webhook invocation.
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success" // Zero record-level failures
	SyncStatusPartial SyncStatus = "partial" // Some records succeeded, some failed
	SyncStatusError   SyncStatus = "error"   // Whole batch failed before any record was processed
)

// SyncLogEntry is one append-only audit row per webhook invocation.
type SyncLogEntry struct {
	ID                 string     `json:"id"`
	Status             SyncStatus `json:"status"`
	LocationsProcessed int        `json:"locations_processed"`
	AssetsProcessed    int        `json:"assets_processed"`
	ReadingsProcessed  int        `json:"readings_processed"`
	AlertsTriggered    int        `json:"alerts_triggered"`
	RecordsFailed      int        `json:"records_failed"`
	ErrorSummary       string     `json:"error_summary,omitempty"`
	StartedAt          time.Time  `json:"started_at"`
	FinishedAt         time.Time  `json:"finished_at"`
	DurationMS         int64      `json:"duration_ms"`
}
