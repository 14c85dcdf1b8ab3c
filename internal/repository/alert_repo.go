package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tankwatch/tankwatch-api/internal/models"
)

// SQLiteAlertRepository implements AlertRepository for SQLite/libsql.
type SQLiteAlertRepository struct {
	db *sql.DB
}

// NewSQLiteAlertRepository creates a new SQLite alert repository.
func NewSQLiteAlertRepository(db *sql.DB) *SQLiteAlertRepository {
	return &SQLiteAlertRepository{db: db}
}

// Create inserts a new alert row.
func (r *SQLiteAlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = ulid.Make().String()
	}
	if alert.TriggeredAt.IsZero() {
		alert.TriggeredAt = time.Now().UTC()
	}
	alert.Active = true

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (id, asset_id, type, severity, message, trigger_value, threshold_value,
			active, triggered_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, NULL)
	`, alert.ID, alert.AssetID, string(alert.Type), string(alert.Severity), alert.Message,
		alert.TriggerValue, alert.ThresholdValue, timeToString(alert.TriggeredAt))
	return err
}

// GetActive returns the active alert for (asset, type), or nil when the
// condition has no open alert. At most one such row exists.
func (r *SQLiteAlertRepository) GetActive(ctx context.Context, assetID string, alertType models.AlertType) (*models.Alert, error) {
	row := r.db.QueryRowContext(ctx, selectAlert+`
		WHERE asset_id = ? AND type = ? AND active = 1`, assetID, string(alertType))

	alert, err := scanAlertRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return alert, err
}

// Resolve clears the active flag and stamps resolved_at. Alerts are never
// hard-deleted.
func (r *SQLiteAlertRepository) Resolve(ctx context.Context, id string, resolvedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE alerts SET active = 0, resolved_at = ? WHERE id = ?
	`, timeToString(resolvedAt), id)
	return err
}

// ListActive returns all active alerts, newest first.
func (r *SQLiteAlertRepository) ListActive(ctx context.Context) ([]*models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, selectAlert+` WHERE active = 1 ORDER BY triggered_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanAlertRows(rows)
}

// ListByAssetID returns all alerts for an asset, active and resolved.
func (r *SQLiteAlertRepository) ListByAssetID(ctx context.Context, assetID string) ([]*models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, selectAlert+` WHERE asset_id = ? ORDER BY triggered_at DESC`, assetID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanAlertRows(rows)
}

const selectAlert = `
	SELECT id, asset_id, type, severity, message, trigger_value, threshold_value,
		active, triggered_at, resolved_at
	FROM alerts`

func scanAlertRow(row scanner) (*models.Alert, error) {
	var alert models.Alert
	var alertType, severity string
	var triggerValue, thresholdValue sql.NullFloat64
	var triggeredAt string
	var resolvedAt sql.NullString

	err := row.Scan(
		&alert.ID,
		&alert.AssetID,
		&alertType,
		&severity,
		&alert.Message,
		&triggerValue,
		&thresholdValue,
		&alert.Active,
		&triggeredAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	alert.Type = models.AlertType(alertType)
	alert.Severity = models.AlertSeverity(severity)
	alert.TriggerValue = nullFloatToPtr(triggerValue)
	alert.ThresholdValue = nullFloatToPtr(thresholdValue)
	alert.TriggeredAt = stringToTime(triggeredAt)
	alert.ResolvedAt = nullStringToTimePtr(resolvedAt)

	return &alert, nil
}

func scanAlertRows(rows *sql.Rows) ([]*models.Alert, error) {
	var alerts []*models.Alert
	for rows.Next() {
		alert, err := scanAlertRow(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}
