package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tankwatch/tankwatch-api/internal/models"
)

// SQLiteAssetRepository implements AssetRepository for SQLite/libsql.
type SQLiteAssetRepository struct {
	db *sql.DB
}

// NewSQLiteAssetRepository creates a new SQLite asset repository.
func NewSQLiteAssetRepository(db *sql.DB) *SQLiteAssetRepository {
	return &SQLiteAssetRepository{db: db}
}

// Upsert inserts the asset on first sighting of its external GUID, or
// overwrites all mutable fields on a repeat sighting. The vendor sends a full
// current-state snapshot each time, so overwrite-all is the correct semantics.
func (r *SQLiteAssetRepository) Upsert(ctx context.Context, asset *models.Asset) error {
	now := time.Now().UTC()

	var existingID string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM assets WHERE external_guid = ?`, asset.ExternalGUID,
	).Scan(&existingID)

	if err == sql.ErrNoRows {
		asset.ID = ulid.Make().String()
		asset.CreatedAt = now
		asset.UpdatedAt = now
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO assets (id, location_id, external_guid, serial_number, device_serial_number,
				device_state, commodity, capacity_litres, current_level_litres, current_level_percent,
				raw_fill_percent, calibrated_fill_percent, ullage_litres, daily_consumption_litres,
				days_remaining, online, battery_voltage, temperature_c, last_telemetry_at, raw_payload,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, asset.ID, asset.LocationID, asset.ExternalGUID, asset.SerialNumber, asset.DeviceSerialNumber,
			asset.DeviceState, asset.Commodity, asset.CapacityLitres, asset.CurrentLevelLitres,
			asset.CurrentLevelPercent, asset.RawFillPercent, asset.CalibratedFillPercent,
			asset.UllageLitres, asset.DailyConsumptionLitres, asset.DaysRemaining, asset.Online,
			asset.BatteryVoltage, asset.TemperatureC, timePtrToString(asset.LastTelemetryAt),
			asset.RawPayload, timeToString(now), timeToString(now))
		return err
	}
	if err != nil {
		return err
	}

	asset.ID = existingID
	asset.UpdatedAt = now
	_, err = r.db.ExecContext(ctx, `
		UPDATE assets
		SET location_id = ?, serial_number = ?, device_serial_number = ?, device_state = ?,
			commodity = ?, capacity_litres = ?, current_level_litres = ?, current_level_percent = ?,
			raw_fill_percent = ?, calibrated_fill_percent = ?, ullage_litres = ?,
			daily_consumption_litres = ?, days_remaining = ?, online = ?, battery_voltage = ?,
			temperature_c = ?, last_telemetry_at = ?, raw_payload = ?, updated_at = ?
		WHERE id = ?
	`, asset.LocationID, asset.SerialNumber, asset.DeviceSerialNumber, asset.DeviceState,
		asset.Commodity, asset.CapacityLitres, asset.CurrentLevelLitres, asset.CurrentLevelPercent,
		asset.RawFillPercent, asset.CalibratedFillPercent, asset.UllageLitres,
		asset.DailyConsumptionLitres, asset.DaysRemaining, asset.Online, asset.BatteryVoltage,
		asset.TemperatureC, timePtrToString(asset.LastTelemetryAt), asset.RawPayload,
		timeToString(now), existingID)
	return err
}

// GetByID retrieves an asset by internal ID.
func (r *SQLiteAssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	return r.scanAsset(r.db.QueryRowContext(ctx, selectAsset+` WHERE id = ?`, id))
}

// GetByExternalGUID retrieves an asset by vendor GUID.
func (r *SQLiteAssetRepository) GetByExternalGUID(ctx context.Context, guid string) (*models.Asset, error) {
	return r.scanAsset(r.db.QueryRowContext(ctx, selectAsset+` WHERE external_guid = ?`, guid))
}

// ListByLocationID returns all assets at a location ordered by serial number.
func (r *SQLiteAssetRepository) ListByLocationID(ctx context.Context, locationID string) ([]*models.Asset, error) {
	rows, err := r.db.QueryContext(ctx, selectAsset+` WHERE location_id = ? ORDER BY serial_number`, locationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var assets []*models.Asset
	for rows.Next() {
		asset, err := scanAssetRow(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

const selectAsset = `
	SELECT id, location_id, external_guid, serial_number, device_serial_number, device_state,
		commodity, capacity_litres, current_level_litres, current_level_percent, raw_fill_percent,
		calibrated_fill_percent, ullage_litres, daily_consumption_litres, days_remaining, online,
		battery_voltage, temperature_c, last_telemetry_at, raw_payload, created_at, updated_at
	FROM assets`

func (r *SQLiteAssetRepository) scanAsset(row *sql.Row) (*models.Asset, error) {
	asset, err := scanAssetRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return asset, err
}

func scanAssetRow(row scanner) (*models.Asset, error) {
	var asset models.Asset
	var locationID sql.NullString
	var capacity, litres, levelPct, rawFill, calFill, ullage, consumption, days, battery, temp sql.NullFloat64
	var lastTelemetry sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&asset.ID,
		&locationID,
		&asset.ExternalGUID,
		&asset.SerialNumber,
		&asset.DeviceSerialNumber,
		&asset.DeviceState,
		&asset.Commodity,
		&capacity,
		&litres,
		&levelPct,
		&rawFill,
		&calFill,
		&ullage,
		&consumption,
		&days,
		&asset.Online,
		&battery,
		&temp,
		&lastTelemetry,
		&asset.RawPayload,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if locationID.Valid {
		asset.LocationID = &locationID.String
	}
	asset.CapacityLitres = nullFloatToPtr(capacity)
	asset.CurrentLevelLitres = nullFloatToPtr(litres)
	asset.CurrentLevelPercent = nullFloatToPtr(levelPct)
	asset.RawFillPercent = nullFloatToPtr(rawFill)
	asset.CalibratedFillPercent = nullFloatToPtr(calFill)
	asset.UllageLitres = nullFloatToPtr(ullage)
	asset.DailyConsumptionLitres = nullFloatToPtr(consumption)
	asset.DaysRemaining = nullFloatToPtr(days)
	asset.BatteryVoltage = nullFloatToPtr(battery)
	asset.TemperatureC = nullFloatToPtr(temp)
	asset.LastTelemetryAt = nullStringToTimePtr(lastTelemetry)
	asset.CreatedAt = stringToTime(createdAt)
	asset.UpdatedAt = stringToTime(updatedAt)

	return &asset, nil
}
