package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tankwatch/tankwatch-api/internal/models"
)

// SQLiteReadingRepository implements ReadingRepository for SQLite/libsql.
// The readings table is append-only: rows are never updated or deleted, and
// duplicate (asset, timestamp) pairs are allowed so a re-sent webhook never
// errors here.
type SQLiteReadingRepository struct {
	db *sql.DB
}

// NewSQLiteReadingRepository creates a new SQLite reading repository.
func NewSQLiteReadingRepository(db *sql.DB) *SQLiteReadingRepository {
	return &SQLiteReadingRepository{db: db}
}

// Insert appends one reading row.
func (r *SQLiteReadingRepository) Insert(ctx context.Context, reading *models.Reading) error {
	now := time.Now().UTC()

	if reading.ID == "" {
		reading.ID = ulid.Make().String()
	}
	reading.CreatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO readings (id, asset_id, level_litres, level_percent, online, battery_voltage,
			temperature_c, device_state, daily_consumption_litres, days_remaining, reading_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, reading.ID, reading.AssetID, reading.LevelLitres, reading.LevelPercent, reading.Online,
		reading.BatteryVoltage, reading.TemperatureC, reading.DeviceState,
		reading.DailyConsumptionLitres, reading.DaysRemaining,
		timeToString(reading.ReadingAt), timeToString(now))
	return err
}

// ListByAssetID returns the most recent readings for an asset, newest first.
func (r *SQLiteReadingRepository) ListByAssetID(ctx context.Context, assetID string, limit int) ([]*models.Reading, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, asset_id, level_litres, level_percent, online, battery_voltage, temperature_c,
			device_state, daily_consumption_litres, days_remaining, reading_at, created_at
		FROM readings
		WHERE asset_id = ?
		ORDER BY reading_at DESC
		LIMIT ?
	`, assetID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var readings []*models.Reading
	for rows.Next() {
		var reading models.Reading
		var litres, pct, battery, temp, consumption, days sql.NullFloat64
		var readingAt, createdAt string

		err := rows.Scan(
			&reading.ID,
			&reading.AssetID,
			&litres,
			&pct,
			&reading.Online,
			&battery,
			&temp,
			&reading.DeviceState,
			&consumption,
			&days,
			&readingAt,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		reading.LevelLitres = nullFloatToPtr(litres)
		reading.LevelPercent = nullFloatToPtr(pct)
		reading.BatteryVoltage = nullFloatToPtr(battery)
		reading.TemperatureC = nullFloatToPtr(temp)
		reading.DailyConsumptionLitres = nullFloatToPtr(consumption)
		reading.DaysRemaining = nullFloatToPtr(days)
		reading.ReadingAt = stringToTime(readingAt)
		reading.CreatedAt = stringToTime(createdAt)

		readings = append(readings, &reading)
	}
	return readings, rows.Err()
}

// CountByAssetID returns the number of readings stored for an asset.
func (r *SQLiteReadingRepository) CountByAssetID(ctx context.Context, assetID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM readings WHERE asset_id = ?`, assetID,
	).Scan(&count)
	return count, err
}
