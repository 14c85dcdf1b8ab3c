package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tankwatch/tankwatch-api/internal/models"
)

// SQLiteLocationRepository implements LocationRepository for SQLite/libsql.
type SQLiteLocationRepository struct {
	db *sql.DB
}

// NewSQLiteLocationRepository creates a new SQLite location repository.
func NewSQLiteLocationRepository(db *sql.DB) *SQLiteLocationRepository {
	return &SQLiteLocationRepository{db: db}
}

// Upsert inserts the location on first sighting of its external GUID, or
// overwrites all mutable fields on a repeat sighting. loc.ID is set either way.
func (r *SQLiteLocationRepository) Upsert(ctx context.Context, loc *models.Location) error {
	now := time.Now().UTC()

	var existingID string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM locations WHERE external_guid = ?`, loc.ExternalGUID,
	).Scan(&existingID)

	if err == sql.ErrNoRows {
		loc.ID = ulid.Make().String()
		loc.CreatedAt = now
		loc.UpdatedAt = now
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO locations (id, external_guid, name, address, customer_name, latitude, longitude,
				current_level_percent, last_telemetry_at, disabled, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, loc.ID, loc.ExternalGUID, loc.Name, loc.Address, loc.CustomerName, loc.Latitude, loc.Longitude,
			loc.CurrentLevelPercent, timePtrToString(loc.LastTelemetryAt), loc.Disabled,
			timeToString(now), timeToString(now))
		return err
	}
	if err != nil {
		return err
	}

	loc.ID = existingID
	loc.UpdatedAt = now
	_, err = r.db.ExecContext(ctx, `
		UPDATE locations
		SET name = ?, address = ?, customer_name = ?, latitude = ?, longitude = ?,
			current_level_percent = ?, last_telemetry_at = ?, disabled = ?, updated_at = ?
		WHERE id = ?
	`, loc.Name, loc.Address, loc.CustomerName, loc.Latitude, loc.Longitude,
		loc.CurrentLevelPercent, timePtrToString(loc.LastTelemetryAt), loc.Disabled,
		timeToString(now), existingID)
	return err
}

// GetByID retrieves a location by internal ID.
func (r *SQLiteLocationRepository) GetByID(ctx context.Context, id string) (*models.Location, error) {
	return r.scanLocation(r.db.QueryRowContext(ctx, selectLocation+` WHERE id = ?`, id))
}

// GetByExternalGUID retrieves a location by vendor GUID.
func (r *SQLiteLocationRepository) GetByExternalGUID(ctx context.Context, guid string) (*models.Location, error) {
	return r.scanLocation(r.db.QueryRowContext(ctx, selectLocation+` WHERE external_guid = ?`, guid))
}

// List returns all locations ordered by name.
func (r *SQLiteLocationRepository) List(ctx context.Context) ([]*models.Location, error) {
	rows, err := r.db.QueryContext(ctx, selectLocation+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var locations []*models.Location
	for rows.Next() {
		loc, err := scanLocationRow(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

const selectLocation = `
	SELECT id, external_guid, name, address, customer_name, latitude, longitude,
		current_level_percent, last_telemetry_at, disabled, created_at, updated_at
	FROM locations`

func (r *SQLiteLocationRepository) scanLocation(row *sql.Row) (*models.Location, error) {
	loc, err := scanLocationRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return loc, err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanLocationRow(row scanner) (*models.Location, error) {
	var loc models.Location
	var lat, lng, levelPct sql.NullFloat64
	var lastTelemetry sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&loc.ID,
		&loc.ExternalGUID,
		&loc.Name,
		&loc.Address,
		&loc.CustomerName,
		&lat,
		&lng,
		&levelPct,
		&lastTelemetry,
		&loc.Disabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	loc.Latitude = nullFloatToPtr(lat)
	loc.Longitude = nullFloatToPtr(lng)
	loc.CurrentLevelPercent = nullFloatToPtr(levelPct)
	loc.LastTelemetryAt = nullStringToTimePtr(lastTelemetry)
	loc.CreatedAt = stringToTime(createdAt)
	loc.UpdatedAt = stringToTime(updatedAt)

	return &loc, nil
}
