// Package repository defines repository interfaces for data access.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tankwatch/tankwatch-api/internal/models"
)

// LocationRepository defines methods for location data access.
// Locations are upserted by vendor GUID: replaying the same payload produces
// the same stored state, never duplicate rows.
type LocationRepository interface {
	// Upsert inserts or overwrites the location keyed by ExternalGUID and
	// sets loc.ID to the stored row's identifier.
	Upsert(ctx context.Context, loc *models.Location) error
	GetByID(ctx context.Context, id string) (*models.Location, error)
	GetByExternalGUID(ctx context.Context, guid string) (*models.Location, error)
	List(ctx context.Context) ([]*models.Location, error)
}

// AssetRepository defines methods for asset data access.
type AssetRepository interface {
	// Upsert inserts or overwrites the asset keyed by ExternalGUID and sets
	// asset.ID. Every mutable field is overwritten: the webhook payload is a
	// full snapshot, not a delta.
	Upsert(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	GetByExternalGUID(ctx context.Context, guid string) (*models.Asset, error)
	ListByLocationID(ctx context.Context, locationID string) ([]*models.Asset, error)
}

// ReadingRepository defines methods for the append-only readings time series.
// Rows are never updated or deleted; duplicate reading timestamps are allowed.
type ReadingRepository interface {
	Insert(ctx context.Context, reading *models.Reading) error
	ListByAssetID(ctx context.Context, assetID string, limit int) ([]*models.Reading, error)
	CountByAssetID(ctx context.Context, assetID string) (int, error)
}

// AlertRepository defines methods for alert data access.
type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	// GetActive returns the active alert for (asset, type), or nil.
	GetActive(ctx context.Context, assetID string, alertType models.AlertType) (*models.Alert, error)
	// Resolve clears the active flag and stamps resolved_at.
	Resolve(ctx context.Context, id string, resolvedAt time.Time) error
	ListActive(ctx context.Context) ([]*models.Alert, error)
	ListByAssetID(ctx context.Context, assetID string) ([]*models.Alert, error)
}

// SyncLogRepository defines methods for the append-only webhook audit log.
type SyncLogRepository interface {
	Create(ctx context.Context, entry *models.SyncLogEntry) error
	List(ctx context.Context, limit int) ([]*models.SyncLogEntry, error)
}

// Repositories holds all repository instances.
type Repositories struct {
	Location LocationRepository
	Asset    AssetRepository
	Reading  ReadingRepository
	Alert    AlertRepository
	SyncLog  SyncLogRepository
}

// NewRepositories creates all repository instances.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Location: NewSQLiteLocationRepository(db),
		Asset:    NewSQLiteAssetRepository(db),
		Reading:  NewSQLiteReadingRepository(db),
		Alert:    NewSQLiteAlertRepository(db),
		SyncLog:  NewSQLiteSyncLogRepository(db),
	}
}
