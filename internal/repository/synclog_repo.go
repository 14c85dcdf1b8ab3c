package repository

import (
	"context"
	"database/sql"

	"github.com/oklog/ulid/v2"

	"github.com/tankwatch/tankwatch-api/internal/models"
)

// SQLiteSyncLogRepository implements SyncLogRepository for SQLite/libsql.
// Sync log rows are append-only and immutable once written.
type SQLiteSyncLogRepository struct {
	db *sql.DB
}

// NewSQLiteSyncLogRepository creates a new SQLite sync log repository.
func NewSQLiteSyncLogRepository(db *sql.DB) *SQLiteSyncLogRepository {
	return &SQLiteSyncLogRepository{db: db}
}

// Create appends one sync log row.
func (r *SQLiteSyncLogRepository) Create(ctx context.Context, entry *models.SyncLogEntry) error {
	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_logs (id, status, locations_processed, assets_processed, readings_processed,
			alerts_triggered, records_failed, error_summary, started_at, finished_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, string(entry.Status), entry.LocationsProcessed, entry.AssetsProcessed,
		entry.ReadingsProcessed, entry.AlertsTriggered, entry.RecordsFailed, entry.ErrorSummary,
		timeToString(entry.StartedAt), timeToString(entry.FinishedAt), entry.DurationMS)
	return err
}

// List returns the most recent sync log entries, newest first.
func (r *SQLiteSyncLogRepository) List(ctx context.Context, limit int) ([]*models.SyncLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, status, locations_processed, assets_processed, readings_processed,
			alerts_triggered, records_failed, error_summary, started_at, finished_at, duration_ms
		FROM sync_logs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []*models.SyncLogEntry
	for rows.Next() {
		var entry models.SyncLogEntry
		var status, startedAt, finishedAt string

		err := rows.Scan(
			&entry.ID,
			&status,
			&entry.LocationsProcessed,
			&entry.AssetsProcessed,
			&entry.ReadingsProcessed,
			&entry.AlertsTriggered,
			&entry.RecordsFailed,
			&entry.ErrorSummary,
			&startedAt,
			&finishedAt,
			&entry.DurationMS,
		)
		if err != nil {
			return nil, err
		}

		entry.Status = models.SyncStatus(status)
		entry.StartedAt = stringToTime(startedAt)
		entry.FinishedAt = stringToTime(finishedAt)
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
