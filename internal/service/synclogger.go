// Package service contains the business logic that sits between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tankwatch/tankwatch-api/internal/models"
	"github.com/tankwatch/tankwatch-api/internal/repository"
)

// SyncLogger writes one audit row per webhook invocation. Rows are written
// only for invocations that passed authentication and payload parsing;
// rejected requests leave no trace here.
type SyncLogger struct {
	repo   repository.SyncLogRepository
	logger *slog.Logger
}

// NewSyncLogger creates a sync logger.
func NewSyncLogger(repo repository.SyncLogRepository, logger *slog.Logger) *SyncLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncLogger{repo: repo, logger: logger}
}

// SyncHandle marks the start of an invocation. Pass it back to Complete.
type SyncHandle struct {
	startedAt time.Time
}

// Begin starts timing a webhook invocation.
func (l *SyncLogger) Begin() SyncHandle {
	return SyncHandle{startedAt: time.Now().UTC()}
}

// Complete writes the audit row for a finished invocation. A failure to
// write the row is logged but never surfaced: the telemetry itself has
// already been committed and must not be reported as failed.
func (l *SyncLogger) Complete(ctx context.Context, h SyncHandle, result *BatchResult) {
	finished := time.Now().UTC()
	entry := &models.SyncLogEntry{
		Status:             result.Status,
		LocationsProcessed: result.Locations,
		AssetsProcessed:    result.Assets,
		ReadingsProcessed:  result.Readings,
		AlertsTriggered:    result.Alerts,
		RecordsFailed:      result.Failed,
		ErrorSummary:       result.ErrorSummary(),
		StartedAt:          h.startedAt,
		FinishedAt:         finished,
		DurationMS:         finished.Sub(h.startedAt).Milliseconds(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.logger.Error("failed to write sync log entry", "error", err, "status", entry.Status)
	}
}
