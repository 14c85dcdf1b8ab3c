package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tankwatch/tankwatch-api/internal/alerting"
	"github.com/tankwatch/tankwatch-api/internal/gasbot"
	"github.com/tankwatch/tankwatch-api/internal/logging"
	"github.com/tankwatch/tankwatch-api/internal/models"
	"github.com/tankwatch/tankwatch-api/internal/repository"
)

// maxErrorSummaryLen caps the error_summary column so a large failing batch
// cannot bloat the audit table.
const maxErrorSummaryLen = 2000

// RecordError describes why one record in a batch was rejected. The rest of
// the batch is unaffected.
type RecordError struct {
	Index    int    // Position in the batch, 0-based
	RecordID string // Asset GUID or serial number when one was present
	Stage    string // Pipeline stage that failed
	Err      error
}

func (e RecordError) String() string {
	id := e.RecordID
	if id == "" {
		id = "unknown"
	}
	return fmt.Sprintf("record %d (%s) %s: %v", e.Index, id, e.Stage, e.Err)
}

// BatchResult summarizes one webhook invocation.
type BatchResult struct {
	Status    models.SyncStatus
	Processed int // Records fully committed
	Failed    int // Records rejected at any stage

	Locations int // Location upserts performed
	Assets    int // Asset upserts performed
	Readings  int // Reading rows inserted
	Alerts    int // Alerts created

	Errors   []RecordError
	Duration time.Duration
}

// ErrorSummary joins the per-record errors into a single capped string for
// the audit row.
func (r *BatchResult) ErrorSummary() string {
	if len(r.Errors) == 0 {
		return ""
	}
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.String()
	}
	s := strings.Join(parts, "; ")
	if len(s) > maxErrorSummaryLen {
		s = s[:maxErrorSummaryLen]
	}
	return s
}

// IngestService runs the webhook pipeline: per record, validate, transform,
// upsert location, upsert asset, insert reading, evaluate alerts. A failure
// at any stage rejects that record only; already-committed rows from the
// record stay committed (no batch transaction, matching at-least-once
// delivery from the vendor).
type IngestService struct {
	repos      *repository.Repositories
	engine     *alerting.Engine
	syncLogger *SyncLogger
	logger     *slog.Logger
	now        func() time.Time
}

// NewIngestService creates the ingest pipeline.
func NewIngestService(repos *repository.Repositories, engine *alerting.Engine, syncLogger *SyncLogger, logger *slog.Logger) *IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestService{
		repos:      repos,
		engine:     engine,
		syncLogger: syncLogger,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessBatch ingests one authenticated, parsed webhook payload and writes
// the audit row. Always returns a result, even when every record failed.
func (s *IngestService) ProcessBatch(ctx context.Context, records []gasbot.Record) *BatchResult {
	ctx = logging.WithBatchID(ctx, ulid.Make().String())
	log := logging.FromContext(ctx, s.logger)

	handle := s.syncLogger.Begin()
	start := s.now()

	result := &BatchResult{}
	for i, rec := range records {
		if err := s.processRecord(ctx, i, rec, result); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, *err)
			log.Warn("webhook record rejected",
				"index", err.Index,
				"record_id", err.RecordID,
				"stage", err.Stage,
				"error", err.Err,
			)
			continue
		}
		result.Processed++
	}

	result.Duration = s.now().Sub(start)
	result.Status = batchStatus(result)
	s.syncLogger.Complete(ctx, handle, result)

	log.Info("webhook batch processed",
		"status", result.Status,
		"processed", result.Processed,
		"failed", result.Failed,
		"alerts", result.Alerts,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result
}

// processRecord runs one record through the pipeline, updating counts on the
// shared result as stages commit. Returns nil when the record fully succeeds.
func (s *IngestService) processRecord(ctx context.Context, index int, rec gasbot.Record, result *BatchResult) *RecordError {
	recordID := rec.Identifier()

	if err := gasbot.Validate(rec); err != nil {
		return &RecordError{Index: index, RecordID: recordID, Stage: "validate", Err: err}
	}

	transformed, err := gasbot.Transform(rec, s.now())
	if err != nil {
		return &RecordError{Index: index, RecordID: recordID, Stage: "transform", Err: err}
	}

	// Read the stored asset before overwriting it: the offline rule needs
	// the previous online flag to detect the transition.
	previous, err := s.repos.Asset.GetByExternalGUID(ctx, transformed.Asset.ExternalGUID)
	if err != nil {
		return &RecordError{Index: index, RecordID: recordID, Stage: "asset lookup", Err: err}
	}

	var locationID *string
	if transformed.Location != nil {
		location := locationFromUpsert(transformed.Location)
		if err := s.repos.Location.Upsert(ctx, location); err != nil {
			return &RecordError{Index: index, RecordID: recordID, Stage: "location upsert", Err: err}
		}
		result.Locations++
		locationID = &location.ID
	} else if previous != nil {
		// No location fields in this record: keep the existing link
		// rather than severing it.
		locationID = previous.LocationID
	}

	asset := assetFromUpsert(&transformed.Asset, locationID)
	if err := s.repos.Asset.Upsert(ctx, asset); err != nil {
		return &RecordError{Index: index, RecordID: recordID, Stage: "asset upsert", Err: err}
	}
	result.Assets++

	reading := readingFromInsert(&transformed.Reading, asset.ID)
	if err := s.repos.Reading.Insert(ctx, reading); err != nil {
		return &RecordError{Index: index, RecordID: recordID, Stage: "reading insert", Err: err}
	}
	result.Readings++

	created, err := s.engine.Evaluate(ctx, asset, previous)
	result.Alerts += created
	if err != nil {
		return &RecordError{Index: index, RecordID: recordID, Stage: "alert evaluation", Err: err}
	}

	return nil
}

// batchStatus maps counts to the audit status: success when nothing failed,
// error when nothing succeeded, partial in between. An empty batch counts
// as success.
func batchStatus(r *BatchResult) models.SyncStatus {
	switch {
	case r.Failed == 0:
		return models.SyncStatusSuccess
	case r.Processed == 0:
		return models.SyncStatusError
	default:
		return models.SyncStatusPartial
	}
}

func locationFromUpsert(in *gasbot.LocationUpsert) *models.Location {
	return &models.Location{
		ExternalGUID:        in.ExternalGUID,
		Name:                in.Name,
		Address:             in.Address,
		CustomerName:        in.CustomerName,
		Latitude:            in.Latitude,
		Longitude:           in.Longitude,
		CurrentLevelPercent: in.CurrentLevelPercent,
		LastTelemetryAt:     in.LastTelemetryAt,
		Disabled:            in.Disabled,
	}
}

func assetFromUpsert(in *gasbot.AssetUpsert, locationID *string) *models.Asset {
	return &models.Asset{
		LocationID:             locationID,
		ExternalGUID:           in.ExternalGUID,
		SerialNumber:           in.SerialNumber,
		DeviceSerialNumber:     in.DeviceSerialNumber,
		DeviceState:            in.DeviceState,
		Commodity:              in.Commodity,
		CapacityLitres:         in.CapacityLitres,
		CurrentLevelLitres:     in.CurrentLevelLitres,
		CurrentLevelPercent:    in.CurrentLevelPercent,
		RawFillPercent:         in.RawFillPercent,
		CalibratedFillPercent:  in.CalibratedFillPercent,
		UllageLitres:           in.UllageLitres,
		DailyConsumptionLitres: in.DailyConsumptionLitres,
		DaysRemaining:          in.DaysRemaining,
		Online:                 in.Online,
		BatteryVoltage:         in.BatteryVoltage,
		TemperatureC:           in.TemperatureC,
		LastTelemetryAt:        in.LastTelemetryAt,
		RawPayload:             in.RawPayload,
	}
}

func readingFromInsert(in *gasbot.ReadingInsert, assetID string) *models.Reading {
	return &models.Reading{
		AssetID:                assetID,
		LevelLitres:            in.LevelLitres,
		LevelPercent:           in.LevelPercent,
		Online:                 in.Online,
		BatteryVoltage:         in.BatteryVoltage,
		TemperatureC:           in.TemperatureC,
		DeviceState:            in.DeviceState,
		DailyConsumptionLitres: in.DailyConsumptionLitres,
		DaysRemaining:          in.DaysRemaining,
		ReadingAt:              in.ReadingAt,
	}
}
