package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/tankwatch/tankwatch-api/internal/gasbot"
	"github.com/tankwatch/tankwatch-api/internal/models"
	"github.com/tankwatch/tankwatch-api/internal/service"
)

// GasbotWebhookHandler receives telemetry pushes from the Gasbot platform.
// Authentication is enforced by the route middleware before this handler
// runs; a rejected request never reaches the service and leaves no sync log.
type GasbotWebhookHandler struct {
	ingest       *service.IngestService
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewGasbotWebhookHandler creates a new Gasbot webhook handler.
func NewGasbotWebhookHandler(ingest *service.IngestService, maxBodyBytes int64, logger *slog.Logger) *GasbotWebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GasbotWebhookHandler{
		ingest:       ingest,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// webhookResponse is the aggregate result returned to the vendor.
type webhookResponse struct {
	Success    bool  `json:"success"`
	Processed  int   `json:"processed"`
	Failed     int   `json:"failed"`
	DurationMS int64 `json:"duration_ms"`
}

// HandleWebhook processes one webhook invocation. The body may be a single
// record object or an array of records; anything else is a 400 with no
// processing and no sync log row.
func (h *GasbotWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Warn("failed to read webhook body", "error", err)
		writeJSONError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	records, err := decodeRecords(payload)
	if err != nil {
		h.logger.Warn("malformed webhook payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "body must be a JSON object or array of objects")
		return
	}

	result := h.ingest.ProcessBatch(r.Context(), records)

	resp := webhookResponse{
		Success:    result.Status != models.SyncStatusError,
		Processed:  result.Processed,
		Failed:     result.Failed,
		DurationMS: result.Duration.Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// decodeRecords parses the body into records, accepting both the
// single-object and array payload shapes the vendor sends.
func decodeRecords(payload []byte) ([]gasbot.Record, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, io.ErrUnexpectedEOF
	}

	if trimmed[0] == '[' {
		var records []gasbot.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var record gasbot.Record
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, err
	}
	return []gasbot.Record{record}, nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
