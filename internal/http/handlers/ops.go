package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tankwatch/tankwatch-api/internal/models"
	"github.com/tankwatch/tankwatch-api/internal/repository"
)

// OpsHandler serves the read-only operational API: current fleet state,
// reading history and the ingestion audit trail.
type OpsHandler struct {
	repos *repository.Repositories
}

// NewOpsHandler creates a new ops handler.
func NewOpsHandler(repos *repository.Repositories) *OpsHandler {
	return &OpsHandler{repos: repos}
}

// ListLocationsOutput is the locations listing response.
type ListLocationsOutput struct {
	Body struct {
		Locations []*models.Location `json:"locations"`
	}
}

// ListLocations returns all known locations with their latest aggregates.
func (h *OpsHandler) ListLocations(ctx context.Context, input *struct{}) (*ListLocationsOutput, error) {
	locations, err := h.repos.Location.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list locations")
	}
	out := &ListLocationsOutput{}
	out.Body.Locations = locations
	return out, nil
}

// GetAssetInput identifies one asset.
type GetAssetInput struct {
	ID string `path:"id" doc:"Asset ID"`
}

// GetAssetOutput is the single-asset response.
type GetAssetOutput struct {
	Body struct {
		Asset *models.Asset `json:"asset"`
	}
}

// GetAsset returns the current snapshot of one asset.
func (h *OpsHandler) GetAsset(ctx context.Context, input *GetAssetInput) (*GetAssetOutput, error) {
	asset, err := h.repos.Asset.GetByID(ctx, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load asset")
	}
	if asset == nil {
		return nil, huma.Error404NotFound("asset not found")
	}
	out := &GetAssetOutput{}
	out.Body.Asset = asset
	return out, nil
}

// ListReadingsInput identifies an asset and bounds the history returned.
type ListReadingsInput struct {
	ID    string `path:"id" doc:"Asset ID"`
	Limit int    `query:"limit" default:"100" minimum:"1" maximum:"1000" doc:"Maximum readings to return"`
}

// ListReadingsOutput is the reading-history response, newest first.
type ListReadingsOutput struct {
	Body struct {
		Readings []*models.Reading `json:"readings"`
	}
}

// ListReadings returns the reading history for one asset.
func (h *OpsHandler) ListReadings(ctx context.Context, input *ListReadingsInput) (*ListReadingsOutput, error) {
	asset, err := h.repos.Asset.GetByID(ctx, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load asset")
	}
	if asset == nil {
		return nil, huma.Error404NotFound("asset not found")
	}

	readings, err := h.repos.Reading.ListByAssetID(ctx, input.ID, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list readings")
	}
	out := &ListReadingsOutput{}
	out.Body.Readings = readings
	return out, nil
}

// ListAlertsInput filters the alerts listing.
type ListAlertsInput struct {
	AssetID string `query:"asset_id" doc:"Filter to one asset"`
	Active  bool   `query:"active" default:"true" doc:"Only open alerts"`
}

// ListAlertsOutput is the alerts listing response.
type ListAlertsOutput struct {
	Body struct {
		Alerts []*models.Alert `json:"alerts"`
	}
}

// ListAlerts returns alerts, by default only the open ones.
func (h *OpsHandler) ListAlerts(ctx context.Context, input *ListAlertsInput) (*ListAlertsOutput, error) {
	var (
		alerts []*models.Alert
		err    error
	)
	switch {
	case input.AssetID != "":
		alerts, err = h.repos.Alert.ListByAssetID(ctx, input.AssetID)
		if err == nil && input.Active {
			open := alerts[:0]
			for _, a := range alerts {
				if a.Active {
					open = append(open, a)
				}
			}
			alerts = open
		}
	default:
		alerts, err = h.repos.Alert.ListActive(ctx)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list alerts")
	}
	out := &ListAlertsOutput{}
	out.Body.Alerts = alerts
	return out, nil
}

// ListSyncLogsInput bounds the audit trail listing.
type ListSyncLogsInput struct {
	Limit int `query:"limit" default:"50" minimum:"1" maximum:"500" doc:"Maximum entries to return"`
}

// ListSyncLogsOutput is the audit trail response, newest first.
type ListSyncLogsOutput struct {
	Body struct {
		SyncLogs []*models.SyncLogEntry `json:"sync_logs"`
	}
}

// ListSyncLogs returns the most recent webhook invocation audit rows.
func (h *OpsHandler) ListSyncLogs(ctx context.Context, input *ListSyncLogsInput) (*ListSyncLogsOutput, error) {
	entries, err := h.repos.SyncLog.List(ctx, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list sync logs")
	}
	out := &ListSyncLogsOutput{}
	out.Body.SyncLogs = entries
	return out, nil
}
