package repository

import (
	"context"
	"testing"
	"time"

	"github.com/tankwatch/tankwatch-api/internal/models"
)

func TestLocationRepository_UpsertCreates(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 4, 30, 0, 0, time.UTC)
	loc := &models.Location{
		ExternalGUID:        "loc-guid-1",
		Name:                "North Depot",
		Address:             "1 Harvest Rd",
		CustomerName:        "Acme Farms",
		Latitude:            floatPtr(-31.95),
		Longitude:           floatPtr(115.86),
		CurrentLevelPercent: floatPtr(64.2),
		LastTelemetryAt:     &ts,
	}

	if err := repos.Location.Upsert(ctx, loc); err != nil {
		t.Fatalf("failed to upsert location: %v", err)
	}
	if loc.ID == "" {
		t.Fatal("expected ID to be generated")
	}

	fetched, err := repos.Location.GetByExternalGUID(ctx, "loc-guid-1")
	if err != nil {
		t.Fatalf("failed to fetch location: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected location, got nil")
	}
	if fetched.Name != "North Depot" {
		t.Errorf("Name = %q, want %q", fetched.Name, "North Depot")
	}
	if fetched.Latitude == nil || *fetched.Latitude != -31.95 {
		t.Errorf("Latitude = %v, want -31.95", fetched.Latitude)
	}
	if fetched.LastTelemetryAt == nil || !fetched.LastTelemetryAt.Equal(ts) {
		t.Errorf("LastTelemetryAt = %v, want %v", fetched.LastTelemetryAt, ts)
	}
}

func TestLocationRepository_UpsertIsIdempotent(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	first := &models.Location{
		ExternalGUID: "loc-guid-2",
		Name:         "Old Name",
		CustomerName: "Acme Farms",
		Latitude:     floatPtr(-30.0),
	}
	if err := repos.Location.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	// Same GUID again: all mutable fields overwritten, including pointers
	// going back to NULL. The row keeps its identity.
	second := &models.Location{
		ExternalGUID:        "loc-guid-2",
		Name:                "New Name",
		CurrentLevelPercent: floatPtr(41.0),
	}
	if err := repos.Location.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("ID changed on upsert: %q != %q", second.ID, first.ID)
	}

	locations, err := repos.Location.List(ctx)
	if err != nil {
		t.Fatalf("failed to list locations: %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locations))
	}
	got := locations[0]
	if got.Name != "New Name" {
		t.Errorf("Name = %q, want %q", got.Name, "New Name")
	}
	if got.CustomerName != "" {
		t.Errorf("CustomerName = %q, want overwritten to empty", got.CustomerName)
	}
	if got.Latitude != nil {
		t.Errorf("Latitude = %v, want overwritten to nil", got.Latitude)
	}
	if got.CurrentLevelPercent == nil || *got.CurrentLevelPercent != 41.0 {
		t.Errorf("CurrentLevelPercent = %v, want 41.0", got.CurrentLevelPercent)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on upsert: %v != %v", got.CreatedAt, first.CreatedAt)
	}
}

func TestLocationRepository_GetMissing(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	loc, err := repos.Location.GetByExternalGUID(ctx, "no-such-guid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != nil {
		t.Errorf("expected nil for missing location, got %+v", loc)
	}
}
