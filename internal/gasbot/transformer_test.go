package gasbot

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestTransform_FillPercentFromCapacity(t *testing.T) {
	rec := Record{
		FieldAssetGUID:           "asset-1",
		FieldAssetReportedLitres: 6750.0,
		FieldAssetCapacity:       10000.0,
		FieldDeviceOnline:        true,
	}

	out, err := Transform(rec, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Asset.CurrentLevelPercent == nil || *out.Asset.CurrentLevelPercent != 67.5 {
		t.Errorf("CurrentLevelPercent = %v, want 67.5", out.Asset.CurrentLevelPercent)
	}
	if out.Asset.UllageLitres == nil || *out.Asset.UllageLitres != 3250 {
		t.Errorf("UllageLitres = %v, want 3250", out.Asset.UllageLitres)
	}
	if !out.Asset.Online {
		t.Error("expected Online true")
	}
}

func TestTransform_CalibratedFillPreferred(t *testing.T) {
	rec := Record{
		FieldAssetGUID:           "asset-2",
		FieldAssetReportedLitres: 5000.0,
		FieldAssetCapacity:       10000.0,
		FieldAssetCalibratedFill: 48.2,
		FieldDeviceOnline:        true,
	}

	out, err := Transform(rec, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Asset.CurrentLevelPercent == nil || *out.Asset.CurrentLevelPercent != 48.2 {
		t.Errorf("CurrentLevelPercent = %v, want calibrated 48.2", out.Asset.CurrentLevelPercent)
	}
}

func TestTransform_ZeroCapacityNoDivision(t *testing.T) {
	for _, capacity := range []any{0.0, -5.0} {
		rec := Record{
			FieldAssetGUID:           "asset-3",
			FieldAssetReportedLitres: 500.0,
			FieldAssetCapacity:       capacity,
			FieldDeviceOnline:        true,
		}
		out, err := Transform(rec, testNow)
		if err != nil {
			t.Fatalf("capacity=%v: unexpected error: %v", capacity, err)
		}
		if out.Asset.CurrentLevelPercent != nil {
			t.Errorf("capacity=%v: CurrentLevelPercent = %v, want nil", capacity, out.Asset.CurrentLevelPercent)
		}
	}
}

func TestTransform_UllageClampedAtZero(t *testing.T) {
	// Calibration drift can report more litres than nominal capacity.
	rec := Record{
		FieldAssetGUID:           "asset-4",
		FieldAssetReportedLitres: 10100.0,
		FieldAssetCapacity:       10000.0,
		FieldDeviceOnline:        true,
	}
	out, err := Transform(rec, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Asset.UllageLitres == nil || *out.Asset.UllageLitres != 0 {
		t.Errorf("UllageLitres = %v, want clamped 0", out.Asset.UllageLitres)
	}
}

func TestTransform_GUIDFallsBackToSerial(t *testing.T) {
	rec := Record{
		FieldAssetSerialNumber:   "TANK-042",
		FieldAssetReportedLitres: 900.0,
		FieldDeviceOnline:        true,
	}
	out, err := Transform(rec, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Asset.ExternalGUID != "TANK-042" {
		t.Errorf("ExternalGUID = %q, want serial fallback TANK-042", out.Asset.ExternalGUID)
	}
}

func TestTransform_Timestamps(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Time
	}{
		{
			name:  "rfc3339 with zone",
			value: "2025-06-01T12:30:00+08:00",
			want:  time.Date(2025, 6, 1, 4, 30, 0, 0, time.UTC),
		},
		{
			name:  "zone-less local time resolves at UTC+8",
			value: "2025-06-01T12:30:00",
			want:  time.Date(2025, 6, 1, 4, 30, 0, 0, time.UTC),
		},
		{
			name:  "unix seconds",
			value: 1748752200.0,
			want:  time.Unix(1748752200, 0).UTC(),
		},
		{
			name:  "unix milliseconds",
			value: 1748752200000.0,
			want:  time.Unix(1748752200, 0).UTC(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{
				FieldAssetGUID:           "asset-ts",
				FieldAssetReportedLitres: 100.0,
				FieldDeviceOnline:        true,
				FieldDeviceLastTelemetry: tt.value,
			}
			out, err := Transform(rec, testNow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Asset.LastTelemetryAt == nil || !out.Asset.LastTelemetryAt.Equal(tt.want) {
				t.Errorf("LastTelemetryAt = %v, want %v", out.Asset.LastTelemetryAt, tt.want)
			}
			if !out.Reading.ReadingAt.Equal(tt.want) {
				t.Errorf("ReadingAt = %v, want %v", out.Reading.ReadingAt, tt.want)
			}
		})
	}
}

func TestTransform_MissingTimestampUsesNow(t *testing.T) {
	rec := Record{
		FieldAssetGUID:           "asset-now",
		FieldAssetReportedLitres: 100.0,
		FieldDeviceOnline:        true,
	}
	out, err := Transform(rec, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Asset.LastTelemetryAt != nil {
		t.Errorf("LastTelemetryAt = %v, want nil", out.Asset.LastTelemetryAt)
	}
	if !out.Reading.ReadingAt.Equal(testNow) {
		t.Errorf("ReadingAt = %v, want now (%v)", out.Reading.ReadingAt, testNow)
	}
}

func TestTransform_UnparseableTimestamp(t *testing.T) {
	rec := Record{
		FieldAssetGUID:           "asset-bad-ts",
		FieldAssetReportedLitres: 100.0,
		FieldDeviceOnline:        true,
		FieldDeviceLastTelemetry: "yesterday-ish",
	}
	_, err := Transform(rec, testNow)
	if err == nil {
		t.Fatal("expected error for unparseable timestamp")
	}
	var terr *TransformError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TransformError, got %T", err)
	}
	if terr.Field != FieldDeviceLastTelemetry {
		t.Errorf("Field = %q, want %q", terr.Field, FieldDeviceLastTelemetry)
	}
}

func TestTransform_LocationBlock(t *testing.T) {
	rec := Record{
		FieldTenancyName:         "Acme Farms",
		FieldLocationGUID:        "loc-1",
		FieldLocationID:          "North Depot",
		FieldLocationAddress:     "1 Harvest Rd",
		FieldLocationLat:         -31.95,
		FieldLocationLng:         115.86,
		FieldAssetGUID:           "asset-loc",
		FieldAssetReportedLitres: 6750.0,
		FieldAssetCapacity:       10000.0,
		FieldDeviceOnline:        true,
	}
	out, err := Transform(rec, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Location == nil {
		t.Fatal("expected location block")
	}
	if out.Location.ExternalGUID != "loc-1" {
		t.Errorf("ExternalGUID = %q, want loc-1", out.Location.ExternalGUID)
	}
	if out.Location.Name != "North Depot" {
		t.Errorf("Name = %q, want North Depot", out.Location.Name)
	}
	if out.Location.CustomerName != "Acme Farms" {
		t.Errorf("CustomerName = %q, want Acme Farms", out.Location.CustomerName)
	}
	// Without an explicit LocationLevel the asset fill stands in for the
	// site aggregate.
	if out.Location.CurrentLevelPercent == nil || *out.Location.CurrentLevelPercent != 67.5 {
		t.Errorf("CurrentLevelPercent = %v, want 67.5", out.Location.CurrentLevelPercent)
	}
}

func TestTransform_NoLocationBlock(t *testing.T) {
	rec := Record{
		FieldAssetGUID:           "asset-noloc",
		FieldAssetReportedLitres: 100.0,
		FieldDeviceOnline:        true,
	}
	out, err := Transform(rec, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Location != nil {
		t.Errorf("expected nil location, got %+v", out.Location)
	}
}

func TestTransform_StringNumbersAndBools(t *testing.T) {
	rec := Record{
		FieldAssetGUID:            "asset-str",
		FieldAssetReportedLitres:  "6750",
		FieldAssetCapacity:        "10000",
		FieldDeviceOnline:         "Yes",
		FieldDeviceBatteryVoltage: "3.65",
	}
	out, err := Transform(rec, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Asset.CurrentLevelLitres == nil || *out.Asset.CurrentLevelLitres != 6750 {
		t.Errorf("CurrentLevelLitres = %v, want 6750", out.Asset.CurrentLevelLitres)
	}
	if !out.Asset.Online {
		t.Error("expected Online true from \"Yes\"")
	}
	if out.Asset.BatteryVoltage == nil || *out.Asset.BatteryVoltage != 3.65 {
		t.Errorf("BatteryVoltage = %v, want 3.65", out.Asset.BatteryVoltage)
	}
}

func TestRecordIdentifier(t *testing.T) {
	if got := (Record{FieldAssetGUID: "g-1", FieldAssetSerialNumber: "s-1"}).Identifier(); got != "g-1" {
		t.Errorf("Identifier = %q, want g-1", got)
	}
	if got := (Record{FieldAssetSerialNumber: "s-1"}).Identifier(); got != "s-1" {
		t.Errorf("Identifier = %q, want s-1", got)
	}
	if got := (Record{}).Identifier(); got != "" {
		t.Errorf("Identifier = %q, want empty", got)
	}
}
