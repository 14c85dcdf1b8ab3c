package gasbot

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// vendorZone is the vendor's operating timezone. Gasbot reports local times
// from UTC+8 with no daylight saving, so zone-less timestamps resolve with a
// fixed offset rather than a calendar-aware timezone database.
var vendorZone = time.FixedZone("UTC+8", 8*60*60)

// LocationUpsert is the normalized input for a location upsert.
type LocationUpsert struct {
	ExternalGUID        string
	Name                string
	Address             string
	CustomerName        string
	Latitude            *float64
	Longitude           *float64
	CurrentLevelPercent *float64
	LastTelemetryAt     *time.Time
	Disabled            bool
}

// AssetUpsert is the normalized input for an asset upsert. The payload is an
// authoritative full snapshot: every field overwrites the stored value.
type AssetUpsert struct {
	ExternalGUID       string
	SerialNumber       string
	DeviceSerialNumber string
	DeviceState        string
	Commodity          string

	CapacityLitres         *float64
	CurrentLevelLitres     *float64
	CurrentLevelPercent    *float64
	RawFillPercent         *float64
	CalibratedFillPercent  *float64
	UllageLitres           *float64
	DailyConsumptionLitres *float64
	DaysRemaining          *float64

	Online          bool
	BatteryVoltage  *float64
	TemperatureC    *float64
	LastTelemetryAt *time.Time

	RawPayload string
}

// ReadingInsert is the normalized input for an append-only reading row.
type ReadingInsert struct {
	LevelLitres            *float64
	LevelPercent           *float64
	Online                 bool
	BatteryVoltage         *float64
	TemperatureC           *float64
	DeviceState            string
	DailyConsumptionLitres *float64
	DaysRemaining          *float64
	ReadingAt              time.Time
}

// Transformed is the result of mapping one validated vendor record into the
// three internal shapes consumed by the repositories.
type Transformed struct {
	Location *LocationUpsert // nil when the record carries no location fields
	Asset    AssetUpsert
	Reading  ReadingInsert
}

// Transform maps a validated vendor record into internal upsert/insert inputs.
// Pure: no I/O. now is used as the reading timestamp when the vendor omits one.
// Returns *TransformError for values that pass shape validation but cannot be
// normalized (currently: timestamps).
func Transform(rec Record, now time.Time) (*Transformed, error) {
	// Validated upstream, so these cannot fail here.
	capacity, _ := rec.floatField(FieldAssetCapacity)
	litres, _ := rec.floatField(FieldAssetReportedLitres)
	rawFill, _ := rec.floatField(FieldAssetRawFill)
	calibratedFill, _ := rec.floatField(FieldAssetCalibratedFill)
	consumption, _ := rec.floatField(FieldAssetDailyConsumption)
	daysRemaining, _ := rec.floatField(FieldAssetDaysRemaining)
	battery, _ := rec.floatField(FieldDeviceBatteryVoltage)
	temperature, _ := rec.floatField(FieldDeviceTemperature)
	online, _ := rec.boolField(FieldDeviceOnline)

	telemetryAt, err := parseTimestamp(rec[FieldDeviceLastTelemetry])
	if err != nil {
		return nil, &TransformError{Field: FieldDeviceLastTelemetry, Err: err}
	}

	fillPercent := calibratedFill
	if fillPercent == nil {
		fillPercent = fillFromCapacity(litres, capacity)
	}

	raw, _ := json.Marshal(rec)

	// Some payload variants omit the asset GUID; the serial number is the
	// stable external identifier in that case.
	assetGUID := rec.stringField(FieldAssetGUID)
	if assetGUID == "" {
		assetGUID = rec.stringField(FieldAssetSerialNumber)
	}

	asset := AssetUpsert{
		ExternalGUID:           assetGUID,
		SerialNumber:           rec.stringField(FieldAssetSerialNumber),
		DeviceSerialNumber:     rec.stringField(FieldDeviceSerialNumber),
		DeviceState:            rec.stringField(FieldDeviceState),
		Commodity:              rec.stringField(FieldAssetCommodity),
		CapacityLitres:         capacity,
		CurrentLevelLitres:     litres,
		CurrentLevelPercent:    fillPercent,
		RawFillPercent:         rawFill,
		CalibratedFillPercent:  calibratedFill,
		UllageLitres:           ullage(litres, capacity),
		DailyConsumptionLitres: consumption,
		DaysRemaining:          daysRemaining,
		Online:                 online != nil && *online,
		BatteryVoltage:         battery,
		TemperatureC:           temperature,
		LastTelemetryAt:        telemetryAt,
		RawPayload:             string(raw),
	}

	readingAt := now.UTC()
	if telemetryAt != nil {
		readingAt = *telemetryAt
	}
	reading := ReadingInsert{
		LevelLitres:            litres,
		LevelPercent:           fillPercent,
		Online:                 asset.Online,
		BatteryVoltage:         battery,
		TemperatureC:           temperature,
		DeviceState:            asset.DeviceState,
		DailyConsumptionLitres: consumption,
		DaysRemaining:          daysRemaining,
		ReadingAt:              readingAt,
	}

	out := &Transformed{Asset: asset, Reading: reading}

	if rec.has(FieldLocationGUID) {
		locLevel, _ := rec.floatField(FieldLocationLevel)
		lat, _ := rec.floatField(FieldLocationLat)
		lng, _ := rec.floatField(FieldLocationLng)
		disabled, _ := rec.boolField(FieldLocationDisabled)
		if locLevel == nil {
			locLevel = fillPercent
		}
		out.Location = &LocationUpsert{
			ExternalGUID:        rec.stringField(FieldLocationGUID),
			Name:                rec.stringField(FieldLocationID),
			Address:             rec.stringField(FieldLocationAddress),
			CustomerName:        rec.stringField(FieldTenancyName),
			Latitude:            lat,
			Longitude:           lng,
			CurrentLevelPercent: locLevel,
			LastTelemetryAt:     telemetryAt,
			Disabled:            disabled != nil && *disabled,
		}
	}

	return out, nil
}

// fillFromCapacity computes the fill percentage from an absolute level.
// A missing or non-positive capacity yields nil, never a division by zero.
func fillFromCapacity(litres, capacity *float64) *float64 {
	if litres == nil || capacity == nil || *capacity <= 0 {
		return nil
	}
	pct := *litres / *capacity * 100
	return &pct
}

// ullage is the remaining capacity, clamped to >= 0 (calibration drift can
// report levels above nominal capacity).
func ullage(litres, capacity *float64) *float64 {
	if litres == nil || capacity == nil {
		return nil
	}
	u := *capacity - *litres
	if u < 0 {
		u = 0
	}
	return &u
}

// timestampLayouts are the zone-less shapes the vendor has been observed to
// send; they are interpreted in vendorZone.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
}

// parseTimestamp normalizes a vendor timestamp to UTC. Accepts RFC3339
// strings, zone-less local strings (resolved at the vendor's fixed UTC+8
// offset) and Unix epochs in seconds or milliseconds. nil input yields nil.
func parseTimestamp(v any) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case float64:
		return epochToUTC(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			u := ts.UTC()
			return &u, nil
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.ParseInLocation(layout, s, vendorZone); err == nil {
				u := ts.UTC()
				return &u, nil
			}
		}
		if epoch, err := strconv.ParseFloat(s, 64); err == nil {
			return epochToUTC(epoch), nil
		}
		return nil, fmt.Errorf("unparseable timestamp %q", s)
	default:
		return nil, fmt.Errorf("unparseable timestamp %v", v)
	}
}

// epochToUTC converts a Unix epoch to UTC, treating values past the year
// 33658 (in seconds) as milliseconds.
func epochToUTC(epoch float64) *time.Time {
	var ts time.Time
	if epoch > 1e12 {
		ts = time.UnixMilli(int64(epoch))
	} else {
		ts = time.Unix(int64(epoch), 0)
	}
	u := ts.UTC()
	return &u
}
