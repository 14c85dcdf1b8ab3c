// Package gasbot handles the Gasbot/AgBot vendor webhook payload: structural
// validation of raw records and transformation into internal upsert inputs.
//
// The vendor pushes one flat JSON object per tank, mixing location, asset and
// device concerns in a single record. Field values are loosely typed: numbers
// may arrive as JSON numbers or numeric strings, booleans as true/"true"/"Yes",
// timestamps as ISO-8601 strings or Unix epochs.
package gasbot

import (
	"fmt"
	"strconv"
	"strings"
)

// Vendor field names, as they appear on the wire. Unknown fields are ignored.
const (
	FieldTenancyName      = "TenancyName"
	FieldLocationGUID     = "LocationGuid"
	FieldLocationID       = "LocationId" // Display name of the site in Gasbot payloads
	FieldLocationAddress  = "LocationAddress"
	FieldLocationLevel    = "LocationLevel"
	FieldLocationLat      = "LocationLat"
	FieldLocationLng      = "LocationLng"
	FieldLocationDisabled = "LocationDisabledStatus"

	FieldAssetGUID             = "AssetGuid"
	FieldAssetSerialNumber     = "AssetSerialNumber"
	FieldAssetCommodity        = "AssetProfileCommodity"
	FieldAssetCapacity         = "AssetProfileWaterCapacity"
	FieldAssetReportedLitres   = "AssetReportedLitres"
	FieldAssetRawFill          = "AssetRawFillLevel"
	FieldAssetCalibratedFill   = "AssetCalibratedFillLevel"
	FieldAssetDailyConsumption = "AssetDailyConsumption"
	FieldAssetDaysRemaining    = "AssetDaysRemaining"

	FieldDeviceGUID           = "DeviceGuid"
	FieldDeviceSerialNumber   = "DeviceSerialNumber"
	FieldDeviceOnline         = "DeviceOnline"
	FieldDeviceBatteryVoltage = "DeviceBatteryVoltage"
	FieldDeviceTemperature    = "DeviceTemperature"
	FieldDeviceState          = "DeviceState"
	FieldDeviceLastTelemetry  = "DeviceLastTelemetryTimestamp"
)

// Record is one raw vendor record as decoded from the webhook body.
type Record map[string]any

// Identifier returns the best available identifier for logging a record:
// the asset GUID, falling back to the serial number, or "" when neither is
// present.
func (r Record) Identifier() string {
	if id := r.stringField(FieldAssetGUID); id != "" {
		return id
	}
	return r.stringField(FieldAssetSerialNumber)
}

// has reports whether the field is present with a non-empty value.
func (r Record) has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// stringField returns the field as a trimmed string, or "" when absent.
func (r Record) stringField(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// floatField returns the field as a float pointer, nil when absent or empty.
// A present but non-numeric value is an error.
func (r Record) floatField(key string) (*float64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case float64:
		return &t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: not a number: %q", key, t)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("%s: not a number: %v", key, v)
	}
}

// boolField returns the field as a bool pointer, nil when absent or empty.
// The vendor sends booleans as true/false, "true"/"false", "Yes"/"No" or 0/1.
func (r Record) boolField(key string) (*bool, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case bool:
		return &t, nil
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if s == "" {
			return nil, nil
		}
		switch s {
		case "true", "yes", "1", "online":
			b := true
			return &b, nil
		case "false", "no", "0", "offline":
			b := false
			return &b, nil
		}
		return nil, fmt.Errorf("%s: not a boolean: %q", key, t)
	case float64:
		b := t != 0
		return &b, nil
	default:
		return nil, fmt.Errorf("%s: not a boolean: %v", key, v)
	}
}
