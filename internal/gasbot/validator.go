package gasbot

// numericFields are optional enrichment fields that must parse as numbers
// when present.
var numericFields = []string{
	FieldLocationLevel,
	FieldLocationLat,
	FieldLocationLng,
	FieldAssetCapacity,
	FieldAssetReportedLitres,
	FieldAssetRawFill,
	FieldAssetCalibratedFill,
	FieldAssetDailyConsumption,
	FieldAssetDaysRemaining,
	FieldDeviceBatteryVoltage,
	FieldDeviceTemperature,
}

// Validate checks the structural shape of one raw vendor record. It is pure
// and collects every problem rather than failing fast.
//
// A record without any location fields is still accepted (some vendor payload
// shapes deliver location data independently), but a record without asset
// identity cannot be upserted and is rejected outright.
func Validate(rec Record) error {
	var fields []FieldError

	// Asset identity: serial number and GUID both missing is fatal.
	if !rec.has(FieldAssetGUID) && !rec.has(FieldAssetSerialNumber) {
		fields = append(fields, FieldError{
			Field:  FieldAssetGUID,
			Reason: "asset identity missing (neither AssetGuid nor AssetSerialNumber present)",
		})
	}

	// Current level: at least one of reported litres / calibrated fill.
	if !rec.has(FieldAssetReportedLitres) && !rec.has(FieldAssetCalibratedFill) {
		fields = append(fields, FieldError{
			Field:  FieldAssetReportedLitres,
			Reason: "level missing (neither AssetReportedLitres nor AssetCalibratedFillLevel present)",
		})
	}

	// Device online state is part of the minimal contract.
	if !rec.has(FieldDeviceOnline) {
		fields = append(fields, FieldError{Field: FieldDeviceOnline, Reason: "required field missing"})
	} else if _, err := rec.boolField(FieldDeviceOnline); err != nil {
		fields = append(fields, FieldError{Field: FieldDeviceOnline, Reason: "not a boolean"})
	}

	for _, key := range numericFields {
		if _, err := rec.floatField(key); err != nil {
			fields = append(fields, FieldError{Field: key, Reason: "not a number"})
		}
	}

	// Location block is optional as a whole, but a present GUID must be a
	// string-shaped identifier, not a number or object.
	if v, ok := rec[FieldLocationGUID]; ok && v != nil {
		if _, isStr := v.(string); !isStr {
			fields = append(fields, FieldError{Field: FieldLocationGUID, Reason: "not a string"})
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
