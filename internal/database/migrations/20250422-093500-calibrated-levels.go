package migrations

func init() {
	Register(Migration{
		Timestamp:   "20250422-093500",
		Description: "Add raw/calibrated fill level columns to assets",
		Up: []string{
			// Gasbot distinguishes raw sensor fill from their calibrated
			// value; keep both so dashboards can show calibration drift.
			`ALTER TABLE assets ADD COLUMN raw_fill_percent REAL`,
			`ALTER TABLE assets ADD COLUMN calibrated_fill_percent REAL`,
		},
	})
}
