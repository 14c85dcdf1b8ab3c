package migrations

func init() {
	Register(Migration{
		Timestamp:   "20250301-000000",
		Description: "Initial schema: locations, assets, readings, alerts, sync logs",
		Up: []string{
			// Locations - customer sites, upserted by vendor GUID
			`CREATE TABLE IF NOT EXISTS locations (
				id TEXT PRIMARY KEY,
				external_guid TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL DEFAULT '',
				address TEXT NOT NULL DEFAULT '',
				customer_name TEXT NOT NULL DEFAULT '',
				latitude REAL,
				longitude REAL,
				current_level_percent REAL,
				last_telemetry_at TEXT,
				disabled INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_locations_customer ON locations(customer_name)`,

			// Assets - tank/device units, upserted by vendor GUID.
			// location_id is nullable: an asset record can land before its
			// location if the location step failed for that record.
			`CREATE TABLE IF NOT EXISTS assets (
				id TEXT PRIMARY KEY,
				location_id TEXT,
				external_guid TEXT NOT NULL UNIQUE,
				serial_number TEXT NOT NULL DEFAULT '',
				device_serial_number TEXT NOT NULL DEFAULT '',
				device_state TEXT NOT NULL DEFAULT '',
				commodity TEXT NOT NULL DEFAULT '',
				capacity_litres REAL,
				current_level_litres REAL,
				current_level_percent REAL,
				ullage_litres REAL,
				daily_consumption_litres REAL,
				days_remaining REAL,
				online INTEGER NOT NULL DEFAULT 0,
				battery_voltage REAL,
				temperature_c REAL,
				last_telemetry_at TEXT,
				raw_payload TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				FOREIGN KEY (location_id) REFERENCES locations(id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_assets_location_id ON assets(location_id)`,
			`CREATE INDEX IF NOT EXISTS idx_assets_serial ON assets(serial_number)`,

			// Readings - append-only time series. No uniqueness on
			// (asset_id, reading_at): a re-sent webhook may duplicate rows.
			`CREATE TABLE IF NOT EXISTS readings (
				id TEXT PRIMARY KEY,
				asset_id TEXT NOT NULL,
				level_litres REAL,
				level_percent REAL,
				online INTEGER NOT NULL DEFAULT 0,
				battery_voltage REAL,
				temperature_c REAL,
				device_state TEXT NOT NULL DEFAULT '',
				daily_consumption_litres REAL,
				days_remaining REAL,
				reading_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				FOREIGN KEY (asset_id) REFERENCES assets(id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_readings_asset_time ON readings(asset_id, reading_at)`,

			// Alerts - open until resolved, never hard-deleted
			`CREATE TABLE IF NOT EXISTS alerts (
				id TEXT PRIMARY KEY,
				asset_id TEXT NOT NULL,
				type TEXT NOT NULL,
				severity TEXT NOT NULL,
				message TEXT NOT NULL DEFAULT '',
				trigger_value REAL,
				threshold_value REAL,
				active INTEGER NOT NULL DEFAULT 1,
				triggered_at TEXT NOT NULL,
				resolved_at TEXT,
				FOREIGN KEY (asset_id) REFERENCES assets(id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_alerts_asset_type_active ON alerts(asset_id, type, active)`,
			`CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts(active)`,

			// Sync logs - one audit row per webhook invocation
			`CREATE TABLE IF NOT EXISTS sync_logs (
				id TEXT PRIMARY KEY,
				status TEXT NOT NULL,
				locations_processed INTEGER NOT NULL DEFAULT 0,
				assets_processed INTEGER NOT NULL DEFAULT 0,
				readings_processed INTEGER NOT NULL DEFAULT 0,
				alerts_triggered INTEGER NOT NULL DEFAULT 0,
				records_failed INTEGER NOT NULL DEFAULT 0,
				error_summary TEXT NOT NULL DEFAULT '',
				started_at TEXT NOT NULL,
				finished_at TEXT NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sync_logs_started ON sync_logs(started_at)`,
		},
	})
}
