package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mhandberg/elcost/internal/timeline"
	"github.com/mhandberg/elcost/pkg/models"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hourly_slots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hour TEXT NOT NULL UNIQUE,
		usage_kwh REAL NOT NULL,
		spot_price REAL NOT NULL,
		tariff_price REAL NOT NULL,
		tax_price REAL NOT NULL,
		total_price REAL NOT NULL,
		total_cost REAL NOT NULL,
		charging INTEGER NOT NULL DEFAULT 0,
		vehicle_kwh REAL NOT NULL,
		household_kwh REAL NOT NULL,
		created_at TEXT NOT NULL,
		published INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_slots_hour ON hourly_slots(hour);
	CREATE INDEX IF NOT EXISTS idx_slots_published ON hourly_slots(published);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// UpsertSlot inserts or replaces the slot for its hour. Results are
// regenerated in full per request, so a re-run overwrites stale rows
// instead of being ignored.
func (db *DB) UpsertSlot(slot *models.HourlySlot) error {
	query := `
	INSERT INTO hourly_slots (hour, usage_kwh, spot_price, tariff_price, tax_price, total_price, total_cost, charging, vehicle_kwh, household_kwh, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(hour) DO UPDATE SET
		usage_kwh = excluded.usage_kwh,
		spot_price = excluded.spot_price,
		tariff_price = excluded.tariff_price,
		tax_price = excluded.tax_price,
		total_price = excluded.total_price,
		total_cost = excluded.total_cost,
		charging = excluded.charging,
		vehicle_kwh = excluded.vehicle_kwh,
		household_kwh = excluded.household_kwh
	`

	charging := 0
	if slot.Charging {
		charging = 1
	}
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err := db.conn.Exec(query,
		slot.Time.Format(time.RFC3339), slot.UsageKWh,
		slot.SpotPrice, slot.TariffPrice, slot.TaxPrice,
		slot.TotalPricePerKWh, slot.TotalCost,
		charging, slot.VehicleKWh, slot.HouseholdKWh, createdAt)
	if err != nil {
		return fmt.Errorf("inserting hourly slot: %w", err)
	}

	return nil
}

const slotColumns = `id, hour, usage_kwh, spot_price, tariff_price, tax_price, total_price, total_cost, charging, vehicle_kwh, household_kwh`

func scanSlot(rows *sql.Rows) (models.HourlySlot, error) {
	var slot models.HourlySlot
	var hourStr string
	var charging int

	err := rows.Scan(&slot.ID, &hourStr, &slot.UsageKWh,
		&slot.SpotPrice, &slot.TariffPrice, &slot.TaxPrice,
		&slot.TotalPricePerKWh, &slot.TotalCost,
		&charging, &slot.VehicleKWh, &slot.HouseholdKWh)
	if err != nil {
		return slot, fmt.Errorf("scanning row: %w", err)
	}

	hour, err := time.Parse(time.RFC3339, hourStr)
	if err != nil {
		return slot, fmt.Errorf("parsing hour: %w", err)
	}
	slot.Time = hour.In(timeline.Zone())
	slot.Charging = charging == 1

	return slot, nil
}

// ListSlots retrieves all stored slots ordered by hour ascending
func (db *DB) ListSlots() ([]models.HourlySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM hourly_slots ORDER BY hour ASC`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying hourly slots: %w", err)
	}
	defer rows.Close()

	var results []models.HourlySlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, slot)
	}

	return results, rows.Err()
}

// ListUnpublishedSlots retrieves stored slots not yet published, ordered by
// hour ascending
func (db *DB) ListUnpublishedSlots() ([]models.HourlySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM hourly_slots WHERE published = 0 ORDER BY hour ASC`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying unpublished slots: %w", err)
	}
	defer rows.Close()

	var results []models.HourlySlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, slot)
	}

	return results, rows.Err()
}

// MarkPublished marks a slot as published
func (db *DB) MarkPublished(id int) error {
	query := `UPDATE hourly_slots SET published = 1 WHERE id = ?`
	_, err := db.conn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("marking slot as published: %w", err)
	}
	return nil
}
