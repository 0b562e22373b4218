package models

import "time"

// HourlyUsage represents one hour of metered consumption as reported by
// the metering API. Time is the start of the hour as a UTC instant.
type HourlyUsage struct {
	Time time.Time `json:"time"`
	KWh  float64   `json:"kwh"`
}

// SpotPrice represents one hour of day-ahead spot price
type SpotPrice struct {
	Time      time.Time `json:"time_start"`
	DKKPerKWh float64   `json:"dkk_per_kwh"`
}

// HourlySlot is one row of the engine output: the merged view of usage,
// price components, cost, and the charging classification for a single
// canonical local hour.
type HourlySlot struct {
	ID               int       `json:"id,omitempty"`
	Time             time.Time `json:"time"` // start of hour, Europe/Copenhagen
	UsageKWh         float64   `json:"usage_kwh"`
	SpotPrice        float64   `json:"spot_price"`
	TariffPrice      float64   `json:"tariff_price"`
	TaxPrice         float64   `json:"tax_price"`
	TotalPricePerKWh float64   `json:"total_price_per_kwh"`
	TotalCost        float64   `json:"total_cost"`
	Charging         bool      `json:"charging"`
	VehicleKWh       float64   `json:"vehicle_kwh"`
	HouseholdKWh     float64   `json:"household_kwh"`
}
