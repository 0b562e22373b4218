package engine

import (
	"sort"
	"time"

	"github.com/mhandberg/elcost/pkg/models"
)

// Result is the engine output: one row per canonical local hour, strictly
// ascending. Consumers that want a sub-range must go through FilterRange,
// which copies, so a shared result is never mutated for re-rendering.
type Result struct {
	Slots []models.HourlySlot
}

// FilterRange returns a copy of the result limited to the inclusive local
// calendar date range
func (r *Result) FilterRange(from, to time.Time) *Result {
	filtered := &Result{}
	for _, slot := range r.Slots {
		y, m, d := slot.Time.Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, slot.Time.Location())
		if date.Before(from) || date.After(to) {
			continue
		}
		filtered.Slots = append(filtered.Slots, slot)
	}
	return filtered
}

// TotalUsageKWh returns the summed consumption over the whole result
func (r *Result) TotalUsageKWh() float64 {
	var total float64
	for _, s := range r.Slots {
		total += s.UsageKWh
	}
	return total
}

// TotalCost returns the summed cost over the whole result
func (r *Result) TotalCost() float64 {
	var total float64
	for _, s := range r.Slots {
		total += s.TotalCost
	}
	return total
}

// TotalVehicleKWh returns the summed car-charging consumption
func (r *Result) TotalVehicleKWh() float64 {
	var total float64
	for _, s := range r.Slots {
		total += s.VehicleKWh
	}
	return total
}

// TotalVehicleCost returns the cost attributed to car charging, priced at
// each hour's all-in per-kWh price
func (r *Result) TotalVehicleCost() float64 {
	var total float64
	for _, s := range r.Slots {
		total += s.VehicleKWh * s.TotalPricePerKWh
	}
	return total
}

// AvgSpotPrice returns the mean spot price across all hours
func (r *Result) AvgSpotPrice() float64 {
	if len(r.Slots) == 0 {
		return 0
	}
	var total float64
	for _, s := range r.Slots {
		total += s.SpotPrice
	}
	return total / float64(len(r.Slots))
}

// AvgTotalPrice returns the mean all-in per-kWh price across all hours
func (r *Result) AvgTotalPrice() float64 {
	if len(r.Slots) == 0 {
		return 0
	}
	var total float64
	for _, s := range r.Slots {
		total += s.TotalPricePerKWh
	}
	return total / float64(len(r.Slots))
}

// DaySummary aggregates one local calendar day of slots
type DaySummary struct {
	Date       time.Time
	UsageKWh   float64
	Cost       float64
	VehicleKWh float64
}

// DailySummaries aggregates the result per local calendar day, ascending
func (r *Result) DailySummaries() []DaySummary {
	byDay := map[time.Time]*DaySummary{}
	for _, s := range r.Slots {
		y, m, d := s.Time.Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, s.Time.Location())
		sum, ok := byDay[date]
		if !ok {
			sum = &DaySummary{Date: date}
			byDay[date] = sum
		}
		sum.UsageKWh += s.UsageKWh
		sum.Cost += s.TotalCost
		sum.VehicleKWh += s.VehicleKWh
	}

	summaries := make([]DaySummary, 0, len(byDay))
	for _, sum := range byDay {
		summaries = append(summaries, *sum)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Date.Before(summaries[j].Date) })
	return summaries
}
