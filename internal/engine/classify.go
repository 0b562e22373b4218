package engine

import "github.com/mhandberg/elcost/pkg/models"

// ClassifyCharging splits each hour's usage between car and household using
// the threshold heuristic: an hour at or above threshold kWh is a charging
// hour, and the car is assumed to take everything up to maxRate. Hours are
// independent; there is no hysteresis and no disaggregation beyond this.
// Accuracy depends on the caller picking a threshold above the household's
// normal peak draw.
func ClassifyCharging(slots []models.HourlySlot, threshold, maxRate float64) {
	for i := range slots {
		s := &slots[i]
		s.Charging = s.UsageKWh >= threshold
		if s.Charging {
			s.VehicleKWh = min(s.UsageKWh, maxRate)
		} else {
			s.VehicleKWh = 0
		}
		s.HouseholdKWh = s.UsageKWh - s.VehicleKWh
	}
}
