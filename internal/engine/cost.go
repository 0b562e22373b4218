package engine

import "github.com/mhandberg/elcost/pkg/models"

// AttributeCosts fills in the per-hour price sum and cost for every slot.
// Missing components are already zero, never null, so an unpriced hour
// yields an under-priced row rather than a hole in the table.
func AttributeCosts(slots []models.HourlySlot) {
	for i := range slots {
		s := &slots[i]
		s.TotalPricePerKWh = s.SpotPrice + s.TariffPrice + s.TaxPrice
		s.TotalCost = s.UsageKWh * s.TotalPricePerKWh
	}
}
