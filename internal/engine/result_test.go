package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhandberg/elcost/internal/timeline"
	"github.com/mhandberg/elcost/pkg/models"
)

func TestResultTotals(t *testing.T) {
	result := &Result{Slots: []models.HourlySlot{
		{UsageKWh: 10, TotalPricePerKWh: 1.3, TotalCost: 13.0, SpotPrice: 1.0, VehicleKWh: 10},
		{UsageKWh: 3, TotalPricePerKWh: 1.3, TotalCost: 3.9, SpotPrice: 1.0},
		{UsageKWh: 2, TotalPricePerKWh: 1.3, TotalCost: 2.6, SpotPrice: 1.0},
	}}

	assert.InDelta(t, 15.0, result.TotalUsageKWh(), 0.0001)
	assert.InDelta(t, 19.5, result.TotalCost(), 0.0001)
	assert.InDelta(t, 10.0, result.TotalVehicleKWh(), 0.0001)
	assert.InDelta(t, 13.0, result.TotalVehicleCost(), 0.0001)
	assert.InDelta(t, 1.0, result.AvgSpotPrice(), 0.0001)
	assert.InDelta(t, 1.3, result.AvgTotalPrice(), 0.0001)
}

func TestResultTotalsEmpty(t *testing.T) {
	result := &Result{}
	assert.Zero(t, result.AvgSpotPrice())
	assert.Zero(t, result.AvgTotalPrice())
	assert.Zero(t, result.TotalCost())
}

func TestDailySummaries(t *testing.T) {
	day1 := time.Date(2025, 7, 1, 0, 0, 0, 0, timeline.Zone())
	day2 := day1.AddDate(0, 0, 1)

	result := &Result{Slots: []models.HourlySlot{
		{Time: day2.Add(5 * time.Hour), UsageKWh: 1, TotalCost: 2},
		{Time: day1.Add(10 * time.Hour), UsageKWh: 3, TotalCost: 4, VehicleKWh: 1},
		{Time: day1.Add(11 * time.Hour), UsageKWh: 5, TotalCost: 6, VehicleKWh: 2},
	}}

	summaries := result.DailySummaries()
	require.Len(t, summaries, 2)

	assert.Equal(t, day1, summaries[0].Date)
	assert.InDelta(t, 8.0, summaries[0].UsageKWh, 0.0001)
	assert.InDelta(t, 10.0, summaries[0].Cost, 0.0001)
	assert.InDelta(t, 3.0, summaries[0].VehicleKWh, 0.0001)

	assert.Equal(t, day2, summaries[1].Date)
	assert.InDelta(t, 1.0, summaries[1].UsageKWh, 0.0001)
}
