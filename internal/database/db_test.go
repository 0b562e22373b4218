package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhandberg/elcost/internal/timeline"
	"github.com/mhandberg/elcost/pkg/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testSlot(hour time.Time) models.HourlySlot {
	return models.HourlySlot{
		Time:             hour,
		UsageKWh:         10.0,
		SpotPrice:        1.0,
		TariffPrice:      0.2,
		TaxPrice:         0.1,
		TotalPricePerKWh: 1.3,
		TotalCost:        13.0,
		Charging:         true,
		VehicleKWh:       10.0,
		HouseholdKWh:     0.0,
	}
}

func TestUpsertAndList(t *testing.T) {
	db := testDB(t)
	hour := time.Date(2025, 7, 1, 12, 0, 0, 0, timeline.Zone())

	require.NoError(t, db.UpsertSlot(&models.HourlySlot{Time: hour.Add(time.Hour), UsageKWh: 3.0}))
	slot := testSlot(hour)
	require.NoError(t, db.UpsertSlot(&slot))

	slots, err := db.ListSlots()
	require.NoError(t, err)
	require.Len(t, slots, 2)

	// Ordered by hour, not insertion
	assert.True(t, slots[0].Time.Equal(hour))
	assert.InDelta(t, 10.0, slots[0].UsageKWh, 0.0001)
	assert.InDelta(t, 1.3, slots[0].TotalPricePerKWh, 0.0001)
	assert.True(t, slots[0].Charging)
	assert.Equal(t, hour.Format("2006-01-02 15:04"), slots[0].Time.Format("2006-01-02 15:04"), "local hour survives the round trip")
}

func TestUpsertOverwrites(t *testing.T) {
	db := testDB(t)
	hour := time.Date(2025, 7, 1, 12, 0, 0, 0, timeline.Zone())

	slot := testSlot(hour)
	require.NoError(t, db.UpsertSlot(&slot))

	updated := testSlot(hour)
	updated.UsageKWh = 4.0
	updated.Charging = false
	require.NoError(t, db.UpsertSlot(&updated))

	slots, err := db.ListSlots()
	require.NoError(t, err)
	require.Len(t, slots, 1, "one row per hour, re-runs overwrite")
	assert.InDelta(t, 4.0, slots[0].UsageKWh, 0.0001)
	assert.False(t, slots[0].Charging)
}

func TestPublishedFlag(t *testing.T) {
	db := testDB(t)
	hour := time.Date(2025, 7, 1, 12, 0, 0, 0, timeline.Zone())

	for i := 0; i < 3; i++ {
		slot := testSlot(hour.Add(time.Duration(i) * time.Hour))
		require.NoError(t, db.UpsertSlot(&slot))
	}

	unpublished, err := db.ListUnpublishedSlots()
	require.NoError(t, err)
	require.Len(t, unpublished, 3)

	require.NoError(t, db.MarkPublished(unpublished[0].ID))

	unpublished, err = db.ListUnpublishedSlots()
	require.NoError(t, err)
	assert.Len(t, unpublished, 2)

	all, err := db.ListSlots()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
