package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhandberg/elcost/internal/timeline"
	"github.com/mhandberg/elcost/pkg/models"
)

func TestFilterSlotsByDate(t *testing.T) {
	// 2025-07-02 00:00 and 01:00 local are still inside 2025-07-01 in UTC,
	// which is exactly where an instant comparison goes wrong.
	var slots []models.HourlySlot
	for d := 1; d <= 3; d++ {
		for h := 0; h < 24; h++ {
			slots = append(slots, models.HourlySlot{
				Time: time.Date(2025, 7, d, h, 0, 0, 0, timeline.Zone()),
			})
		}
	}

	// Flag dates parse to UTC midnights, same as parseDate
	since := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)

	t.Run("Until Is Inclusive Of The Whole Local Day", func(t *testing.T) {
		filtered := filterSlotsByDate(slots, nil, &until)
		require.Len(t, filtered, 48)
		last := filtered[len(filtered)-1].Time
		assert.Equal(t, 2, last.Day())
		assert.Equal(t, 23, last.Hour(), "no hours of July 3 may leak past --until")
	})

	t.Run("Since Keeps The Whole Local Day", func(t *testing.T) {
		filtered := filterSlotsByDate(slots, &since, nil)
		require.Len(t, filtered, 48)
		first := filtered[0].Time
		assert.Equal(t, 2, first.Day())
		assert.Equal(t, 0, first.Hour(), "the early local hours of July 2 stay in range")
	})

	t.Run("Both Bounds Select A Single Day", func(t *testing.T) {
		filtered := filterSlotsByDate(slots, &since, &until)
		require.Len(t, filtered, 24)
		for _, slot := range filtered {
			assert.Equal(t, 2, slot.Time.Day())
		}
	})

	t.Run("No Bounds Returns Everything", func(t *testing.T) {
		assert.Len(t, filterSlotsByDate(slots, nil, nil), 72)
	})
}
