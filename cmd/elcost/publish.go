package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhandberg/elcost/internal/publisher"
	"github.com/mhandberg/elcost/pkg/models"
)

var (
	publishSince string
	publishUntil string
	publishAll   bool
	publishLimit int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish stored hourly slots over MQTT",
	Long:  `Reads computed hourly slots from the database and publishes them to the configured MQTT broker, one retained message per hour.`,
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishSince, "since", "", "Only publish slots since this date (YYYY-MM-DD or relative like 7d)")
	publishCmd.Flags().StringVar(&publishUntil, "until", "", "Only publish slots until this date (YYYY-MM-DD)")
	publishCmd.Flags().BoolVar(&publishAll, "all", false, "Force republish all slots (ignore published flag)")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of slots to publish (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pub, err := publisher.New(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	var slots []models.HourlySlot
	if publishAll {
		slots, err = db.ListSlots()
	} else {
		slots, err = db.ListUnpublishedSlots()
	}
	if err != nil {
		return fmt.Errorf("listing slots: %w", err)
	}

	if len(slots) == 0 {
		if publishAll {
			fmt.Println("No slots found")
		} else {
			fmt.Println("No unpublished slots found")
		}
		return nil
	}

	// Filter by date range if specified
	var sinceDate, untilDate *time.Time
	if publishSince != "" {
		since, err := parseDate(publishSince)
		if err != nil {
			return fmt.Errorf("parsing --since date: %w", err)
		}
		sinceDate = &since
	}
	if publishUntil != "" {
		until, err := parseDate(publishUntil)
		if err != nil {
			return fmt.Errorf("parsing --until date: %w", err)
		}
		untilDate = &until
	}

	filtered := filterSlotsByDate(slots, sinceDate, untilDate)

	if len(filtered) == 0 {
		fmt.Println("No slots in date range")
		return nil
	}

	if publishLimit > 0 && len(filtered) > publishLimit {
		filtered = filtered[:publishLimit]
		fmt.Printf("Limiting to %d slots (--limit flag)\n", publishLimit)
	}

	fmt.Printf("Publishing %d slots...\n", len(filtered))
	published := 0
	for i, slot := range filtered {
		fmt.Printf("[%d/%d] Publishing %s (%.2f kWh)... ", i+1, len(filtered), slot.Time.Format("2006-01-02 15:04"), slot.UsageKWh)
		if err := pub.Publish(slot); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			continue
		}

		if err := db.MarkPublished(slot.ID); err != nil {
			fmt.Printf("✓ (warning: failed to mark as published: %v)\n", err)
		} else {
			fmt.Printf("✓\n")
		}
		published++
	}

	fmt.Printf("\nSuccessfully published %d/%d slots\n", published, len(filtered))
	return nil
}

// filterSlotsByDate keeps the slots whose local calendar date falls inside
// the inclusive since/until bounds. Dates are compared as calendar days, not
// instants: slots carry local hours while parsed flag dates are UTC
// midnights, and an instant comparison would leak the first local hours of
// the day after --until.
func filterSlotsByDate(slots []models.HourlySlot, since, until *time.Time) []models.HourlySlot {
	if since == nil && until == nil {
		return slots
	}
	filtered := []models.HourlySlot{}
	for _, slot := range slots {
		day := calendarDate(slot.Time)
		if since != nil && day.Before(calendarDate(*since)) {
			continue
		}
		if until != nil && day.After(calendarDate(*until)) {
			continue
		}
		filtered = append(filtered, slot)
	}
	return filtered
}
