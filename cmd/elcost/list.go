package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mhandberg/elcost/internal/engine"
)

var listHours bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored hourly slots",
	Long:  `Displays the computed hourly slots stored in the database, as a daily summary by default.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listHours, "hours", false, "Print every hour instead of the daily summary")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	slots, err := db.ListSlots()
	if err != nil {
		return fmt.Errorf("listing slots: %w", err)
	}

	if len(slots) == 0 {
		fmt.Println("No data found (run 'elcost report --store' first)")
		return nil
	}

	result := &engine.Result{Slots: slots}

	if listHours {
		printHourlyTable(result)
	} else {
		printDailyTable(result)
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("Total: %s kWh, %s DKK (%d hours)\n",
		humanize.CommafWithDigits(result.TotalUsageKWh(), 1),
		humanize.CommafWithDigits(result.TotalCost(), 2),
		len(slots))

	return nil
}
