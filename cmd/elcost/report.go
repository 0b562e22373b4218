package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mhandberg/elcost/internal/eloverblik"
	"github.com/mhandberg/elcost/internal/elpris"
	"github.com/mhandberg/elcost/internal/engine"
	"github.com/mhandberg/elcost/internal/tariff"
)

var (
	reportFrom      string
	reportTo        string
	reportZone      string
	reportThreshold float64
	reportMaxRate   float64
	reportCSV       string
	reportStore     bool
	reportHours     bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch usage and prices and compute the hourly cost report",
	Long: `Runs the full pipeline for a date range: fetches hourly usage from
Eloverblik and spot prices from Elprisenligenu, applies the tariff and tax
rule tables, and prints per-hour costs with the car charging split.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Start date (YYYY-MM-DD or Nd, default: days_to_fetch ago)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "End date (YYYY-MM-DD, default: today)")
	reportCmd.Flags().StringVar(&reportZone, "zone", "", "Pricing zone (DK1 or DK2, default from config)")
	reportCmd.Flags().Float64Var(&reportThreshold, "threshold", 0, "Charging threshold in kWh (default from config)")
	reportCmd.Flags().Float64Var(&reportMaxRate, "max-rate", 0, "Max charge rate in kWh (default from config)")
	reportCmd.Flags().StringVar(&reportCSV, "csv", "", "Write the hourly table to this CSV file")
	reportCmd.Flags().BoolVar(&reportStore, "store", false, "Store the computed slots in the database")
	reportCmd.Flags().BoolVar(&reportHours, "hours", false, "Print every hour instead of the daily summary")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Report started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	token, err := cfg.GetToken()
	if err != nil {
		return err
	}

	from, to, err := dateRange(reportFrom, reportTo, cfg.GetDaysToFetch())
	if err != nil {
		return err
	}

	zone := reportZone
	if zone == "" {
		zone = cfg.GetZone()
	}
	threshold := reportThreshold
	if threshold <= 0 {
		threshold = cfg.GetChargeThreshold()
	}
	maxRate := reportMaxRate
	if maxRate <= 0 {
		maxRate = cfg.GetMaxChargeRate()
	}

	// Rule tables degrade to zero-valued components when missing or broken
	tariffRules, err := tariff.LoadRules(cfg.GetTariffFile())
	if err != nil {
		fmt.Printf("⚠ No tariff table, tariff component will be 0: %v\n", err)
	}
	taxRules, err := tariff.LoadTaxRules(cfg.GetTaxFile())
	if err != nil {
		fmt.Printf("⚠ No tax table, tax component will be 0: %v\n", err)
	}

	eng := engine.New(eloverblik.NewClient(token), elpris.NewClient())

	fmt.Printf("Fetching usage and prices from %s to %s (zone %s)...\n",
		from.Format("2006-01-02"), to.Format("2006-01-02"), zone)

	result, err := eng.Run(cmd.Context(), engine.Params{
		MeteringPoints:  cfg.MeteringPoints,
		From:            from,
		To:              to,
		Zone:            zone,
		ChargeThreshold: threshold,
		MaxChargeRate:   maxRate,
		TariffRules:     tariffRules,
		TaxRules:        taxRules,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Reconciled %d hours\n\n", len(result.Slots))
	printSummary(result)

	if reportHours {
		printHourlyTable(result)
	} else {
		printDailyTable(result)
	}

	if reportCSV != "" {
		if err := writeCSV(reportCSV, result); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		fmt.Printf("✓ Wrote %s\n", reportCSV)
	}

	if reportStore {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		for i := range result.Slots {
			if err := db.UpsertSlot(&result.Slots[i]); err != nil {
				return fmt.Errorf("storing slots: %w", err)
			}
		}
		fmt.Printf("✓ Stored %d slots in %s\n", len(result.Slots), getDBPath())
	}

	return nil
}

func printSummary(result *engine.Result) {
	fmt.Printf("Total usage:       %s kWh\n", humanize.CommafWithDigits(result.TotalUsageKWh(), 1))
	fmt.Printf("Total cost:        %s DKK\n", humanize.CommafWithDigits(result.TotalCost(), 2))
	fmt.Printf("Avg spot price:    %.3f DKK/kWh\n", result.AvgSpotPrice())
	fmt.Printf("Avg total price:   %.3f DKK/kWh\n", result.AvgTotalPrice())
	fmt.Printf("Car charging:      %s kWh costing %s DKK\n\n",
		humanize.CommafWithDigits(result.TotalVehicleKWh(), 1),
		humanize.CommafWithDigits(result.TotalVehicleCost(), 2))
}

func printDailyTable(result *engine.Result) {
	fmt.Printf("%-12s  %10s  %10s  %10s\n", "Date", "kWh", "Car kWh", "Cost DKK")
	fmt.Println("--------------------------------------------------")
	for _, day := range result.DailySummaries() {
		fmt.Printf("%-12s  %10.2f  %10.2f  %10.2f\n",
			day.Date.Format("2006-01-02"), day.UsageKWh, day.VehicleKWh, day.Cost)
	}
}

func printHourlyTable(result *engine.Result) {
	fmt.Printf("%-17s  %8s  %7s  %7s  %7s  %7s  %9s  %4s  %8s  %9s\n",
		"Hour", "kWh", "Spot", "Tariff", "Tax", "Total", "Cost DKK", "Car", "Car kWh", "House kWh")
	fmt.Println(
		"---------------------------------------------------------------------------------------------------")
	for _, s := range result.Slots {
		car := ""
		if s.Charging {
			car = "yes"
		}
		fmt.Printf("%-17s  %8.2f  %7.3f  %7.3f  %7.3f  %7.3f  %9.2f  %4s  %8.2f  %9.2f\n",
			s.Time.Format("2006-01-02 15:04"), s.UsageKWh,
			s.SpotPrice, s.TariffPrice, s.TaxPrice, s.TotalPricePerKWh,
			s.TotalCost, car, s.VehicleKWh, s.HouseholdKWh)
	}
}

func writeCSV(path string, result *engine.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"time", "usage_kwh", "spot_price", "tariff_price", "tax_price",
		"total_price_per_kwh", "total_cost", "charging", "vehicle_kwh", "household_kwh"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range result.Slots {
		row := []string{
			s.Time.Format(time.RFC3339),
			strconv.FormatFloat(s.UsageKWh, 'f', 3, 64),
			strconv.FormatFloat(s.SpotPrice, 'f', 5, 64),
			strconv.FormatFloat(s.TariffPrice, 'f', 5, 64),
			strconv.FormatFloat(s.TaxPrice, 'f', 5, 64),
			strconv.FormatFloat(s.TotalPricePerKWh, 'f', 5, 64),
			strconv.FormatFloat(s.TotalCost, 'f', 3, 64),
			strconv.FormatBool(s.Charging),
			strconv.FormatFloat(s.VehicleKWh, 'f', 3, 64),
			strconv.FormatFloat(s.HouseholdKWh, 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
