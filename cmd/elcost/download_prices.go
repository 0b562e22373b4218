package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhandberg/elcost/internal/elpris"
)

var (
	downloadFrom string
	downloadTo   string
	downloadZone string
	downloadOut  string
	downloadVAT  bool
)

var downloadPricesCmd = &cobra.Command{
	Use:   "download-prices",
	Short: "Download a historic spot price range to CSV",
	Long: `Fetches spot prices for a long date range and writes them to a CSV file.
By default VAT (moms, 25%) is added on top of the raw spot price so the file
reflects what a household actually pays.`,
	RunE: runDownloadPrices,
}

func init() {
	downloadPricesCmd.Flags().StringVar(&downloadFrom, "from", "", "Start date (YYYY-MM-DD, required)")
	downloadPricesCmd.Flags().StringVar(&downloadTo, "to", "", "End date (YYYY-MM-DD, default: today)")
	downloadPricesCmd.Flags().StringVar(&downloadZone, "zone", "", "Pricing zone (DK1 or DK2, default from config)")
	downloadPricesCmd.Flags().StringVar(&downloadOut, "out", "historic_el_prices.csv", "Output CSV file")
	downloadPricesCmd.Flags().BoolVar(&downloadVAT, "vat", true, "Apply the configured VAT rate to prices")
	downloadPricesCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(downloadPricesCmd)
}

func runDownloadPrices(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	from, to, err := dateRange(downloadFrom, downloadTo, 0)
	if err != nil {
		return err
	}

	zone := downloadZone
	if zone == "" {
		zone = cfg.GetZone()
	}

	fmt.Printf("Fetching prices from %s to %s...\n", from.Format("2006-01-02"), to.Format("2006-01-02"))

	client := elpris.NewClient()
	prices, err := client.FetchRange(cmd.Context(), from, to, zone)
	if err != nil {
		return fmt.Errorf("fetching prices: %w", err)
	}

	vat := 1.0
	if downloadVAT {
		vat = cfg.GetVATRate()
	}

	f, err := os.Create(downloadOut)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time_start", "DKK_per_kWh"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, price := range prices {
		row := []string{
			price.Time.Format(time.RFC3339),
			strconv.FormatFloat(price.DKKPerKWh*vat, 'f', 5, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}

	fmt.Printf("✓ Saved %d price rows to %s\n", len(prices), downloadOut)
	return nil
}
