package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhandberg/elcost/internal/elpris"
	"github.com/mhandberg/elcost/internal/timeline"
)

var (
	pricesFrom string
	pricesTo   string
	pricesZone string
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Fetch and print spot prices for a date range",
	Long:  `Fetches day-ahead spot prices from Elprisenligenu, one request per day, and prints them. No token needed.`,
	RunE:  runPrices,
}

func init() {
	pricesCmd.Flags().StringVar(&pricesFrom, "from", "", "Start date (YYYY-MM-DD or Nd, default: 7 days ago)")
	pricesCmd.Flags().StringVar(&pricesTo, "to", "", "End date (YYYY-MM-DD, default: today)")
	pricesCmd.Flags().StringVar(&pricesZone, "zone", "", "Pricing zone (DK1 or DK2, default from config)")
	rootCmd.AddCommand(pricesCmd)
}

func runPrices(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	from, to, err := dateRange(pricesFrom, pricesTo, 7)
	if err != nil {
		return err
	}

	zone := pricesZone
	if zone == "" {
		zone = cfg.GetZone()
	}

	fmt.Printf("Fetching spot prices from %s to %s for zone %s...\n",
		from.Format("2006-01-02"), to.Format("2006-01-02"), zone)

	client := elpris.NewClient()
	prices, err := client.FetchRange(cmd.Context(), from, to, zone)
	if err != nil {
		return fmt.Errorf("fetching prices: %w", err)
	}

	fmt.Printf("\n%-22s  %12s\n", "Hour", "DKK/kWh")
	fmt.Println("------------------------------------")
	var total float64
	for _, price := range prices {
		fmt.Printf("%-22s  %12.5f\n", price.Time.In(timeline.Zone()).Format("2006-01-02 15:04 MST"), price.DKKPerKWh)
		total += price.DKKPerKWh
	}
	fmt.Println("------------------------------------")
	fmt.Printf("Average: %.5f DKK/kWh over %d hours\n", total/float64(len(prices)), len(prices))

	return nil
}
