package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhandberg/elcost/internal/eloverblik"
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "List the metering points available to the configured token",
	RunE:  runPoints,
}

func init() {
	rootCmd.AddCommand(pointsCmd)
}

func runPoints(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	token, err := cfg.GetToken()
	if err != nil {
		return err
	}

	client := eloverblik.NewClient(token)
	access, err := client.GetAccessToken(cmd.Context())
	if err != nil {
		return fmt.Errorf("exchanging token: %w", err)
	}

	points, err := client.GetMeteringPoints(cmd.Context(), access)
	if err != nil {
		return fmt.Errorf("listing metering points: %w", err)
	}

	if len(points) == 0 {
		fmt.Println("No metering points found for this token")
		return nil
	}

	fmt.Printf("Found %d metering point(s):\n\n", len(points))
	for _, point := range points {
		fmt.Printf("  %s", point.MeteringPointID)
		if point.TypeOfMP != "" {
			fmt.Printf("  (%s)", point.TypeOfMP)
		}
		if point.StreetName != "" || point.CityName != "" {
			fmt.Printf("  %s, %s", point.StreetName, point.CityName)
		}
		fmt.Println()
	}

	return nil
}
