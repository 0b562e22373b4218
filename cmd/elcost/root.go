package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhandberg/elcost/internal/config"
	"github.com/mhandberg/elcost/internal/database"
)

var (
	cfgFile string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "elcost",
	Short: "Reconcile household electricity usage, spot prices, tariffs and taxes into hourly costs",
	Long: `elcost fetches hourly consumption from Eloverblik and day-ahead spot
prices from Elprisenligenu, aligns them with the configured tariff and tax
rule tables onto one DST-safe hourly timeline, computes the cost of every
hour, and estimates which hours the car was charging.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default is ./data.db)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path (local directory)
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return "data.db"
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// openDB opens the database connection
func openDB() (*database.DB, error) {
	path := getDBPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}

// parseDate parses a date string in either YYYY-MM-DD format or relative format (e.g., "7d")
func parseDate(dateStr string) (time.Time, error) {
	// Try absolute date format first
	t, err := time.Parse("2006-01-02", dateStr)
	if err == nil {
		return t, nil
	}

	// Try relative format (e.g., "7d" for 7 days ago)
	if len(dateStr) > 1 && dateStr[len(dateStr)-1] == 'd' {
		daysStr := dateStr[:len(dateStr)-1]
		var days int
		if _, err := fmt.Sscanf(daysStr, "%d", &days); err == nil {
			return time.Now().AddDate(0, 0, -days), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD or Nd for N days ago)", dateStr)
}

// calendarDate reduces t to its calendar date in its own location, mapped to
// a UTC midnight so dates from different zones compare by day alone
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dateRange resolves --from/--to flags, defaulting to the configured
// fetch window ending today
func dateRange(fromFlag, toFlag string, days int) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	var err error
	if fromFlag != "" {
		from, err = parseDate(fromFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing --from date: %w", err)
		}
	}
	if toFlag != "" {
		to, err = parseDate(toFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing --to date: %w", err)
		}
	}
	if from.After(to) {
		from, to = to, from
	}
	return from, to, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
