package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Token              string     `yaml:"token,omitempty"`                // Eloverblik refresh token
	TokenFile          string     `yaml:"token_file,omitempty"`           // Alternative: path to a file holding the token
	MeteringPoints     []string   `yaml:"metering_points,omitempty"`      // Explicit metering point IDs (default: discover via API)
	Zone               string     `yaml:"zone,omitempty"`                 // Pricing zone, "DK1" or "DK2" (fallback: DK2)
	DaysToFetch        int        `yaml:"days_to_fetch,omitempty"`        // Default window when no dates given (fallback: 30)
	ChargeThresholdKWh float64    `yaml:"charge_threshold_kwh,omitempty"` // Hourly kWh above which the car is assumed charging
	MaxChargeRateKWh   float64    `yaml:"max_charge_rate_kwh,omitempty"`  // Max kWh the car can draw in one hour
	VATRate            float64    `yaml:"vat_rate,omitempty"`             // Multiplier applied to exported spot prices (fallback: 1.25)
	TariffFile         string     `yaml:"tariff_file,omitempty"`          // Path to the tariff rule table (fallback: tariffs.yaml)
	TaxFile            string     `yaml:"tax_file,omitempty"`             // Path to the tax rule table (fallback: taxes.yaml)
	MQTT               MQTTConfig `yaml:"mqtt,omitempty"`
}

// MQTTConfig holds MQTT broker configuration for publishing hourly slots
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // e.g., "mqtt.local:1883"
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // defaults to "elcost"
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetToken returns the refresh token, reading token_file if no inline token is set
func (c *Config) GetToken() (string, error) {
	if c.Token != "" {
		return c.Token, nil
	}
	if c.TokenFile != "" {
		data, err := os.ReadFile(c.TokenFile)
		if err != nil {
			return "", fmt.Errorf("reading token file: %w", err)
		}
		token := strings.TrimSpace(string(data))
		if token == "" {
			return "", fmt.Errorf("token file %s is empty", c.TokenFile)
		}
		return token, nil
	}
	return "", fmt.Errorf("no token configured (set token or token_file in config.yaml)")
}

// GetZone returns the pricing zone with a default of DK2
func (c *Config) GetZone() string {
	if c.Zone == "" {
		return "DK2"
	}
	return c.Zone
}

// GetDaysToFetch returns the number of days to fetch with a default of 30
func (c *Config) GetDaysToFetch() int {
	if c.DaysToFetch <= 0 {
		return 30
	}
	return c.DaysToFetch
}

// GetChargeThreshold returns the hourly kWh above which an hour counts as car
// charging, with a default of 5.0
func (c *Config) GetChargeThreshold() float64 {
	if c.ChargeThresholdKWh <= 0 {
		return 5.0
	}
	return c.ChargeThresholdKWh
}

// GetMaxChargeRate returns the max kWh the car can draw per hour, with a
// default of 11.0
func (c *Config) GetMaxChargeRate() float64 {
	if c.MaxChargeRateKWh <= 0 {
		return 11.0
	}
	return c.MaxChargeRateKWh
}

// GetVATRate returns the multiplier applied to exported spot prices (moms),
// with a default of 1.25
func (c *Config) GetVATRate() float64 {
	if c.VATRate <= 0 {
		return 1.25
	}
	return c.VATRate
}

// GetTariffFile returns the tariff rule table path with a default of tariffs.yaml
func (c *Config) GetTariffFile() string {
	if c.TariffFile == "" {
		return "tariffs.yaml"
	}
	return c.TariffFile
}

// GetTaxFile returns the tax rule table path with a default of taxes.yaml
func (c *Config) GetTaxFile() string {
	if c.TaxFile == "" {
		return "taxes.yaml"
	}
	return c.TaxFile
}
