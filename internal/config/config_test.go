package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Missing File Is Empty Config", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, &Config{}, cfg)
	})

	t.Run("Full Config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
token: refresh-token
metering_points:
  - "571313100000000001"
zone: DK1
days_to_fetch: 60
charge_threshold_kwh: 6.5
max_charge_rate_kwh: 22.0
tariff_file: my_tariffs.yaml
mqtt:
  enabled: true
  broker: mqtt.local:1883
  topic_prefix: home/power
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)

		token, err := cfg.GetToken()
		require.NoError(t, err)
		assert.Equal(t, "refresh-token", token)
		assert.Equal(t, []string{"571313100000000001"}, cfg.MeteringPoints)
		assert.Equal(t, "DK1", cfg.GetZone())
		assert.Equal(t, 60, cfg.GetDaysToFetch())
		assert.InDelta(t, 6.5, cfg.GetChargeThreshold(), 0.0001)
		assert.InDelta(t, 22.0, cfg.GetMaxChargeRate(), 0.0001)
		assert.Equal(t, "my_tariffs.yaml", cfg.GetTariffFile())
		assert.True(t, cfg.MQTT.Enabled)
		assert.Equal(t, "home/power", cfg.MQTT.TopicPrefix)
	})
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}

	assert.Equal(t, "DK2", cfg.GetZone())
	assert.Equal(t, 30, cfg.GetDaysToFetch())
	assert.InDelta(t, 5.0, cfg.GetChargeThreshold(), 0.0001)
	assert.InDelta(t, 11.0, cfg.GetMaxChargeRate(), 0.0001)
	assert.InDelta(t, 1.25, cfg.GetVATRate(), 0.0001)
	assert.Equal(t, "tariffs.yaml", cfg.GetTariffFile())
	assert.Equal(t, "taxes.yaml", cfg.GetTaxFile())
}

func TestGetToken(t *testing.T) {
	t.Run("Token File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.txt")
		require.NoError(t, os.WriteFile(path, []byte("file-token\n"), 0600))

		cfg := &Config{TokenFile: path}
		token, err := cfg.GetToken()
		require.NoError(t, err)
		assert.Equal(t, "file-token", token, "token is trimmed")
	})

	t.Run("No Token Configured", func(t *testing.T) {
		_, err := (&Config{}).GetToken()
		assert.ErrorContains(t, err, "no token configured")
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := &Config{Token: "tok", Zone: "DK1"}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
