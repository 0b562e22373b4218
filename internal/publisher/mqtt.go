package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mhandberg/elcost/internal/config"
	"github.com/mhandberg/elcost/pkg/models"
)

// Publisher publishes computed hourly slots to an MQTT broker, so things
// like Home Assistant can pick them up
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
}

// New creates a new publisher and connects to the broker
func New(cfg config.MQTTConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("MQTT publishing is not enabled in config")
	}
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	topicPrefix := cfg.TopicPrefix
	if topicPrefix == "" {
		topicPrefix = "elcost"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID("elcost")
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return &Publisher{
		client:      client,
		topicPrefix: topicPrefix,
	}, nil
}

// slotPayload is the wire format published per hour
type slotPayload struct {
	Time             string  `json:"time"`
	UsageKWh         float64 `json:"usage_kwh"`
	SpotPrice        float64 `json:"spot_price"`
	TariffPrice      float64 `json:"tariff_price"`
	TaxPrice         float64 `json:"tax_price"`
	TotalPricePerKWh float64 `json:"total_price_per_kwh"`
	TotalCost        float64 `json:"total_cost"`
	Charging         bool    `json:"charging"`
	VehicleKWh       float64 `json:"vehicle_kwh"`
	HouseholdKWh     float64 `json:"household_kwh"`
}

// Publish sends one hourly slot to the broker
func (p *Publisher) Publish(slot models.HourlySlot) error {
	payload := slotPayload{
		Time:             slot.Time.Format(time.RFC3339),
		UsageKWh:         slot.UsageKWh,
		SpotPrice:        slot.SpotPrice,
		TariffPrice:      slot.TariffPrice,
		TaxPrice:         slot.TaxPrice,
		TotalPricePerKWh: slot.TotalPricePerKWh,
		TotalCost:        slot.TotalCost,
		Charging:         slot.Charging,
		VehicleKWh:       slot.VehicleKWh,
		HouseholdKWh:     slot.HouseholdKWh,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	topic := fmt.Sprintf("%s/hourly/%s", p.topicPrefix, slot.Time.Format("2006-01-02T15"))
	token := p.client.Publish(topic, 1, true, body)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
