// Package engine runs the reconciliation pipeline: fetch usage and spot
// prices, align every series onto the canonical local hourly timeline,
// attribute per-hour costs, and classify car-charging hours. The engine
// itself is stateless and re-entrant; each Run regenerates the full result
// from scratch.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/mhandberg/elcost/internal/tariff"
	"github.com/mhandberg/elcost/internal/timeline"
	"github.com/mhandberg/elcost/pkg/models"
)

// UsageFetcher fetches hourly consumption merged per canonical local hour
type UsageFetcher interface {
	FetchUsage(ctx context.Context, points []string, from, to time.Time) (timeline.Series, error)
}

// PriceFetcher fetches hourly spot prices for a date range and zone
type PriceFetcher interface {
	FetchRange(ctx context.Context, from, to time.Time, zone string) ([]models.SpotPrice, error)
}

// Params is the full input contract for one pipeline run
type Params struct {
	MeteringPoints  []string
	From, To        time.Time // inclusive local calendar dates
	Zone            string
	ChargeThreshold float64 // hourly kWh at or above which the car is charging
	MaxChargeRate   float64 // max kWh the car can take in one hour
	TariffRules     []tariff.Rule
	TaxRules        []tariff.TaxRule
}

// Engine wires the two fetchers into the pipeline
type Engine struct {
	usage  UsageFetcher
	prices PriceFetcher
}

// New creates an engine from its fetchers
func New(usage UsageFetcher, prices PriceFetcher) *Engine {
	return &Engine{usage: usage, prices: prices}
}

// Run executes the pipeline for the given parameters. Authentication
// failures and an empty usage window are fatal; a failed price fetch or an
// empty rule table degrade to zero-valued components with a warning.
func (e *Engine) Run(ctx context.Context, p Params) (*Result, error) {
	usage, err := e.usage.FetchUsage(ctx, p.MeteringPoints, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("fetching usage: %w", err)
	}
	if len(usage) == 0 {
		return nil, fmt.Errorf("no usage records in window, nothing to reconcile")
	}

	// Usage defines which hours exist; everything else is joined into its
	// timeline, never the reverse.
	index := usage.Index()

	spot := timeline.Series{}
	prices, err := e.prices.FetchRange(ctx, p.From, p.To, p.Zone)
	if err != nil {
		fmt.Printf("⚠ No spot prices available, continuing unpriced: %v\n", err)
	}
	for _, price := range prices {
		spot.Set(price.Time, price.DKKPerKWh)
	}

	usageCol := timeline.Project(index, usage)
	spotCol := timeline.Project(index, spot)
	tariffCol := tariff.Resolve(index, p.TariffRules)
	taxCol := tariff.ResolveTaxes(index, p.TaxRules)

	slots := make([]models.HourlySlot, len(index))
	for i, hour := range index {
		slots[i] = models.HourlySlot{
			Time:        hour,
			UsageKWh:    usageCol[i],
			SpotPrice:   spotCol[i],
			TariffPrice: tariffCol[i],
			TaxPrice:    taxCol[i],
		}
	}

	AttributeCosts(slots)
	ClassifyCharging(slots, p.ChargeThreshold, p.MaxChargeRate)

	return &Result{Slots: slots}, nil
}
