// Package tariff expands the user-authored tariff and tax rule tables into
// concrete hourly price series. Rules are evaluated in table order and the
// last matching rule wins for each hour: row order is part of the config
// contract, there is no overlap validation or precedence beyond it.
package tariff

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Rule is one row of the tariff table: a recurring season and time-of-day
// window with a price per kWh. Months are inclusive and may wrap the year
// boundary (10 -> 3 means October through March); hours are half-open
// [HourStart, HourEnd) and may wrap midnight the same way (22 -> 6).
type Rule struct {
	MonthStart int     `yaml:"month_start"`
	MonthEnd   int     `yaml:"month_end"`
	HourStart  int     `yaml:"hour_start"`
	HourEnd    int     `yaml:"hour_end"`
	Rate       float64 `yaml:"rate"` // DKK per kWh
}

// TaxRule is one row of the tax (afgift) table: an inclusive calendar-year
// range with a levy per kWh
type TaxRule struct {
	FromYear int     `yaml:"from_year"`
	ToYear   int     `yaml:"to_year"`
	Rate     float64 `yaml:"rate"` // DKK per kWh
}

// Matches reports whether the rule applies to the given local hour
func (r Rule) Matches(t time.Time) bool {
	month := int(t.Month())
	if r.MonthStart <= r.MonthEnd {
		if month < r.MonthStart || month > r.MonthEnd {
			return false
		}
	} else {
		// Season wrapping the year boundary, e.g. October through March
		if month < r.MonthStart && month > r.MonthEnd {
			return false
		}
	}

	hour := t.Hour()
	if r.HourStart <= r.HourEnd {
		return hour >= r.HourStart && hour < r.HourEnd
	}
	// Window wrapping midnight, e.g. 22 -> 6
	return hour >= r.HourStart || hour < r.HourEnd
}

// Matches reports whether the rule applies to the given hour's calendar year
func (r TaxRule) Matches(t time.Time) bool {
	year := t.Year()
	return year >= r.FromYear && year <= r.ToYear
}

// Resolve expands the tariff table onto an hourly index. Every rule is
// evaluated per hour in table order; later rows overwrite earlier matches.
// Hours matched by no rule stay at 0.
func Resolve(index []time.Time, rules []Rule) []float64 {
	values := make([]float64, len(index))
	for i, hour := range index {
		for _, rule := range rules {
			if rule.Matches(hour) {
				values[i] = rule.Rate
			}
		}
	}
	return values
}

// ResolveTaxes expands the tax table onto an hourly index with the same
// last-match-wins semantics as Resolve
func ResolveTaxes(index []time.Time, rules []TaxRule) []float64 {
	values := make([]float64, len(index))
	for i, hour := range index {
		for _, rule := range rules {
			if rule.Matches(hour) {
				values[i] = rule.Rate
			}
		}
	}
	return values
}

// LoadRules reads a tariff rule table from a YAML file. Callers treat any
// error as degraded, not fatal: warn and resolve with no rules instead.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tariff file: %w", err)
	}

	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing tariff file: %w", err)
	}

	for i, rule := range rules {
		if rule.MonthStart < 1 || rule.MonthStart > 12 || rule.MonthEnd < 1 || rule.MonthEnd > 12 {
			return nil, fmt.Errorf("tariff rule %d: months must be 1-12 (got %d-%d)", i+1, rule.MonthStart, rule.MonthEnd)
		}
		if rule.HourStart < 0 || rule.HourStart > 23 || rule.HourEnd < 0 || rule.HourEnd > 24 {
			return nil, fmt.Errorf("tariff rule %d: hours must be 0-24 (got %d-%d)", i+1, rule.HourStart, rule.HourEnd)
		}
	}

	return rules, nil
}

// LoadTaxRules reads a tax rule table from a YAML file with the same
// degraded-not-fatal contract as LoadRules
func LoadTaxRules(path string) ([]TaxRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tax file: %w", err)
	}

	var rules []TaxRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing tax file: %w", err)
	}

	for i, rule := range rules {
		if rule.FromYear > rule.ToYear {
			return nil, fmt.Errorf("tax rule %d: from_year %d is after to_year %d", i+1, rule.FromYear, rule.ToYear)
		}
	}

	return rules, nil
}
