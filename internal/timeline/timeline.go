// Package timeline builds the canonical hourly index that all series
// (usage, spot price, tariff, tax) are joined on. The join key is the
// local wall-clock hour in Europe/Copenhagen, which observes DST, so
// two instants per year collapse onto the same wall-clock hour in
// autumn and one wall-clock hour never occurs in spring. Both cases
// are dropped consistently across every series so the per-hour join
// never double-counts or invents usage.
package timeline

import "time"

// ZoneName is the canonical local zone all series are reconciled in.
const ZoneName = "Europe/Copenhagen"

var zone = mustLoadZone()

func mustLoadZone() *time.Location {
	loc, err := time.LoadLocation(ZoneName)
	if err != nil {
		panic("loading " + ZoneName + " timezone: " + err.Error())
	}
	return loc
}

// Zone returns the canonical local time zone
func Zone() *time.Location {
	return zone
}

// CanonicalHour converts an instant to its canonical local hour: the start
// of the wall-clock hour it falls in, in Europe/Copenhagen. The second
// return is false when the wall-clock hour is DST-ambiguous (the repeated
// hour on the fall-back day), in which case the record must be dropped.
func CanonicalHour(t time.Time) (time.Time, bool) {
	local := t.In(zone)
	if sameWallHour(local, t.Add(time.Hour).In(zone)) || sameWallHour(local, t.Add(-time.Hour).In(zone)) {
		return time.Time{}, false
	}
	hour := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, zone)
	return hour, true
}

// sameWallHour reports whether two local times show the same wall-clock hour,
// which for distinct instants an hour apart means the hour is ambiguous
func sameWallHour(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day() && a.Hour() == b.Hour()
}

// Series is a value series keyed by canonical local hour
type Series map[time.Time]float64

// Add merges a value into the series at the instant's canonical hour,
// summing with any value already there. Records falling in a DST-ambiguous
// hour are dropped; the return reports whether the record was kept.
func (s Series) Add(t time.Time, v float64) bool {
	hour, ok := CanonicalHour(t)
	if !ok {
		return false
	}
	s[hour] += v
	return true
}

// Set assigns a value at the instant's canonical hour, overwriting any
// previous value. Used for price-like series where duplicate rows for the
// same hour are duplicates, not additive readings.
func (s Series) Set(t time.Time, v float64) bool {
	hour, ok := CanonicalHour(t)
	if !ok {
		return false
	}
	s[hour] = v
	return true
}

// Bounds returns the earliest and latest hour present in the series
func (s Series) Bounds() (time.Time, time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, false
	}
	var min, max time.Time
	for hour := range s {
		if min.IsZero() || hour.Before(min) {
			min = hour
		}
		if max.IsZero() || hour.After(max) {
			max = hour
		}
	}
	return min, max, true
}

// Index produces the gap-free canonical hourly index covering the series,
// from its earliest to its latest hour inclusive. Stepping is done on
// instants, not wall clocks, so the spring-forward hour never appears and
// the repeated fall-back hour is skipped like everywhere else. The result
// is strictly ascending with no duplicates.
func (s Series) Index() []time.Time {
	min, max, ok := s.Bounds()
	if !ok {
		return nil
	}
	var index []time.Time
	for cur := min; !cur.After(max); cur = cur.Add(time.Hour) {
		hour, ok := CanonicalHour(cur)
		if !ok {
			continue
		}
		if n := len(index); n > 0 && !index[n-1].Before(hour) {
			continue
		}
		index = append(index, hour)
	}
	return index
}

// Project maps the series onto an index, defaulting missing hours to 0.
// An unpriced hour should not break the pipeline; it shows up under-priced
// instead.
func Project(index []time.Time, s Series) []float64 {
	values := make([]float64, len(index))
	for i, hour := range index {
		values[i] = s[hour]
	}
	return values
}
