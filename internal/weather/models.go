package weather

import (
	"fmt"
	"sort"
)

// DateLayout and TimeLayout are the wire formats the KMA services use for
// forecast dates and times-of-day.
const (
	DateLayout = "20060102"
	TimeLayout = "1504"
)

// GridCoordinate identifies one forecast cell on the KMA Lambert grid.
type GridCoordinate struct {
	NX int `json:"nx"`
	NY int `json:"ny"`
}

// Key returns a canonical string key for indexing this cell in cache stores.
func (c GridCoordinate) Key() string {
	return fmt.Sprintf("%d,%d", c.NX, c.NY)
}

// Reading maps domain category labels (기온(°C), 습도(%), ...) to scalar
// values. Values are float64 for numeric readings and string for coded or
// qualitative ones. A Reading is built once per fetch and read-only after.
type Reading map[string]any

// ForecastGrid holds every forecast row one upstream call returned for a
// publication cycle, keyed date -> time-of-day (HHMM, on the hour) -> Reading.
type ForecastGrid map[string]map[string]Reading

// At returns the value set for a (date, time) slot, or nil if absent.
func (g ForecastGrid) At(date, hhmm string) Reading {
	if times, ok := g[date]; ok {
		return times[hhmm]
	}
	return nil
}

// HourlySlot is one synthesized forecast hour. Slots only exist where a
// temperature value was determined.
type HourlySlot struct {
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	Sky         string  `json:"sky"`
	PrecipType  string  `json:"precipType"`
	RainAmount  any     `json:"rainAmount"`
	PrecipProb  float64 `json:"precipProb"`
}

// DailySummary is one synthesized calendar day, derived from hourly slots
// for the near horizon and from the mid-term forecast beyond it.
type DailySummary struct {
	Date       string  `json:"date"`
	MinTemp    float64 `json:"minTemp"`
	MaxTemp    float64 `json:"maxTemp"`
	SkyAM      string  `json:"skyAm"`
	SkyPM      string  `json:"skyPm"`
	PrecipProb float64 `json:"precipProb"`
}

// MidTermTemps is the mid-term min/max temperature series keyed by day
// offset from today (3..7).
type MidTermTemps struct {
	Min map[int]float64 `json:"min"`
	Max map[int]float64 `json:"max"`
}

// MidTermLand is the mid-term sky-state and precipitation-probability
// series keyed by day offset from today (3..7).
type MidTermLand struct {
	SkyAM map[int]string  `json:"skyAm"`
	SkyPM map[int]string  `json:"skyPm"`
	PopAM map[int]float64 `json:"popAm"`
	PopPM map[int]float64 `json:"popPm"`
}

// CurrentWeather is the composite "current weather" view. Each source
// contributes its own part; sources that failed or returned nothing leave
// an empty part behind.
type CurrentWeather struct {
	Live          Reading `json:"live"`
	DailyExtremes Reading `json:"dailyExtremes"`
	Sky           Reading `json:"sky"`
	AirQuality    Reading `json:"airQuality"`
}

// Merged flattens the composite into one category map. Sources contribute
// disjoint labels by construction; on overlap the later part in the order
// live, daily extremes, sky, air quality wins.
func (w CurrentWeather) Merged() Reading {
	merged := Reading{}
	for _, part := range []Reading{w.Live, w.DailyExtremes, w.Sky, w.AirQuality} {
		for label, value := range part {
			merged[label] = value
		}
	}
	return merged
}

// StationInfo maps a grid cell to the air-quality monitoring station and
// mid-term forecast region codes that serve it. Loaded once at startup.
type StationInfo struct {
	AirStation string `json:"airStation"`
	LandRegID  string `json:"landRegId"`
	TempRegID  string `json:"tempRegId"`
}

func toFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func toString(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
