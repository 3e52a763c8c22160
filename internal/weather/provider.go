package weather

import "context"

// Row is one category reading as returned by the village-forecast family of
// services. Date and Time are empty for live observations.
type Row struct {
	Category string
	Value    string
	Date     string
	Time     string
}

// MidTermRow is the single flat record the mid-term services return, keyed
// by field name (taMin3, wf4Am, rnSt5Pm, ...).
type MidTermRow map[string]any

// AirRow is the most recent record an air-quality station reported. The
// hourly grade fields are preferred; the daily ones are fallbacks for
// stations that only publish daily grades.
type AirRow struct {
	PM10Grade1h string
	PM10Grade   string
	PM25Grade1h string
	PM25Grade   string
	PM10Value   string
	PM25Value   string
	DataTime    string
}

// ForecastSource abstracts the village-forecast upstream (live observation,
// ultra-short-term and short-term forecast endpoints).
type ForecastSource interface {
	LiveObservation(ctx context.Context, coord GridCoordinate, win TimeWindow) ([]Row, error)
	UltraShortForecast(ctx context.Context, coord GridCoordinate, win TimeWindow) ([]Row, error)
	ShortTermForecast(ctx context.Context, coord GridCoordinate, win TimeWindow) ([]Row, error)
}

// MidTermSource abstracts the mid-term forecast upstream. issue is the
// publication timestamp in yyyyMMddHHmm form.
type MidTermSource interface {
	Temperature(ctx context.Context, regID, issue string) (MidTermRow, error)
	Land(ctx context.Context, regID, issue string) (MidTermRow, error)
}

// AirQualitySource abstracts the air-quality upstream, queried by
// monitoring-station name.
type AirQualitySource interface {
	StationObservation(ctx context.Context, station string) (AirRow, error)
}

// StationDirectory resolves a grid cell to its monitoring station and
// mid-term region codes.
type StationDirectory interface {
	Lookup(coord GridCoordinate) StationInfo
}
