// Package station maps grid cells to the monitoring stations and mid-term
// forecast regions serving them. The table is loaded once at startup and
// read-only afterwards.
package station

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kgrid/weather-gateway/internal/weather"
)

//go:embed stations.json
var embeddedTable []byte

// seoulKey is the fallback entry for coordinates outside the table.
const seoulKey = "60,127"

// Table resolves grid cells to station info.
type Table struct {
	entries  map[string]weather.StationInfo
	fallback weather.StationInfo
}

// Load builds the table from the given JSON file, or from the embedded
// default table when path is empty.
func Load(path string) (*Table, error) {
	raw := embeddedTable
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read station table: %w", err)
		}
	}

	var entries map[string]weather.StationInfo
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse station table: %w", err)
	}

	fallback, ok := entries[seoulKey]
	if !ok {
		return nil, fmt.Errorf("station table is missing the default entry %q", seoulKey)
	}
	return &Table{entries: entries, fallback: fallback}, nil
}

// Lookup returns the station info for a grid cell, falling back to the
// default (Seoul) entry for unmapped coordinates.
func (t *Table) Lookup(coord weather.GridCoordinate) weather.StationInfo {
	if info, ok := t.entries[coord.Key()]; ok {
		return info
	}
	return t.fallback
}
