package station

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kgrid/weather-gateway/internal/weather"
)

func TestLoadEmbedded(t *testing.T) {
	table, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	info := table.Lookup(weather.GridCoordinate{NX: 98, NY: 76})
	if info.AirStation != "부산진구" || info.LandRegID != "11H20000" || info.TempRegID != "11H20201" {
		t.Errorf("busan entry = %+v", info)
	}
}

func TestLookupFallsBackToSeoul(t *testing.T) {
	table, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	info := table.Lookup(weather.GridCoordinate{NX: 1, NY: 1})
	if info.AirStation != "종로구" {
		t.Errorf("unmapped cell should fall back to Seoul, got %+v", info)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	payload := `{"60,127": {"airStation": "시험", "landRegId": "11B00000", "tempRegId": "11B10101"}}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.Lookup(weather.GridCoordinate{NX: 60, NY: 127}).AirStation; got != "시험" {
		t.Errorf("AirStation = %q", got)
	}
}

func TestLoadRejectsTableWithoutDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	payload := `{"98,76": {"airStation": "부산진구", "landRegId": "11H20000", "tempRegId": "11H20201"}}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a table without the default entry")
	}
}
