package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kgrid/weather-gateway/internal/cache"
	"github.com/kgrid/weather-gateway/internal/cctv"
	"github.com/kgrid/weather-gateway/internal/weather"
)

type stubForecasts struct{}

func (stubForecasts) LiveObservation(context.Context, weather.GridCoordinate, weather.TimeWindow) ([]weather.Row, error) {
	return []weather.Row{{Category: "T1H", Value: "23.1"}}, nil
}

func (stubForecasts) UltraShortForecast(context.Context, weather.GridCoordinate, weather.TimeWindow) ([]weather.Row, error) {
	return nil, nil
}

func (stubForecasts) ShortTermForecast(context.Context, weather.GridCoordinate, weather.TimeWindow) ([]weather.Row, error) {
	return nil, nil
}

type stubMidTerm struct{}

func (stubMidTerm) Temperature(context.Context, string, string) (weather.MidTermRow, error) {
	return weather.MidTermRow{}, nil
}

func (stubMidTerm) Land(context.Context, string, string) (weather.MidTermRow, error) {
	return weather.MidTermRow{}, nil
}

type stubAir struct{}

func (stubAir) StationObservation(context.Context, string) (weather.AirRow, error) {
	return weather.AirRow{}, nil
}

type stubStations struct{}

func (stubStations) Lookup(weather.GridCoordinate) weather.StationInfo {
	return weather.StationInfo{AirStation: "종로구", LandRegID: "11B00000", TempRegID: "11B10101"}
}

func newTestApp(t *testing.T, cameras *cctv.Client) *fiber.App {
	t.Helper()
	service := weather.NewService(cache.NewMemoryStore(), stubForecasts{}, stubMidTerm{}, stubAir{}, stubStations{}, zerolog.Nop())

	app := fiber.New()
	RegisterRoutes(app, service, cameras)
	return app
}

func TestCurrentRoute(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?nx=60&ny=127", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Coordinate weather.GridCoordinate `json:"coordinate"`
		Weather    map[string]any         `json:"weather"`
	}
	payload, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("unmarshal %s: %v", payload, err)
	}
	if body.Coordinate.NX != 60 || body.Coordinate.NY != 127 {
		t.Errorf("coordinate = %+v", body.Coordinate)
	}
	if body.Weather["기온(°C)"] != 23.1 {
		t.Errorf("weather = %v", body.Weather)
	}
}

func TestCurrentRouteDefaultsToSeoul(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/weather/current", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Coordinate weather.GridCoordinate `json:"coordinate"`
	}
	payload, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatal(err)
	}
	if body.Coordinate.NX != 60 || body.Coordinate.NY != 127 {
		t.Errorf("coordinate = %+v", body.Coordinate)
	}
}

func TestGridValidation(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []string{
		"/api/v1/weather/current?nx=0",
		"/api/v1/weather/hourly?nx=150",
		"/api/v1/weather/weekly?ny=254",
		"/api/v1/weather/weekly?ny=-1",
	}
	for _, target := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, resp.StatusCode)
		}
	}
}

func TestHourlyAndWeeklyRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	for _, target := range []string{"/api/v1/weather/hourly", "/api/v1/weather/weekly"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status = %d", target, resp.StatusCode)
		}
	}
}

func TestCctvRouteNotRegisteredWithoutClient(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/cctv/nearest?lat=37.5&lng=127.0", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCctvRoute(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"response": {"data": [{"cctvname": "cam", "cctvurl": "http://cam/1", "cctvtype": "2", "coordy": "37.6", "coordx": "127.1"}]}}`))
	}))
	t.Cleanup(upstream.Close)

	cameras := cctv.NewClient(upstream.Client(), "its-key")
	cameras.SetBaseURL(upstream.URL)
	app := newTestApp(t, cameras)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/cctv/nearest?lat=37.5&lng=127.0", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var cam cctv.Camera
	payload, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(payload, &cam); err != nil {
		t.Fatal(err)
	}
	if cam.Name != "cam" || cam.Lat != 37.6 {
		t.Errorf("camera = %+v", cam)
	}
}

func TestCctvValidation(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("upstream must not be called for invalid input")
	}))
	t.Cleanup(upstream.Close)

	cameras := cctv.NewClient(upstream.Client(), "its-key")
	cameras.SetBaseURL(upstream.URL)
	app := newTestApp(t, cameras)

	tests := []string{
		"/api/v1/cctv/nearest",
		"/api/v1/cctv/nearest?lat=32&lng=127",
		"/api/v1/cctv/nearest?lat=37.5&lng=133",
	}
	for _, target := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, resp.StatusCode)
		}
	}
}
