// Package air implements the upstream client for the AirKorea real-time
// station measurement service.
package air

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kgrid/weather-gateway/internal/weather"
)

const defaultBaseURL = "http://apis.data.go.kr/B552584/ArpltnInfoInqireSvc"

// Client fetches fine-dust readings per monitoring station. It satisfies
// weather.AirQualitySource.
type Client struct {
	serviceKey string
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
}

func NewClient(httpClient *http.Client, serviceKey string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "airkorea",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		serviceKey: serviceKey,
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		circuit:    cb,
	}
}

// SetBaseURL overrides the upstream endpoint, for tests.
func (c *Client) SetBaseURL(baseURL string) { c.baseURL = baseURL }

type wireItem struct {
	PM10Grade1h string `json:"pm10Grade1h"`
	PM10Grade   string `json:"pm10Grade"`
	PM25Grade1h string `json:"pm25Grade1h"`
	PM25Grade   string `json:"pm25Grade"`
	PM10Value   string `json:"pm10Value"`
	PM25Value   string `json:"pm25Value"`
	DataTime    string `json:"dataTime"`
}

type envelope struct {
	Response struct {
		Body *struct {
			Items []wireItem `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

// StationObservation returns the most recent record a station reported. A
// station with no recent record yields a zero AirRow, which normalization
// turns into the no-data sentinels.
func (c *Client) StationObservation(ctx context.Context, station string) (weather.AirRow, error) {
	const op = "getMsrstnAcctoRltmMesureDnsty"

	params := url.Values{}
	params.Set("serviceKey", c.serviceKey)
	params.Set("returnType", "json")
	params.Set("numOfRows", "1")
	params.Set("pageNo", "1")
	params.Set("stationName", station)
	params.Set("dataTerm", "DAILY")
	params.Set("ver", "1.3")

	result, err := c.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+op+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &weather.TransportError{Source: op, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			return nil, &weather.AuthError{Source: op}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			return nil, &weather.TransportError{Source: op, Status: resp.StatusCode}
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &weather.TransportError{Source: op, Err: err}
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return weather.AirRow{}, &weather.TransportError{Source: op, Err: err}
		}
		return weather.AirRow{}, err
	}

	var env envelope
	if err := json.Unmarshal(result.([]byte), &env); err != nil {
		return weather.AirRow{}, &weather.ParseError{Source: op, Err: err}
	}
	if env.Response.Body == nil {
		return weather.AirRow{}, &weather.ParseError{Source: op, Err: fmt.Errorf("missing body")}
	}
	if len(env.Response.Body.Items) == 0 {
		return weather.AirRow{}, nil
	}

	item := env.Response.Body.Items[0]
	return weather.AirRow{
		PM10Grade1h: item.PM10Grade1h,
		PM10Grade:   item.PM10Grade,
		PM25Grade1h: item.PM25Grade1h,
		PM25Grade:   item.PM25Grade,
		PM10Value:   item.PM10Value,
		PM25Value:   item.PM25Value,
		DataTime:    item.DataTime,
	}, nil
}
