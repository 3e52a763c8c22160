// Package cctv implements the nearest-highway-camera lookup against the
// ITS national traffic information center. One bounding-box query, one
// linear nearest-neighbor scan; no caching.
package cctv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kgrid/weather-gateway/internal/weather"
)

const defaultBaseURL = "https://openapi.its.go.kr:9443/cctvInfo"

// searchRadiusDeg is the half-width of the bounding box around the query
// point, in degrees.
const searchRadiusDeg = 0.5

// ErrNoCamera is returned when the bounding box contains no camera with
// usable coordinates.
var ErrNoCamera = errors.New("no cctv found near the requested position")

// Camera is one highway camera.
type Camera struct {
	Name string  `json:"name"`
	URL  string  `json:"url"`
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(httpClient *http.Client, apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
	}
}

// SetBaseURL overrides the upstream endpoint, for tests.
func (c *Client) SetBaseURL(baseURL string) { c.baseURL = baseURL }

type wireCamera struct {
	Name   string `json:"cctvname"`
	URL    string `json:"cctvurl"`
	Type   string `json:"cctvtype"`
	CoordY string `json:"coordy"`
	CoordX string `json:"coordx"`
}

type envelope struct {
	Response *struct {
		Data []wireCamera `json:"data"`
	} `json:"response"`
}

// Nearest returns the camera closest to (lat, lng) within the search box.
func (c *Client) Nearest(ctx context.Context, lat, lng float64) (Camera, error) {
	const op = "cctvInfo"

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("type", "ex")
	params.Set("cctvType", "2")
	params.Set("minX", formatDeg(lng-searchRadiusDeg))
	params.Set("maxX", formatDeg(lng+searchRadiusDeg))
	params.Set("minY", formatDeg(lat-searchRadiusDeg))
	params.Set("maxY", formatDeg(lat+searchRadiusDeg))
	params.Set("getType", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Camera{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Camera{}, &weather.TransportError{Source: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return Camera{}, &weather.AuthError{Source: op}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return Camera{}, &weather.TransportError{Source: op, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Camera{}, &weather.TransportError{Source: op, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Camera{}, &weather.ParseError{Source: op, Err: err}
	}
	if env.Response == nil {
		return Camera{}, &weather.ParseError{Source: op, Err: fmt.Errorf("missing response object")}
	}

	best := Camera{}
	bestDist := -1.0
	for _, w := range env.Response.Data {
		y, errY := strconv.ParseFloat(w.CoordY, 64)
		x, errX := strconv.ParseFloat(w.CoordX, 64)
		if errY != nil || errX != nil {
			continue
		}
		dy, dx := y-lat, x-lng
		dist := dy*dy + dx*dx
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = Camera{Name: w.Name, URL: w.URL, Type: w.Type, Lat: y, Lng: x}
		}
	}
	if bestDist < 0 {
		return Camera{}, ErrNoCamera
	}
	return best, nil
}

func formatDeg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
