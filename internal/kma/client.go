// Package kma implements the upstream clients for the KMA village-forecast
// and mid-term-forecast services.
package kma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/kgrid/weather-gateway/internal/weather"
)

const (
	defaultVillageURL = "http://apis.data.go.kr/1360000/VilageFcstInfoService_2.0"
	defaultMidTermURL = "http://apis.data.go.kr/1360000/MidFcstInfoService"

	// resultNoData is the KMA header code for a legitimately empty result
	// set, as opposed to an error.
	resultNoData = "03"

	// shortTermMaxRetries bounds the retry-on-transport-failure policy for
	// the short-term forecast (3 attempts total).
	shortTermMaxRetries = 2
)

// Client talks to the village and mid-term forecast services. It satisfies
// weather.ForecastSource and weather.MidTermSource.
type Client struct {
	serviceKey string
	villageURL string
	midTermURL string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	log        zerolog.Logger
}

// NewClient creates a Client sharing the given HTTP client.
func NewClient(httpClient *http.Client, serviceKey string, log zerolog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kma",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		serviceKey: serviceKey,
		villageURL: defaultVillageURL,
		midTermURL: defaultMidTermURL,
		httpClient: httpClient,
		circuit:    cb,
		log:        log,
	}
}

// SetBaseURLs overrides the upstream endpoints, for tests.
func (c *Client) SetBaseURLs(village, midTerm string) {
	c.villageURL = village
	c.midTermURL = midTerm
}

// wireRow is the village-forecast item shape. Observation rows carry
// obsrValue, forecast rows fcstValue plus a target date/time.
type wireRow struct {
	Category  string `json:"category"`
	ObsrValue string `json:"obsrValue"`
	FcstValue string `json:"fcstValue"`
	FcstDate  string `json:"fcstDate"`
	FcstTime  string `json:"fcstTime"`
}

type envelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body *struct {
			Items json.RawMessage `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

// LiveObservation fetches the on-the-hour observation rows for a cell.
func (c *Client) LiveObservation(ctx context.Context, coord weather.GridCoordinate, win weather.TimeWindow) ([]weather.Row, error) {
	return c.villageRows(ctx, "getUltraSrtNcst", coord, win, 10)
}

// UltraShortForecast fetches the six-hour forecast rows for a cell.
func (c *Client) UltraShortForecast(ctx context.Context, coord weather.GridCoordinate, win weather.TimeWindow) ([]weather.Row, error) {
	return c.villageRows(ctx, "getUltraSrtFcst", coord, win, 60)
}

// ShortTermForecast fetches the three-day forecast rows for a cell. This is
// the one upstream call with a retry policy: transport failures back off
// exponentially for up to three attempts.
func (c *Client) ShortTermForecast(ctx context.Context, coord weather.GridCoordinate, win weather.TimeWindow) ([]weather.Row, error) {
	var rows []weather.Row
	operation := func() error {
		var err error
		rows, err = c.villageRows(ctx, "getVilageFcst", coord, win, 1000)
		if err == nil {
			return nil
		}
		var transportErr *weather.TransportError
		if errors.As(err, &transportErr) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		c.log.Warn().Err(err).Dur("backoff", wait).Msg("retrying short-term forecast fetch")
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), shortTermMaxRetries), ctx)
	if err := backoff.RetryNotify(operation, bo, notify); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) villageRows(ctx context.Context, op string, coord weather.GridCoordinate, win weather.TimeWindow, numRows int) ([]weather.Row, error) {
	params := url.Values{}
	params.Set("serviceKey", c.serviceKey)
	params.Set("pageNo", "1")
	params.Set("numOfRows", strconv.Itoa(numRows))
	params.Set("dataType", "JSON")
	params.Set("base_date", win.Date)
	params.Set("base_time", win.Time)
	params.Set("nx", strconv.Itoa(coord.NX))
	params.Set("ny", strconv.Itoa(coord.NY))

	body, err := c.getJSON(ctx, c.villageURL+"/"+op, params)
	if err != nil {
		return nil, err
	}

	items, empty, err := decodeEnvelope(op, body)
	if err != nil || empty {
		return nil, err
	}

	var wire []wireRow
	if err := json.Unmarshal(items, &wire); err != nil {
		return nil, &weather.ParseError{Source: op, Err: err}
	}

	rows := make([]weather.Row, 0, len(wire))
	for _, w := range wire {
		value := w.ObsrValue
		if value == "" {
			value = w.FcstValue
		}
		rows = append(rows, weather.Row{
			Category: w.Category,
			Value:    value,
			Date:     w.FcstDate,
			Time:     w.FcstTime,
		})
	}
	return rows, nil
}

// Temperature fetches a mid-term temperature row for a temperature region.
func (c *Client) Temperature(ctx context.Context, regID, issue string) (weather.MidTermRow, error) {
	return c.midTermRow(ctx, "getMidTa", regID, issue)
}

// Land fetches a mid-term land forecast row for a land region.
func (c *Client) Land(ctx context.Context, regID, issue string) (weather.MidTermRow, error) {
	return c.midTermRow(ctx, "getMidLandFcst", regID, issue)
}

func (c *Client) midTermRow(ctx context.Context, op, regID, issue string) (weather.MidTermRow, error) {
	params := url.Values{}
	params.Set("serviceKey", c.serviceKey)
	params.Set("pageNo", "1")
	params.Set("numOfRows", "10")
	params.Set("dataType", "JSON")
	params.Set("regId", regID)
	params.Set("tmFc", issue)

	body, err := c.getJSON(ctx, c.midTermURL+"/"+op, params)
	if err != nil {
		return nil, err
	}

	items, empty, err := decodeEnvelope(op, body)
	if err != nil || empty {
		return weather.MidTermRow{}, err
	}

	var rows []weather.MidTermRow
	if err := json.Unmarshal(items, &rows); err != nil {
		return nil, &weather.ParseError{Source: op, Err: err}
	}
	if len(rows) == 0 {
		return weather.MidTermRow{}, nil
	}
	return rows[0], nil
}

// decodeEnvelope unwraps the common response/header/body/items nesting.
// empty is true for the NO_DATA result code and for an item-less body.
func decodeEnvelope(op string, body []byte) (items json.RawMessage, empty bool, err error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false, &weather.ParseError{Source: op, Err: err}
	}

	header := env.Response.Header
	if header.ResultCode == resultNoData {
		return nil, true, nil
	}
	if env.Response.Body == nil {
		return nil, false, &weather.ParseError{Source: op, Err: fmt.Errorf("missing body (result %s %q)", header.ResultCode, header.ResultMsg)}
	}

	var itemHolder struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(env.Response.Body.Items, &itemHolder); err != nil {
		// The services serialize an empty item set as "".
		var s string
		if json.Unmarshal(env.Response.Body.Items, &s) == nil && s == "" {
			return nil, true, nil
		}
		return nil, false, &weather.ParseError{Source: op, Err: err}
	}
	if len(itemHolder.Item) == 0 {
		return nil, true, nil
	}
	return itemHolder.Item, false, nil
}

// getJSON performs one GET behind the circuit breaker and classifies
// failures into the upstream error taxonomy.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	op := path(endpoint)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
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
			return nil, &weather.TransportError{Source: op, Err: err}
		}
		return nil, err
	}
	return result.([]byte), nil
}

func path(endpoint string) string {
	for i := len(endpoint) - 1; i >= 0; i-- {
		if endpoint[i] == '/' {
			return endpoint[i+1:]
		}
	}
	return endpoint
}
