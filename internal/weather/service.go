package weather

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kgrid/weather-gateway/internal/cache"
)

// upstreamTimeout bounds every single upstream call; an expired call is
// treated like any other transport failure.
const upstreamTimeout = 10 * time.Second

// Service composes the per-class cache-aside fetches into the current,
// hourly and weekly views. Every fan-out starts all fetches before awaiting
// any of them, and a failing source degrades to an empty partial result
// instead of failing the whole view.
type Service struct {
	store     cache.Store
	forecasts ForecastSource
	midterm   MidTermSource
	air       AirQualitySource
	stations  StationDirectory
	log       zerolog.Logger

	now     func() time.Time
	timeout time.Duration
}

// NewService creates a Service. All collaborators are constructed once at
// startup and never mutated afterwards.
func NewService(
	store cache.Store,
	forecasts ForecastSource,
	midterm MidTermSource,
	air AirQualitySource,
	stations StationDirectory,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:     store,
		forecasts: forecasts,
		midterm:   midterm,
		air:       air,
		stations:  stations,
		log:       log,
		now:       time.Now,
		timeout:   upstreamTimeout,
	}
}

// Current aggregates the live observation, today's forecast extremes, the
// nearest-hour sky state and air quality into one composite. Each source is
// fetched concurrently; a failed source contributes an empty part.
func (s *Service) Current(ctx context.Context, coord GridCoordinate) CurrentWeather {
	now := s.now()
	today := now.Format(DateLayout)
	station := s.stations.Lookup(coord)

	var (
		wg       sync.WaitGroup
		live     Reading
		extremes Reading
		sky      Reading
		airState Reading
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		live = s.partReading(ctx, coord, "live observation", s.liveReading)
	}()
	go func() {
		defer wg.Done()
		grid, err := s.shortTermGrid(ctx, coord)
		if err != nil {
			s.logSourceError("short-term forecast", coord.Key(), err)
			extremes = Reading{}
			return
		}
		extremes = ExtremesFromGrid(grid, today)
	}()
	go func() {
		defer wg.Done()
		grid, err := s.ultraShortGrid(ctx, coord)
		if err != nil {
			s.logSourceError("ultra-short forecast", coord.Key(), err)
			sky = Reading{}
			return
		}
		sky = SkyFromGrid(grid)
	}()
	go func() {
		defer wg.Done()
		reading, err := s.airReading(ctx, station.AirStation)
		if err != nil {
			s.logSourceError("air quality", station.AirStation, err)
			airState = Reading{}
			return
		}
		airState = reading
	}()
	wg.Wait()

	return CurrentWeather{
		Live:          live,
		DailyExtremes: extremes,
		Sky:           sky,
		AirQuality:    airState,
	}
}

// Hourly returns the merged 24-hour forecast timeline for a grid cell.
// Either grid failing leaves the other to carry the timeline alone.
func (s *Service) Hourly(ctx context.Context, coord GridCoordinate) []HourlySlot {
	short, ultra := s.forecastGrids(ctx, coord)
	return BuildHourlySeries(s.now(), short, ultra)
}

// Weekly returns the multi-day outlook: today plus two days aggregated from
// the hourly timeline, days three through seven from the mid-term forecast.
func (s *Service) Weekly(ctx context.Context, coord GridCoordinate) []DailySummary {
	now := s.now()
	station := s.stations.Lookup(coord)

	var (
		short ForecastGrid
		ultra ForecastGrid
		temps MidTermTemps
		land  MidTermLand
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		grid, err := s.shortTermGrid(gctx, coord)
		if err != nil {
			s.logSourceError("short-term forecast", coord.Key(), err)
			grid = ForecastGrid{}
		}
		short = grid
		return nil
	})
	g.Go(func() error {
		grid, err := s.ultraShortGrid(gctx, coord)
		if err != nil {
			s.logSourceError("ultra-short forecast", coord.Key(), err)
			grid = ForecastGrid{}
		}
		ultra = grid
		return nil
	})
	g.Go(func() error {
		t, err := s.midTermTemps(gctx, station.TempRegID)
		if err != nil {
			s.logSourceError("mid-term temperature", station.TempRegID, err)
			t = MidTermTemps{Min: map[int]float64{}, Max: map[int]float64{}}
		}
		temps = t
		return nil
	})
	g.Go(func() error {
		l, err := s.midTermLand(gctx, station.LandRegID)
		if err != nil {
			s.logSourceError("mid-term land forecast", station.LandRegID, err)
			l = MidTermLand{}
		}
		land = l
		return nil
	})
	_ = g.Wait() // every task downgrades its own failure

	near := AggregateDaily(now, BuildHourlySeries(now, short, ultra))
	mid := MidTermDaily(now, temps, land)
	return MergeHorizons(near, mid)
}

// forecastGrids fetches the short and ultra-short grids concurrently,
// downgrading either failure to an empty grid.
func (s *Service) forecastGrids(ctx context.Context, coord GridCoordinate) (ForecastGrid, ForecastGrid) {
	var (
		wg    sync.WaitGroup
		short = ForecastGrid{}
		ultra = ForecastGrid{}
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		grid, err := s.shortTermGrid(ctx, coord)
		if err != nil {
			s.logSourceError("short-term forecast", coord.Key(), err)
			return
		}
		short = grid
	}()
	go func() {
		defer wg.Done()
		grid, err := s.ultraShortGrid(ctx, coord)
		if err != nil {
			s.logSourceError("ultra-short forecast", coord.Key(), err)
			return
		}
		ultra = grid
	}()
	wg.Wait()
	return short, ultra
}

func (s *Service) partReading(
	ctx context.Context,
	coord GridCoordinate,
	source string,
	fetch func(context.Context, GridCoordinate) (Reading, error),
) Reading {
	reading, err := fetch(ctx, coord)
	if err != nil {
		s.logSourceError(source, coord.Key(), err)
		return Reading{}
	}
	return reading
}

// liveReading is the cache-aside fetch for the live observation class.
func (s *Service) liveReading(ctx context.Context, coord GridCoordinate) (Reading, error) {
	return fetchThrough(ctx, s.store, s.log, classLive, coord.Key(), emptyReading,
		func(ctx context.Context) (Reading, error) {
			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			rows, err := s.forecasts.LiveObservation(ctx, coord, LiveObservationWindow(s.now()))
			if err != nil {
				return nil, err
			}
			return NormalizeObservation(rows), nil
		})
}

func (s *Service) shortTermGrid(ctx context.Context, coord GridCoordinate) (ForecastGrid, error) {
	return fetchThrough(ctx, s.store, s.log, classShortFcst, coord.Key(), emptyGrid,
		func(ctx context.Context) (ForecastGrid, error) {
			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			rows, err := s.forecasts.ShortTermForecast(ctx, coord, ShortTermWindow(s.now()))
			if err != nil {
				return nil, err
			}
			return NormalizeShortTermGrid(rows), nil
		})
}

func (s *Service) ultraShortGrid(ctx context.Context, coord GridCoordinate) (ForecastGrid, error) {
	return fetchThrough(ctx, s.store, s.log, classUltraFcst, coord.Key(), emptyGrid,
		func(ctx context.Context) (ForecastGrid, error) {
			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			rows, err := s.forecasts.UltraShortForecast(ctx, coord, UltraShortWindow(s.now()))
			if err != nil {
				return nil, err
			}
			return NormalizeUltraShortGrid(rows), nil
		})
}

func (s *Service) midTermTemps(ctx context.Context, regID string) (MidTermTemps, error) {
	return fetchThrough(ctx, s.store, s.log, classMidTemps, regID, emptyTemps,
		func(ctx context.Context) (MidTermTemps, error) {
			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			row, err := s.midterm.Temperature(ctx, regID, MidTermIssue(s.now()))
			if err != nil {
				return MidTermTemps{}, err
			}
			return NormalizeMidTermTemps(row), nil
		})
}

func (s *Service) midTermLand(ctx context.Context, regID string) (MidTermLand, error) {
	return fetchThrough(ctx, s.store, s.log, classMidLand, regID, emptyLand,
		func(ctx context.Context) (MidTermLand, error) {
			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			row, err := s.midterm.Land(ctx, regID, MidTermIssue(s.now()))
			if err != nil {
				return MidTermLand{}, err
			}
			return NormalizeMidTermLand(row), nil
		})
}

func (s *Service) airReading(ctx context.Context, station string) (Reading, error) {
	return fetchThrough(ctx, s.store, s.log, classAir, station, emptyReading,
		func(ctx context.Context) (Reading, error) {
			ctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			row, err := s.air.StationObservation(ctx, station)
			if err != nil {
				return nil, err
			}
			return NormalizeAirQuality(row), nil
		})
}

// logSourceError records why a source contributed nothing. Auth and parse
// failures point at configuration or contract problems and log at error
// level; transport failures are expected weather of their own.
func (s *Service) logSourceError(source, key string, err error) {
	var authErr *AuthError
	var parseErr *ParseError
	event := s.log.Warn()
	if errors.As(err, &authErr) || errors.As(err, &parseErr) {
		event = s.log.Error()
	}
	event.Err(err).Str("source", source).Str("key", key).Msg("source degraded to empty result")
}
