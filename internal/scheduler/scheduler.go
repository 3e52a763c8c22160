// Package scheduler pre-warms the weather caches for a configured set of
// grid cells so the first request after a cache expiry does not pay the
// full upstream fan-out.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/kgrid/weather-gateway/internal/weather"
)

// warmTimeout bounds one full warm pass per coordinate.
const warmTimeout = 30 * time.Second

// Warmer periodically refreshes the current and hourly caches for the
// configured grid cells.
type Warmer struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	coords    []weather.GridCoordinate
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a Warmer.
func New(coords []weather.GridCoordinate, interval time.Duration, service *weather.Service, log zerolog.Logger) *Warmer {
	return &Warmer{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		coords:    coords,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic warm job and starts the underlying
// scheduler. With no coordinates configured it does nothing.
func (w *Warmer) Start() error {
	if len(w.coords) == 0 {
		w.log.Info().Msg("cache warmer: no coordinates configured")
		return nil
	}

	minutes := int(w.interval.Minutes())
	if minutes <= 0 {
		minutes = 5
	}

	_, err := w.scheduler.Every(minutes).Minutes().Do(w.warmAll)
	if err != nil {
		return err
	}

	w.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (w *Warmer) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}
}

func (w *Warmer) warmAll() {
	w.log.Debug().Int("coords", len(w.coords)).Msg("cache warmer: running")

	var wg sync.WaitGroup
	for _, coord := range w.coords {
		coord := coord
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
			defer cancel()

			w.service.Current(ctx, coord)
			w.service.Hourly(ctx, coord)
		}()
	}
	wg.Wait()
}
