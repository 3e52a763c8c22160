package weather

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/kgrid/weather-gateway/internal/cache"
)

// dataClass describes one cacheable upstream query type: its key namespace,
// how long a normalized result stays valid, and whether an empty result is
// a legitimate state worth caching. Live classes cache empty results ("no
// data yet" is real information); date-scoped forecast grids do not, so a
// later call can retry sooner.
type dataClass struct {
	name       string
	ttl        time.Duration
	cacheEmpty bool
}

var (
	classLive      = dataClass{name: "ncst", ttl: 5 * time.Minute, cacheEmpty: true}
	classUltraFcst = dataClass{name: "ultrafcst", ttl: 5 * time.Minute, cacheEmpty: false}
	classShortFcst = dataClass{name: "vilagefcst", ttl: 3 * time.Hour, cacheEmpty: false}
	classMidTemps  = dataClass{name: "midta", ttl: 6 * time.Hour, cacheEmpty: false}
	classMidLand   = dataClass{name: "midland", ttl: 6 * time.Hour, cacheEmpty: false}
	classAir       = dataClass{name: "air", ttl: 5 * time.Minute, cacheEmpty: true}
)

// fetchThrough is the read-through cache around one upstream call: check
// the cache, on a miss fetch and normalize, then populate with the class
// TTL. Cache failures never surface: an unreadable or corrupt entry is a
// miss, a failed write just means the next caller fetches again.
func fetchThrough[T any](
	ctx context.Context,
	store cache.Store,
	log zerolog.Logger,
	class dataClass,
	key string,
	isEmpty func(T) bool,
	fetch func(context.Context) (T, error),
) (T, error) {
	var zero T
	cacheKey := class.name + ":" + key

	raw, found, err := store.Get(ctx, cacheKey)
	if err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("cache read failed; fetching upstream")
	} else if found {
		var cached T
		if err := json.Unmarshal([]byte(raw), &cached); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("corrupt cache entry; fetching upstream")
		} else {
			return cached, nil
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	if !class.cacheEmpty && isEmpty(value) {
		return value, nil
	}

	if payload, err := json.Marshal(value); err == nil {
		if err := store.Set(ctx, cacheKey, string(payload), class.ttl); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("cache write failed")
		}
	}
	return value, nil
}

func emptyReading(r Reading) bool    { return len(r) == 0 }
func emptyGrid(g ForecastGrid) bool  { return len(g) == 0 }
func emptyTemps(t MidTermTemps) bool { return len(t.Min) == 0 && len(t.Max) == 0 }
func emptyLand(l MidTermLand) bool   { return len(l.SkyAM) == 0 && len(l.SkyPM) == 0 }
