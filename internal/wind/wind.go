// Package wind fetches current wind observations and resolves them into
// head/cross components relative to a shot's target bearing.
//
// Observations are cached per rounded coordinate pair with a short TTL so a
// burst of questions about the same tee does not hammer the weather service.
// A fetch failure falls back to the last cached observation regardless of
// staleness, and to calm air when nothing was ever cached. Wind lookups
// degrade; they do not fail the conversation.
package wind

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// defaultTTL is how long a cached observation is considered current.
	defaultTTL = 60 * time.Second

	// calmThreshold is the component magnitude in m/s below which the
	// summary treats the wind as neutral in that axis.
	calmThreshold = 0.5

	// msToMph converts metres per second to miles per hour.
	msToMph = 2.23694
)

// Observation is a raw wind reading: speed in m/s and the meteorological
// origin direction in degrees (the direction the wind blows FROM).
type Observation struct {
	SpeedMS          float64
	DirectionFromDeg float64
}

// Fetcher obtains the current wind observation for a coordinate pair.
// Implementations should enforce their own request timeout.
type Fetcher interface {
	CurrentWind(ctx context.Context, lat, lon float64) (Observation, error)
}

// Source records where a [Wind] value came from.
type Source string

const (
	// SourceLive means the observation was fetched on this call.
	SourceLive Source = "live"

	// SourceCached means a fresh cache entry was used without a fetch.
	SourceCached Source = "cached"

	// SourceStale means the fetch failed and an expired cache entry was
	// used instead.
	SourceStale Source = "stale"

	// SourceCalm means the fetch failed and no cache entry existed; the
	// wind defaults to calm air.
	SourceCalm Source = "calm"
)

// Wind is a resolved wind reading relative to a target bearing.
type Wind struct {
	// SpeedMS is the raw wind speed in m/s.
	SpeedMS float64

	// DirectionFromDeg is the meteorological origin direction.
	DirectionFromDeg int

	// HeadwindMS is the along-target component; positive opposes the shot.
	HeadwindMS float64

	// CrosswindMS is the perpendicular component; positive pushes the ball
	// right-to-left relative to the target line.
	CrosswindMS float64

	// Summary is a short spoken-friendly description, e.g.
	// "11 mph, headwind, right-to-left".
	Summary string

	// Source records how this reading was obtained.
	Source Source
}

// ─── Model ────────────────────────────────────────────────────────────────────

type cacheEntry struct {
	at  time.Time
	obs Observation
}

// Model resolves wind for shot bearings with caching and graceful fallback.
// Safe for concurrent use.
type Model struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry

	// group collapses concurrent fetches for the same cache key into a
	// single upstream request.
	group singleflight.Group
}

// Option is a functional option for configuring a [Model].
type Option func(*Model)

// WithFetcher replaces the default open-meteo fetcher. Used by tests and by
// deployments with a different weather supplier.
func WithFetcher(f Fetcher) Option {
	return func(m *Model) { m.fetcher = f }
}

// WithTTL overrides the cache TTL. Default: 60s.
func WithTTL(ttl time.Duration) Option {
	return func(m *Model) { m.ttl = ttl }
}

// WithClock overrides the time source. Tests use this to expire cache
// entries without sleeping.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// New constructs a wind Model. Without options it fetches from open-meteo
// with a 60-second cache TTL.
func New(opts ...Option) *Model {
	m := &Model{
		fetcher: NewOpenMeteo(),
		ttl:     defaultTTL,
		now:     time.Now,
		cache:   make(map[string]cacheEntry),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Wind resolves the current wind at (lat, lon) against targetBearingDeg.
// It never returns a degraded-to-useless value silently: inspect
// [Wind.Source] to see whether the reading is live, cached, stale, or calm
// fallback.
func (m *Model) Wind(ctx context.Context, lat, lon float64, targetBearingDeg int) Wind {
	obs, source := m.observe(ctx, lat, lon)

	head, cross := Components(obs.SpeedMS, obs.DirectionFromDeg, float64(targetBearingDeg))
	return Wind{
		SpeedMS:          obs.SpeedMS,
		DirectionFromDeg: int(math.Round(obs.DirectionFromDeg)),
		HeadwindMS:       head,
		CrosswindMS:      cross,
		Summary:          Summarize(obs.SpeedMS, head, cross),
		Source:           source,
	}
}

// observe returns the observation for (lat, lon), consulting the cache first
// and falling back per the degradation policy.
func (m *Model) observe(ctx context.Context, lat, lon float64) (Observation, Source) {
	key := cacheKey(lat, lon)

	m.mu.Lock()
	entry, cached := m.cache[key]
	fresh := cached && m.now().Sub(entry.at) <= m.ttl
	m.mu.Unlock()

	if fresh {
		return entry.obs, SourceCached
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		obs, err := m.fetcher.CurrentWind(ctx, lat, lon)
		if err != nil {
			return Observation{}, err
		}
		m.mu.Lock()
		m.cache[key] = cacheEntry{at: m.now(), obs: obs}
		m.mu.Unlock()
		return obs, nil
	})
	if err == nil {
		return v.(Observation), SourceLive
	}

	// One fallback to cache, however stale; no retry loop.
	if cached {
		return entry.obs, SourceStale
	}
	return Observation{}, SourceCalm
}

// cacheKey rounds coordinates to 4 decimal places (~11 m), so nearby
// requests share an observation.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// ─── Geometry ─────────────────────────────────────────────────────────────────

// Components decomposes a wind observation against a target bearing.
//
// directionFromDeg is the meteorological origin (0 = from north, 90 = from
// east); the wind blows toward directionFromDeg+180. theta is the signed
// angle between that to-direction and the target bearing, normalized to
// (-180°, 180°]. Positive headwind opposes the shot; positive crosswind
// pushes right-to-left relative to the target line.
func Components(speedMS, directionFromDeg, targetBearingDeg float64) (headwindMS, crosswindMS float64) {
	toDeg := math.Mod(directionFromDeg+180, 360)
	theta := math.Mod(toDeg-targetBearingDeg, 360) * math.Pi / 180
	if theta > math.Pi {
		theta -= 2 * math.Pi
	}
	if theta <= -math.Pi {
		theta += 2 * math.Pi
	}
	headwindMS = -speedMS * math.Cos(theta)
	crosswindMS = -speedMS * math.Sin(theta)
	return headwindMS, crosswindMS
}

// Summarize renders a wind reading as a short spoken phrase: speed in whole
// mph, a headwind/tailwind/neutral qualifier, and a crosswind direction when
// the crosswind component is at least 0.5 m/s.
func Summarize(speedMS, headwindMS, crosswindMS float64) string {
	summary := fmt.Sprintf("%.0f mph", speedMS*msToMph)

	switch {
	case math.Abs(headwindMS) < calmThreshold:
		summary += ", neutral wind"
	case headwindMS > 0:
		summary += ", headwind"
	default:
		summary += ", tailwind"
	}

	if math.Abs(crosswindMS) >= calmThreshold {
		if crosswindMS > 0 {
			summary += ", right-to-left"
		} else {
			summary += ", left-to-right"
		}
	}
	return summary
}
