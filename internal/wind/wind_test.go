package wind

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// countingFetcher returns a scripted observation and counts upstream calls.
type countingFetcher struct {
	mu    sync.Mutex
	calls int
	obs   Observation
	err   error
}

func (f *countingFetcher) CurrentWind(context.Context, float64, float64) (Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return Observation{}, f.err
	}
	return f.obs, nil
}

func (f *countingFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestComponents_WestWindNorthTarget(t *testing.T) {
	t.Parallel()

	// Wind from the west across a north-bound target pushes left-to-right.
	head, cross := Components(5, 270, 0)
	if math.Abs(head) >= 1.0 {
		t.Errorf("headwind = %v, want |headwind| < 1.0", head)
	}
	if cross >= -4.0 {
		t.Errorf("crosswind = %v, want < -4.0 (left-to-right)", cross)
	}
}

func TestComponents_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		speed         float64
		from, bearing float64
		wantHead      float64
		wantCross     float64
	}{
		{"pure headwind", 5, 0, 0, 5, 0},
		{"pure tailwind", 5, 180, 0, -5, 0},
		{"wind from east, north target", 5, 90, 0, 0, 5},
		{"headwind rotated bearing", 3, 45, 45, 3, 0},
		{"calm", 0, 123, 321, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			head, cross := Components(tt.speed, tt.from, tt.bearing)
			if math.Abs(head-tt.wantHead) > 1e-9 {
				t.Errorf("headwind = %v, want %v", head, tt.wantHead)
			}
			if math.Abs(cross-tt.wantCross) > 1e-9 {
				t.Errorf("crosswind = %v, want %v", cross, tt.wantCross)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		speed, head, cross float64
		want               string
	}{
		{"calm", 0, 0, 0, "0 mph, neutral wind"},
		{"headwind", 5, 5, 0, "11 mph, headwind"},
		{"tailwind with cross", 5, -3, 2, "11 mph, tailwind, right-to-left"},
		{"left-to-right", 5, 1, -4, "11 mph, headwind, left-to-right"},
		{"sub-threshold cross ignored", 2, 2, 0.4, "4 mph, headwind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Summarize(tt.speed, tt.head, tt.cross); got != tt.want {
				t.Errorf("Summarize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModel_CacheWithinTTL(t *testing.T) {
	t.Parallel()

	fetcher := &countingFetcher{obs: Observation{SpeedMS: 5, DirectionFromDeg: 270}}
	now := time.Now()
	m := New(WithFetcher(fetcher), WithClock(func() time.Time { return now }))

	w1 := m.Wind(context.Background(), 51.5074, -0.1278, 0)
	if w1.Source != SourceLive {
		t.Fatalf("first call Source = %q, want live", w1.Source)
	}

	w2 := m.Wind(context.Background(), 51.50741, -0.12781, 0)
	if w2.Source != SourceCached {
		t.Errorf("second call Source = %q, want cached (same rounded key)", w2.Source)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Errorf("fetcher calls = %d, want 1", got)
	}
}

func TestModel_RefetchAfterTTL(t *testing.T) {
	t.Parallel()

	fetcher := &countingFetcher{obs: Observation{SpeedMS: 5}}
	now := time.Now()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	m := New(WithFetcher(fetcher), WithClock(clock))

	m.Wind(context.Background(), 51.5, -0.1, 0)

	mu.Lock()
	now = now.Add(61 * time.Second)
	mu.Unlock()

	w := m.Wind(context.Background(), 51.5, -0.1, 0)
	if w.Source != SourceLive {
		t.Errorf("post-TTL Source = %q, want live", w.Source)
	}
	if got := fetcher.callCount(); got != 2 {
		t.Errorf("fetcher calls = %d, want exactly 2", got)
	}
}

func TestModel_StaleFallback(t *testing.T) {
	t.Parallel()

	fetcher := &countingFetcher{obs: Observation{SpeedMS: 7, DirectionFromDeg: 90}}
	now := time.Now()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	m := New(WithFetcher(fetcher), WithClock(clock))

	m.Wind(context.Background(), 51.5, -0.1, 0)

	// Expire the entry and break the upstream.
	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()
	fetcher.mu.Lock()
	fetcher.err = errors.New("network down")
	fetcher.mu.Unlock()

	w := m.Wind(context.Background(), 51.5, -0.1, 0)
	if w.Source != SourceStale {
		t.Errorf("Source = %q, want stale", w.Source)
	}
	if w.SpeedMS != 7 {
		t.Errorf("SpeedMS = %v, want stale cached 7", w.SpeedMS)
	}
}

func TestModel_CalmFallback(t *testing.T) {
	t.Parallel()

	fetcher := &countingFetcher{err: errors.New("network down")}
	m := New(WithFetcher(fetcher))

	w := m.Wind(context.Background(), 51.5, -0.1, 0)
	if w.Source != SourceCalm {
		t.Errorf("Source = %q, want calm", w.Source)
	}
	if w.SpeedMS != 0 || w.HeadwindMS != 0 || w.CrosswindMS != 0 {
		t.Errorf("calm fallback not zero: %+v", w)
	}
}

func TestOpenMeteo_CurrentWind(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("wind_speed_unit"); got != "ms" {
			t.Errorf("wind_speed_unit = %q, want ms", got)
		}
		w.Write([]byte(`{"current":{"wind_speed_10m":4.5,"wind_direction_10m":225}}`))
	}))
	defer srv.Close()

	o := NewOpenMeteo(WithBaseURL(srv.URL))
	obs, err := o.CurrentWind(context.Background(), 51.5, -0.1)
	if err != nil {
		t.Fatalf("CurrentWind: %v", err)
	}
	if obs.SpeedMS != 4.5 || obs.DirectionFromDeg != 225 {
		t.Errorf("obs = %+v, want speed 4.5 from 225", obs)
	}
}

func TestOpenMeteo_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := NewOpenMeteo(WithBaseURL(srv.URL))
	if _, err := o.CurrentWind(context.Background(), 51.5, -0.1); err == nil {
		t.Error("expected error on HTTP 500")
	}
}
