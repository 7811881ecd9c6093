// Package caddie turns final utterances into spoken recommendations. The
// Composer is the pipeline's decision stage: it classifies each utterance,
// resolves session context (handicap, course location, conditions, hole
// layout), builds the course-management prompt, and narrates the reply.
package caddie

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/JamieWonderchild/ai-golf-caddie/internal/binning"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/correction"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/geocode"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/intent"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/session"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/stats"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/wind"
	"github.com/JamieWonderchild/ai-golf-caddie/pkg/metrics"
	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/llm"
	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/tts"
)

const (
	llmTemperature = 0.7
	llmMaxTokens   = 180
)

// Option is a functional option for configuring a Composer.
type Option func(*Composer)

// WithStats wires the handicap statistics table. Enables the prompt's
// performance-data block and distance-claim validation during parsing.
func WithStats(t *stats.Table) Option {
	return func(c *Composer) {
		c.stats = t
	}
}

// WithGeocoder enables course lookup when the player names a course.
func WithGeocoder(g *geocode.Client) Option {
	return func(c *Composer) {
		c.geo = g
	}
}

// WithCorrector enables phonetic repair of transcripts before parsing.
func WithCorrector(cr *correction.Corrector) Option {
	return func(c *Composer) {
		c.corrector = cr
	}
}

// WithRoundLog wires the per-player shot log. binSize is the distance bin
// width in yards used when looking up go-to club hints.
func WithRoundLog(rl *session.RoundLog, binSize int) Option {
	return func(c *Composer) {
		c.roundLog = rl
		if binSize > 0 {
			c.binSize = binSize
		}
	}
}

// WithMetrics records per-stage latencies and counters.
func WithMetrics(m *metrics.PipelineStats) Option {
	return func(c *Composer) {
		c.metrics = m
	}
}

// WithDefaultLocation sets the fallback coordinates and target bearing used
// until the player names a course.
func WithDefaultLocation(lat, lon float64, bearing int) Option {
	return func(c *Composer) {
		c.defaultLat = lat
		c.defaultLon = lon
		c.bearing = bearing
	}
}

// WithOutput redirects console output (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(c *Composer) {
		c.out = w
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Composer) {
		c.log = log
	}
}

// Composer handles one final utterance at a time. It is driven by the
// sequencer worker, so HandleFinal never runs concurrently with itself; the
// session state it touches is nevertheless safe for concurrent readers.
type Composer struct {
	llm     llm.Provider
	speaker tts.Speaker
	wind    *wind.Model
	state   *session.State
	parser  *intent.Parser

	stats     *stats.Table
	geo       *geocode.Client
	corrector *correction.Corrector
	roundLog  *session.RoundLog
	metrics   *metrics.PipelineStats

	defaultLat float64
	defaultLon float64
	bearing    int
	binSize    int

	// pending is the last advised shot awaiting an outcome report, and
	// lastWindBin the wind context it was played in. Only the sequencer
	// worker touches these.
	pending     *session.Shot
	lastWindBin string

	out io.Writer
	log *slog.Logger
}

// New creates a Composer. provider, speaker, windModel and state are required;
// everything else is optional.
func New(provider llm.Provider, speaker tts.Speaker, windModel *wind.Model, state *session.State, opts ...Option) (*Composer, error) {
	if provider == nil {
		return nil, fmt.Errorf("caddie: llm provider must not be nil")
	}
	if speaker == nil {
		return nil, fmt.Errorf("caddie: speaker must not be nil")
	}
	if windModel == nil {
		return nil, fmt.Errorf("caddie: wind model must not be nil")
	}
	if state == nil {
		return nil, fmt.Errorf("caddie: session state must not be nil")
	}

	c := &Composer{
		llm:     provider,
		speaker: speaker,
		wind:    windModel,
		state:   state,
		binSize: binning.DefaultDistanceBinSize,
		out:     os.Stdout,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}

	var parserOpts []intent.ParserOption
	if c.stats != nil {
		parserOpts = append(parserOpts, intent.WithValidator(c.stats))
	}
	c.parser = intent.NewParser(parserOpts...)

	return c, nil
}

// HandleFinal processes one final transcript end to end. It matches the
// sequencer.Handler signature. Blank transcripts are ignored.
func (c *Composer) HandleFinal(ctx context.Context, transcript string) error {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil
	}
	if c.metrics != nil {
		c.metrics.IncrUtterances()
	}

	if c.corrector != nil {
		fixed, changes := c.corrector.Correct(transcript)
		if len(changes) > 0 {
			c.log.Debug("transcript corrected", "from", transcript, "to", fixed)
			transcript = fixed
		}
	}

	fmt.Fprintf(c.out, "🎤 Transcript: %s\n", transcript)

	if c.recordOutcome(ctx, transcript) {
		fmt.Fprintln(c.out, "🎧 Ready for next question...")
		return nil
	}

	kind := intent.Classify(transcript)

	sessHandicap := -1
	if h, ok := c.state.Handicap(); ok {
		sessHandicap = h
	}
	parsed := c.parser.Parse(transcript, sessHandicap)

	// A handicap spoken mid-round overrides whatever the session held.
	if parsed.HasHandicap {
		c.state.SetHandicap(parsed.Handicap)
		c.log.Debug("handicap updated from speech", "handicap", parsed.Handicap)
	}

	c.refreshCourseContext(ctx, transcript)

	if kind == intent.Weather {
		c.narrateConditions(ctx)
		return nil
	}
	return c.adviseShot(ctx, transcript, parsed)
}

// refreshCourseContext geocodes the course when the player names one and
// silently prefetches wind for the new coordinates. Failures are logged and
// otherwise ignored; the session keeps its previous location.
func (c *Composer) refreshCourseContext(ctx context.Context, transcript string) {
	if c.geo == nil || !session.MentionsCourse(transcript) {
		return
	}

	name := geocode.ExtractCourseName(transcript)
	lat, lon, err := c.geo.Course(ctx, name)
	if err != nil {
		c.log.Debug("course lookup failed", "query", name, "error", err)
		return
	}
	c.state.SetCoordinates(lat, lon)

	w := c.wind.Wind(ctx, lat, lon, c.bearing)
	c.state.SetConditions(w.Summary)
	c.lastWindBin = binning.BinWind(w.HeadwindMS, w.CrosswindMS)
	c.log.Debug("course context refreshed",
		"course", name, "lat", lat, "lon", lon, "conditions", w.Summary)
}

// narrateConditions fetches wind for the session's location and speaks the
// summary. The wind model degrades internally (cached, stale, calm), so this
// always produces something to say.
func (c *Composer) narrateConditions(ctx context.Context) {
	lat, lon := c.coords()
	w := c.wind.Wind(ctx, lat, lon, c.bearing)
	c.state.SetConditions(w.Summary)
	c.lastWindBin = binning.BinWind(w.HeadwindMS, w.CrosswindMS)

	fmt.Fprintln(c.out, "--- Conditions ---")
	fmt.Fprintln(c.out, w.Summary)
	c.speak(ctx, w.Summary)
	fmt.Fprintln(c.out, "🎧 Ready for next question...")
}

// adviseShot builds the course-management prompt, asks the LLM, and narrates
// the reply.
func (c *Composer) adviseShot(ctx context.Context, transcript string, parsed intent.ParsedIntent) error {
	c.state.ObserveHoleChange(transcript)
	c.state.ObserveLayout(transcript)

	lat, lon := c.coords()
	handicap, hasHandicap := c.state.Handicap()

	in := PromptInput{
		Transcript:  transcript,
		Handicap:    handicap,
		HasHandicap: hasHandicap,
		Lat:         lat,
		Lon:         lon,
		Bearing:     c.bearing,
		History:     c.state.History(),
		Conditions:  c.state.Conditions(),
		HoleLayout:  c.state.HoleLayout(),
		Distance:    parsed.DistanceYards,
		Warning:     parsed.ValidationWarning,
		GoToHint:    c.goToHint(ctx, parsed),
	}
	prompt := BuildPrompt(in, c.stats)

	fmt.Fprintln(c.out, "🤔 Processing your request...")

	start := time.Now()
	resp, err := c.llm.Complete(ctx, llm.Request{
		System:      systemRole,
		Prompt:      prompt,
		Temperature: llmTemperature,
		MaxTokens:   llmMaxTokens,
	})
	if c.metrics != nil {
		c.metrics.RecordLLM(time.Since(start))
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.IncrErrors()
		}
		fmt.Fprintf(c.out, "Advice error: %v\n", err)
		return fmt.Errorf("caddie: completion: %w", err)
	}

	reply := strings.TrimSpace(resp.Text)
	fmt.Fprintf(c.out, "🧠 Response: %s\n", reply)
	c.speak(ctx, reply)

	c.state.AppendExchange(session.Exchange{Utterance: transcript, Reply: reply})
	c.rememberShot(parsed)
	fmt.Fprintln(c.out, "🎧 Ready for next question...")
	return nil
}

// rememberShot stashes the advised club/distance so a following outcome
// report ("hit it to 10 feet") can be logged against it.
func (c *Composer) rememberShot(parsed intent.ParsedIntent) {
	if c.roundLog == nil || parsed.Club == "" || parsed.DistanceYards <= 0 {
		return
	}
	bin, err := binning.BinDistance(parsed.DistanceYards, c.binSize)
	if err != nil {
		return
	}
	c.pending = &session.Shot{
		Club:        parsed.Club,
		DistanceBin: bin,
		WindBin:     c.lastWindBin,
	}
}

// recordOutcome logs the utterance as the previous shot's outcome when it
// reads as one. Round-log failures are advisory and never fail the turn.
func (c *Composer) recordOutcome(ctx context.Context, transcript string) bool {
	if c.roundLog == nil || c.pending == nil {
		return false
	}
	outcome, ok := parseOutcome(transcript)
	if !ok {
		return false
	}

	shot := *c.pending
	shot.Hit = outcome.Hit
	shot.ProximityFt = outcome.ProximityFt
	c.pending = nil

	if err := c.roundLog.Record(ctx, shot); err != nil {
		c.log.Debug("round log write failed", "club", shot.Club, "error", err)
		return true
	}
	c.log.Debug("shot outcome recorded",
		"club", shot.Club, "distance_bin", shot.DistanceBin,
		"hit", shot.Hit, "proximity_ft", shot.ProximityFt)
	return true
}

// goToHint looks up a proven go-to club hint for the parsed club/distance
// pair. Returns "" when the round log is absent or has nothing to say.
func (c *Composer) goToHint(ctx context.Context, parsed intent.ParsedIntent) string {
	if c.roundLog == nil || parsed.Club == "" || parsed.DistanceYards <= 0 {
		return ""
	}
	bin, err := binning.BinDistance(parsed.DistanceYards, c.binSize)
	if err != nil {
		return ""
	}
	hint, ok, err := c.roundLog.GoToHint(ctx, parsed.Club, bin)
	if err != nil {
		c.log.Debug("go-to hint lookup failed", "club", parsed.Club, "bin", bin, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return hint
}

// coords resolves the session's coordinates, falling back to the configured
// course default.
func (c *Composer) coords() (float64, float64) {
	if lat, lon, ok := c.state.Coordinates(); ok {
		return lat, lon
	}
	return c.defaultLat, c.defaultLon
}

// speak narrates text, recording latency. Narration failures are reported but
// do not abort the turn: the reply is already on screen.
func (c *Composer) speak(ctx context.Context, text string) {
	start := time.Now()
	err := c.speaker.Speak(ctx, text)
	if c.metrics != nil {
		c.metrics.RecordTTS(time.Since(start))
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.IncrErrors()
		}
		c.log.Warn("narration failed", "error", err)
	}
}
