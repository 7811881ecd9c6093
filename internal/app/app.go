// Package app wires the caddie subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems from the config, Run executes the listen loop until the context
// is cancelled or the transcript source ends, and Shutdown tears everything
// down and prints the pipeline statistics.
//
// For testing, inject mock implementations via functional options
// (WithSTTProvider, WithSpeaker, etc.). When an option is not provided, New
// creates real implementations through the provider registry.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JamieWonderchild/ai-golf-caddie/internal/caddie"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/config"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/correction"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/geocode"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/sequencer"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/session"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/stats"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/wind"
	"github.com/JamieWonderchild/ai-golf-caddie/pkg/metrics"
	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/llm"
	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/stt"
	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/tts"
)

// Capture audio format: 16 kHz mono signed 16-bit PCM, pushed to the STT
// stream in 100 ms chunks.
const (
	captureSampleRate = 16000
	captureChunkBytes = captureSampleRate * 2 / 10
)

// AudioSource opens a raw PCM byte stream for the given capture device.
// An empty device selects the platform default microphone.
type AudioSource func(ctx context.Context, device string) (io.ReadCloser, error)

// App owns all subsystem lifetimes and runs the voice pipeline.
type App struct {
	cfg *config.Config
	log *slog.Logger
	out io.Writer

	registry *config.Registry
	llm      llm.Provider
	sttProv  stt.Provider
	speaker  tts.Speaker

	audioSource AudioSource
	device      string

	state    *session.State
	roundLog *session.RoundLog
	composer *caddie.Composer
	seq      *sequencer.Sequencer
	stats    *metrics.PipelineStats
}

// Option configures an [App] before its subsystems are created.
type Option func(*App)

// WithRegistry replaces the provider registry used to build providers from
// the config.
func WithRegistry(r *config.Registry) Option {
	return func(a *App) { a.registry = r }
}

// WithLLMProvider injects a language-model provider, bypassing the registry.
func WithLLMProvider(p llm.Provider) Option {
	return func(a *App) { a.llm = p }
}

// WithSTTProvider injects a speech-to-text provider, bypassing the registry.
func WithSTTProvider(p stt.Provider) Option {
	return func(a *App) { a.sttProv = p }
}

// WithSpeaker injects a text-to-speech speaker, bypassing the registry.
func WithSpeaker(s tts.Speaker) Option {
	return func(a *App) { a.speaker = s }
}

// WithAudioSource replaces the default microphone capture. Mock runs use a
// source that produces no audio.
func WithAudioSource(src AudioSource) Option {
	return func(a *App) { a.audioSource = src }
}

// WithCaptureDevice selects the microphone device name passed to the audio
// source. Empty selects the platform default.
func WithCaptureDevice(device string) Option {
	return func(a *App) { a.device = device }
}

// WithOutput redirects console output. Default: os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(a *App) { a.log = log }
}

// New builds an App from cfg. Providers not injected via options are created
// through the registry; a missing credential surfaces here for STT and TTS
// and on first use for the LLM.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: config must not be nil")
	}

	a := &App{
		cfg: cfg,
		log: slog.Default(),
		out: os.Stdout,
	}
	for _, o := range opts {
		o(a)
	}
	if a.registry == nil {
		a.registry = config.DefaultRegistry()
	}
	if a.audioSource == nil {
		a.audioSource = micCapture
	}

	var err error
	if a.sttProv == nil {
		a.sttProv, err = a.registry.CreateSTT(cfg.Providers.STT)
		if err != nil {
			return nil, fmt.Errorf("app: create stt provider: %w", err)
		}
	}
	if a.llm == nil {
		a.llm, err = a.registry.CreateLLM(cfg.Providers.LLM)
		if err != nil {
			return nil, fmt.Errorf("app: create llm provider: %w", err)
		}
	}
	if a.speaker == nil {
		a.speaker, err = a.registry.CreateTTS(cfg.Providers.TTS)
		if err != nil {
			return nil, fmt.Errorf("app: create tts speaker: %w", err)
		}
	}

	table, err := stats.Load()
	if err != nil {
		return nil, fmt.Errorf("app: load handicap statistics: %w", err)
	}

	a.state = &session.State{}
	if cfg.Handicap != nil {
		a.state.SetHandicap(*cfg.Handicap)
	}

	a.stats = metrics.NewPipelineStats(0)

	composerOpts := []caddie.Option{
		caddie.WithStats(table),
		caddie.WithGeocoder(geocode.NewClient()),
		caddie.WithMetrics(a.stats),
		caddie.WithDefaultLocation(cfg.Course.Lat, cfg.Course.Lon, cfg.Course.Bearing),
		caddie.WithOutput(a.out),
		caddie.WithLogger(a.log),
	}

	if cfg.Correction.CorrectionEnabled() {
		var corrOpts []correction.Option
		if t := cfg.Correction.PhoneticThreshold; t > 0 {
			corrOpts = append(corrOpts, correction.WithPhoneticThreshold(t))
		}
		if t := cfg.Correction.FuzzyThreshold; t > 0 {
			corrOpts = append(corrOpts, correction.WithFuzzyThreshold(t))
		}
		composerOpts = append(composerOpts, caddie.WithCorrector(correction.New(corrOpts...)))
	}

	if cfg.RoundLog.Path != "" {
		a.roundLog, err = session.OpenRoundLog(cfg.RoundLog.Path,
			session.WithGoToThresholds(cfg.RoundLog.MinAttempts, cfg.RoundLog.MinHitRate, cfg.RoundLog.MaxProximityFt),
		)
		if err != nil {
			return nil, fmt.Errorf("app: open round log: %w", err)
		}
		composerOpts = append(composerOpts, caddie.WithRoundLog(a.roundLog, cfg.Binning.DistanceBinSize))
	}

	a.composer, err = caddie.New(a.llm, a.speaker, wind.New(), a.state, composerOpts...)
	if err != nil {
		return nil, fmt.Errorf("app: build composer: %w", err)
	}

	a.seq = sequencer.New(a.composer.HandleFinal,
		sequencer.WithDisplay(func(text string) {
			fmt.Fprintf(a.out, "\r🎤 %s", text)
		}),
		sequencer.WithLogger(a.log),
	)

	return a, nil
}

// Run opens the microphone and the STT stream and processes transcripts
// until ctx is cancelled or the transcript source ends. It blocks.
func (a *App) Run(ctx context.Context) error {
	if err := a.seq.Start(ctx); err != nil {
		return fmt.Errorf("app: start sequencer: %w", err)
	}

	stream, err := a.sttProv.StartStream(ctx, stt.StreamConfig{
		SampleRate: captureSampleRate,
		Channels:   1,
		Language:   a.cfg.Providers.STT.Language,
	})
	if err != nil {
		return fmt.Errorf("app: start stt stream: %w", err)
	}

	source, err := a.audioSource(ctx, a.device)
	if err != nil {
		stream.Close()
		return fmt.Errorf("app: open audio source: %w", err)
	}

	fmt.Fprintln(a.out, "🎧 Listening. Ask me about your shot or the wind.")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	// Unblock the audio read and the transcript channels on cancellation.
	go func() {
		<-gctx.Done()
		source.Close()
		stream.Close()
	}()

	g.Go(func() error { return a.pumpAudio(gctx, source, stream) })
	g.Go(func() error {
		a.consumeTranscripts(gctx, stream)
		cancel()
		return nil
	})

	return g.Wait()
}

// Shutdown stops the sequencer, closes the round log, and prints the
// pipeline statistics. Safe to call after Run returns.
func (a *App) Shutdown() {
	a.seq.Stop()
	if a.roundLog != nil {
		if err := a.roundLog.Close(); err != nil {
			a.log.Warn("closing round log", "error", err)
		}
	}
	fmt.Fprintf(a.out, "\n%s\n", a.stats.Snapshot())
}

// pumpAudio copies capture chunks into the STT stream until the source ends
// or the context is cancelled.
func (a *App) pumpAudio(ctx context.Context, source io.Reader, stream stt.SessionHandle) error {
	buf := make([]byte, captureChunkBytes)
	for {
		n, err := io.ReadFull(source, buf)
		if n > 0 {
			if serr := stream.SendAudio(buf[:n]); serr != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("app: send audio: %w", serr)
			}
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("app: read audio: %w", err)
		}
	}
}

// consumeTranscripts routes partials to the display and finals to the
// sequencer, recording STT latency from the first partial of an utterance to
// its final. It returns when both transcript channels are closed.
func (a *App) consumeTranscripts(ctx context.Context, stream stt.SessionHandle) {
	partials := stream.Partials()
	finals := stream.Finals()

	var utteranceStart time.Time
	for partials != nil || finals != nil {
		select {
		case t, ok := <-partials:
			if !ok {
				partials = nil
				continue
			}
			if utteranceStart.IsZero() {
				utteranceStart = time.Now()
			}
			if err := a.seq.Submit(ctx, sequencer.Event{Text: t.Text}); err != nil {
				a.log.Debug("partial dropped", "error", err)
			}
		case t, ok := <-finals:
			if !ok {
				finals = nil
				continue
			}
			if !utteranceStart.IsZero() {
				a.stats.RecordSTT(time.Since(utteranceStart))
				utteranceStart = time.Time{}
			}
			fmt.Fprintln(a.out)
			if err := a.seq.Submit(ctx, sequencer.Event{Text: t.Text, Final: true}); err != nil {
				a.log.Warn("final dropped", "error", err, "text", t.Text)
			}
		case <-ctx.Done():
			return
		}
	}
}
