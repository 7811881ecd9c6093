// Command caddie is a voice golf caddie: it listens to the player over the
// microphone, works out what is being asked, and speaks a club
// recommendation grounded in wind conditions and per-handicap statistics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JamieWonderchild/ai-golf-caddie/internal/app"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/config"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/wind"
	sttmock "github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/stt/mock"
	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/tts"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "caddie",
		Short:         "Voice golf caddie with wind-aware, handicap-aware club advice",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newWeatherCmd(), newListenCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the caddie version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newWeatherCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weather <lat> <lon> <bearing>",
		Short: "Print current wind conditions for a course location",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q: %w", args[0], err)
			}
			lon, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q: %w", args[1], err)
			}
			bearing, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid bearing %q: %w", args[2], err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			w := wind.New().Wind(ctx, lat, lon, bearing)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wind: %s\n", w.Summary)
			fmt.Fprintf(out, "Headwind: %.1f m/s\n", w.HeadwindMS)
			fmt.Fprintf(out, "Crosswind: %.1f m/s\n", w.CrosswindMS)
			return nil
		},
	}
}

func newListenCmd() *cobra.Command {
	var (
		configPath string
		mock       bool
		lat        float64
		lon        float64
		bearing    int
		handicap   int
		language   string
		device     string
	)

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Live mic: transcribe speech and speak recommendations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// CLI flags override file values when set.
			flags := cmd.Flags()
			if flags.Changed("lat") {
				cfg.Course.Lat = lat
			}
			if flags.Changed("lon") {
				cfg.Course.Lon = lon
			}
			if flags.Changed("bearing") {
				cfg.Course.Bearing = bearing
			}
			if flags.Changed("handicap") {
				cfg.Handicap = &handicap
			}
			if flags.Changed("language") {
				cfg.Providers.STT.Language = language
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.LogLevel.SlogLevel(),
			}))
			slog.SetDefault(logger)

			if !mock && cfg.Providers.STT.APIKey == "" {
				return fmt.Errorf("SPEECHMATICS_API_KEY not set")
			}

			opts := []app.Option{
				app.WithLogger(logger),
				app.WithCaptureDevice(device),
			}
			if mock {
				opts = append(opts,
					app.WithSTTProvider(mockTranscripts()),
					app.WithSpeaker(&tts.Console{}),
					app.WithAudioSource(app.SilentSource()),
				)
			}

			a, err := app.New(cfg, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = a.Run(ctx)
			a.Shutdown()
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the YAML configuration file")
	cmd.Flags().BoolVar(&mock, "mock", false, "replay scripted transcripts instead of using the microphone")
	cmd.Flags().Float64Var(&lat, "lat", 51.5074, "course latitude")
	cmd.Flags().Float64Var(&lon, "lon", -0.1278, "course longitude")
	cmd.Flags().IntVar(&bearing, "bearing", 0, "target bearing in degrees")
	cmd.Flags().IntVar(&handicap, "handicap", 20, "player handicap")
	cmd.Flags().StringVar(&language, "language", "en", "recognition language")
	cmd.Flags().StringVar(&device, "device", "", "microphone device name")
	return cmd
}

// loadConfig reads the config file when one is given, otherwise starts from
// the built-in defaults with environment overrides applied.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := config.Default()
	config.ApplyEnv(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mockTranscripts scripts a short exchange so the full pipeline can be
// exercised without a microphone or an STT credential.
func mockTranscripts() *sttmock.ScriptedProvider {
	return &sttmock.ScriptedProvider{Events: []sttmock.Event{
		{Text: "how's the wind", Delay: 500 * time.Millisecond},
		{Text: "how's the wind looking out there", Final: true, Delay: 300 * time.Millisecond},
		{Text: "I have 150 yards", Delay: 2 * time.Second},
		{Text: "I'm playing off 15 and I have 150 yards to the pin from the fairway", Final: true, Delay: 300 * time.Millisecond},
	}}
}
