package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by [ApplyEnv] for secrets that should not
// live in the config file.
const (
	EnvSpeechmaticsKey = "SPEECHMATICS_API_KEY"
	EnvOpenAIKey       = "OPENAI_API_KEY"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt": {"speechmatics", "mock"},
	"llm": {"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "mock"},
	"tts": {"speechmatics", "console", "mock"},
}

// Load reads the YAML configuration file at path, merges defaults and
// environment overrides, and returns a validated [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of [Default], applies
// environment overrides, and validates the result. Useful in tests where
// configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv fills in provider API keys from the environment when the file left
// them empty. The file value wins when both are present.
func ApplyEnv(cfg *Config) {
	if key := os.Getenv(EnvSpeechmaticsKey); key != "" {
		if cfg.Providers.STT.APIKey == "" {
			cfg.Providers.STT.APIKey = key
		}
		if cfg.Providers.TTS.APIKey == "" {
			cfg.Providers.TTS.APIKey = key
		}
	}
	if key := os.Getenv(EnvOpenAIKey); key != "" && cfg.Providers.LLM.APIKey == "" {
		cfg.Providers.LLM.APIKey = key
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	if cfg.Course.Lat < -90 || cfg.Course.Lat > 90 {
		errs = append(errs, fmt.Errorf("course.lat %.4f is out of range [-90, 90]", cfg.Course.Lat))
	}
	if cfg.Course.Lon < -180 || cfg.Course.Lon > 180 {
		errs = append(errs, fmt.Errorf("course.lon %.4f is out of range [-180, 180]", cfg.Course.Lon))
	}
	if cfg.Course.Bearing < 0 || cfg.Course.Bearing >= 360 {
		errs = append(errs, fmt.Errorf("course.bearing %d is out of range [0, 360)", cfg.Course.Bearing))
	}

	if cfg.Handicap != nil && (*cfg.Handicap < 0 || *cfg.Handicap > 30) {
		errs = append(errs, fmt.Errorf("handicap %d is out of range [0, 30]", *cfg.Handicap))
	}

	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)

	if cfg.Binning.DistanceBinSize <= 0 {
		errs = append(errs, fmt.Errorf("binning.distance_bin_size %d must be positive", cfg.Binning.DistanceBinSize))
	}

	if cfg.RoundLog.MinAttempts < 0 {
		errs = append(errs, fmt.Errorf("round_log.min_attempts %d must not be negative", cfg.RoundLog.MinAttempts))
	}
	if cfg.RoundLog.MinHitRate < 0 || cfg.RoundLog.MinHitRate > 1 {
		errs = append(errs, fmt.Errorf("round_log.min_hit_rate %.2f is out of range [0, 1]", cfg.RoundLog.MinHitRate))
	}
	if cfg.RoundLog.MaxProximityFt < 0 {
		errs = append(errs, fmt.Errorf("round_log.max_proximity_ft %.1f must not be negative", cfg.RoundLog.MaxProximityFt))
	}

	if t := cfg.Correction.PhoneticThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("correction.phonetic_threshold %.2f is out of range [0, 1]", t))
	}
	if t := cfg.Correction.FuzzyThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("correction.fuzzy_threshold %.2f is out of range [0, 1]", t))
	}

	return errors.Join(errs...)
}

// SlogLevel maps the configured level to a slog.Level.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unrecognised provider name, check for typos",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
