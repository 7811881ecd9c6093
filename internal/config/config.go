// Package config provides the configuration schema, loader, and provider
// registry for the caddie.
package config

import (
	"github.com/JamieWonderchild/ai-golf-caddie/internal/binning"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/session"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	// LogLevel controls verbosity. Defaults to "info".
	LogLevel LogLevel `yaml:"log_level"`

	// Course is the default course location used until the player names one.
	Course CourseConfig `yaml:"course"`

	// Handicap is the default player handicap. Nil means unknown; the caddie
	// will then ask for it.
	Handicap *int `yaml:"handicap"`

	Providers  ProvidersConfig  `yaml:"providers"`
	Binning    BinningConfig    `yaml:"binning"`
	RoundLog   RoundLogConfig   `yaml:"round_log"`
	Correction CorrectionConfig `yaml:"correction"`
}

// CourseConfig holds the fallback course coordinates and target bearing.
type CourseConfig struct {
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
	Bearing int     `yaml:"bearing"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each Name selects a constructor registered in the [Registry].
type ProvidersConfig struct {
	STT ProviderEntry `yaml:"stt"`
	LLM ProviderEntry `yaml:"llm"`
	TTS ProviderEntry `yaml:"tts"`
}

// ProviderEntry is the common configuration block shared by all provider types.
type ProviderEntry struct {
	// Name selects the registered provider implementation
	// (e.g., "openai", "speechmatics").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	// Usually left empty in the file and injected from the environment.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`

	// Language is the recognition language for STT providers (e.g., "en").
	Language string `yaml:"language"`
}

// BinningConfig holds context-binning settings for the round log.
type BinningConfig struct {
	// DistanceBinSize is the distance bin width in yards. Defaults to 10.
	DistanceBinSize int `yaml:"distance_bin_size"`
}

// RoundLogConfig configures the per-player shot log and the go-to club
// thresholds.
type RoundLogConfig struct {
	// Path is the sqlite database path. Empty disables the round log.
	Path string `yaml:"path"`

	// MinAttempts is the minimum shots in a bin before a go-to hint is given.
	MinAttempts int `yaml:"min_attempts"`

	// MinHitRate is the minimum on-target rate for a go-to hint (0..1).
	MinHitRate float64 `yaml:"min_hit_rate"`

	// MaxProximityFt is the maximum median proximity for a go-to hint.
	MaxProximityFt float64 `yaml:"max_proximity_ft"`
}

// CorrectionConfig configures phonetic transcript repair.
type CorrectionConfig struct {
	// Enabled toggles the correction stage. Nil means enabled.
	Enabled *bool `yaml:"enabled"`

	// PhoneticThreshold is the minimum similarity for phonetically matched
	// repairs (0..1). Zero uses the built-in default.
	PhoneticThreshold float64 `yaml:"phonetic_threshold"`

	// FuzzyThreshold is the minimum similarity for purely fuzzy repairs
	// (0..1). Zero uses the built-in default.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

// CorrectionEnabled reports whether the correction stage should run.
func (c CorrectionConfig) CorrectionEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Default returns a Config with the built-in defaults applied: London
// coordinates, speechmatics STT/TTS, openai LLM, 10-yard bins and the
// standard go-to thresholds.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Course: CourseConfig{
			Lat:     51.5074,
			Lon:     -0.1278,
			Bearing: 0,
		},
		Providers: ProvidersConfig{
			STT: ProviderEntry{Name: "speechmatics", Language: "en"},
			LLM: ProviderEntry{Name: "openai"},
			TTS: ProviderEntry{Name: "speechmatics"},
		},
		Binning: BinningConfig{
			DistanceBinSize: binning.DefaultDistanceBinSize,
		},
		RoundLog: RoundLogConfig{
			MinAttempts:    session.DefaultGoToMinAttempts,
			MinHitRate:     session.DefaultGoToMinHitRate,
			MaxProximityFt: session.DefaultGoToMaxProximityFt,
		},
	}
}
