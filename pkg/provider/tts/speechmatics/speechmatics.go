// Package speechmatics provides a Speechmatics-backed TTS speaker using the
// text-to-speech HTTP API. It implements the tts.Speaker interface.
//
// The service returns raw PCM float32 little-endian samples at 16 kHz mono.
// Playback goes through a Player; the default player writes a WAV file and
// invokes the platform audio command (aplay on Linux, afplay on macOS).
package speechmatics

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/tts"
)

const (
	defaultEndpoint   = "https://preview.tts.speechmatics.com/generate"
	defaultSampleRate = 16000
)

// Player plays raw mono float32 PCM samples at the given sample rate.
type Player func(ctx context.Context, samples []float32, sampleRate int) error

// Option is a functional option for configuring the Speaker.
type Option func(*Speaker)

// WithEndpoint overrides the synthesis endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(s *Speaker) {
		s.endpoint = endpoint
	}
}

// WithHTTPClient overrides the HTTP client used for synthesis requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Speaker) {
		s.httpClient = c
	}
}

// WithPlayer overrides the playback function. Useful for tests and for
// environments without a system audio command.
func WithPlayer(p Player) Option {
	return func(s *Speaker) {
		s.player = p
	}
}

// Speaker implements tts.Speaker backed by the Speechmatics TTS API.
type Speaker struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	player     Player
}

// New creates a new Speechmatics Speaker. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Speaker, error) {
	if apiKey == "" {
		return nil, errors.New("speechmatics: apiKey must not be empty")
	}
	s := &Speaker{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		player:     commandPlayer,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Speak synthesises text and plays the resulting audio. Empty text is a no-op.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	body, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return fmt.Errorf("speechmatics: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("speechmatics: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("speechmatics: synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("speechmatics: synthesis returned HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("speechmatics: read audio: %w", err)
	}

	samples, err := decodeSamples(raw)
	if err != nil {
		return fmt.Errorf("speechmatics: decode audio: %w", err)
	}
	if len(samples) == 0 {
		return errors.New("speechmatics: synthesis returned no audio")
	}

	if err := s.player(ctx, samples, defaultSampleRate); err != nil {
		return fmt.Errorf("speechmatics: playback: %w", err)
	}
	return nil
}

var _ tts.Speaker = (*Speaker)(nil)

// decodeSamples interprets raw bytes as little-endian float32 PCM.
func decodeSamples(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("audio payload length %d is not a multiple of 4", len(raw))
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples, nil
}

// encodeWAV converts mono float32 samples to a 16-bit PCM WAV file.
func encodeWAV(samples []float32, sampleRate int) []byte {
	dataLen := len(samples) * 2
	var buf bytes.Buffer
	buf.Grow(44 + dataLen)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))            // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))           // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	for _, s := range samples {
		clipped := math.Max(-1, math.Min(1, float64(s)))
		binary.Write(&buf, binary.LittleEndian, int16(clipped*32767))
	}
	return buf.Bytes()
}

// commandPlayer writes the samples to a temporary WAV file and plays it with
// the platform audio command.
func commandPlayer(ctx context.Context, samples []float32, sampleRate int) error {
	var cmd string
	switch runtime.GOOS {
	case "darwin":
		cmd = "afplay"
	default:
		cmd = "aplay"
	}
	if _, err := exec.LookPath(cmd); err != nil {
		return fmt.Errorf("no audio player available (%s not found): %w", cmd, err)
	}

	f, err := os.CreateTemp("", "caddie_tts_*.wav")
	if err != nil {
		return fmt.Errorf("create temp wav: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(encodeWAV(samples, sampleRate)); err != nil {
		f.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}

	if out, err := exec.CommandContext(ctx, cmd, path).CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w (%s)", cmd, err, bytes.TrimSpace(out))
	}
	return nil
}
