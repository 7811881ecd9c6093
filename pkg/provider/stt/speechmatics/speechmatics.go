// Package speechmatics provides a Speechmatics-backed STT provider using the
// real-time WebSocket API (v2). It implements the stt.Provider interface.
package speechmatics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/stt"
	"github.com/coder/websocket"
)

const (
	defaultEndpoint   = "wss://eu2.rt.speechmatics.com/v2"
	defaultLanguage   = "en"
	defaultSampleRate = 16000

	// maxDelaySeconds bounds how long the service may hold a final transcript
	// while waiting for more context. Lower is snappier, higher is more accurate.
	maxDelaySeconds = 1.0
)

// Option is a functional option for configuring the Speechmatics Provider.
type Option func(*Provider)

// WithEndpoint overrides the real-time WebSocket endpoint. Useful for pointing
// at a different region or a test server.
func WithEndpoint(endpoint string) Option {
	return func(p *Provider) {
		p.endpoint = endpoint
	}
}

// WithLanguage sets the language code for recognition (e.g., "en", "de").
func WithLanguage(language string) Option {
	return func(p *Provider) {
		p.language = language
	}
}

// WithSampleRate sets the audio sample rate in Hz for the provider-level default.
func WithSampleRate(rate int) Option {
	return func(p *Provider) {
		p.sampleRate = rate
	}
}

// WithOperatingPoint selects the recognition model tier ("standard" or "enhanced").
func WithOperatingPoint(op string) Option {
	return func(p *Provider) {
		p.operatingPoint = op
	}
}

// Provider implements stt.Provider backed by the Speechmatics real-time API.
type Provider struct {
	apiKey         string
	endpoint       string
	language       string
	sampleRate     int
	operatingPoint string
}

// New creates a new Speechmatics Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("speechmatics: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:         apiKey,
		endpoint:       defaultEndpoint,
		language:       defaultLanguage,
		sampleRate:     defaultSampleRate,
		operatingPoint: "enhanced",
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// startRecognition is the first client message on a new connection. It declares
// the raw audio format and the transcription settings for the whole session.
type startRecognition struct {
	Message     string      `json:"message"`
	AudioFormat audioFormat `json:"audio_format"`
	Config      transConfig `json:"transcription_config"`
}

type audioFormat struct {
	Type       string `json:"type"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

type transConfig struct {
	Language       string  `json:"language"`
	EnablePartials bool    `json:"enable_partials"`
	OperatingPoint string  `json:"operating_point"`
	MaxDelay       float64 `json:"max_delay"`
}

// StartStream opens a streaming transcription session with Speechmatics.
// It respects cfg.SampleRate and cfg.Language; audio must be PCM s16le.
func (p *Provider) StartStream(ctx context.Context, cfg stt.StreamConfig) (stt.SessionHandle, error) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+p.apiKey)

	conn, _, err := websocket.Dial(ctx, p.endpoint, &websocket.DialOptions{
		HTTPHeader: headers,
	})
	if err != nil {
		return nil, fmt.Errorf("speechmatics: dial: %w", err)
	}

	lang := cfg.Language
	if lang == "" {
		lang = p.language
	}
	sr := cfg.SampleRate
	if sr == 0 {
		sr = p.sampleRate
	}

	start := startRecognition{
		Message: "StartRecognition",
		AudioFormat: audioFormat{
			Type:       "raw",
			Encoding:   "pcm_s16le",
			SampleRate: sr,
		},
		Config: transConfig{
			Language:       lang,
			EnablePartials: true,
			OperatingPoint: p.operatingPoint,
			MaxDelay:       maxDelaySeconds,
		},
	}
	msg, err := json.Marshal(start)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "encode failed")
		return nil, fmt.Errorf("speechmatics: encode StartRecognition: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		conn.Close(websocket.StatusInternalError, "handshake failed")
		return nil, fmt.Errorf("speechmatics: send StartRecognition: %w", err)
	}

	sess := &session{
		conn:     conn,
		partials: make(chan stt.Transcript, 64),
		finals:   make(chan stt.Transcript, 64),
		audio:    make(chan []byte, 256),
		done:     make(chan struct{}),
	}

	sess.wg.Add(2)
	go sess.readLoop(ctx)
	go sess.writeLoop(ctx)

	return sess, nil
}

// ---- session ----

// serverMessage covers the subset of the Speechmatics real-time protocol the
// session cares about: AddPartialTranscript and AddTranscript events. All other
// message kinds (RecognitionStarted, AudioAdded, EndOfTranscript, Info) are
// identified by the Message field and ignored.
type serverMessage struct {
	Message  string `json:"message"`
	Reason   string `json:"reason"`
	Metadata struct {
		Transcript string `json:"transcript"`
	} `json:"metadata"`
	Results []struct {
		StartTime    float64 `json:"start_time"`
		EndTime      float64 `json:"end_time"`
		Alternatives []struct {
			Content    string  `json:"content"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// session is a live Speechmatics streaming session. It implements stt.SessionHandle.
type session struct {
	conn     *websocket.Conn
	partials chan stt.Transcript
	finals   chan stt.Transcript
	audio    chan []byte

	// seq counts audio chunks delivered to the service; EndOfStream must report it.
	seq atomic.Int64

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// SendAudio queues a PCM audio chunk for delivery to Speechmatics.
func (s *session) SendAudio(chunk []byte) error {
	select {
	case <-s.done:
		return errors.New("speechmatics: session is closed")
	default:
	}
	select {
	case s.audio <- chunk:
		return nil
	case <-s.done:
		return errors.New("speechmatics: session is closed")
	}
}

// Partials returns the channel of interim transcripts.
func (s *session) Partials() <-chan stt.Transcript { return s.partials }

// Finals returns the channel of final transcripts.
func (s *session) Finals() <-chan stt.Transcript { return s.finals }

// Close terminates the session cleanly. It reports the last delivered audio
// sequence number so the service can flush any buffered transcription.
func (s *session) Close() error {
	s.once.Do(func() {
		close(s.done)
		eos := fmt.Sprintf(`{"message":"EndOfStream","last_seq_no":%d}`, s.seq.Load())
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = s.conn.Write(ctx, websocket.MessageText, []byte(eos))
		cancel()
		s.wg.Wait()
		s.conn.Close(websocket.StatusNormalClosure, "session closed")
	})
	return nil
}

// writeLoop reads from the audio channel and sends binary AddAudio messages.
func (s *session) writeLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case chunk, ok := <-s.audio:
			if !ok {
				return
			}
			if err := s.conn.Write(ctx, websocket.MessageBinary, chunk); err != nil {
				return
			}
			s.seq.Add(1)
		case <-s.done:
			// Drain the audio channel before exiting.
			for {
				select {
				case chunk, ok := <-s.audio:
					if !ok {
						return
					}
					if err := s.conn.Write(ctx, websocket.MessageBinary, chunk); err != nil {
						return
					}
					s.seq.Add(1)
				default:
					return
				}
			}
		}
	}
}

// readLoop receives JSON messages from Speechmatics and dispatches transcripts
// to the partials and finals channels.
func (s *session) readLoop(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.partials)
	defer close(s.finals)

	for {
		_, msg, err := s.conn.Read(ctx)
		if err != nil {
			// Normal close or context cancellation.
			return
		}

		t, final, ok := parseServerMessage(msg)
		if !ok {
			continue
		}

		if final {
			select {
			case s.finals <- t:
			case <-s.done:
			}
		} else {
			select {
			case s.partials <- t:
			case <-s.done:
			}
		}
	}
}

// parseServerMessage parses a raw Speechmatics WebSocket message into a
// Transcript. Returns ok=false for message kinds that carry no transcript or
// for transcripts with empty text.
func parseServerMessage(data []byte) (t stt.Transcript, final bool, ok bool) {
	var resp serverMessage
	if err := json.Unmarshal(data, &resp); err != nil {
		return stt.Transcript{}, false, false
	}

	switch resp.Message {
	case "AddTranscript":
		final = true
	case "AddPartialTranscript":
		final = false
	default:
		return stt.Transcript{}, false, false
	}

	if resp.Metadata.Transcript == "" {
		return stt.Transcript{}, false, false
	}

	var (
		words   []stt.WordDetail
		confSum float64
	)
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		words = append(words, stt.WordDetail{
			Word:       alt.Content,
			Start:      time.Duration(r.StartTime * float64(time.Second)),
			End:        time.Duration(r.EndTime * float64(time.Second)),
			Confidence: alt.Confidence,
		})
		confSum += alt.Confidence
	}

	t = stt.Transcript{
		Text:    resp.Metadata.Transcript,
		IsFinal: final,
		Words:   words,
	}
	if len(words) > 0 {
		t.Confidence = confSum / float64(len(words))
	}
	return t, final, true
}

// Ensure the interfaces are implemented.
var (
	_ stt.Provider      = (*Provider)(nil)
	_ stt.SessionHandle = (*session)(nil)
)
