package mock

import (
	"context"
	"sync"
	"time"

	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/stt"
)

// Event is a single scripted transcript emission.
type Event struct {
	// Text is the transcript text to emit.
	Text string
	// Final marks the event as a final transcript; otherwise it is a partial.
	Final bool
	// Delay is how long to wait before emitting this event.
	Delay time.Duration
}

// ScriptedProvider implements stt.Provider by replaying a fixed list of
// transcript events. It backs the --mock mode of the CLI, letting the full
// pipeline run without a microphone or an STT credential.
type ScriptedProvider struct {
	// Events are replayed in order on every StartStream call.
	Events []Event
}

// StartStream begins replaying the scripted events on a new session.
func (p *ScriptedProvider) StartStream(ctx context.Context, _ stt.StreamConfig) (stt.SessionHandle, error) {
	s := &scriptedSession{
		partials: make(chan stt.Transcript, 16),
		finals:   make(chan stt.Transcript, 16),
		done:     make(chan struct{}),
	}
	go s.play(ctx, p.Events)
	return s, nil
}

var _ stt.Provider = (*ScriptedProvider)(nil)

type scriptedSession struct {
	partials chan stt.Transcript
	finals   chan stt.Transcript
	done     chan struct{}
	once     sync.Once
}

func (s *scriptedSession) play(ctx context.Context, events []Event) {
	defer close(s.partials)
	defer close(s.finals)

	for _, ev := range events {
		if ev.Delay > 0 {
			t := time.NewTimer(ev.Delay)
			select {
			case <-t.C:
			case <-s.done:
				t.Stop()
				return
			case <-ctx.Done():
				t.Stop()
				return
			}
		}

		tr := stt.Transcript{Text: ev.Text, IsFinal: ev.Final, Confidence: 1}
		out := s.partials
		if ev.Final {
			out = s.finals
		}
		select {
		case out <- tr:
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// SendAudio discards the chunk; scripted sessions do not consume audio.
func (s *scriptedSession) SendAudio([]byte) error { return nil }

func (s *scriptedSession) Partials() <-chan stt.Transcript { return s.partials }

func (s *scriptedSession) Finals() <-chan stt.Transcript { return s.finals }

func (s *scriptedSession) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

var _ stt.SessionHandle = (*scriptedSession)(nil)
