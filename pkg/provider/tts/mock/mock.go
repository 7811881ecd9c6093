// Package mock provides a test double for the tts.Speaker interface.
package mock

import (
	"context"
	"sync"

	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/tts"
)

// Speaker is a mock implementation of tts.Speaker that records every spoken
// utterance.
type Speaker struct {
	mu sync.Mutex

	// SpeakErr, if non-nil, is returned by every Speak call.
	SpeakErr error

	// Utterances records the text of every Speak call in order.
	Utterances []string
}

// Speak records the text and returns SpeakErr.
func (s *Speaker) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Utterances = append(s.Utterances, text)
	return s.SpeakErr
}

// Spoken returns a copy of the recorded utterances. Thread-safe.
func (s *Speaker) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Utterances))
	copy(out, s.Utterances)
	return out
}

// Reset clears all recorded utterances. Thread-safe.
func (s *Speaker) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Utterances = nil
}

// Ensure Speaker implements tts.Speaker at compile time.
var _ tts.Speaker = (*Speaker)(nil)
