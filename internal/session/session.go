// Package session holds the per-round conversational state: the player's
// handicap, resolved course coordinates, cached conditions, a rolling hole
// layout note and the recent exchange history, plus a persistent log of
// shot outcomes used to surface the player's go-to clubs.
package session

import (
	"regexp"
	"strings"
	"sync"
)

// maxHistory bounds the exchange history.
const maxHistory = 10

// maxLayoutChars bounds the stored hole layout note.
const maxLayoutChars = 240

// Exchange is one utterance and the reply it produced.
type Exchange struct {
	Utterance string
	Reply     string
}

// holeNumberRe matches explicit hole references like "hole 7".
var holeNumberRe = regexp.MustCompile(`\bhole\s+\d+\b`)

// holeChangePhrases signal the player moved on; the layout note is stale.
var holeChangePhrases = []string{"next hole", "new hole", "on the next", "moved to"}

// layoutKeywords mark an utterance as describing the hole in front of the
// player, worth keeping as context for the next recommendation.
var layoutKeywords = []string{
	"bunker", "trees", "water", "dogleg",
	"narrow", "wide", "elevated", "downhill", "uphill",
}

// courseReferencePhrases signal a course or location mention worth
// geocoding.
var courseReferencePhrases = []string{"first tee", "clubhouse", "course"}

// MentionsCourse reports whether an utterance references a course or a
// specific hole, meaning coordinates may need refreshing.
func MentionsCourse(text string) bool {
	l := strings.ToLower(text)
	for _, p := range courseReferencePhrases {
		if strings.Contains(l, p) {
			return true
		}
	}
	return holeNumberRe.MatchString(l)
}

// State is the mutable per-round session. All methods are safe for
// concurrent use. The zero value is ready: no handicap, no coordinates,
// empty history.
type State struct {
	mu          sync.Mutex
	handicap    int
	hasHandicap bool
	lat, lon    float64
	hasCoords   bool
	conditions  string
	holeLayout  string
	history     []Exchange
}

// Handicap returns the session handicap, false when none is known yet.
func (s *State) Handicap() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handicap, s.hasHandicap
}

// SetHandicap records the player's handicap, e.g. after they state it in
// an utterance.
func (s *State) SetHandicap(h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handicap = h
	s.hasHandicap = true
}

// Coordinates returns the resolved course location, false when none has
// been geocoded yet.
func (s *State) Coordinates() (lat, lon float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lat, s.lon, s.hasCoords
}

// SetCoordinates records a geocoded course location.
func (s *State) SetCoordinates(lat, lon float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lat, s.lon = lat, lon
	s.hasCoords = true
}

// Conditions returns the cached conditions summary, "" when none.
func (s *State) Conditions() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conditions
}

// SetConditions caches a spoken-friendly conditions summary.
func (s *State) SetConditions(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conditions = summary
}

// HoleLayout returns the current hole layout note, "" when none.
func (s *State) HoleLayout() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holeLayout
}

// ObserveHoleChange clears the layout note when the utterance signals a
// move to another hole, reporting whether it did.
func (s *State) ObserveHoleChange(text string) bool {
	l := strings.ToLower(text)
	changed := holeNumberRe.MatchString(l)
	if !changed {
		for _, p := range holeChangePhrases {
			if strings.Contains(l, p) {
				changed = true
				break
			}
		}
	}
	if changed {
		s.mu.Lock()
		s.holeLayout = ""
		s.mu.Unlock()
	}
	return changed
}

// ObserveLayout stores the utterance as the hole layout note when it
// describes the hole (trees, water, dogleg and so on), truncated to 240
// characters. It reports whether the note was updated.
func (s *State) ObserveLayout(text string) bool {
	l := strings.ToLower(text)
	describes := false
	for _, k := range layoutKeywords {
		if strings.Contains(l, k) {
			describes = true
			break
		}
	}
	if !describes {
		return false
	}
	note := text
	if runes := []rune(note); len(runes) > maxLayoutChars {
		note = string(runes[:maxLayoutChars])
	}
	s.mu.Lock()
	s.holeLayout = note
	s.mu.Unlock()
	return true
}

// History returns a copy of the exchange history, oldest first.
func (s *State) History() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Exchange, len(s.history))
	copy(out, s.history)
	return out
}

// AppendExchange records a completed exchange, dropping the oldest once
// the history exceeds its capacity.
func (s *State) AppendExchange(e Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, e)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
}
