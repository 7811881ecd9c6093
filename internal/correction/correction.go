// Package correction repairs misrecognized golf vocabulary in final
// transcripts before parsing. Double Metaphone codes filter candidate
// terms phonetically and Jaro-Winkler similarity ranks them, so
// "sevin iron" reads as "seven iron" and "fare way" as "fairway" without
// touching ordinary speech.
package correction

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.92
)

// vocabulary is the default set of golf terms worth repairing. Multi-word
// terms let a two-token window absorb split mishearings ("fare way").
var vocabulary = []string{
	"driver",
	"three wood", "four wood", "five wood",
	"three iron", "four iron", "five iron", "six iron",
	"seven iron", "eight iron", "nine iron",
	"pitching wedge", "sand wedge", "lob wedge", "gap wedge",
	"putter", "putt",
	"fairway", "rough", "bunker", "tee", "green",
	"water", "trees", "dogleg",
	"yards", "handicap", "scratch",
}

// stopwords are everyday words that must never be rewritten, however
// close they land to a golf term. Without this guard "there" scores as a
// phonetic twin of "three" and "edge" of "wedge".
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"a an the i im is are was were be been am do does did has have had " +
			"at on in of to for from with and or but so if no not yes " +
			"my me we he she they them there their here where what when how " +
			"why who which this that these those it its can could should " +
			"would will just about over under up down out off get got go " +
			"going hit play please one two ten you your yeah ok okay edge " +
			"i'm it's what's that's there's don't again") {
		stopwords[w] = struct{}{}
	}
}

// Change records one applied correction.
type Change struct {
	// Heard is the token window as transcribed.
	Heard string

	// Corrected is the vocabulary term it was replaced with.
	Corrected string

	// Confidence is the Jaro-Winkler score of the match.
	Confidence float64
}

// term is a vocabulary entry with its phonetic codes precomputed.
type term struct {
	text   string
	tokens []string
	codes  map[string]struct{}
}

// Corrector rewrites transcripts against a fixed vocabulary. It is
// read-only after construction and safe for concurrent use.
type Corrector struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
	terms             []term
	exact             map[string]struct{}
	maxWords          int
}

// Option configures a [Corrector].
type Option func(*Corrector)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score for a
// phonetically-matched term to be accepted. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(c *Corrector) { c.phoneticThreshold = threshold }
}

// WithFuzzyThreshold sets the minimum score when no phonetic candidate
// exists and pure string similarity decides. Default: 0.92.
func WithFuzzyThreshold(threshold float64) Option {
	return func(c *Corrector) { c.fuzzyThreshold = threshold }
}

// WithVocabulary replaces the default golf vocabulary.
func WithVocabulary(terms []string) Option {
	return func(c *Corrector) { c.setVocabulary(terms) }
}

// New constructs a Corrector over the default golf vocabulary.
func New(opts ...Option) *Corrector {
	c := &Corrector{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	c.setVocabulary(vocabulary)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Corrector) setVocabulary(terms []string) {
	c.terms = c.terms[:0]
	c.exact = make(map[string]struct{}, len(terms))
	c.maxWords = 1
	for _, v := range terms {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		tokens := strings.Fields(v)
		c.terms = append(c.terms, term{
			text:   v,
			tokens: tokens,
			codes:  codesFor(tokens),
		})
		for _, t := range tokens {
			c.exact[t] = struct{}{}
		}
		if len(tokens) > c.maxWords {
			c.maxWords = len(tokens)
		}
	}
}

// Correct rewrites text and reports the changes applied. Windows of up to
// the longest vocabulary term are tried longest-first at each position,
// so a split "sand wedge" mishearing wins over a lone "sand" repair.
func (c *Corrector) Correct(text string) (string, []Change) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return text, nil
	}

	var out []string
	var changes []Change

	i := 0
	for i < len(tokens) {
		maxN := c.maxWords
		if i+maxN > len(tokens) {
			maxN = len(tokens) - i
		}

		matched := false
		for n := maxN; n >= 1; n-- {
			window, suffix := splitWindow(tokens[i : i+n])
			if !c.correctable(window) {
				continue
			}
			best, score, ok := c.match(window)
			if !ok || best == window {
				continue
			}
			out = append(out, strings.Fields(best+suffix)...)
			changes = append(changes, Change{Heard: window, Corrected: best, Confidence: score})
			i += n
			matched = true
			break
		}
		if !matched {
			out = append(out, tokens[i])
			i++
		}
	}
	return strings.Join(out, " "), changes
}

// correctable reports whether a window is a legitimate repair target:
// no stopwords, no numbers, nothing that is already exact vocabulary.
func (c *Corrector) correctable(window string) bool {
	if window == "" {
		return false
	}
	known := true
	for _, t := range strings.Fields(window) {
		if _, stop := stopwords[t]; stop {
			return false
		}
		if strings.ContainsAny(t, "0123456789") {
			return false
		}
		if _, ok := c.exact[t]; !ok {
			known = false
		}
	}
	// Correct speech is never rewritten.
	return !known
}

// match finds the best vocabulary term for a lowercased window.
func (c *Corrector) match(window string) (string, float64, bool) {
	winTokens := strings.Fields(window)
	winCodes := codesFor(winTokens)

	var (
		bestTerm     string
		bestScore    float64
		bestPhonetic bool
	)
	for _, t := range c.terms {
		phonetic := codesOverlap(winCodes, t.codes)
		score := similarity(window, winTokens, t)

		switch {
		case phonetic && score >= c.phoneticThreshold:
			if !bestPhonetic || score > bestScore {
				bestTerm, bestScore, bestPhonetic = t.text, score, true
			}
		case !phonetic && !bestPhonetic:
			if score >= c.fuzzyThreshold && score > bestScore {
				bestTerm, bestScore = t.text, score
			}
		}
	}
	if bestTerm == "" {
		return window, 0, false
	}
	return bestTerm, bestScore, true
}

// splitWindow lowercases an n-token window, stripping punctuation from
// the final token so "rough," still matches. The stripped suffix comes
// back attached to the replacement.
func splitWindow(tokens []string) (window, suffix string) {
	joined := strings.ToLower(strings.Join(tokens, " "))
	trimmed := strings.TrimRight(joined, ".,!?;:")
	return trimmed, joined[len(trimmed):]
}

// similarity is the best Jaro-Winkler score across three comparisons:
// full strings, space-stripped strings, and pairwise tokens. The pairwise
// pass lets "sevin iron" align with "seven iron" word by word.
func similarity(window string, winTokens []string, t term) float64 {
	score := matchr.JaroWinkler(window, t.text, false)
	if len(winTokens) > 1 || len(t.tokens) > 1 {
		concat := strings.Join(winTokens, "")
		if s := matchr.JaroWinkler(concat, strings.Join(t.tokens, ""), false); s > score {
			score = s
		}
	}
	if len(winTokens) == len(t.tokens) {
		for _, wt := range winTokens {
			for _, tt := range t.tokens {
				if s := matchr.JaroWinkler(wt, tt, false); s > score {
					score = s
				}
			}
		}
	}
	return score
}

func codesFor(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
