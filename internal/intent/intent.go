// Package intent classifies final utterances and extracts structured golf
// context (distance, lie, hazards, club and handicap mentions) from free
// speech.
package intent

import (
	"regexp"
	"strings"
)

// Intent is the coarse routing decision for a final utterance.
type Intent string

const (
	// Weather means the speaker is asking about current conditions.
	Weather Intent = "weather"

	// ShotAdvice means the speaker wants a club or shot recommendation.
	// It is the default when an utterance is ambiguous.
	ShotAdvice Intent = "shot"
)

// shotKeywords are substrings that signal a request for shot guidance.
// They are deliberately specific: a bare mention like "into the wind"
// must not flip a shot question into a weather one.
var shotKeywords = []string{
	"what club",
	"which club",
	"recommend",
	"suggest",
	"should i",
	"what should i play",
	"how should i play",
	"should i hit",
	"hit",
	"aim",
	"carry",
	"lay up",
	"club do i use",
	"use a",
}

// weatherQuestions match explicit question forms about conditions, not
// mere mentions of wind or weather inside a shot description.
var weatherQuestions = []*regexp.Regexp{
	regexp.MustCompile(`\bwhat(?:'s| is)?\b.*\b(wind|weather|conditions|forecast)\b`),
	regexp.MustCompile(`\bhow\b.*\b(windy|wind)\b`),
	regexp.MustCompile(`\bcurrent\b.*\b(conditions|wind|weather)\b`),
	regexp.MustCompile(`\bforecast\b`),
	regexp.MustCompile(`\btell me.*\b(about|the)?\b.*\b(conditions|weather|wind)\b`),
	regexp.MustCompile(`\bcan you tell me.*\b(conditions|weather|wind)\b`),
	regexp.MustCompile(`\bwhat are.*\b(conditions|weather|wind)\b`),
	regexp.MustCompile(`\bcheck.*\b(conditions|weather|wind)\b`),
	regexp.MustCompile(`\b(conditions|weather|wind).*\b(today|now|current)\b`),
	regexp.MustCompile(`\b(today|now).*\b(conditions|weather|wind)\b`),
}

// Classify routes an utterance to [Weather] or [ShotAdvice]. An utterance
// only classifies as weather when it contains an explicit conditions
// question AND no shot keyword; everything else is shot advice.
func Classify(text string) Intent {
	l := strings.ToLower(text)

	hasShot := false
	for _, k := range shotKeywords {
		if strings.Contains(l, k) {
			hasShot = true
			break
		}
	}

	if !hasShot {
		for _, re := range weatherQuestions {
			if re.MatchString(l) {
				return Weather
			}
		}
	}
	return ShotAdvice
}
