package caddie

import (
	"regexp"
	"strconv"
	"strings"
)

// outcomeMarkers signal that the player is reporting how the previous shot
// came off rather than asking for new advice. Detection is deliberately
// conservative: a bare mishit mention ("shanked it") is left to the history
// roast hint, not logged as an outcome.
var outcomeMarkers = []string{
	"landed", "ended up", "finished", "stuck it", "hit it to", "knocked it",
	"came up", "left it", "on the green", "missed the green",
}

// missMarkers mark a reported outcome as off target.
var missMarkers = []string{
	"missed", "came up short", "went long", "off the green",
}

var proximityRe = regexp.MustCompile(`(\d{1,3})\s*(?:feet|foot|ft)\b`)

// shotOutcome is a parsed report of how the previous shot finished.
type shotOutcome struct {
	// ProximityFt is the reported finishing distance, 0 when none was heard.
	ProximityFt float64

	// Hit reports whether the shot came off as intended.
	Hit bool
}

// parseOutcome extracts a shot outcome from an utterance. ok is false when
// the utterance does not read as an outcome report, or reads as one but
// carries nothing measurable.
func parseOutcome(text string) (shotOutcome, bool) {
	l := strings.ToLower(text)

	marked := false
	for _, m := range outcomeMarkers {
		if strings.Contains(l, m) {
			marked = true
			break
		}
	}
	if !marked {
		return shotOutcome{}, false
	}

	var o shotOutcome
	haveProximity := false
	if m := proximityRe.FindStringSubmatch(l); m != nil {
		o.ProximityFt, _ = strconv.ParseFloat(m[1], 64)
		haveProximity = true
	}

	miss := false
	for _, w := range missMarkers {
		if strings.Contains(l, w) {
			miss = true
			break
		}
	}
	if !miss {
		for _, w := range mishitWords {
			if strings.Contains(l, w) {
				miss = true
				break
			}
		}
	}

	if !haveProximity && !miss && !strings.Contains(l, "on the green") {
		return shotOutcome{}, false
	}
	o.Hit = !miss
	return o, true
}
