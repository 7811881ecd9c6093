package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/JamieWonderchild/ai-golf-caddie/internal/stats"
)

// lies are recognized lie words in priority order; the first one found
// wins. "bunker" normalizes to "sand".
var lies = []string{"fairway", "rough", "sand", "bunker", "tee"}

// hazards are recognized hazard words. A word already claimed as the lie
// is not repeated as a hazard; "bunker" reports as "front_bunker".
var hazards = []string{"water", "bunker", "trees", "woods", "pond"}

// minShotDistance guards against parsing a spoken handicap as a shot
// distance. No real approach is 36 yards or less two or three digits
// into a sentence about clubs.
const minShotDistance = 36

// maxSpokenHandicap caps a heard handicap before it reaches the session.
const maxSpokenHandicap = 30

// ParsedIntent is the structured reading of one utterance.
type ParsedIntent struct {
	// DistanceYards is the target distance, 0 when none was heard.
	// Heard distances are always greater than minShotDistance.
	DistanceYards int

	// Lie is the normalized lie, defaulting to "fairway".
	Lie string

	// Hazards lists normalized hazard mentions in recognition order.
	Hazards []string

	// Club is the canonical club id mentioned, "" when none.
	Club string

	// Handicap is the handicap the speaker stated about themselves.
	// Valid only when HasHandicap is true.
	Handicap int

	// HasHandicap reports whether the utterance stated a handicap.
	HasHandicap bool

	// ValidationWarning is set when the stated club/distance pair is
	// implausible for the effective handicap.
	ValidationWarning string
}

// DistanceValidator checks a spoken club/distance claim against known
// performance data. *stats.Table satisfies it.
type DistanceValidator interface {
	ValidateDistanceClaim(handicap int, club string, claimedYards int) stats.Validation
}

// Parser extracts [ParsedIntent] values from utterances.
type Parser struct {
	validator DistanceValidator
}

// ParserOption configures a [Parser].
type ParserOption func(*Parser)

// WithValidator installs a claim validator. Without one, parsed intents
// never carry a validation warning.
func WithValidator(v DistanceValidator) ParserOption {
	return func(p *Parser) { p.validator = v }
}

// NewParser constructs a Parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts golf context from one utterance. sessionHandicap is the
// handicap already known for this session, negative when unknown; a
// handicap stated in the utterance itself takes precedence over it for
// claim validation.
func (p *Parser) Parse(text string, sessionHandicap int) ParsedIntent {
	l := strings.ToLower(text)

	// Handicap first: "i'm a 15" must not be misread as a distance.
	handicap, hasHandicap := extractHandicap(l)

	distance := extractDistance(l)

	lie := "fairway"
	for _, cand := range lies {
		if strings.Contains(l, cand) {
			if cand == "sand" || cand == "bunker" {
				lie = "sand"
			} else {
				lie = cand
			}
			break
		}
	}

	var found []string
	for _, hz := range hazards {
		if strings.Contains(l, hz) && hz != lie {
			if hz == "bunker" {
				found = append(found, "front_bunker")
			} else {
				found = append(found, hz)
			}
		}
	}

	club := extractClub(l)

	effective := sessionHandicap
	if hasHandicap {
		effective = handicap
	}

	var warning string
	if p.validator != nil && effective >= 0 && club != "" && distance > 0 {
		if v := p.validator.ValidateDistanceClaim(effective, club, distance); !v.Realistic {
			warning = v.Message
		}
	}

	return ParsedIntent{
		DistanceYards:     distance,
		Lie:               lie,
		Hazards:           found,
		Club:              club,
		Handicap:          handicap,
		HasHandicap:       hasHandicap,
		ValidationWarning: warning,
	}
}

// ─── Distance ───

// distancePatterns are tried in order; group 1 is the distance. A match
// at or below minShotDistance is discarded and the next pattern tried.
var distancePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{2,3})\s*(?:yard|yards|y|yd|yds)\b`),
	regexp.MustCompile(`\bat\s+(\d{2,3})\b`),
	regexp.MustCompile(`(\d{2,3})\s*(?:yard|yards)\s+(?:par|hole)`),
}

func extractDistance(l string) int {
	for _, re := range distancePatterns {
		m := re.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		d, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if d > minShotDistance {
			return d
		}
	}
	return 0
}

// ─── Club mentions ───

var clubPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(driver|drive)\b`),
	regexp.MustCompile(`\b(\d+)\s*wood\b`),
	regexp.MustCompile(`\b(three|four|five|six|seven|eight|nine)\s*wood\b`),
	regexp.MustCompile(`\b(\d+)\s*iron\b`),
	regexp.MustCompile(`\b(three|four|five|six|seven|eight|nine)\s*iron\b`),
	regexp.MustCompile(`\b(pitching\s*wedge|pw)\b`),
	regexp.MustCompile(`\b(sand\s*wedge|sw)\b`),
	regexp.MustCompile(`\b(lob\s*wedge|lw)\b`),
	regexp.MustCompile(`\b(gap\s*wedge|gw)\b`),
	regexp.MustCompile(`\b(wedge)\b`),
	regexp.MustCompile(`\b(putter|putt)\b`),
}

// clubWordNumbers maps spelled-out club numbers, checked in this order.
var clubWordNumbers = []struct {
	word string
	num  int
}{
	{"three", 3}, {"four", 4}, {"five", 5}, {"six", 6},
	{"seven", 7}, {"eight", 8}, {"nine", 9},
}

var digitRe = regexp.MustCompile(`\d+`)

func extractClub(l string) string {
	for _, re := range clubPatterns {
		full := re.FindString(l)
		if full == "" {
			continue
		}
		switch {
		case strings.Contains(full, "driver") || strings.Contains(full, "drive"):
			return "driver"
		case strings.Contains(full, "wood"):
			return numberedClub(full, "wood", "3-wood")
		case strings.Contains(full, "iron"):
			return numberedClub(full, "iron", "7-iron")
		case strings.Contains(full, "pitching") || strings.Contains(full, "pw"):
			return "pitching-wedge"
		case strings.Contains(full, "sand") || strings.Contains(full, "sw"):
			return "sand-wedge"
		case strings.Contains(full, "lob") || strings.Contains(full, "lw"):
			return "lob-wedge"
		case strings.Contains(full, "gap") || strings.Contains(full, "gw"):
			return "gap-wedge"
		case strings.Contains(full, "wedge"):
			// A bare "wedge" reads as the stock one.
			return "pitching-wedge"
		case strings.Contains(full, "putter") || strings.Contains(full, "putt"):
			return "putter"
		}
	}
	return ""
}

func numberedClub(full, kind, fallback string) string {
	for _, wn := range clubWordNumbers {
		if strings.Contains(full, wn.word) {
			return strconv.Itoa(wn.num) + "-" + kind
		}
	}
	if d := digitRe.FindString(full); d != "" {
		return d + "-" + kind
	}
	return fallback
}

// ─── Handicap mentions ───

var handicapWordNumbers = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
	"nineteen": 19, "twenty": 20,
}

const spokenNumbers = `zero|one|two|three|four|five|six|seven|eight|nine|ten|` +
	`eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|` +
	`nineteen|twenty`

// handicapPatterns are tried in order, from most to least specific.
// scratch patterns carry no capture group and read as handicap 0.
var handicapPatterns = []struct {
	re      *regexp.Regexp
	scratch bool
}{
	{re: regexp.MustCompile(`\bi'?m\s+a\s+(-?\d{1,2})\s+handicap\b`)},
	{re: regexp.MustCompile(`\bi'?m\s+a\s+(` + spokenNumbers + `)\s+handicap\b`)},
	{re: regexp.MustCompile(`\bmy\s+handicap\s+is\s+(-?\d{1,2})\b`)},
	{re: regexp.MustCompile(`\bmy\s+handicap\s+is\s+(` + spokenNumbers + `)\b`)},
	{re: regexp.MustCompile(`(-?\b\d{1,2})\s+handicap\s+player\b`)},
	{re: regexp.MustCompile(`\bhandicap\s+(-?\d{1,2})\b`)},
	{re: regexp.MustCompile(`\bhandicap\s+(` + spokenNumbers + `)\b`)},
	{re: regexp.MustCompile(`\bi\s+play\s+to\s+a?\s+(-?\d{1,2})\b`)},
	{re: regexp.MustCompile(`\bi'?m\s+a\s+(-?\d{1,2})\b`)},
	{re: regexp.MustCompile(`\bi'?m\s+a\s+(` + spokenNumbers + `)\b`)},
	{re: regexp.MustCompile(`\bscratch\s+golfer\b`), scratch: true},
	{re: regexp.MustCompile(`\bscratch\s+player\b`), scratch: true},
}

func extractHandicap(l string) (int, bool) {
	for _, hp := range handicapPatterns {
		m := hp.re.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		if hp.scratch {
			return 0, true
		}
		var h int
		if n, ok := handicapWordNumbers[m[1]]; ok {
			h = n
		} else {
			var err error
			h, err = strconv.Atoi(m[1])
			if err != nil {
				continue
			}
		}
		if h < 0 {
			h = 0
		}
		if h > maxSpokenHandicap {
			h = maxSpokenHandicap
		}
		return h, true
	}
	return 0, false
}
