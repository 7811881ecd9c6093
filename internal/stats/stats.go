// Package stats provides the handicap-bucketed performance table that backs
// club recommendations, proximity and GIR expectations, and distance-claim
// validation.
//
// The table ships embedded in the binary and is immutable after [Load]: every
// accessor is a read-only lookup, so a *Table may be shared freely across
// goroutines. Lookups degrade rather than fail: a handicap outside [0, 20]
// is clamped to the nearest bound, and unknown clubs or missing rows surface
// as an ok=false second return, never as an error or panic.
package stats

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

//go:embed data/handicap_stats.json
var embeddedTable []byte

const (
	// MinHandicap and MaxHandicap bound the keyed range of the table.
	// Requests outside this range clamp to the nearest bound.
	MinHandicap = 0
	MaxHandicap = 20

	// fallbackClub is recommended when no club can plausibly reach the
	// requested distance.
	fallbackClub = "7-iron"

	// reachTolerance allows a club to be recommended when its typical
	// distance is slightly under the target (10% under-club tolerance).
	reachTolerance = 0.9

	// claimVariance is the accepted deviation from the expected club
	// distance when validating a spoken distance claim (±20%).
	claimVariance = 0.2
)

// Clubs lists the canonical club identifiers, ordered short to long by
// typical carry distance.
var Clubs = []string{
	"lob-wedge",
	"sand-wedge",
	"pitching-wedge",
	"9-iron",
	"8-iron",
	"7-iron",
	"6-iron",
	"5-iron",
	"4-iron",
	"3-iron",
	"5-wood",
	"3-wood",
	"driver",
}

// ClubDistances holds the typical carry distance in yards for each canonical
// club at a given handicap.
type ClubDistances struct {
	Driver        int `json:"driver"`
	ThreeWood     int `json:"3_wood"`
	FiveWood      int `json:"5_wood"`
	ThreeIron     int `json:"3_iron"`
	FourIron      int `json:"4_iron"`
	FiveIron      int `json:"5_iron"`
	SixIron       int `json:"6_iron"`
	SevenIron     int `json:"7_iron"`
	EightIron     int `json:"8_iron"`
	NineIron      int `json:"9_iron"`
	PitchingWedge int `json:"pitching_wedge"`
	SandWedge     int `json:"sand_wedge"`
	LobWedge      int `json:"lob_wedge"`
}

// Distance returns the typical distance for the canonical club id
// (e.g., "7-iron", "pitching-wedge"). ok is false for unknown clubs and for
// clubs with no recorded distance.
func (c ClubDistances) Distance(club string) (int, bool) {
	var d int
	switch normalizeClub(club) {
	case "driver":
		d = c.Driver
	case "3-wood":
		d = c.ThreeWood
	case "5-wood":
		d = c.FiveWood
	case "3-iron":
		d = c.ThreeIron
	case "4-iron":
		d = c.FourIron
	case "5-iron":
		d = c.FiveIron
	case "6-iron":
		d = c.SixIron
	case "7-iron":
		d = c.SevenIron
	case "8-iron":
		d = c.EightIron
	case "9-iron":
		d = c.NineIron
	case "pitching-wedge":
		d = c.PitchingWedge
	case "sand-wedge":
		d = c.SandWedge
	case "lob-wedge":
		d = c.LobWedge
	default:
		return 0, false
	}
	if d <= 0 {
		return 0, false
	}
	return d, true
}

// ForDistance selects the most appropriate club for the target distance in
// yards: among clubs whose typical distance is at least 90% of the target,
// the one with the smallest absolute difference wins. When no club qualifies
// the fallback 7-iron is returned.
func (c ClubDistances) ForDistance(target int) string {
	best := fallbackClub
	bestDiff := -1

	for _, club := range Clubs {
		d, ok := c.Distance(club)
		if !ok {
			continue
		}
		if float64(d) < float64(target)*reachTolerance {
			continue
		}
		diff := target - d
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			bestDiff = diff
			best = club
		}
	}
	return best
}

// Proximity holds the expected shot proximity to the pin, in feet, grouped
// by approach distance band.
type Proximity struct {
	Yards50  int `json:"50_yards"`
	Yards75  int `json:"75_yards"`
	Yards100 int `json:"100_yards"`
	Yards125 int `json:"125_yards"`
	Yards150 int `json:"150_yards"`
	Yards175 int `json:"175_yards"`
	Yards200 int `json:"200_yards"`
}

// Expected returns the proximity value for the band containing distance.
// Bands: ≤50, ≤75, ≤100, ≤125, ≤150, ≤175, >175.
func (p Proximity) Expected(distance int) int {
	switch {
	case distance <= 50:
		return p.Yards50
	case distance <= 75:
		return p.Yards75
	case distance <= 100:
		return p.Yards100
	case distance <= 125:
		return p.Yards125
	case distance <= 150:
		return p.Yards150
	case distance <= 175:
		return p.Yards175
	default:
		return p.Yards200
	}
}

// GreensInRegulation holds GIR percentages by approach distance band.
type GreensInRegulation struct {
	Overall       int `json:"overall"`
	Yards100To125 int `json:"100_125_yards"`
	Yards125To150 int `json:"125_150_yards"`
	Yards150To175 int `json:"150_175_yards"`
	Yards175To200 int `json:"175_200_yards"`
	Yards200Plus  int `json:"200_plus_yards"`
}

// Percentage returns the GIR percentage for the band containing distance.
// Bands: ≤125, ≤150, ≤175, ≤200, >200.
func (g GreensInRegulation) Percentage(distance int) int {
	switch {
	case distance <= 125:
		return g.Yards100To125
	case distance <= 150:
		return g.Yards125To150
	case distance <= 175:
		return g.Yards150To175
	case distance <= 200:
		return g.Yards175To200
	default:
		return g.Yards200Plus
	}
}

// ShortGame holds recovery statistics around the green.
type ShortGame struct {
	SandSavePct     int `json:"sand_save_percentage"`
	UpAndDown0To25  int `json:"up_and_down_0_25_yards"`
	UpAndDown25To50 int `json:"up_and_down_25_50_yards"`
	ScramblingPct   int `json:"scrambling_percentage"`
}

// Putting holds putting statistics, including make percentages by putt length.
type Putting struct {
	PuttsPerRound      float64 `json:"putts_per_round"`
	OnePuttsPerRound   float64 `json:"one_putts_per_round"`
	ThreePuttsPerRound float64 `json:"three_putts_per_round"`
	Make3Feet          int     `json:"make_percentage_3_feet"`
	Make6Feet          int     `json:"make_percentage_6_feet"`
	Make10Feet         int     `json:"make_percentage_10_feet"`
	Make15Feet         int     `json:"make_percentage_15_feet"`
	Make20Feet         int     `json:"make_percentage_20_feet"`
}

// MakePercentage returns the make percentage for the band containing feet.
// Bands: ≤3, ≤6, ≤10, ≤15, >15.
func (p Putting) MakePercentage(feet int) int {
	switch {
	case feet <= 3:
		return p.Make3Feet
	case feet <= 6:
		return p.Make6Feet
	case feet <= 10:
		return p.Make10Feet
	case feet <= 15:
		return p.Make15Feet
	default:
		return p.Make20Feet
	}
}

// CourseManagement holds scoring-pattern statistics.
type CourseManagement struct {
	FairwaysHit            int     `json:"fairways_hit"`
	PenaltyStrokesPerRound float64 `json:"penalty_strokes_per_round"`
	AverageScore           int     `json:"average_score"`
}

// HandicapStats is the complete statistics row for one handicap level.
type HandicapStats struct {
	Handicap   int                `json:"handicap"`
	Category   string             `json:"category"`
	Clubs      ClubDistances      `json:"club_distances"`
	Proximity  Proximity          `json:"proximity_to_target"`
	GIR        GreensInRegulation `json:"greens_in_regulation"`
	ShortGame  ShortGame          `json:"short_game"`
	Putting    Putting            `json:"putting"`
	Management CourseManagement   `json:"course_management"`
}

// ─── Table ────────────────────────────────────────────────────────────────────

// Table is the immutable per-handicap statistics table. Construct it once via
// [Load] (embedded data) or [LoadFrom] and pass the pointer to consumers; it
// is never mutated after construction.
type Table struct {
	byHandicap map[int]HandicapStats
}

// tableFile mirrors the on-disk JSON document layout.
type tableFile struct {
	Metadata struct {
		Title string            `json:"title"`
		Units map[string]string `json:"units"`
	} `json:"metadata"`
	Rows map[string]HandicapStats `json:"handicap_statistics"`
}

// Load parses the embedded statistics table.
func Load() (*Table, error) {
	return LoadFrom(bytes.NewReader(embeddedTable))
}

// LoadFrom parses a statistics table from r. Useful in tests where fixture
// tables are built from string literals.
func LoadFrom(r io.Reader) (*Table, error) {
	var f tableFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("stats: decode table: %w", err)
	}
	if len(f.Rows) == 0 {
		return nil, fmt.Errorf("stats: table has no handicap rows")
	}

	rows := make(map[int]HandicapStats, len(f.Rows))
	for key, row := range f.Rows {
		h, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("stats: bad handicap key %q: %w", key, err)
		}
		rows[h] = row
	}
	return &Table{byHandicap: rows}, nil
}

// Stats returns the statistics row for handicap, clamped into
// [MinHandicap, MaxHandicap]. ok is false only when the clamped handicap has
// no row, which cannot happen with the embedded table.
func (t *Table) Stats(handicap int) (HandicapStats, bool) {
	row, ok := t.byHandicap[clampHandicap(handicap)]
	return row, ok
}

// ExpectedDistance returns the typical distance in yards that the given
// handicap hits the given club.
func (t *Table) ExpectedDistance(handicap int, club string) (int, bool) {
	row, ok := t.Stats(handicap)
	if !ok {
		return 0, false
	}
	return row.Clubs.Distance(club)
}

// ClubForDistance recommends a club for the target distance at the given
// handicap.
func (t *Table) ClubForDistance(handicap, target int) (string, bool) {
	row, ok := t.Stats(handicap)
	if !ok {
		return "", false
	}
	return row.Clubs.ForDistance(target), true
}

// ExpectedProximity returns the expected proximity in feet for an approach
// from distance yards.
func (t *Table) ExpectedProximity(handicap, distance int) (int, bool) {
	row, ok := t.Stats(handicap)
	if !ok {
		return 0, false
	}
	return row.Proximity.Expected(distance), true
}

// GIRPercentage returns the expected green-in-regulation percentage for an
// approach from distance yards.
func (t *Table) GIRPercentage(handicap, distance int) (int, bool) {
	row, ok := t.Stats(handicap)
	if !ok {
		return 0, false
	}
	return row.GIR.Percentage(distance), true
}

// MakePercentage returns the expected putt make percentage from feet.
func (t *Table) MakePercentage(handicap, feet int) (int, bool) {
	row, ok := t.Stats(handicap)
	if !ok {
		return 0, false
	}
	return row.Putting.MakePercentage(feet), true
}

// ─── Distance claim validation ────────────────────────────────────────────────

// Validation is the outcome of checking a spoken distance claim against the
// expected distance for a handicap/club pair.
type Validation struct {
	// Realistic is true when the claim falls inside the tolerance window
	// (or when the club is unknown and no judgement is possible).
	Realistic bool

	// Message explains the outcome ("Realistic", "Unknown club", or an
	// "Unusually short/long" hint with the expected distance).
	Message string
}

// ValidateDistanceClaim checks whether claimed yards is a realistic distance
// for the given handicap to hit the given club. The tolerance window is
// expected ±20%.
func (t *Table) ValidateDistanceClaim(handicap int, club string, claimed int) Validation {
	expected, ok := t.ExpectedDistance(handicap, club)
	if !ok {
		return Validation{Realistic: true, Message: "Unknown club"}
	}

	lower := float64(expected) * (1 - claimVariance)
	upper := float64(expected) * (1 + claimVariance)

	switch {
	case float64(claimed) >= lower && float64(claimed) <= upper:
		return Validation{Realistic: true, Message: "Realistic"}
	case float64(claimed) < lower:
		return Validation{Message: fmt.Sprintf("Unusually short (expected ~%dy)", expected)}
	default:
		return Validation{Message: fmt.Sprintf("Unusually long (expected ~%dy)", expected)}
	}
}

// PerformanceContext returns a one-line performance summary suitable for
// inclusion in an LLM prompt, e.g.
// "Handicap 15 (Mid Double Digit) | Typical 7-iron for 150y | Expected proximity: 116ft | GIR rate: 31%".
func (t *Table) PerformanceContext(handicap, distance int) string {
	row, ok := t.Stats(handicap)
	if !ok {
		return fmt.Sprintf("Handicap %d player", handicap)
	}
	return fmt.Sprintf("Handicap %d (%s) | Typical %s for %dy | Expected proximity: %dft | GIR rate: %d%%",
		handicap,
		row.Category,
		row.Clubs.ForDistance(distance),
		distance,
		row.Proximity.Expected(distance),
		row.GIR.Percentage(distance),
	)
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func clampHandicap(h int) int {
	if h < MinHandicap {
		return MinHandicap
	}
	if h > MaxHandicap {
		return MaxHandicap
	}
	return h
}

// normalizeClub canonicalizes a club id: lower-case, spaces and underscores
// become hyphens ("pitching wedge" → "pitching-wedge", "7_iron" → "7-iron").
func normalizeClub(club string) string {
	club = strings.ToLower(strings.TrimSpace(club))
	club = strings.ReplaceAll(club, "_", "-")
	club = strings.ReplaceAll(club, " ", "-")
	return club
}
