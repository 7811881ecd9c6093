package caddie

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JamieWonderchild/ai-golf-caddie/internal/session"
	"github.com/JamieWonderchild/ai-golf-caddie/internal/stats"
)

// systemRole is the system message sent with every completion request.
const systemRole = "You are a witty golf caddie."

// historyTruncate caps how much of each past utterance and reply is quoted in
// the prompt.
const historyTruncate = 140

// mishitWords trigger the roast hint when the previous utterance mentions one.
var mishitWords = []string{
	"shank", "slice", "hook", "chunk", "duff", "top", "water", "out of bounds",
}

// missingHandicapDirective is injected when the player's handicap is still
// unknown, so the caddie asks for it instead of guessing.
const missingHandicapDirective = "IMPORTANT: No handicap provided. Ask the user for their handicap or skill level " +
	"to give proper course management advice. Say something like: " +
	"'What's your handicap? I need to know your skill level to recommend the right shot strategy.'\n\n"

// PromptInput carries everything the prompt builder needs for one utterance.
type PromptInput struct {
	Transcript  string
	Handicap    int
	HasHandicap bool
	Lat, Lon    float64
	Bearing     int
	History     []session.Exchange
	Conditions  string
	HoleLayout  string

	// Distance is the parsed target distance in yards; 0 when none was spoken.
	Distance int

	// Warning carries the distance-claim reality check, if any.
	Warning string

	// GoToHint is a proven-club note from the round log, if one applies.
	GoToHint string
}

// BuildPrompt assembles the course-management prompt for one utterance.
// table may be nil; the statistics block then degrades to a one-line note.
func BuildPrompt(in PromptInput, table *stats.Table) string {
	var historyBlock, humorHint string
	if len(in.History) > 0 {
		last := in.History
		if len(last) > 3 {
			last = last[len(last)-3:]
		}
		lines := make([]string, 0, len(last))
		for i, ex := range last {
			lines = append(lines, fmt.Sprintf("- Shot %d: user='%s', caddie='%s'",
				i+1, truncate(ex.Utterance, historyTruncate), truncate(ex.Reply, historyTruncate)))
		}
		historyBlock = "Recent shots (use for context, but don't repeat):\n" + strings.Join(lines, "\n") + "\n\n"

		lastUser := strings.ToLower(in.History[len(in.History)-1].Utterance)
		for _, w := range mishitWords {
			if strings.Contains(lastUser, w) {
				humorHint = "- If the previous shot mentions a mishit (shank/slice/hook/chunk/top/water/OB), add a playful one-line roast acknowledging it.\n"
				break
			}
		}
	}

	var conditionsBlock, holeBlock string
	if in.Conditions != "" {
		conditionsBlock = "Current conditions: " + in.Conditions + "\n"
	}
	if in.HoleLayout != "" {
		holeBlock = "Hole layout: " + in.HoleLayout + "\n"
	}
	var goToBlock string
	if in.GoToHint != "" {
		goToBlock = "Proven go-to: " + in.GoToHint + "\n"
	}

	var handicapPrompt, statsBlock, handicapLine string
	if !in.HasHandicap {
		handicapPrompt = missingHandicapDirective
		handicapLine = "Unknown - ASK FOR IT!"
	} else {
		statsBlock = statisticsContext(table, in.Handicap, in.Distance, in.Warning)
		handicapLine = strconv.Itoa(in.Handicap)
	}

	return "You are a COURSE MANAGEMENT focused golf caddie. Your primary role is helping players " +
		"make smart, conservative decisions that minimize big numbers and play to their strengths.\n" +
		historyBlock + handicapPrompt +
		"COURSE MANAGEMENT PHILOSOPHY:\n" +
		"Golf is about hitting the LEAST WORST shot, not the perfect shot. Course management " +
		"trumps raw skill. Your job is to help players avoid disaster and play within their abilities.\n\n" +
		"Task: Recommend the SMARTEST shot for this player's skill level, not the most aggressive.\n" +
		"CORE PRINCIPLES:\n" +
		"- SAFETY FIRST: Avoid hazards, pick conservative targets, leave room for error\n" +
		"- PLAY YOUR DISTANCES: Use the performance data to recommend realistic expectations\n" +
		"- PERCENTAGES MATTER: Focus on high-percentage shots that this handicap can execute\n" +
		"- LEAVE YOURSELF OPTIONS: Consider where a miss will end up\n" +
		"- SHORT SIDE IS DEATH: Avoid short-sided positions around greens\n" +
		"- WHEN IN DOUBT, TAKE MORE CLUB and aim for center of target\n" +
		humorHint +
		"Response Format:\n" +
		"1) Smart club choice + target + course management reason\n" +
		"2) One witty comment about playing percentages or avoiding trouble\n\n" +
		conditionsBlock + holeBlock + goToBlock + statsBlock +
		"Transcript: " + in.Transcript + "\n" +
		"Handicap: " + handicapLine + "\n" +
		"Location: lat=" + formatCoord(in.Lat) + ", lon=" + formatCoord(in.Lon) +
		", bearing=" + strconv.Itoa(in.Bearing) + "\n"
}

// statisticsContext renders the performance-data block for a known handicap.
func statisticsContext(table *stats.Table, handicap, distance int, warning string) string {
	if table == nil {
		return fmt.Sprintf("Handicap %d player\n\n", handicap)
	}
	row, ok := table.Stats(handicap)
	if !ok {
		return ""
	}

	parts := []string{
		fmt.Sprintf("PLAYER SKILL PROFILE: %s golfer (handicap %d)", row.Category, handicap),
	}

	if warning != "" {
		parts = append(parts, "⚠️ REALITY CHECK: "+warning)
	}

	if distance > 0 {
		parts = append(parts,
			fmt.Sprintf("RECOMMENDED CLUB for %dy: %s", distance, row.Clubs.ForDistance(distance)),
			fmt.Sprintf("REALISTIC EXPECTATION: %dft from pin (typical for this handicap)", row.Proximity.Expected(distance)),
			fmt.Sprintf("SUCCESS RATE: %d%% chance of hitting green from %dy", row.GIR.Percentage(distance), distance),
		)
	}

	parts = append(parts,
		"STRENGTHS TO PLAY TO:",
		fmt.Sprintf("- Overall GIR: %d%% (play to your average)", row.GIR.Overall),
		fmt.Sprintf("- Fairways hit: %d%% (prioritize fairways over distance)", row.Management.FairwaysHit),
		fmt.Sprintf("- Scrambling: %d%% (short game bailout ability)", row.ShortGame.ScramblingPct),
		fmt.Sprintf("- 3-putt rate: %.1f/round (putting pressure tolerance)", row.Putting.ThreePuttsPerRound),
	)

	parts = append(parts,
		"DISTANCE REALITY CHECK:",
		fmt.Sprintf("- driver: %dy, 7-iron: %dy, pitching wedge: %dy",
			row.Clubs.Driver, row.Clubs.SevenIron, row.Clubs.PitchingWedge),
		"- These are TYPICAL distances - recommend taking MORE club in pressure situations",
		"- Factor in adrenaline, wind, pin position when choosing",
	)

	var b strings.Builder
	b.WriteString("COURSE MANAGEMENT DATA:\n")
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(p)
	}
	b.WriteString("\n\n")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// formatCoord renders a coordinate with its natural precision, no trailing
// zeros.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
