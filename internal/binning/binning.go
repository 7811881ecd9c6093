// Package binning quantizes continuous shot context (distance, wind
// components, handicap) into discrete, stable labels. Bins give the round
// log and the prompt builder a reproducible vocabulary for otherwise noisy
// values: the same conditions always map to the same label.
package binning

import (
	"errors"
	"fmt"
	"math"

	"github.com/JamieWonderchild/ai-golf-caddie/internal/stats"
)

// ErrInvalidBinSize is returned by [BinDistance] when the bin size is not
// positive.
var ErrInvalidBinSize = errors.New("binning: bin size must be positive")

// DefaultDistanceBinSize is the distance bin width in yards used when no
// size is configured.
const DefaultDistanceBinSize = 10

// windBucketStep is the wind component bucket width in m/s.
const windBucketStep = 2

// ContextBins is the discretized view of one shot's context. HandicapBin and
// PerformanceExpectation are empty when no handicap is known.
type ContextBins struct {
	DistanceBin            int
	WindBin                string
	HandicapBin            string
	PerformanceExpectation string
}

// BinDistance rounds distance down to the nearest lower multiple of binSize.
// Negative distances bin to 0. Fails with [ErrInvalidBinSize] when
// binSize <= 0.
func BinDistance(distance, binSize int) (int, error) {
	if binSize <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBinSize, binSize)
	}
	if distance < 0 {
		distance = 0
	}
	return (distance / binSize) * binSize, nil
}

// BinWind produces a compact wind label from signed head/cross components in
// m/s. Each component's magnitude is bucketed to the nearest lower multiple
// of 2; direction is encoded as head/tail and R (right-to-left), L
// (left-to-right), or 0 for no crosswind.
//
// Examples: BinWind(0, 0) = "head_0|cross_00",
// BinWind(-5, -3.9) = "tail_4|cross_2L".
func BinWind(headwind, crosswind float64) string {
	headDir := "head"
	if headwind < 0 {
		headDir = "tail"
	}

	crossDir := "0"
	switch {
	case crosswind > 0:
		crossDir = "R"
	case crosswind < 0:
		crossDir = "L"
	}

	return fmt.Sprintf("%s_%d|cross_%d%s",
		headDir, windBucket(headwind), windBucket(crosswind), crossDir)
}

// windBucket rounds a component magnitude down to the nearest lower multiple
// of windBucketStep.
func windBucket(v float64) int {
	return int(math.Abs(v)/windBucketStep) * windBucketStep
}

// BinHandicap maps a handicap to a skill category label.
func BinHandicap(handicap int) string {
	switch {
	case handicap == 0:
		return "scratch"
	case handicap >= 1 && handicap <= 5:
		return "low_single"
	case handicap >= 6 && handicap <= 9:
		return "high_single"
	case handicap >= 10 && handicap <= 15:
		return "low_double"
	case handicap >= 16 && handicap <= 20:
		return "high_double"
	default:
		return "high_handicap"
	}
}

// PerformanceExpectation summarizes the GIR and proximity outlook for an
// approach from distance yards at the given handicap, e.g.
// "med_gir_31pct_116ft". The tier is "high" for GIR >= 50%, "med" for >= 25%,
// otherwise "low". Returns "unknown" when the statistics table cannot answer.
func PerformanceExpectation(table *stats.Table, distance, handicap int) string {
	if table == nil {
		return "unknown"
	}
	gir, ok := table.GIRPercentage(handicap, distance)
	if !ok {
		return "unknown"
	}
	proximity, ok := table.ExpectedProximity(handicap, distance)
	if !ok {
		return "unknown"
	}

	tier := "low"
	switch {
	case gir >= 50:
		tier = "high"
	case gir >= 25:
		tier = "med"
	}
	return fmt.Sprintf("%s_gir_%dpct_%dft", tier, gir, proximity)
}

// Compute assembles the full [ContextBins] for one shot. handicap < 0 means
// no handicap is known; the handicap-derived bins are then left empty.
func Compute(table *stats.Table, distance int, headwind, crosswind float64, handicap, binSize int) (ContextBins, error) {
	db, err := BinDistance(distance, binSize)
	if err != nil {
		return ContextBins{}, err
	}

	bins := ContextBins{
		DistanceBin: db,
		WindBin:     BinWind(headwind, crosswind),
	}
	if handicap >= 0 {
		bins.HandicapBin = BinHandicap(handicap)
		bins.PerformanceExpectation = PerformanceExpectation(table, distance, handicap)
	}
	return bins, nil
}
