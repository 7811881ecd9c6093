package binning

import (
	"errors"
	"strings"
	"testing"

	"github.com/JamieWonderchild/ai-golf-caddie/internal/stats"
)

func TestBinDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		distance int
		want     int
	}{
		{0, 0}, {9, 0}, {10, 10}, {19, 10}, {20, 20}, {153, 150}, {-40, 0},
	}
	for _, tt := range tests {
		got, err := BinDistance(tt.distance, 10)
		if err != nil {
			t.Fatalf("BinDistance(%d, 10): %v", tt.distance, err)
		}
		if got != tt.want {
			t.Errorf("BinDistance(%d, 10) = %d, want %d", tt.distance, got, tt.want)
		}
	}
}

func TestBinDistance_InvalidSize(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, -3} {
		if _, err := BinDistance(100, size); !errors.Is(err, ErrInvalidBinSize) {
			t.Errorf("BinDistance(100, %d) err = %v, want ErrInvalidBinSize", size, err)
		}
	}
}

func TestBinWind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		head, cross float64
		want        string
	}{
		{0, 0, "head_0|cross_00"},
		{3, 1, "head_2|cross_0R"},
		{-5, -3.9, "tail_4|cross_2L"},
		{1.9, 0, "head_0|cross_00"},
		{-0.1, 4.2, "tail_0|cross_4R"},
		{6, -6, "head_6|cross_6L"},
	}
	for _, tt := range tests {
		if got := BinWind(tt.head, tt.cross); got != tt.want {
			t.Errorf("BinWind(%v, %v) = %q, want %q", tt.head, tt.cross, got, tt.want)
		}
	}
}

func TestBinHandicap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		handicap int
		want     string
	}{
		{0, "scratch"},
		{1, "low_single"},
		{3, "low_single"},
		{5, "low_single"},
		{6, "high_single"},
		{8, "high_single"},
		{9, "high_single"},
		{10, "low_double"},
		{12, "low_double"},
		{15, "low_double"},
		{16, "high_double"},
		{18, "high_double"},
		{20, "high_double"},
		{21, "high_handicap"},
		{25, "high_handicap"},
		{-1, "high_handicap"},
	}
	for _, tt := range tests {
		if got := BinHandicap(tt.handicap); got != tt.want {
			t.Errorf("BinHandicap(%d) = %q, want %q", tt.handicap, got, tt.want)
		}
	}
}

func TestPerformanceExpectation(t *testing.T) {
	t.Parallel()

	table, err := stats.Load()
	if err != nil {
		t.Fatalf("stats.Load: %v", err)
	}

	// Scratch from 150y: GIR 78% -> high tier.
	got := PerformanceExpectation(table, 150, 0)
	if !strings.HasPrefix(got, "high_gir_") || !strings.HasSuffix(got, "ft") {
		t.Errorf("PerformanceExpectation(150, 0) = %q, want high_gir_..ft", got)
	}

	// Handicap 20 from 200y is a low-percentage shot.
	got = PerformanceExpectation(table, 200, 20)
	if !strings.HasPrefix(got, "low_gir_") {
		t.Errorf("PerformanceExpectation(200, 20) = %q, want low_gir_...", got)
	}

	if got := PerformanceExpectation(nil, 150, 10); got != "unknown" {
		t.Errorf("PerformanceExpectation(nil table) = %q, want unknown", got)
	}
}

func TestCompute(t *testing.T) {
	t.Parallel()

	table, err := stats.Load()
	if err != nil {
		t.Fatalf("stats.Load: %v", err)
	}

	bins, err := Compute(table, 153, 3, 1, 12, 10)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if bins.DistanceBin != 150 {
		t.Errorf("DistanceBin = %d, want 150", bins.DistanceBin)
	}
	if bins.WindBin != "head_2|cross_0R" {
		t.Errorf("WindBin = %q, want head_2|cross_0R", bins.WindBin)
	}
	if bins.HandicapBin != "low_double" {
		t.Errorf("HandicapBin = %q, want low_double", bins.HandicapBin)
	}
	if bins.PerformanceExpectation == "" || bins.PerformanceExpectation == "unknown" {
		t.Errorf("PerformanceExpectation = %q, want a concrete label", bins.PerformanceExpectation)
	}

	// Unknown handicap leaves the handicap-derived bins empty.
	bins, err = Compute(table, 100, 0, 0, -1, 10)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if bins.HandicapBin != "" || bins.PerformanceExpectation != "" {
		t.Errorf("handicap bins = (%q, %q), want empty", bins.HandicapBin, bins.PerformanceExpectation)
	}

	if _, err := Compute(table, 100, 0, 0, 10, 0); !errors.Is(err, ErrInvalidBinSize) {
		t.Errorf("Compute with bin size 0: err = %v, want ErrInvalidBinSize", err)
	}
}
