package caddie

import "testing"

func TestParseOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text     string
		wantOK   bool
		wantHit  bool
		wantProx float64
	}{
		{"that one landed about 10 feet away", true, true, 10},
		{"hit it to 8 feet", true, true, 8},
		{"stuck it to 3 ft", true, true, 3},
		{"landed on the green", true, true, 0},
		{"missed the green left", true, false, 0},
		{"came up short in the water", true, false, 0},
		{"ended up 40 feet away, missed badly", true, false, 40},
		{"what club for 150 yards", false, false, 0},
		{"how's the wind looking", false, false, 0},
		{"shanked it into the trees", false, false, 0}, // mishit alone feeds the roast hint, not the log
		{"landed somewhere", false, false, 0},          // marker without anything measurable
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			got, ok := parseOutcome(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("parseOutcome(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Hit != tt.wantHit {
				t.Errorf("Hit = %v, want %v", got.Hit, tt.wantHit)
			}
			if got.ProximityFt != tt.wantProx {
				t.Errorf("ProximityFt = %g, want %g", got.ProximityFt, tt.wantProx)
			}
		})
	}
}
