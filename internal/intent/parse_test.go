package intent

import (
	"slices"
	"testing"

	"github.com/JamieWonderchild/ai-golf-caddie/internal/stats"
)

// stubValidator records the claim it was asked about.
type stubValidator struct {
	gotHandicap int
	gotClub     string
	gotYards    int
	result      stats.Validation
}

func (s *stubValidator) ValidateDistanceClaim(handicap int, club string, claimedYards int) stats.Validation {
	s.gotHandicap = handicap
	s.gotClub = club
	s.gotYards = claimedYards
	return s.result
}

func TestParse_DistanceLieHazards(t *testing.T) {
	t.Parallel()

	p := NewParser()

	got := p.Parse("I'm 150 yards out in the rough, water left", -1)
	if got.DistanceYards != 150 {
		t.Errorf("DistanceYards = %d, want 150", got.DistanceYards)
	}
	if got.Lie != "rough" {
		t.Errorf("Lie = %q, want rough", got.Lie)
	}
	if !slices.Contains(got.Hazards, "water") {
		t.Errorf("Hazards = %v, want to contain water", got.Hazards)
	}
}

func TestParse_BunkerReadsAsSand(t *testing.T) {
	t.Parallel()

	got := NewParser().Parse("about 95y from the bunker", -1)
	if got.DistanceYards != 95 {
		t.Errorf("DistanceYards = %d, want 95", got.DistanceYards)
	}
	if got.Lie != "sand" {
		t.Errorf("Lie = %q, want sand", got.Lie)
	}
	if !slices.Contains(got.Hazards, "front_bunker") {
		t.Errorf("Hazards = %v, want to contain front_bunker", got.Hazards)
	}
}

func TestParse_Distance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want int
	}{
		{"150 yards out", 150},
		{"about 95y to the pin", 95},
		{"at 180 with trouble long", 180},
		{"161 yard par three", 161},
		{"pin is at 30", 0},        // too short to be a shot
		{"i'm a 15 handicap", 0},   // handicap, not distance
		{"no numbers here", 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			if got := NewParser().Parse(tt.text, -1).DistanceYards; got != tt.want {
				t.Errorf("DistanceYards = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParse_ClubMentions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want string
	}{
		{"i hit my driver", "driver"},
		{"should i use a 7 iron", "7-iron"},
		{"hit a 3 wood", "3-wood"},
		{"maybe a five wood", "5-wood"},
		{"a seven iron should do", "7-iron"},
		{"use my pitching wedge", "pitching-wedge"},
		{"sand wedge from here", "sand-wedge"},
		{"lob wedge over the trap", "lob-wedge"},
		{"gap wedge maybe", "gap-wedge"},
		{"my pw", "pitching-wedge"},
		{"grab the sw", "sand-wedge"},
		{"just a wedge", "pitching-wedge"},
		{"use putter", "putter"},
		{"no club mentioned", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			if got := NewParser().Parse(tt.text, -1).Club; got != tt.want {
				t.Errorf("Club = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_HandicapMentions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text    string
		want    int
		wantSet bool
	}{
		{"i'm a 15 handicap", 15, true},
		{"i'm a fifteen handicap", 15, true},
		{"my handicap is 8", 8, true},
		{"5 handicap player here", 5, true},
		{"handicap 12", 12, true},
		{"i play to a 7", 7, true},
		{"i'm a 20", 20, true},
		{"scratch golfer", 0, true},
		{"scratch player", 0, true},
		{"i'm a 35 handicap", 30, true}, // clamped
		{"i'm a -2 handicap", 0, true},  // clamped to scratch
		{"my handicap is -1", 0, true},
		{"no handicap mentioned", 0, false},
		{"150 yards out", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			got := NewParser().Parse(tt.text, -1)
			if got.HasHandicap != tt.wantSet {
				t.Fatalf("HasHandicap = %v, want %v", got.HasHandicap, tt.wantSet)
			}
			if tt.wantSet && got.Handicap != tt.want {
				t.Errorf("Handicap = %d, want %d", got.Handicap, tt.want)
			}
		})
	}
}

func TestParse_ValidationUsesSpokenHandicapFirst(t *testing.T) {
	t.Parallel()

	v := &stubValidator{result: stats.Validation{Realistic: true, Message: "Realistic"}}
	p := NewParser(WithValidator(v))

	got := p.Parse("I'm a 5 handicap with my 7 iron at 150 yards", 15)
	if !got.HasHandicap || got.Handicap != 5 {
		t.Fatalf("Handicap = %d (set=%v), want spoken 5", got.Handicap, got.HasHandicap)
	}
	if v.gotHandicap != 5 || v.gotClub != "7-iron" || v.gotYards != 150 {
		t.Errorf("validated (%d, %q, %d), want (5, 7-iron, 150)",
			v.gotHandicap, v.gotClub, v.gotYards)
	}
	if got.ValidationWarning != "" {
		t.Errorf("ValidationWarning = %q, want none", got.ValidationWarning)
	}
}

func TestParse_ValidationFallsBackToSessionHandicap(t *testing.T) {
	t.Parallel()

	v := &stubValidator{result: stats.Validation{Realistic: false, Message: "Unusually long (expected ~140y)"}}
	p := NewParser(WithValidator(v))

	got := p.Parse("150 yards with my 7 iron", 10)
	if got.HasHandicap {
		t.Fatalf("HasHandicap = true, want false")
	}
	if v.gotHandicap != 10 {
		t.Errorf("validated handicap = %d, want session 10", v.gotHandicap)
	}
	if got.ValidationWarning != "Unusually long (expected ~140y)" {
		t.Errorf("ValidationWarning = %q", got.ValidationWarning)
	}
}

func TestParse_NoValidationWithoutHandicap(t *testing.T) {
	t.Parallel()

	v := &stubValidator{result: stats.Validation{Realistic: false, Message: "nope"}}
	p := NewParser(WithValidator(v))

	got := p.Parse("150 yards with my 7 iron", -1)
	if got.ValidationWarning != "" {
		t.Errorf("ValidationWarning = %q, want none without any handicap", got.ValidationWarning)
	}
}

func TestParse_AgainstRealTable(t *testing.T) {
	t.Parallel()

	table, err := stats.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := NewParser(WithValidator(table))

	got := p.Parse("I hit my 7 iron 300 yards", 0)
	if got.ValidationWarning == "" {
		t.Error("want a warning for a 300-yard 7-iron claim")
	}
}
