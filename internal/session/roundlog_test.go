package session

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestLog(t *testing.T, opts ...RoundLogOption) *RoundLog {
	t.Helper()
	r, err := OpenRoundLog(filepath.Join(t.TempDir(), "round.db"), opts...)
	if err != nil {
		t.Fatalf("OpenRoundLog: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRoundLog_GoToHintRequiresAttempts(t *testing.T) {
	t.Parallel()

	r := openTestLog(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := r.Record(ctx, Shot{Club: "7-iron", DistanceBin: 150, Hit: true, ProximityFt: 10}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if _, ok, err := r.GoToHint(ctx, "7-iron", 150); err != nil || ok {
		t.Errorf("GoToHint = (ok=%v, err=%v), want no hint below 4 attempts", ok, err)
	}
}

func TestRoundLog_GoToHintQualifies(t *testing.T) {
	t.Parallel()

	r := openTestLog(t)
	ctx := context.Background()

	shots := []Shot{
		{Club: "7-iron", DistanceBin: 150, WindBin: "head_2|cross_00", Hit: true, ProximityFt: 12},
		{Club: "7-iron", DistanceBin: 150, Hit: true, ProximityFt: 15},
		{Club: "7-iron", DistanceBin: 150, Hit: true, ProximityFt: 18},
		{Club: "7-iron", DistanceBin: 150, Hit: false, ProximityFt: 40},
		{Club: "7-iron", DistanceBin: 150, Hit: true, ProximityFt: 9},
	}
	for _, s := range shots {
		if err := r.Record(ctx, s); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	hint, ok, err := r.GoToHint(ctx, "7-iron", 150)
	if err != nil {
		t.Fatalf("GoToHint: %v", err)
	}
	if !ok {
		t.Fatal("want a go-to hint for 4 of 5 hits with low proximity")
	}
	if want := "7-iron from the 150 range: 4 of 5 on target, median 15 ft"; hint != want {
		t.Errorf("hint = %q, want %q", hint, want)
	}
}

func TestRoundLog_GoToHintRejectsLowHitRate(t *testing.T) {
	t.Parallel()

	r := openTestLog(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if err := r.Record(ctx, Shot{Club: "3-wood", DistanceBin: 220, Hit: i < 2, ProximityFt: 10}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if _, ok, _ := r.GoToHint(ctx, "3-wood", 220); ok {
		t.Error("2 of 6 hits must not qualify as a go-to")
	}
}

func TestRoundLog_GoToHintRejectsWideProximity(t *testing.T) {
	t.Parallel()

	r := openTestLog(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := r.Record(ctx, Shot{Club: "5-iron", DistanceBin: 180, Hit: true, ProximityFt: 45}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if _, ok, _ := r.GoToHint(ctx, "5-iron", 180); ok {
		t.Error("median 45 ft must not qualify with the 20 ft default")
	}
}

func TestRoundLog_GoToHintIsolatedByBin(t *testing.T) {
	t.Parallel()

	r := openTestLog(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := r.Record(ctx, Shot{Club: "7-iron", DistanceBin: 150, Hit: true, ProximityFt: 10}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if _, ok, _ := r.GoToHint(ctx, "7-iron", 170); ok {
		t.Error("record from 150 must not vouch for 170")
	}
}

func TestRoundLog_CustomThresholds(t *testing.T) {
	t.Parallel()

	r := openTestLog(t, WithGoToThresholds(2, 0.5, 50))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := r.Record(ctx, Shot{Club: "driver", DistanceBin: 250, Hit: i == 0, ProximityFt: 40}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if _, ok, err := r.GoToHint(ctx, "driver", 250); err != nil || !ok {
		t.Errorf("GoToHint = (ok=%v, err=%v), want qualification under relaxed thresholds", ok, err)
	}
}
