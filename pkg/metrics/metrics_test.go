package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestNewPipelineStats_DefaultWindowSize(t *testing.T) {
	t.Parallel()

	ps := NewPipelineStats(0)
	ps.RecordSTT(10 * time.Millisecond)

	snap := ps.Snapshot()
	if snap.STT.P50 != 10*time.Millisecond {
		t.Errorf("STT P50 = %v, want 10ms", snap.STT.P50)
	}
}

func TestPipelineStats_RecordAndSnapshot(t *testing.T) {
	t.Parallel()

	ps := NewPipelineStats(100)

	for i := 1; i <= 100; i++ {
		ps.RecordSTT(time.Duration(i) * time.Millisecond)
	}
	ps.RecordLLM(500 * time.Millisecond)
	ps.RecordTTS(200 * time.Millisecond)

	ps.IncrUtterances()
	ps.IncrUtterances()
	ps.IncrUtterances()
	ps.IncrErrors()

	snap := ps.Snapshot()

	if snap.Utterances != 3 {
		t.Errorf("Utterances = %d, want 3", snap.Utterances)
	}
	if snap.Errors != 1 {
		t.Errorf("Errors = %d, want 1", snap.Errors)
	}

	// STT: 100 samples from 1ms to 100ms.
	if snap.STT.P50 != 50*time.Millisecond {
		t.Errorf("STT P50 = %v, want 50ms", snap.STT.P50)
	}
	if snap.STT.P95 != 95*time.Millisecond {
		t.Errorf("STT P95 = %v, want 95ms", snap.STT.P95)
	}

	if snap.LLM.P50 != 500*time.Millisecond {
		t.Errorf("LLM P50 = %v, want 500ms", snap.LLM.P50)
	}
	if snap.TTS.P50 != 200*time.Millisecond {
		t.Errorf("TTS P50 = %v, want 200ms", snap.TTS.P50)
	}
}

func TestPipelineStats_EmptySnapshot(t *testing.T) {
	t.Parallel()

	ps := NewPipelineStats(10)
	snap := ps.Snapshot()

	if snap.STT.P50 != 0 || snap.STT.P95 != 0 {
		t.Errorf("empty STT = %+v, want zero", snap.STT)
	}
	if snap.Utterances != 0 {
		t.Errorf("empty Utterances = %d, want 0", snap.Utterances)
	}
}

func TestPipelineStats_WindowEviction(t *testing.T) {
	t.Parallel()

	ps := NewPipelineStats(4)

	// Fill the window, then push it past capacity with larger values. The
	// small initial samples must fall out of the percentile computation.
	ps.RecordLLM(1 * time.Millisecond)
	ps.RecordLLM(1 * time.Millisecond)
	for i := 0; i < 4; i++ {
		ps.RecordLLM(100 * time.Millisecond)
	}

	snap := ps.Snapshot()
	if snap.LLM.P50 != 100*time.Millisecond {
		t.Errorf("LLM P50 = %v, want 100ms after eviction", snap.LLM.P50)
	}
}

func TestSnapshot_String(t *testing.T) {
	t.Parallel()

	ps := NewPipelineStats(10)
	ps.RecordSTT(20 * time.Millisecond)
	ps.IncrUtterances()

	got := ps.Snapshot().String()
	if !strings.Contains(got, "utterances: 1") {
		t.Errorf("missing utterance count in %q", got)
	}
	if !strings.Contains(got, "stt  p50 20ms") {
		t.Errorf("missing stt line in %q", got)
	}
	if !strings.HasSuffix(got, "tts  p50 0s  p95 0s") {
		t.Errorf("unexpected tts line in %q", got)
	}
}
