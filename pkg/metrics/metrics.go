// Package metrics collects latency and counter statistics for the voice
// advice pipeline.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// PipelineStats collects per-stage latency samples and counter values. It
// maintains a bounded ring buffer of recent latency observations from which
// percentiles are computed on demand.
//
// Thread-safe for concurrent use.
type PipelineStats struct {
	mu sync.Mutex

	stt latencyBuffer
	llm latencyBuffer
	tts latencyBuffer

	utterances int64
	errors     int64
}

// NewPipelineStats creates a PipelineStats with the given window size
// (maximum number of latency samples retained per stage).
func NewPipelineStats(windowSize int) *PipelineStats {
	if windowSize <= 0 {
		windowSize = 100
	}
	return &PipelineStats{
		stt: newLatencyBuffer(windowSize),
		llm: newLatencyBuffer(windowSize),
		tts: newLatencyBuffer(windowSize),
	}
}

// RecordSTT records a speech-to-text latency sample.
func (ps *PipelineStats) RecordSTT(d time.Duration) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.stt.add(d)
}

// RecordLLM records an LLM inference latency sample.
func (ps *PipelineStats) RecordLLM(d time.Duration) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.llm.add(d)
}

// RecordTTS records a text-to-speech latency sample.
func (ps *PipelineStats) RecordTTS(d time.Duration) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.tts.add(d)
}

// IncrUtterances increments the utterance counter.
func (ps *PipelineStats) IncrUtterances() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.utterances++
}

// IncrErrors increments the error counter.
func (ps *PipelineStats) IncrErrors() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.errors++
}

// LatencyPercentiles holds p50 and p95 values for a latency stage.
type LatencyPercentiles struct {
	P50 time.Duration
	P95 time.Duration
}

// Snapshot captures a point-in-time view of all pipeline statistics.
type Snapshot struct {
	STT        LatencyPercentiles
	LLM        LatencyPercentiles
	TTS        LatencyPercentiles
	Utterances int64
	Errors     int64
}

// String renders the snapshot as a short multi-line summary, suitable for
// printing when a listening session ends.
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "utterances: %d  errors: %d\n", s.Utterances, s.Errors)
	fmt.Fprintf(&b, "stt  p50 %v  p95 %v\n", s.STT.P50, s.STT.P95)
	fmt.Fprintf(&b, "llm  p50 %v  p95 %v\n", s.LLM.P50, s.LLM.P95)
	fmt.Fprintf(&b, "tts  p50 %v  p95 %v", s.TTS.P50, s.TTS.P95)
	return b.String()
}

// Snapshot returns a point-in-time view of all pipeline statistics.
func (ps *PipelineStats) Snapshot() Snapshot {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	return Snapshot{
		STT:        ps.stt.percentiles(),
		LLM:        ps.llm.percentiles(),
		TTS:        ps.tts.percentiles(),
		Utterances: ps.utterances,
		Errors:     ps.errors,
	}
}

// latencyBuffer is a bounded ring buffer of duration samples.
type latencyBuffer struct {
	data []time.Duration
	size int
	pos  int
	full bool
}

func newLatencyBuffer(size int) latencyBuffer {
	return latencyBuffer{
		data: make([]time.Duration, size),
		size: size,
	}
}

func (lb *latencyBuffer) add(d time.Duration) {
	lb.data[lb.pos] = d
	lb.pos++
	if lb.pos >= lb.size {
		lb.pos = 0
		lb.full = true
	}
}

func (lb *latencyBuffer) percentiles() LatencyPercentiles {
	n := lb.pos
	if lb.full {
		n = lb.size
	}
	if n == 0 {
		return LatencyPercentiles{}
	}

	sorted := make([]time.Duration, n)
	copy(sorted, lb.data[:n])
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return LatencyPercentiles{
		P50: percentile(sorted, 0.50),
		P95: percentile(sorted, 0.95),
	}
}

// percentile returns the value at the given percentile (0.0-1.0) from a
// sorted slice of durations using nearest-rank.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
