package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// waitFor polls until cond is true or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestSequencer_FinalsAreSerializedInOrder(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		handled  []string
		inFlight atomic.Int32
		overlap  atomic.Bool
	)
	s := New(func(ctx context.Context, text string) error {
		if inFlight.Add(1) > 1 {
			overlap.Store(true)
		}
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		handled = append(handled, text)
		mu.Unlock()
		inFlight.Add(-1)
		return nil
	})

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	const n = 20
	for i := 0; i < n; i++ {
		if err := s.Submit(ctx, Event{Text: fmt.Sprintf("utterance %02d", i), Final: true}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == n
	})

	if overlap.Load() {
		t.Error("two finals were handled concurrently")
	}
	mu.Lock()
	defer mu.Unlock()
	for i, got := range handled {
		if want := fmt.Sprintf("utterance %02d", i); got != want {
			t.Errorf("handled[%d] = %q, want %q", i, got, want)
		}
	}
}

func TestSequencer_InterimsBypassQueue(t *testing.T) {
	t.Parallel()

	blocked := make(chan struct{})
	release := make(chan struct{})
	var shown []string
	var mu sync.Mutex

	s := New(func(ctx context.Context, text string) error {
		close(blocked)
		<-release
		return nil
	}, WithDisplay(func(text string) {
		mu.Lock()
		shown = append(shown, text)
		mu.Unlock()
	}))

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()
	defer close(release)

	if err := s.Submit(ctx, Event{Text: "what club", Final: true}); err != nil {
		t.Fatalf("Submit final: %v", err)
	}
	<-blocked

	// Interims must display even while a final is being handled.
	if err := s.Submit(ctx, Event{Text: "i'm 150", Final: false}); err != nil {
		t.Fatalf("Submit interim: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(shown) != 1 || shown[0] != "i'm 150" {
		t.Errorf("shown = %v, want the interim immediately", shown)
	}
}

func TestSequencer_BlankFinalsDropped(t *testing.T) {
	t.Parallel()

	var count atomic.Int32
	s := New(func(ctx context.Context, text string) error {
		count.Add(1)
		return nil
	})

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for _, text := range []string{"", "   ", "\n"} {
		if err := s.Submit(ctx, Event{Text: text, Final: true}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	s.Stop()

	if got := count.Load(); got != 0 {
		t.Errorf("handler ran %d times for blank finals", got)
	}
}

func TestSequencer_HandlerErrorDoesNotPoisonQueue(t *testing.T) {
	t.Parallel()

	var handled []string
	var mu sync.Mutex
	s := New(func(ctx context.Context, text string) error {
		mu.Lock()
		handled = append(handled, text)
		mu.Unlock()
		if text == "bad" {
			return errors.New("network down")
		}
		return nil
	})

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	for _, text := range []string{"bad", "good"} {
		if err := s.Submit(ctx, Event{Text: text, Final: true}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 2
	})
	mu.Lock()
	defer mu.Unlock()
	if handled[1] != "good" {
		t.Errorf("handled = %v, want the queue to survive the error", handled)
	}
}

func TestSequencer_Lifecycle(t *testing.T) {
	t.Parallel()

	s := New(func(ctx context.Context, text string) error { return nil })
	ctx := context.Background()

	if err := s.Submit(ctx, Event{Text: "early", Final: true}); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Submit before Start = %v, want ErrNotRunning", err)
	}

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start = %v, want ErrAlreadyRunning", err)
	}

	s.Stop()
	s.Stop() // idempotent

	if err := s.Submit(ctx, Event{Text: "late", Final: true}); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Submit after Stop = %v, want ErrNotRunning", err)
	}

	// A stopped sequencer can start again.
	if err := s.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	s.Stop()
}

func TestSequencer_StopWaitsForInFlightHandler(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	var finished atomic.Bool
	s := New(func(ctx context.Context, text string) error {
		close(started)
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Submit(ctx, Event{Text: "slow one", Final: true}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started

	s.Stop()
	if !finished.Load() {
		t.Error("Stop returned before the in-flight handler finished")
	}
}
