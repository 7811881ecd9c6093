package app

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/JamieWonderchild/ai-golf-caddie/internal/config"
	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/llm"
	llmmock "github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/llm/mock"
	sttmock "github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/stt/mock"
	ttsmock "github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/tts/mock"
)

func TestNewRequiresConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); err == nil {
		t.Fatal("New(nil) = nil error, want failure")
	}
}

func TestNewFailsWithoutSTTCredential(t *testing.T) {
	cfg := config.Default()
	_, err := New(cfg,
		WithLLMProvider(&llmmock.Provider{}),
		WithSpeaker(&ttsmock.Speaker{}),
	)
	if err == nil {
		t.Fatal("expected provider creation failure without an API key")
	}
	if !strings.Contains(err.Error(), "stt") {
		t.Errorf("error %q should name the stt provider", err)
	}
}

func TestRunProcessesScriptedUtterance(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	handicap := 12
	cfg.Handicap = &handicap

	llmProv := &llmmock.Provider{Response: &llm.Response{Text: "Smooth 7-iron."}}
	speaker := &ttsmock.Speaker{}
	var out bytes.Buffer

	a, err := New(cfg,
		WithSTTProvider(&sttmock.ScriptedProvider{Events: []sttmock.Event{
			{Text: "I have 150", Delay: 10 * time.Millisecond},
			{Text: "I have 150 yards to the pin", Final: true, Delay: 10 * time.Millisecond},
		}}),
		WithLLMProvider(llmProv),
		WithSpeaker(speaker),
		WithAudioSource(SilentSource()),
		WithOutput(&out),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(speaker.Spoken()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	a.Shutdown()

	if got := len(llmProv.Requests); got != 1 {
		t.Fatalf("LLM calls = %d, want 1", got)
	}
	if spoken := speaker.Spoken(); len(spoken) != 1 || spoken[0] != "Smooth 7-iron." {
		t.Errorf("spoken = %v, want the LLM reply", spoken)
	}
	if !strings.Contains(out.String(), "Smooth 7-iron.") {
		t.Errorf("console output missing reply:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "utterances: 1") {
		t.Errorf("shutdown snapshot missing utterance count:\n%s", out.String())
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	a, err := New(config.Default(),
		WithSTTProvider(&sttmock.ScriptedProvider{Events: []sttmock.Event{
			{Text: "hold", Delay: time.Hour},
		}}),
		WithLLMProvider(&llmmock.Provider{}),
		WithSpeaker(&ttsmock.Speaker{}),
		WithAudioSource(SilentSource()),
		WithOutput(&bytes.Buffer{}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && !strings.Contains(err.Error(), "context canceled") {
			t.Errorf("Run returned %v after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	a.Shutdown()
}
