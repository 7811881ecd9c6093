package speechmatics

import (
	"encoding/json"
	"testing"
	"time"
)

// ---- StartRecognition message tests ----

func TestStartRecognitionMessage_Defaults(t *testing.T) {
	p, err := New("test-key")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := startRecognition{
		Message: "StartRecognition",
		AudioFormat: audioFormat{
			Type:       "raw",
			Encoding:   "pcm_s16le",
			SampleRate: p.sampleRate,
		},
		Config: transConfig{
			Language:       p.language,
			EnablePartials: true,
			OperatingPoint: p.operatingPoint,
			MaxDelay:       maxDelaySeconds,
		},
	}

	raw, err := json.Marshal(start)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["message"] != "StartRecognition" {
		t.Errorf("message: want StartRecognition, got %v", got["message"])
	}
	af := got["audio_format"].(map[string]any)
	if af["encoding"] != "pcm_s16le" {
		t.Errorf("encoding: want pcm_s16le, got %v", af["encoding"])
	}
	if af["sample_rate"] != float64(16000) {
		t.Errorf("sample_rate: want 16000, got %v", af["sample_rate"])
	}
	tc := got["transcription_config"].(map[string]any)
	if tc["language"] != "en" {
		t.Errorf("language: want en, got %v", tc["language"])
	}
	if tc["enable_partials"] != true {
		t.Error("expected enable_partials=true")
	}
	if tc["operating_point"] != "enhanced" {
		t.Errorf("operating_point: want enhanced, got %v", tc["operating_point"])
	}
}

// ---- server message parsing tests ----

func TestParseServerMessage_Final(t *testing.T) {
	raw := []byte(`{
		"message": "AddTranscript",
		"metadata": {"transcript": "one fifty to the pin"},
		"results": [
			{"start_time": 0.1, "end_time": 0.4, "alternatives": [{"content": "one", "confidence": 0.96}]},
			{"start_time": 0.5, "end_time": 0.9, "alternatives": [{"content": "fifty", "confidence": 0.92}]}
		]
	}`)

	tr, final, ok := parseServerMessage(raw)
	if !ok {
		t.Fatal("expected ok=true for AddTranscript message")
	}
	if !final || !tr.IsFinal {
		t.Error("expected final transcript")
	}
	if tr.Text != "one fifty to the pin" {
		t.Errorf("text: got %q", tr.Text)
	}
	if len(tr.Words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(tr.Words))
	}
	if tr.Words[0].Word != "one" {
		t.Errorf("word[0]: got %q", tr.Words[0].Word)
	}
	if tr.Words[0].Start != time.Duration(0.1*float64(time.Second)) {
		t.Errorf("unexpected start: %v", tr.Words[0].Start)
	}
	if want := (0.96 + 0.92) / 2; tr.Confidence < want-1e-9 || tr.Confidence > want+1e-9 {
		t.Errorf("confidence: want %f, got %f", want, tr.Confidence)
	}
}

func TestParseServerMessage_Partial(t *testing.T) {
	raw := []byte(`{
		"message": "AddPartialTranscript",
		"metadata": {"transcript": "one fif"}
	}`)

	tr, final, ok := parseServerMessage(raw)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if final || tr.IsFinal {
		t.Error("expected partial transcript")
	}
	if tr.Text != "one fif" {
		t.Errorf("text: got %q", tr.Text)
	}
	if tr.Confidence != 0 {
		t.Errorf("expected zero confidence without word detail, got %f", tr.Confidence)
	}
}

func TestParseServerMessage_IgnoredKinds(t *testing.T) {
	for _, raw := range []string{
		`{"message":"RecognitionStarted","id":"abc"}`,
		`{"message":"AudioAdded","seq_no":3}`,
		`{"message":"EndOfTranscript"}`,
		`{"message":"Info","reason":"buffering"}`,
	} {
		if _, _, ok := parseServerMessage([]byte(raw)); ok {
			t.Errorf("expected ok=false for %s", raw)
		}
	}
}

func TestParseServerMessage_EmptyTranscript(t *testing.T) {
	raw := []byte(`{"message":"AddTranscript","metadata":{"transcript":""}}`)
	if _, _, ok := parseServerMessage(raw); ok {
		t.Error("expected ok=false for empty transcript")
	}
}

func TestParseServerMessage_InvalidJSON(t *testing.T) {
	if _, _, ok := parseServerMessage([]byte(`{invalid`)); ok {
		t.Error("expected ok=false for invalid JSON")
	}
}

// ---- constructor tests ----

func TestNew_EmptyAPIKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNew_Options(t *testing.T) {
	p, err := New("key",
		WithEndpoint("wss://us.rt.example.com/v2"),
		WithLanguage("de"),
		WithSampleRate(48000),
		WithOperatingPoint("standard"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.endpoint != "wss://us.rt.example.com/v2" {
		t.Errorf("endpoint: got %q", p.endpoint)
	}
	if p.language != "de" {
		t.Errorf("language: got %q", p.language)
	}
	if p.sampleRate != 48000 {
		t.Errorf("sampleRate: got %d", p.sampleRate)
	}
	if p.operatingPoint != "standard" {
		t.Errorf("operatingPoint: got %q", p.operatingPoint)
	}
}
