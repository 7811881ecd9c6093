package config

import (
	"errors"
	"fmt"
	"sync"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/llm"
	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/llm/anyllm"
	llmopenai "github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/llm/openai"
	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/stt"
	sttspeechmatics "github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/stt/speechmatics"
	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/tts"
	ttsspeechmatics "github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/tts/speechmatics"
)

// ErrProviderNotRegistered is returned by the Create* methods when no factory
// exists for the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Factory functions build providers from their config entry. Registering a
// factory under a name makes that name usable in the providers section of the
// config file.
type (
	STTFactory func(e ProviderEntry) (stt.Provider, error)
	LLMFactory func(e ProviderEntry) (llm.Provider, error)
	TTSFactory func(e ProviderEntry) (tts.Speaker, error)
)

// Registry maps provider names to factories for each pipeline stage.
// It is safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	stt map[string]STTFactory
	llm map[string]LLMFactory
	tts map[string]TTSFactory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		stt: make(map[string]STTFactory),
		llm: make(map[string]LLMFactory),
		tts: make(map[string]TTSFactory),
	}
}

// RegisterSTT registers a speech-to-text factory under name, replacing any
// existing registration.
func (r *Registry) RegisterSTT(name string, f STTFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stt[name] = f
}

// RegisterLLM registers a language-model factory under name.
func (r *Registry) RegisterLLM(name string, f LLMFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llm[name] = f
}

// RegisterTTS registers a text-to-speech factory under name.
func (r *Registry) RegisterTTS(name string, f TTSFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tts[name] = f
}

// CreateSTT builds the speech-to-text provider named by e.Name.
func (r *Registry) CreateSTT(e ProviderEntry) (stt.Provider, error) {
	r.mu.RLock()
	f, ok := r.stt[e.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: stt %q", ErrProviderNotRegistered, e.Name)
	}
	return f(e)
}

// CreateLLM builds the language-model provider named by e.Name.
func (r *Registry) CreateLLM(e ProviderEntry) (llm.Provider, error) {
	r.mu.RLock()
	f, ok := r.llm[e.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: llm %q", ErrProviderNotRegistered, e.Name)
	}
	return f(e)
}

// CreateTTS builds the text-to-speech speaker named by e.Name.
func (r *Registry) CreateTTS(e ProviderEntry) (tts.Speaker, error) {
	r.mu.RLock()
	f, ok := r.tts[e.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: tts %q", ErrProviderNotRegistered, e.Name)
	}
	return f(e)
}

// DefaultRegistry returns a Registry populated with all built-in providers.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.RegisterSTT("speechmatics", func(e ProviderEntry) (stt.Provider, error) {
		var opts []sttspeechmatics.Option
		if e.Language != "" {
			opts = append(opts, sttspeechmatics.WithLanguage(e.Language))
		}
		if e.BaseURL != "" {
			opts = append(opts, sttspeechmatics.WithEndpoint(e.BaseURL))
		}
		return sttspeechmatics.New(e.APIKey, opts...)
	})

	r.RegisterLLM("openai", func(e ProviderEntry) (llm.Provider, error) {
		var opts []llmopenai.Option
		if e.BaseURL != "" {
			opts = append(opts, llmopenai.WithBaseURL(e.BaseURL))
		}
		return llmopenai.New(e.APIKey, e.Model, opts...)
	})
	for _, name := range []string{"anthropic", "gemini", "ollama", "deepseek", "mistral", "groq"} {
		r.RegisterLLM(name, func(e ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if e.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(e.APIKey))
			}
			if e.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(e.BaseURL))
			}
			return anyllm.New(name, e.Model, opts...)
		})
	}

	r.RegisterTTS("speechmatics", func(e ProviderEntry) (tts.Speaker, error) {
		var opts []ttsspeechmatics.Option
		if e.BaseURL != "" {
			opts = append(opts, ttsspeechmatics.WithEndpoint(e.BaseURL))
		}
		return ttsspeechmatics.New(e.APIKey, opts...)
	})
	r.RegisterTTS("console", func(ProviderEntry) (tts.Speaker, error) {
		return &tts.Console{}, nil
	})

	return r
}
