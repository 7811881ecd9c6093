// Package tts defines the Speaker interface for Text-to-Speech backends.
//
// A Speaker turns a caddie reply into audible speech. Speak is synchronous
// from the caller's point of view: it returns once the utterance has been
// played (or has failed). The advice pipeline processes one utterance at a
// time, so a streaming synthesis surface would buy nothing here.
//
// Implementations must be safe for concurrent use.
package tts

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Speaker is the abstraction over any TTS backend.
type Speaker interface {
	// Speak synthesises and plays the given text. It returns once playback
	// completes, or an error if synthesis or playback failed. An empty text is
	// a no-op.
	Speak(ctx context.Context, text string) error
}

// Console is a Speaker that prints the text instead of playing audio. It is
// the fallback when no TTS credential is configured and the default for
// --mock runs.
type Console struct {
	// Out is the destination writer. If nil, os.Stdout is used.
	Out io.Writer
}

// Speak writes the text to Out prefixed as a caddie line.
func (c *Console) Speak(_ context.Context, text string) error {
	if text == "" {
		return nil
	}
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintf(out, "Caddie: %s\n", text)
	return err
}

var _ Speaker = (*Console)(nil)
