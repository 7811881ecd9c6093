// Package sequencer serializes final utterances into a single worker so
// one recommendation is computed and narrated at a time, in arrival
// order. Interim transcripts bypass the queue entirely: they exist only
// to show the player that listening is live.
package sequencer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// defaultQueueBuffer is the depth of the final-utterance queue. Speech
// arrives far slower than recommendations complete, so a small buffer
// absorbs any burst.
const defaultQueueBuffer = 16

// Event is one transcript event from any producer: the STT stream or a
// manually typed console line.
type Event struct {
	Text  string
	Final bool
}

// Handler processes one final utterance to completion, narration
// included. The next final is not started until it returns.
type Handler func(ctx context.Context, text string) error

// state is the sequencer lifecycle.
type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopping
)

// ErrNotRunning is returned by Submit outside the Running state.
var ErrNotRunning = errors.New("sequencer: not running")

// ErrAlreadyRunning is returned by Start when the worker is already up.
var ErrAlreadyRunning = errors.New("sequencer: already running")

// Sequencer owns the final-utterance queue and its single worker
// goroutine. All methods are safe for concurrent use.
type Sequencer struct {
	handle   Handler
	display  func(text string)
	queueBuf int
	log      *slog.Logger

	mu      sync.Mutex
	st      state
	queue   chan string
	quiesce chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a [Sequencer].
type Option func(*Sequencer)

// WithDisplay sets the callback interim transcripts are shown through.
// Without one, interims are discarded.
func WithDisplay(fn func(text string)) Option {
	return func(s *Sequencer) { s.display = fn }
}

// WithQueueBuffer sets the final-utterance queue depth. Default: 16.
func WithQueueBuffer(n int) Option {
	return func(s *Sequencer) { s.queueBuf = n }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Sequencer) { s.log = log }
}

// New constructs a Sequencer around a final-utterance handler.
func New(handle Handler, opts ...Option) *Sequencer {
	s := &Sequencer{
		handle:   handle,
		queueBuf: defaultQueueBuffer,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the worker goroutine. It returns [ErrAlreadyRunning] if
// the sequencer is not idle.
func (s *Sequencer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st != stateIdle {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.queue = make(chan string, s.queueBuf)
	s.quiesce = make(chan struct{})
	s.st = stateRunning

	s.wg.Add(1)
	go s.run(ctx, s.queue, s.quiesce)
	return nil
}

// Stop closes the intake, lets the worker drain the finals already queued,
// and waits for it to finish. Cancelling the context passed to Start aborts
// the drain. Safe to call when idle.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	if s.st != stateRunning {
		s.mu.Unlock()
		return
	}
	s.st = stateStopping
	quiesce := s.quiesce
	cancel := s.cancel
	s.mu.Unlock()

	close(quiesce)
	s.wg.Wait()
	cancel()

	s.mu.Lock()
	s.st = stateIdle
	s.mu.Unlock()
}

// Submit accepts one transcript event. Interim events go straight to the
// display callback. Blank finals are dropped. Non-blank finals join the
// FIFO queue; Submit blocks only when the queue is full.
func (s *Sequencer) Submit(ctx context.Context, e Event) error {
	if !e.Final {
		if s.display != nil && strings.TrimSpace(e.Text) != "" {
			s.display(e.Text)
		}
		return nil
	}

	text := strings.TrimSpace(e.Text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	if s.st != stateRunning {
		s.mu.Unlock()
		return ErrNotRunning
	}
	queue := s.queue
	s.mu.Unlock()

	select {
	case queue <- text:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the single worker. Handler errors are logged and do not stop
// the loop; the utterance that failed is simply over. On quiesce the
// worker finishes whatever is already queued before exiting.
func (s *Sequencer) run(ctx context.Context, queue <-chan string, quiesce <-chan struct{}) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-quiesce:
			for {
				select {
				case <-ctx.Done():
					return
				case text := <-queue:
					s.handleOne(ctx, text)
				default:
					return
				}
			}
		case text := <-queue:
			s.handleOne(ctx, text)
		}
	}
}

func (s *Sequencer) handleOne(ctx context.Context, text string) {
	if err := s.handle(ctx, text); err != nil {
		s.log.Error("utterance handling failed", "error", err, "text", text)
	}
}
