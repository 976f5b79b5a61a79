// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ik5/audconv/logging"
)

// Strategy names used in logs and reported by Session.Strategy.
const (
	StrategyFastPath = "fastpath"
	StrategyStream   = "stream"
	StrategyRemux    = "remux+stream"
)

// State is the lifecycle state of a Session.
type State int32

const (
	StateRunning State = iota
	StateCancelled
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Worker is the unit of work a session runs. Only *Pump and *FastPath
// implement it, so a session holds at most one of them.
type Worker interface {
	Cancel()
	strategy() string
}

// Session is one in-flight conversion.
//
// Progress and completion callbacks are write-once and run on the worker
// goroutine. The completion callback fires exactly once, after the worker
// released its streams and the session left its Registry. Done, Err and
// Wait expose the same result without callbacks.
type Session struct {
	id     string
	ctx    context.Context
	stop   context.CancelFunc
	logger *slog.Logger

	cancelRequested atomic.Bool
	progress        atomic.Uint64

	mu           sync.Mutex
	state        State
	active       Worker
	strategy     string
	err          error
	finalized    bool
	processed    int64
	onProgress   func(float64)
	onCompletion func(error)
	registry     *Registry

	done chan struct{}
}

// NewSession creates a running session with a fresh identity. The session
// context derives from parent and ends when the session is cancelled or
// finalized.
func NewSession(parent context.Context, logger *slog.Logger) *Session {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := context.WithCancel(parent)
	id := uuid.NewString()

	return &Session{
		id:     id,
		ctx:    ctx,
		stop:   stop,
		logger: logging.Component(logger, "session").With(slog.String(logging.FieldSessionID, id)),
		done:   make(chan struct{}),
	}
}

func (s *Session) ID() string { return s.id }

// Context is cancelled once the session is cancelled or finalized.
func (s *Session) Context() context.Context { return s.ctx }

// Logger returns the session scoped logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Strategy returns the strategy of the last attached worker.
func (s *Session) Strategy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategy
}

// Progress returns the last reported fraction.
func (s *Session) Progress() float64 {
	return math.Float64frombits(s.progress.Load())
}

// ProcessedFrames returns the frames written by the stream worker.
func (s *Session) ProcessedFrames() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.active.(*Pump); ok {
		return p.ProcessedFrames()
	}
	return s.processed
}

// Done is closed after the completion callback returned.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the terminal error once Done is closed, nil before.
func (s *Session) Err() error {
	select {
	case <-s.done:
	default:
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Wait blocks until the session finishes or ctx ends.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnProgress sets the progress callback. It returns false when a callback
// was already set or the session is finished.
func (s *Session) OnProgress(fn func(float64)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onProgress != nil || s.finalized || fn == nil {
		return false
	}
	s.onProgress = fn
	return true
}

// OnCompletion sets the completion callback. It returns false when a
// callback was already set or the session is finished.
func (s *Session) OnCompletion(fn func(error)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onCompletion != nil || s.finalized || fn == nil {
		return false
	}
	s.onCompletion = fn
	return true
}

// Cancel requests cancellation. It is a no-op once requested or after the
// session finished.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.finalized || s.cancelRequested.Load() {
		s.mu.Unlock()
		return
	}
	s.cancelRequested.Store(true)
	w := s.active
	s.mu.Unlock()

	s.logger.Debug("cancel requested")
	s.stop()
	if w != nil {
		w.Cancel()
	}
}

// Cancelled reports whether Cancel was called.
func (s *Session) Cancelled() bool { return s.cancelRequested.Load() }

// Attach makes w the active worker. It fails with ErrCancelled when the
// session is already cancelled or finished.
func (s *Session) Attach(w Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized || s.cancelRequested.Load() {
		return ErrCancelled
	}
	s.active = w
	s.strategy = w.strategy()
	return nil
}

// Detach clears the active worker.
func (s *Session) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
}

func (s *Session) detachLocked() {
	if p, ok := s.active.(*Pump); ok {
		s.processed = p.ProcessedFrames()
	}
	s.active = nil
}

// ReportProgress records f and forwards it to the progress callback. Reports
// after cancellation or completion are dropped.
func (s *Session) ReportProgress(f float64) {
	if math.IsNaN(f) || s.cancelRequested.Load() {
		return
	}
	f = min(max(f, 0), 1)

	s.mu.Lock()
	if s.finalized {
		s.mu.Unlock()
		return
	}
	cb := s.onProgress
	s.mu.Unlock()

	s.progress.Store(math.Float64bits(f))
	if cb != nil {
		cb(f)
	}
}

// Go runs fn on a new goroutine and finalizes the session with its result.
func (s *Session) Go(fn func(ctx context.Context) error) {
	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: worker panic: %v", ErrCannotConvert, r)
			}
			s.Finish(err)
		}()
		err = fn(s.ctx)
	}()
}

// Finish finalizes the session with err. Only the first call has an effect;
// it reports whether this call finalized the session. A cancellation
// requested before Finish overrides err with ErrCancelled.
func (s *Session) Finish(err error) bool {
	s.mu.Lock()
	if s.finalized {
		s.mu.Unlock()
		return false
	}
	s.finalized = true

	if s.cancelRequested.Load() && !errors.Is(err, ErrCancelled) {
		err = ErrCancelled
	}
	switch {
	case err == nil:
		s.state = StateCompleted
	case errors.Is(err, ErrCancelled):
		s.state = StateCancelled
	default:
		s.state = StateFailed
	}
	s.err = err
	s.detachLocked()
	state, cb, reg := s.state, s.onCompletion, s.registry
	s.mu.Unlock()

	s.stop()
	if reg != nil {
		reg.Unregister(s)
	}

	if err != nil && state == StateFailed {
		s.logger.Warn("session failed", slog.String("state", state.String()), logging.Error(err))
	} else {
		s.logger.Info("session finished", slog.String("state", state.String()))
	}

	if cb != nil {
		cb(err)
	}
	close(s.done)
	return true
}
