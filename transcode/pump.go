// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ik5/audconv/codec"
	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/logging"
)

const (
	// DefaultBufferBytes is the size of the pump buffer in client format bytes.
	DefaultBufferBytes = 65536
	// DefaultProgressInterval is the number of buffer reads between progress reports.
	DefaultProgressInterval = 10
)

// PumpState is a step of the pump state machine.
type PumpState int32

const (
	PumpIdle PumpState = iota
	PumpOpening
	PumpNegotiating
	PumpPumping
	PumpDraining
	PumpClosed
)

var pumpStateNames = [...]string{"idle", "opening", "negotiating", "pumping", "draining", "closed"}

func (s PumpState) String() string {
	if s < 0 || int(s) >= len(pumpStateNames) {
		return "unknown"
	}
	return pumpStateNames[s]
}

// PlanFunc derives the destination and client formats from the source format.
type PlanFunc func(src formats.Descriptor) (formats.Destination, error)

// PumpConfig configures a Pump.
type PumpConfig struct {
	Provider    codec.Provider
	Source      string
	Destination string
	Container   formats.Container
	Plan        PlanFunc

	// Remuxed marks Source as a staged re-mux of the requested source.
	Remuxed bool

	// BufferBytes is the buffer size in client format bytes.
	BufferBytes int
	// ProgressInterval is the number of reads between progress reports.
	ProgressInterval int

	// Start skips the beginning of the source. Duration limits the written
	// length when positive.
	Start    time.Duration
	Duration time.Duration

	// Context, when set, stops the pump like Cancel once it is done.
	Context context.Context

	Progress func(float64)
	Logger   *slog.Logger
}

// Stats summarizes a pump run.
type Stats struct {
	// Reads counts ReadFrames calls including the final empty one.
	Reads int64
	// RoundTrips counts reads that were written to the destination.
	RoundTrips int64
	// ProcessedFrames is the number of client frames written.
	ProcessedFrames int64
	// TotalFrames is the length hint, zero when the source had none.
	TotalFrames int64
	// BufferFrames is the buffer capacity in frames.
	BufferFrames int
}

// Pump moves decoded frames from a source to a destination stream.
//
// Cancel may be called from any goroutine. It is observed at the top of
// every pump iteration, so a cancelled pump stops after at most one more
// read and write round trip.
type Pump struct {
	cfg    PumpConfig
	logger *slog.Logger

	cancelled atomic.Bool
	state     atomic.Int32

	reads      atomic.Int64
	roundTrips atomic.Int64
	processed  atomic.Int64
	total      atomic.Int64
	capacity   atomic.Int64
}

// NewPump returns a pump for cfg. Zero values take the package defaults.
func NewPump(cfg PumpConfig) *Pump {
	if cfg.BufferBytes <= 0 {
		cfg.BufferBytes = DefaultBufferBytes
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}
	if cfg.Plan == nil {
		cfg.Plan = func(src formats.Descriptor) (formats.Destination, error) {
			return formats.Build(src, formats.CodecLinearPCM, cfg.Container, formats.BuildOptions{})
		}
	}

	return &Pump{
		cfg:    cfg,
		logger: logging.Component(cfg.Logger, "pump"),
	}
}

// Cancel requests cancellation.
func (p *Pump) Cancel() { p.cancelled.Store(true) }

func (p *Pump) stopped() bool {
	if p.cancelled.Load() {
		return true
	}
	return p.cfg.Context != nil && p.cfg.Context.Err() != nil
}

func (p *Pump) strategy() string {
	if p.cfg.Remuxed {
		return StrategyRemux
	}
	return StrategyStream
}

// State returns the current state.
func (p *Pump) State() PumpState { return PumpState(p.state.Load()) }

// ProcessedFrames returns the number of frames written so far.
func (p *Pump) ProcessedFrames() int64 { return p.processed.Load() }

// Stats returns the counters of the run.
func (p *Pump) Stats() Stats {
	return Stats{
		Reads:           p.reads.Load(),
		RoundTrips:      p.roundTrips.Load(),
		ProcessedFrames: p.processed.Load(),
		TotalFrames:     p.total.Load(),
		BufferFrames:    int(p.capacity.Load()),
	}
}

// BufferFrames returns how many frames of client format fit the buffer.
func BufferFrames(bufferBytes int, client formats.Descriptor) int {
	if client.BytesPerFrame <= 0 {
		return 1
	}
	return max(bufferBytes/client.BytesPerFrame, 1)
}

func (p *Pump) enter(s PumpState) { p.state.Store(int32(s)) }

// Run executes the pump to completion on the calling goroutine. The error
// wraps one of the kinds declared in this package.
func (p *Pump) Run() error {
	defer p.enter(PumpClosed)

	if p.stopped() {
		return ErrCancelled
	}

	p.enter(PumpOpening)
	r, err := p.cfg.Provider.OpenReader(p.cfg.Source)
	if err != nil {
		return wrap(ErrCannotOpenSource, err)
	}

	dst, err := p.cfg.Plan(r.Format())
	if err != nil {
		kind := ErrCannotConvert
		if errors.Is(err, formats.ErrUnsupportedCodec) {
			kind = ErrUnsupportedCodec
		}
		return errors.Join(wrap(kind, err), r.Close())
	}

	w, err := p.cfg.Provider.OpenWriter(p.cfg.Destination, p.cfg.Container, dst.Format)
	if err != nil {
		return errors.Join(wrap(ErrCannotCreateDestination, err), r.Close())
	}

	release := func() error { return errors.Join(w.Close(), r.Close()) }

	p.enter(PumpNegotiating)
	if err := r.SetClientFormat(dst.Client); err != nil {
		return errors.Join(wrap(ErrFormatNegotiationFailed, err), release())
	}
	if err := w.SetClientFormat(dst.Client); err != nil {
		return errors.Join(wrap(ErrFormatNegotiationFailed, err), release())
	}

	capacity := BufferFrames(p.cfg.BufferBytes, dst.Client)
	p.capacity.Store(int64(capacity))

	skip := dst.Client.DurationFrames(p.cfg.Start.Seconds())
	limit := dst.Client.DurationFrames(p.cfg.Duration.Seconds())

	var total int64
	if hint, ok := r.TotalFrames(); ok && hint > 0 {
		total = max(hint-skip, 0)
		if limit > 0 {
			total = min(total, limit)
		}
	}
	p.total.Store(total)

	p.logger.Debug("pump negotiated",
		slog.String(logging.FieldSource, p.cfg.Source),
		slog.String(logging.FieldDestination, p.cfg.Destination),
		slog.String("source_format", r.Format().String()),
		slog.String("destination_format", dst.Format.String()),
		slog.Int("buffer_frames", capacity),
		slog.Int64("total_frames", total),
	)

	p.enter(PumpPumping)
	buf := make([]float32, capacity*dst.Client.Channels)

	for skip > 0 {
		if p.stopped() {
			return errors.Join(ErrCancelled, release())
		}
		n, err := r.ReadFrames(buf, int(min(skip, int64(capacity))))
		p.reads.Add(1)
		if err != nil && !errors.Is(err, io.EOF) {
			return errors.Join(wrap(ErrCannotConvert, err), release())
		}
		if n == 0 {
			break
		}
		skip -= int64(n)
	}

	reads := 0
	for {
		if p.stopped() {
			return errors.Join(ErrCancelled, release())
		}

		want := capacity
		if limit > 0 {
			remaining := limit - p.processed.Load()
			if remaining <= 0 {
				break
			}
			want = int(min(remaining, int64(capacity)))
		}

		n, err := r.ReadFrames(buf, want)
		p.reads.Add(1)
		if err != nil && !errors.Is(err, io.EOF) {
			return errors.Join(wrap(ErrCannotConvert, err), release())
		}
		if n == 0 {
			break
		}

		if err := w.WriteFrames(buf, n); err != nil {
			return errors.Join(wrap(ErrCannotConvert, err), release())
		}
		processed := p.processed.Add(int64(n))
		p.roundTrips.Add(1)

		reads++
		if reads%p.cfg.ProgressInterval == 0 && total > 0 && p.cfg.Progress != nil && !p.stopped() {
			p.cfg.Progress(min(float64(processed)/float64(total), 1))
		}
	}

	p.enter(PumpDraining)
	if err := release(); err != nil {
		return wrap(ErrFinalizeFailed, err)
	}

	p.logger.Debug("pump drained",
		slog.String(logging.FieldDestination, p.cfg.Destination),
		slog.Int64(logging.FieldFrames, p.processed.Load()),
		slog.Int64("round_trips", p.roundTrips.Load()),
	)
	return nil
}
