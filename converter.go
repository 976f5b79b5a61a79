// SPDX-License-Identifier: EPL-2.0

package audconv

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ik5/audconv/codec"
	"github.com/ik5/audconv/codec/ffmpeg"
	"github.com/ik5/audconv/codec/native"
	"github.com/ik5/audconv/config"
	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/logging"
	"github.com/ik5/audconv/transcode"
)

// Option configures a Converter.
type Option func(*Converter)

// WithProvider sets the provider used by the stream path. The default is
// the native provider.
func WithProvider(p codec.Provider) Option {
	return func(c *Converter) {
		if p != nil {
			c.provider = p
		}
	}
}

// WithExporter enables the fast path and re-mux staging.
func WithExporter(e codec.Exporter) Option {
	return func(c *Converter) { c.exporter = e }
}

// WithRegistry sets the registry sessions are tracked in.
func WithRegistry(r *transcode.Registry) Option {
	return func(c *Converter) {
		if r != nil {
			c.registry = r
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBufferBytes sets the pump buffer size.
func WithBufferBytes(n int) Option {
	return func(c *Converter) { c.bufferBytes = n }
}

// WithProgressInterval sets the number of pump reads between progress
// reports.
func WithProgressInterval(n int) Option {
	return func(c *Converter) { c.progressInterval = n }
}

// WithPCMSampleRate sets the linear PCM destination rate. Zero keeps the
// source rate.
func WithPCMSampleRate(rate int) Option {
	return func(c *Converter) { c.pcmSampleRate = rate }
}

// WithStrictCodecs rejects codecs without a destination layout.
func WithStrictCodecs(strict bool) Option {
	return func(c *Converter) { c.strict = strict }
}

// WithFastPath toggles the exporter fast path.
func WithFastPath(enabled bool) Option {
	return func(c *Converter) { c.fastPath = enabled }
}

// WithTempDir sets where re-muxed sources are staged.
func WithTempDir(dir string) Option {
	return func(c *Converter) { c.tempDir = dir }
}

// Converter starts conversion sessions and tracks them until they finish.
type Converter struct {
	provider codec.Provider
	exporter codec.Exporter
	registry *transcode.Registry
	base     *slog.Logger
	logger   *slog.Logger

	bufferBytes      int
	progressInterval int
	pcmSampleRate    int
	strict           bool
	fastPath         bool
	tempDir          string

	mu       sync.Mutex
	shutdown bool
	wg       sync.WaitGroup
}

// New returns a Converter with the native provider, no exporter and a
// private registry unless options say otherwise.
func New(opts ...Option) *Converter {
	c := &Converter{
		logger:           logging.Discard(),
		registry:         transcode.NewRegistry(),
		bufferBytes:      transcode.DefaultBufferBytes,
		progressInterval: transcode.DefaultProgressInterval,
		pcmSampleRate:    formats.DefaultPCMSampleRate,
		fastPath:         true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.provider == nil {
		c.provider = native.New(native.WithLogger(c.logger))
	}
	c.base = c.logger
	c.logger = logging.Component(c.base, "converter")
	return c
}

// FromConfig builds a Converter from cfg. The ffmpeg exporter is attached
// when enabled and both binaries resolve.
func FromConfig(cfg *config.Config, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = logging.Discard()
	}

	opts := []Option{
		WithLogger(logger),
		WithBufferBytes(cfg.Convert.BufferBytes),
		WithProgressInterval(cfg.Convert.ProgressInterval),
		WithPCMSampleRate(cfg.Convert.PCMSampleRate),
		WithStrictCodecs(cfg.Convert.StrictCodecs),
		WithFastPath(cfg.Convert.FastPath),
		WithTempDir(cfg.Convert.TempDir),
	}

	if bin := cfg.FFmpegBinary(); bin != "" {
		exp := ffmpeg.New(
			ffmpeg.WithFFmpeg(bin),
			ffmpeg.WithFFprobe(cfg.FFprobeBinary()),
			ffmpeg.WithLogger(logger),
		)
		if exp.Available() {
			opts = append(opts, WithExporter(exp))
		} else {
			logger.Warn("ffmpeg not found, fast path and re-mux disabled",
				slog.String("ffmpeg", bin),
				slog.String("ffprobe", cfg.FFprobeBinary()),
			)
		}
	}

	return New(opts...)
}

// Registry returns the registry sessions are tracked in.
func (c *Converter) Registry() *transcode.Registry { return c.registry }

// Active returns the number of running sessions.
func (c *Converter) Active() int { return c.registry.Len() }

// Convert validates req, registers a session for it and starts the
// conversion on a new goroutine. The session is returned before any stream
// is opened; its callbacks come from req so nothing can fire before they
// are installed.
//
// The session ends when ctx is cancelled.
func (c *Converter) Convert(ctx context.Context, req Request) (*transcode.Session, error) {
	t, err := req.resolve()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		return nil, ErrShutdown
	}

	s := transcode.NewSession(ctx, c.base.With(
		slog.String(logging.FieldFileType, req.FileType.String()),
	))
	if req.OnProgress != nil {
		s.OnProgress(req.OnProgress)
	}
	if req.OnCompletion != nil {
		s.OnCompletion(req.OnCompletion)
	}
	if err := c.registry.Register(s); err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}

	s.Logger().Info("conversion started",
		slog.String(logging.FieldSource, req.Source),
		slog.String(logging.FieldDestination, req.Destination),
		slog.String("container", t.container.String()),
		slog.String("codec", t.codec.String()),
	)

	s.Go(func(ctx context.Context) error {
		return c.run(ctx, s, req, t)
	})
	c.wg.Go(func() { <-s.Done() })
	return s, nil
}

// Shutdown stops accepting requests, cancels every running session and
// waits for them to finish or for ctx to end.
func (c *Converter) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()

	if n := c.registry.CancelAll(); n > 0 {
		c.logger.Info("cancelling sessions", slog.Int("count", n))
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
