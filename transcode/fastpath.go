// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ik5/audconv/codec"
	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/logging"
)

// FastPathConfig configures a FastPath.
type FastPathConfig struct {
	Exporter    codec.Exporter
	Source      string
	Destination string
	Container   formats.Container
	Quality     formats.Quality

	Start    time.Duration
	Duration time.Duration

	Progress func(float64)
	Logger   *slog.Logger
}

// FastPath re-muxes a source through a codec.Exporter without running the
// pump.
type FastPath struct {
	cfg    FastPathConfig
	logger *slog.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	cancelled bool
}

func NewFastPath(cfg FastPathConfig) *FastPath {
	return &FastPath{
		cfg:    cfg,
		logger: logging.Component(cfg.Logger, "fastpath"),
	}
}

func (f *FastPath) strategy() string { return StrategyFastPath }

// Cancel aborts a running export through the exporter's context.
func (f *FastPath) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cancelled = true
	if f.cancel != nil {
		f.cancel()
	}
}

// Compatible probes the exporter. It returns an error wrapping
// ErrFormatNotCompatible when the target container is not offered.
func (f *FastPath) Compatible(ctx context.Context) error {
	if f.cfg.Exporter == nil {
		return fmt.Errorf("%w: no exporter", ErrFormatNotCompatible)
	}

	containers, err := f.cfg.Exporter.CompatibleContainers(ctx, f.cfg.Source)
	if err != nil {
		return wrap(ErrFormatNotCompatible, err)
	}
	if !slices.Contains(containers, f.cfg.Container) {
		return fmt.Errorf("%w: %s not in %v", ErrFormatNotCompatible, f.cfg.Container, containers)
	}
	return nil
}

// Run checks compatibility, removes any file at the destination and runs
// the export. Nothing is touched when the check fails.
func (f *FastPath) Run(ctx context.Context) error {
	if err := f.Compatible(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	if f.cancelled {
		f.mu.Unlock()
		return ErrCancelled
	}
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()
	defer cancel()

	if err := removeIfExists(f.cfg.Destination); err != nil {
		return wrap(ErrCannotCreateDestination, err)
	}

	f.logger.Debug("export starting",
		slog.String(logging.FieldSource, f.cfg.Source),
		slog.String(logging.FieldDestination, f.cfg.Destination),
		slog.String("container", f.cfg.Container.String()),
	)

	err := f.cfg.Exporter.Export(ctx, codec.ExportJob{
		Source:      f.cfg.Source,
		Destination: f.cfg.Destination,
		Container:   f.cfg.Container,
		Quality:     f.cfg.Quality,
		Start:       f.cfg.Start,
		Duration:    f.cfg.Duration,
		Progress:    f.cfg.Progress,
	})

	f.mu.Lock()
	cancelled := f.cancelled
	f.mu.Unlock()

	switch {
	case cancelled:
		return ErrCancelled
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return wrap(ErrCancelled, err)
	default:
		return wrap(ErrCannotConvert, err)
	}
}
