// SPDX-License-Identifier: EPL-2.0

package audconv

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ik5/audconv/codec"
	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/logging"
	"github.com/ik5/audconv/transcode"
)

// run is the session worker. It tries the fast path first when the target
// allows it and falls back to the stream path only when the exporter does
// not offer the container. Every other fast path result is final.
func (c *Converter) run(ctx context.Context, s *transcode.Session, req Request, t target) error {
	start, duration := req.window()
	sampler := logging.NewProgressSampler(5)

	if c.fastPath && c.exporter != nil && t.fastPath() {
		fp := transcode.NewFastPath(transcode.FastPathConfig{
			Exporter:    c.exporter,
			Source:      req.Source,
			Destination: req.Destination,
			Container:   t.container,
			Quality:     req.Quality,
			Start:       start,
			Duration:    duration,
			Progress:    progressFunc(s, transcode.StrategyFastPath, sampler),
			Logger:      s.Logger(),
		})
		if err := s.Attach(fp); err != nil {
			return err
		}
		err := fp.Run(ctx)
		s.Detach()
		if !errors.Is(err, transcode.ErrFormatNotCompatible) {
			return err
		}
		s.Logger().Debug("fast path not compatible, streaming instead", logging.Error(err))
	}

	source, remuxed := req.Source, false
	if c.exporter != nil && !codec.CanRead(c.provider, req.Source) {
		stager := &transcode.Stager{Exporter: c.exporter, Dir: c.tempDir, Logger: s.Logger()}
		staged, err := stager.Stage(ctx, req.Source, c.provider.ReadableContainers())
		if err != nil {
			return err
		}
		defer func() {
			if err := staged.Release(); err != nil {
				s.Logger().Warn("remove staged source", slog.String("path", staged.Path), logging.Error(err))
			}
		}()
		source, remuxed = staged.Path, true
	}

	strategy := transcode.StrategyStream
	if remuxed {
		strategy = transcode.StrategyRemux
	}

	pump := transcode.NewPump(transcode.PumpConfig{
		Provider:         c.provider,
		Source:           source,
		Destination:      req.Destination,
		Container:        t.container,
		Plan:             c.plan(s, req, t),
		Remuxed:          remuxed,
		BufferBytes:      c.bufferBytes,
		ProgressInterval: c.progressInterval,
		Start:            start,
		Duration:         duration,
		Context:          ctx,
		Progress:         progressFunc(s, strategy, sampler),
		Logger:           s.Logger(),
	})
	if err := s.Attach(pump); err != nil {
		return err
	}
	err := pump.Run()
	s.Detach()

	stats := pump.Stats()
	s.Logger().Info("stream finished",
		slog.String(logging.FieldStrategy, strategy),
		slog.Int64(logging.FieldFrames, stats.ProcessedFrames),
		slog.Int64("round_trips", stats.RoundTrips),
		slog.Int("buffer_frames", stats.BufferFrames),
	)
	return err
}

func (c *Converter) plan(s *transcode.Session, req Request, t target) transcode.PlanFunc {
	opts := formats.BuildOptions{
		Quality:       req.Quality,
		PCMSampleRate: float64(c.pcmSampleRate),
		KeepPCMRate:   c.pcmSampleRate == 0,
		Channels:      t.channels,
		Strict:        c.strict,
	}
	return func(src formats.Descriptor) (formats.Destination, error) {
		dst, err := formats.Build(src, t.codec, t.container, opts)
		if err != nil {
			return dst, err
		}
		s.Logger().Debug("destination planned",
			slog.String("format", dst.Format.String()),
			slog.Int("bit_rate", dst.BitRate),
		)
		return dst, nil
	}
}

// progressFunc forwards progress to the session and logs it at debug level
// in sampled buckets.
func progressFunc(s *transcode.Session, stage string, sampler *logging.ProgressSampler) func(float64) {
	return func(f float64) {
		if s.Cancelled() {
			return
		}
		s.ReportProgress(f)
		if sampler.ShouldLog(f*100, stage) {
			s.Logger().Debug("progress",
				slog.String(logging.FieldStrategy, stage),
				slog.Float64(logging.FieldProgress, f),
			)
		}
	}
}
