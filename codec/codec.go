// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"github.com/ik5/audconv/formats"
)

// Reader is an open decode stream.
type Reader interface {
	// Format is the stored format of the source.
	Format() formats.Descriptor
	// SetClientFormat selects the representation ReadFrames produces.
	SetClientFormat(formats.Descriptor) error
	// ReadFrames fills buf with up to maxFrames interleaved frames in the
	// client format. The end of the stream is (0, io.EOF) or (0, nil).
	ReadFrames(buf []float32, maxFrames int) (int, error)
	// TotalFrames is a best-effort length hint in client frames.
	TotalFrames() (int64, bool)
	Close() error
}

// Writer is an open encode stream.
type Writer interface {
	SetClientFormat(formats.Descriptor) error
	// WriteFrames consumes the first frames interleaved frames of buf.
	WriteFrames(buf []float32, frames int) error
	// Close flushes pending samples and finalizes the container.
	Close() error
}

// Provider opens decode and encode streams.
type Provider interface {
	OpenReader(path string) (Reader, error)
	OpenWriter(path string, c formats.Container, dst formats.Descriptor) (Writer, error)
	// ReadableContainers lists the containers OpenReader understands, in
	// order of preference.
	ReadableContainers() []formats.Container
}

// CanRead reports whether p can open path judging by its extension.
func CanRead(p Provider, path string) bool {
	c := formats.ContainerForExtension(filepath.Ext(path))
	if c == formats.ContainerUnknown {
		return false
	}
	return slices.Contains(p.ReadableContainers(), c)
}

// ExportJob describes one passthrough re-mux.
type ExportJob struct {
	Source      string
	Destination string
	Container   formats.Container
	Quality     formats.Quality

	// Start and Duration restrict the exported window when non zero.
	Start    time.Duration
	Duration time.Duration

	// Progress receives provider-native progress in [0,1]. May be nil.
	Progress func(float64)
}

// Exporter re-muxes assets without decoding them.
type Exporter interface {
	// CompatibleContainers lists the containers source can be re-muxed
	// into without a decode and encode pass.
	CompatibleContainers(ctx context.Context, source string) ([]formats.Container, error)
	// Export blocks until the job ends. Cancelling ctx aborts it.
	Export(ctx context.Context, job ExportJob) error
}
