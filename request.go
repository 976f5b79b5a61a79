// SPDX-License-Identifier: EPL-2.0

package audconv

import (
	"fmt"
	"time"

	"github.com/ik5/audconv/formats"
)

// TimeRange limits a conversion to a window of the source.
type TimeRange struct {
	Start time.Duration
	// Duration is the window length. Zero means up to the end.
	Duration time.Duration
}

// Override replaces parts of the catalog mapping of a request.
type Override struct {
	// Container replaces the destination container when known.
	Container formats.Container
	// Codec replaces the destination codec when non-zero.
	Codec formats.Codec
	// Channels sets the destination channel count when positive. One
	// downmixes to mono.
	Channels int
}

// Request describes one conversion.
type Request struct {
	Source      string
	Destination string
	FileType    formats.FileType

	TimeRange *TimeRange
	Quality   formats.Quality
	Override  *Override

	// OnProgress and OnCompletion are installed on the session before the
	// worker starts. Either may be nil.
	OnProgress   func(float64)
	OnCompletion func(error)
}

// target is the resolved container and codec of a request.
type target struct {
	entry     formats.Entry
	container formats.Container
	codec     formats.Codec
	channels  int
}

func (r Request) resolve() (target, error) {
	if r.Source == "" {
		return target{}, fmt.Errorf("%w: empty source", ErrInvalidRequest)
	}
	if r.Destination == "" {
		return target{}, fmt.Errorf("%w: empty destination", ErrInvalidRequest)
	}
	if r.Source == r.Destination {
		return target{}, fmt.Errorf("%w: source and destination are the same file", ErrInvalidRequest)
	}
	if tr := r.TimeRange; tr != nil && (tr.Start < 0 || tr.Duration < 0) {
		return target{}, fmt.Errorf("%w: negative time range", ErrInvalidRequest)
	}

	entry, err := formats.Resolve(r.FileType)
	if err != nil {
		return target{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	t := target{entry: entry, container: entry.Container, codec: entry.Codec}
	if o := r.Override; o != nil {
		if o.Channels < 0 {
			return target{}, fmt.Errorf("%w: negative channel override", ErrInvalidRequest)
		}
		if o.Container != formats.ContainerUnknown {
			t.container = o.Container
		}
		if o.Codec != formats.CodecUnknown {
			t.codec = o.Codec
		}
		t.channels = o.Channels
	}
	return t, nil
}

// fastPath reports whether the target may go through the exporter. An
// override that changes the codec or channel layout needs the stream path.
func (t target) fastPath() bool {
	return t.entry.FastPath && t.codec == t.entry.Codec && t.channels == 0
}

func (r Request) window() (start, duration time.Duration) {
	if r.TimeRange == nil {
		return 0, 0
	}
	return r.TimeRange.Start, r.TimeRange.Duration
}
