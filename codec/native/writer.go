// SPDX-License-Identifier: EPL-2.0

package native

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/codec"
	"github.com/ik5/audconv/formats"
)

const resampleChunkFrames = 4096

type writer struct {
	file *os.File
	sink audio.Sink
	dst  formats.Descriptor

	client *formats.Descriptor

	// set when the client rate differs from the destination rate
	feed      *queue
	resampler *audio.Resampler
	out       []float32

	closed bool
}

func newWriter(f *os.File, sink audio.Sink, dst formats.Descriptor) *writer {
	return &writer{file: f, sink: sink, dst: dst}
}

// SetClientFormat accepts packed 32-bit float PCM with the destination
// channel count at any rate.
func (w *writer) SetClientFormat(d formats.Descriptor) error {
	if w.closed {
		return codec.ErrClosed
	}
	if err := checkClient(d); err != nil {
		return err
	}
	if d.Channels != w.dst.Channels {
		return fmt.Errorf("%w: %d channels into a %d channel destination", codec.ErrClientFormat, d.Channels, w.dst.Channels)
	}

	w.feed, w.resampler, w.out = nil, nil, nil
	if int(d.SampleRate) != int(w.dst.SampleRate) {
		w.feed = newQueue(int(d.SampleRate), d.Channels)
		w.resampler = audio.NewResampler(w.feed, int(w.dst.SampleRate))
		w.out = make([]float32, resampleChunkFrames*d.Channels)
	}

	w.client = &d
	return nil
}

func (w *writer) WriteFrames(buf []float32, frames int) error {
	if w.closed {
		return codec.ErrClosed
	}
	if w.client == nil {
		return fmt.Errorf("%w: not negotiated", codec.ErrClientFormat)
	}

	n := frames * w.client.Channels
	if frames < 0 || n > len(buf) {
		return fmt.Errorf("%w: %d frames from %d samples", audio.ErrInvalidSrcSize, frames, len(buf))
	}
	if w.resampler == nil {
		return w.sink.WriteSamples(buf[:n])
	}

	w.feed.push(buf[:n])
	return w.drain()
}

// drain moves whatever the resampler can produce into the sink.
func (w *writer) drain() error {
	for {
		n, err := w.resampler.ReadSamples(w.out)
		if n > 0 {
			if werr := w.sink.WriteSamples(w.out[:n]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if w.resampler != nil {
		w.feed.finish()
		errs = append(errs, w.drain())
	}
	errs = append(errs, w.sink.Close(), w.file.Close())
	return errors.Join(errs...)
}
