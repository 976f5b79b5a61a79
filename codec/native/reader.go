// SPDX-License-Identifier: EPL-2.0

package native

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/codec"
	"github.com/ik5/audconv/formats"
)

// maxIdleReads bounds how often ReadFrames retries a source that returns
// no data without an error.
const maxIdleReads = 64

type reader struct {
	file  io.Closer
	src   audio.Source
	chain audio.Source

	format formats.Descriptor
	total  int64

	client *formats.Descriptor
	eof    bool
	closed bool
}

func newReader(file io.Closer, src audio.Source, c formats.Container) *reader {
	r := &reader{
		file:  file,
		src:   src,
		chain: src,
	}

	bits := 16
	if d, ok := src.(audio.Describer); ok {
		info := d.Info()
		if info.BitDepth > 0 {
			bits = info.BitDepth
		}
		r.total = info.TotalFrames
	}

	r.format = storedFormat(c, src.SampleRate(), src.Channels(), bits)
	return r
}

// storedFormat describes what the decoder found on disk.
func storedFormat(c formats.Container, rate, channels, bits int) formats.Descriptor {
	switch c {
	case formats.ContainerMP3:
		return formats.Descriptor{
			SampleRate:      float64(rate),
			Codec:           formats.CodecMPEGLayer3,
			FramesPerPacket: 1152,
			Channels:        channels,
		}
	case formats.ContainerOgg:
		return formats.Descriptor{
			SampleRate: float64(rate),
			Codec:      formats.CodecVorbis,
			Channels:   channels,
		}
	}

	flags := formats.FlagPacked | formats.FlagSignedInteger
	if c.BigEndian() {
		flags |= formats.FlagBigEndian
	}
	bpf := bits / 8 * channels
	return formats.Descriptor{
		SampleRate:      float64(rate),
		Codec:           formats.CodecLinearPCM,
		Flags:           flags,
		BytesPerPacket:  bpf,
		FramesPerPacket: 1,
		BytesPerFrame:   bpf,
		Channels:        channels,
		BitsPerChannel:  bits,
	}
}

func (r *reader) Format() formats.Descriptor { return r.format }

// SetClientFormat accepts packed 32-bit float PCM with either the source
// channel count or one channel. A different rate inserts a resampler.
func (r *reader) SetClientFormat(d formats.Descriptor) error {
	if r.closed {
		return codec.ErrClosed
	}
	if err := checkClient(d); err != nil {
		return err
	}

	chain := r.src
	switch {
	case d.Channels == chain.Channels():
	case d.Channels == 1:
		chain = audio.NewMonoMixer(chain)
	default:
		return fmt.Errorf("%w: cannot map %d channels to %d", codec.ErrClientFormat, chain.Channels(), d.Channels)
	}

	if rate := int(d.SampleRate); rate != chain.SampleRate() {
		chain = audio.NewResampler(chain, rate)
	}

	r.chain = chain
	r.client = &d
	return nil
}

func (r *reader) ReadFrames(buf []float32, maxFrames int) (int, error) {
	if r.closed {
		return 0, codec.ErrClosed
	}
	if r.client == nil {
		return 0, fmt.Errorf("%w: not negotiated", codec.ErrClientFormat)
	}
	if r.eof {
		return 0, io.EOF
	}

	ch := r.client.Channels
	need := maxFrames * ch
	if maxFrames <= 0 || len(buf) < need {
		return 0, fmt.Errorf("%w: buffer holds %d samples, need %d", audio.ErrInvalidDstSize, len(buf), need)
	}

	got, idle := 0, 0
	for got < need && idle < maxIdleReads {
		n, err := r.chain.ReadSamples(buf[got:need])
		got += n
		if errors.Is(err, io.EOF) {
			r.eof = true
			break
		}
		if err != nil {
			return got / ch, err
		}
		if n == 0 {
			idle++
			continue
		}
		idle = 0
	}

	if got == 0 && r.eof {
		return 0, io.EOF
	}
	return got / ch, nil
}

// TotalFrames reports the decoder length scaled to the client rate.
func (r *reader) TotalFrames() (int64, bool) {
	if r.total <= 0 {
		return 0, false
	}
	if r.client == nil || int(r.client.SampleRate) == r.src.SampleRate() {
		return r.total, true
	}

	src, dst := int64(r.src.SampleRate()), int64(r.client.SampleRate)
	return (r.total*dst + src - 1) / src, true
}

func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return errors.Join(r.chain.Close(), r.file.Close())
}

func checkClient(d formats.Descriptor) error {
	if !d.IsFloat() || d.BitsPerChannel != 32 || !d.Flags.Has(formats.FlagPacked) {
		return fmt.Errorf("%w: %s", codec.ErrClientFormat, d)
	}
	if d.Channels <= 0 || d.SampleRate <= 0 {
		return fmt.Errorf("%w: %s", codec.ErrClientFormat, d)
	}
	return nil
}
