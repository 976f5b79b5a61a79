// SPDX-License-Identifier: EPL-2.0

// Package pcmio adapts go-audio integer PCM decoders and encoders to
// audio.Source and audio.Sink.
package pcmio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/utils"
)

// ErrUnsupportedBitDepth is returned for sample widths other than 8, 16, 24 and 32.
var ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")

// Reader is the subset of the go-audio wav and aiff decoders used here.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Writer is the subset of the go-audio wav and aiff encoders used here.
type Writer interface {
	Write(buf *goaudio.IntBuffer) error
	Close() error
}

// ValidBitDepth reports whether bits is a supported integer sample width.
func ValidBitDepth(bits int) bool {
	switch bits {
	case 8, 16, 24, 32:
		return true
	}
	return false
}

// Source reads integer PCM through a go-audio decoder.
type Source struct {
	dec         Reader
	format      *goaudio.Format
	bitDepth    int
	bias        int
	totalFrames int64
	intBuf      *goaudio.IntBuffer
}

// NewSource wraps dec. bias is added to every decoded value, for containers
// that store 8-bit samples unsigned.
func NewSource(dec Reader, bitDepth, bias int, totalFrames int64) (*Source, error) {
	if !ValidBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("decoder reported no PCM format")
	}

	return &Source{
		dec:         dec,
		format:      format,
		bitDepth:    bitDepth,
		bias:        bias,
		totalFrames: totalFrames,
	}, nil
}

func (s *Source) SampleRate() int { return s.format.SampleRate }
func (s *Source) Channels() int   { return s.format.NumChannels }
func (s *Source) Close() error    { return nil }

func (s *Source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *Source) Info() audio.Info {
	return audio.Info{BitDepth: s.bitDepth, TotalFrames: s.totalFrames}
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, len(dst)),
			Format:         s.format,
			SourceBitDepth: s.bitDepth,
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = utils.PCMToFloat32(v+s.bias, s.bitDepth)
	}

	// A short read means the data chunk is exhausted
	if n < len(dst) && err == nil {
		return n, io.EOF
	}
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}

	return n, err
}

// Sink writes float samples as integer PCM through a go-audio encoder.
type Sink struct {
	enc        Writer
	sampleRate int
	channels   int
	bitDepth   int
	bias       int
	intBuf     *goaudio.IntBuffer
	wrote      bool
	closed     bool
}

// NewSink wraps enc. bias is added to every encoded value.
func NewSink(enc Writer, sampleRate, channels, bitDepth, bias int) (*Sink, error) {
	if !ValidBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	return &Sink{
		enc:        enc,
		sampleRate: sampleRate,
		channels:   channels,
		bitDepth:   bitDepth,
		bias:       bias,
		intBuf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

func (s *Sink) SampleRate() int { return s.sampleRate }
func (s *Sink) Channels() int   { return s.channels }

func (s *Sink) WriteSamples(src []float32) error {
	if len(src)%s.channels != 0 {
		return audio.ErrInvalidSrcSize
	}
	if len(src) == 0 {
		return nil
	}

	if cap(s.intBuf.Data) < len(src) {
		s.intBuf.Data = make([]int, len(src))
	}
	s.intBuf.Data = s.intBuf.Data[:len(src)]

	for i, v := range src {
		s.intBuf.Data[i] = utils.Float32ToPCM(v, s.bitDepth) + s.bias
	}

	if err := s.enc.Write(s.intBuf); err != nil {
		return fmt.Errorf("%w", err)
	}
	s.wrote = true
	return nil
}

// Close patches the container header. It is safe to call more than once.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if !s.wrote {
		// Emit the header so an empty stream is still a valid file
		s.intBuf.Data = s.intBuf.Data[:0]
		if err := s.enc.Write(s.intBuf); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	if err := s.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Seekable returns r as an io.ReadSeeker, buffering it in memory when needed.
func Seekable(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffering input: %w", err)
	}
	return bytes.NewReader(data), nil
}
