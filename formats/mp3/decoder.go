// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audconv/audio"
)

const (
	// go-mp3 always emits 16-bit little-endian stereo.
	channels      = 2
	bytesPerFrame = 4
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec         mp3Reader
	sampleRate  int
	totalFrames int64
	buf         []byte
	eof         bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // sample capacity, not bytes

func (s *source) Info() audio.Info {
	return audio.Info{BitDepth: 16, TotalFrames: s.totalFrames}
}

// ReadSamples fills whole stereo frames of dst.
func (s *source) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	bytesNeeded := (len(dst) / channels) * bytesPerFrame
	if bytesNeeded == 0 {
		return 0, nil
	}
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := io.ReadFull(s.dec, s.buf)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.eof = true
		err = io.EOF
	case err != nil:
		return 0, fmt.Errorf("%w", err)
	}

	samples := (n / bytesPerFrame) * channels
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = float32(v) / 32768.0
	}

	if samples == 0 && err != nil {
		return 0, io.EOF
	}
	return samples, err
}

type Decoder struct{}

// Decode prepares an MP3 stream. TotalFrames is known only when r can seek.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	var total int64
	if length := dec.Length(); length > 0 {
		total = length / bytesPerFrame
	}

	return &source{
		dec:         dec,
		sampleRate:  dec.SampleRate(),
		totalFrames: total,
		buf:         make([]byte, 8192),
	}, nil
}
