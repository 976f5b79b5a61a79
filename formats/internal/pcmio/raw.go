// SPDX-License-Identifier: EPL-2.0

package pcmio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/utils"
)

// putSample stores a signed sample of width bytes in the given byte order.
func putSample(b []byte, v int, width int, order binary.ByteOrder) {
	switch width {
	case 1:
		b[0] = byte(int8(v))
	case 2:
		order.PutUint16(b, uint16(int16(v)))
	case 3:
		u := uint32(int32(v))
		if order == binary.BigEndian {
			b[0], b[1], b[2] = byte(u>>16), byte(u>>8), byte(u)
		} else {
			b[0], b[1], b[2] = byte(u), byte(u>>8), byte(u>>16)
		}
	case 4:
		order.PutUint32(b, uint32(int32(v)))
	}
}

// sample reads a signed sample of width bytes in the given byte order.
func sample(b []byte, width int, order binary.ByteOrder) int {
	switch width {
	case 1:
		return int(int8(b[0]))
	case 2:
		return int(int16(order.Uint16(b)))
	case 3:
		var u uint32
		if order == binary.BigEndian {
			u = uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
		} else {
			u = uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0])
		}
		// sign extend from 24 bits
		return int(int32(u<<8) >> 8)
	case 4:
		return int(int32(order.Uint32(b)))
	}
	return 0
}

// RawSink writes headerless signed integer PCM. The container owner writes
// its header before the first sample and patches sizes through Finalize.
type RawSink struct {
	w          io.WriteSeeker
	bw         *bufio.Writer
	sampleRate int
	channels   int
	width      int
	order      binary.ByteOrder
	finalize   func(w io.WriteSeeker, dataBytes int64) error
	scratch    []byte
	written    int64
	closed     bool
}

// NewRawSink wraps w, which must already be positioned at the sample data.
// finalize runs once on Close after buffered samples are flushed.
func NewRawSink(w io.WriteSeeker, sampleRate, channels, bitDepth int, order binary.ByteOrder,
	finalize func(w io.WriteSeeker, dataBytes int64) error,
) (*RawSink, error) {
	if !ValidBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	return &RawSink{
		w:          w,
		bw:         bufio.NewWriterSize(w, 64*1024),
		sampleRate: sampleRate,
		channels:   channels,
		width:      bitDepth / 8,
		order:      order,
		finalize:   finalize,
	}, nil
}

func (s *RawSink) SampleRate() int { return s.sampleRate }
func (s *RawSink) Channels() int   { return s.channels }

func (s *RawSink) WriteSamples(src []float32) error {
	if len(src)%s.channels != 0 {
		return audio.ErrInvalidSrcSize
	}

	need := len(src) * s.width
	if cap(s.scratch) < need {
		s.scratch = make([]byte, need)
	}
	out := s.scratch[:need]

	bits := s.width * 8
	for i, v := range src {
		putSample(out[i*s.width:], utils.Float32ToPCM(v, bits), s.width, s.order)
	}

	n, err := s.bw.Write(out)
	s.written += int64(n)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *RawSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.bw.Flush(); err != nil {
		return fmt.Errorf("%w", err)
	}
	if s.finalize == nil {
		return nil
	}
	return s.finalize(s.w, s.written)
}

// RawSource reads headerless signed integer PCM from r until io.EOF or until
// dataBytes have been consumed. A negative dataBytes reads to the end.
type RawSource struct {
	r           io.Reader
	sampleRate  int
	channels    int
	width       int
	order       binary.ByteOrder
	totalFrames int64
	buf         []byte
}

func NewRawSource(r io.Reader, sampleRate, channels, bitDepth int, order binary.ByteOrder, dataBytes int64) (*RawSource, error) {
	if !ValidBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	width := bitDepth / 8
	var total int64
	if dataBytes >= 0 {
		r = io.LimitReader(r, dataBytes)
		total = dataBytes / int64(width*channels)
	}

	return &RawSource{
		r:           bufio.NewReaderSize(r, 64*1024),
		sampleRate:  sampleRate,
		channels:    channels,
		width:       width,
		order:       order,
		totalFrames: total,
	}, nil
}

func (s *RawSource) SampleRate() int { return s.sampleRate }
func (s *RawSource) Channels() int   { return s.channels }
func (s *RawSource) BufSize() int    { return cap(s.buf) / s.width }
func (s *RawSource) Close() error    { return nil }

func (s *RawSource) Info() audio.Info {
	return audio.Info{BitDepth: s.width * 8, TotalFrames: s.totalFrames}
}

func (s *RawSource) ReadSamples(dst []float32) (int, error) {
	frameBytes := s.width * s.channels
	need := (len(dst) / s.channels) * frameBytes
	if need == 0 {
		return 0, nil
	}
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	b := s.buf[:need]

	n, err := io.ReadFull(s.r, b)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	} else if err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w", err)
	}

	samples := (n / frameBytes) * s.channels
	bits := s.width * 8
	for i := range samples {
		dst[i] = utils.PCMToFloat32(sample(b[i*s.width:], s.width, s.order), bits)
	}

	return samples, err
}
