// SPDX-License-Identifier: EPL-2.0

package au

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/formats/internal/pcmio"
)

const (
	magic      = 0x2e736e64 // ".snd"
	headerSize = 24
	// unknownSize marks a data size that was never patched.
	unknownSize = math.MaxUint32
)

var (
	ErrNotAuFile           = errors.New("not a Sun AU file")
	ErrUnsupportedEncoding = errors.New("unsupported AU encoding")
)

// encodings maps AU encoding ids to linear PCM bit depths.
var encodings = map[uint32]int{
	2: 8,
	3: 16,
	4: 24,
	5: 32,
}

func encodingFor(bitDepth int) (uint32, bool) {
	for enc, bits := range encodings {
		if bits == bitDepth {
			return enc, true
		}
	}
	return 0, false
}

type header struct {
	Magic      uint32
	DataOffset uint32
	DataSize   uint32
	Encoding   uint32
	SampleRate uint32
	Channels   uint32
}

type Decoder struct{}

// Decode reads big-endian linear PCM .au files.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	var h header
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAuFile, err)
	}
	if h.Magic != magic || h.DataOffset < headerSize || h.Channels == 0 {
		return nil, ErrNotAuFile
	}

	bits, ok := encodings[h.Encoding]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedEncoding, h.Encoding)
	}

	// skip the annotation field
	if _, err := io.CopyN(io.Discard, r, int64(h.DataOffset-headerSize)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAuFile, err)
	}

	size := int64(h.DataSize)
	if h.DataSize == unknownSize {
		size = -1
	}

	src, err := pcmio.NewRawSource(r, int(h.SampleRate), int(h.Channels), bits, binary.BigEndian, size)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return src, nil
}

// Encoder writes big-endian linear PCM .au files.
type Encoder struct{}

func (Encoder) Encode(w io.WriteSeeker, sampleRate, channels, bitDepth int) (audio.Sink, error) {
	enc, ok := encodingFor(bitDepth)
	if !ok {
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedEncoding, bitDepth)
	}

	h := header{
		Magic:      magic,
		DataOffset: headerSize,
		DataSize:   unknownSize,
		Encoding:   enc,
		SampleRate: uint32(sampleRate),
		Channels:   uint32(channels),
	}
	if err := binary.Write(w, binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("writing AU header: %w", err)
	}

	sink, err := pcmio.NewRawSink(w, sampleRate, channels, bitDepth, binary.BigEndian, patchSize)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return sink, nil
}

// patchSize records the final data length in the header.
func patchSize(w io.WriteSeeker, dataBytes int64) error {
	if dataBytes >= unknownSize {
		return nil
	}

	if _, err := w.Seek(8, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(dataBytes)); err != nil {
		return fmt.Errorf("patching AU size: %w", err)
	}
	if _, err := w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
