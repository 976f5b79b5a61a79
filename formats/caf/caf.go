// SPDX-License-Identifier: EPL-2.0

package caf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/formats/internal/pcmio"
)

const (
	flagIsFloat        = 1 << 0
	flagIsLittleEndian = 1 << 1

	// dataSizeOffset is where the data chunk size lives in files we write:
	// file header, desc chunk header and body, then the data chunk type.
	dataSizeOffset = 8 + 12 + 32 + 4
)

var (
	ErrNotCafFile          = errors.New("not a CAF file")
	ErrUnsupportedEncoding = errors.New("unsupported CAF encoding")
)

type fileHeader struct {
	Type    [4]byte
	Version uint16
	Flags   uint16
}

type chunkHeader struct {
	Type [4]byte
	Size int64
}

// desc mirrors the CAFAudioDescription chunk body.
type desc struct {
	SampleRate       float64
	FormatID         [4]byte
	FormatFlags      uint32
	BytesPerPacket   uint32
	FramesPerPacket  uint32
	ChannelsPerFrame uint32
	BitsPerChannel   uint32
}

var (
	typeCaff = [4]byte{'c', 'a', 'f', 'f'}
	typeDesc = [4]byte{'d', 'e', 's', 'c'}
	typeData = [4]byte{'d', 'a', 't', 'a'}
	typeLPCM = [4]byte{'l', 'p', 'c', 'm'}
)

type Decoder struct{}

// Decode reads integer linear PCM CAF files in either byte order.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	var fh fileHeader
	if err := binary.Read(r, binary.BigEndian, &fh); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotCafFile, err)
	}
	if fh.Type != typeCaff || fh.Version != 1 {
		return nil, ErrNotCafFile
	}

	var d *desc
	for {
		var ch chunkHeader
		if err := binary.Read(r, binary.BigEndian, &ch); err != nil {
			return nil, fmt.Errorf("%w: no data chunk: %w", ErrNotCafFile, err)
		}

		switch ch.Type {
		case typeDesc:
			d = &desc{}
			if err := binary.Read(r, binary.BigEndian, d); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrNotCafFile, err)
			}
			if rest := ch.Size - int64(binary.Size(d)); rest > 0 {
				if _, err := io.CopyN(io.Discard, r, rest); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrNotCafFile, err)
				}
			}

		case typeData:
			if d == nil {
				return nil, fmt.Errorf("%w: data before desc", ErrNotCafFile)
			}
			return newSource(r, d, ch.Size)

		default:
			if ch.Size < 0 {
				return nil, ErrNotCafFile
			}
			if _, err := io.CopyN(io.Discard, r, ch.Size); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrNotCafFile, err)
			}
		}
	}
}

func newSource(r io.Reader, d *desc, size int64) (audio.Source, error) {
	if d.FormatID != typeLPCM || d.FormatFlags&flagIsFloat != 0 {
		return nil, fmt.Errorf("%w: %q flags %#x", ErrUnsupportedEncoding, d.FormatID[:], d.FormatFlags)
	}
	if d.ChannelsPerFrame == 0 {
		return nil, ErrNotCafFile
	}

	var editCount uint32
	if err := binary.Read(r, binary.BigEndian, &editCount); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotCafFile, err)
	}

	dataBytes := int64(-1)
	if size >= 4 {
		dataBytes = size - 4
	}

	var order binary.ByteOrder = binary.BigEndian
	if d.FormatFlags&flagIsLittleEndian != 0 {
		order = binary.LittleEndian
	}

	src, err := pcmio.NewRawSource(r, int(d.SampleRate), int(d.ChannelsPerFrame), int(d.BitsPerChannel), order, dataBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedEncoding, err)
	}
	return src, nil
}

// Encoder writes little-endian integer linear PCM CAF files.
type Encoder struct{}

func (Encoder) Encode(w io.WriteSeeker, sampleRate, channels, bitDepth int) (audio.Sink, error) {
	if !pcmio.ValidBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedEncoding, bitDepth)
	}

	bytesPerFrame := uint32(channels * bitDepth / 8)
	d := desc{
		SampleRate:       float64(sampleRate),
		FormatID:         typeLPCM,
		FormatFlags:      flagIsLittleEndian,
		BytesPerPacket:   bytesPerFrame,
		FramesPerPacket:  1,
		ChannelsPerFrame: uint32(channels),
		BitsPerChannel:   uint32(bitDepth),
	}

	header := []any{
		fileHeader{Type: typeCaff, Version: 1},
		chunkHeader{Type: typeDesc, Size: int64(binary.Size(d))},
		d,
		chunkHeader{Type: typeData, Size: -1},
		uint32(0), // edit count
	}
	for _, v := range header {
		if err := binary.Write(w, binary.BigEndian, v); err != nil {
			return nil, fmt.Errorf("writing CAF header: %w", err)
		}
	}

	sink, err := pcmio.NewRawSink(w, sampleRate, channels, bitDepth, binary.LittleEndian, patchSize)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return sink, nil
}

// patchSize replaces the open-ended data size with the real one.
func patchSize(w io.WriteSeeker, dataBytes int64) error {
	if _, err := w.Seek(dataSizeOffset, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	if err := binary.Write(w, binary.BigEndian, dataBytes+4); err != nil {
		return fmt.Errorf("patching CAF size: %w", err)
	}
	if _, err := w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
