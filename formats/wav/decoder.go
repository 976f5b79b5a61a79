// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/formats/internal/pcmio"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// unsignedBias recenters 8-bit WAV samples, which are stored unsigned.
func unsignedBias(bitDepth int) int {
	if bitDepth == 8 {
		return 128
	}
	return 0
}

type Decoder struct{}

// Decode parses the RIFF header and positions r at the start of the sample
// data. r is buffered in memory when it cannot seek.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := pcmio.Seekable(r)
	if err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(rs)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if dec.NumChans < 1 {
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("%w: audio format %#x", ErrUnsupportedWavLayout, dec.WavAudioFormat)
	}

	bitDepth := int(dec.BitDepth)
	if !pcmio.ValidBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	var total int64
	if frameBytes := int64(dec.NumChans) * int64(bitDepth/8); frameBytes > 0 {
		total = dec.PCMLen() / frameBytes
	}

	src, err := pcmio.NewSource(dec, bitDepth, -unsignedBias(bitDepth), total)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}
	return src, nil
}
