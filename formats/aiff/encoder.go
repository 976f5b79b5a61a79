// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/formats/internal/pcmio"
)

// Encoder writes big-endian integer PCM AIFF files.
type Encoder struct{}

func (Encoder) Encode(w io.WriteSeeker, sampleRate, channels, bitDepth int) (audio.Sink, error) {
	if !pcmio.ValidBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	enc := aiff.NewEncoder(w, sampleRate, bitDepth, channels)

	sink, err := pcmio.NewSink(enc, sampleRate, channels, bitDepth, 0)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return sink, nil
}
