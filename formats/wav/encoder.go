// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/formats/internal/pcmio"
)

// Encoder writes little-endian integer PCM WAV files.
type Encoder struct{}

func (Encoder) Encode(w io.WriteSeeker, sampleRate, channels, bitDepth int) (audio.Sink, error) {
	if !pcmio.ValidBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM)

	sink, err := pcmio.NewSink(enc, sampleRate, channels, bitDepth, unsignedBias(bitDepth))
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return sink, nil
}
