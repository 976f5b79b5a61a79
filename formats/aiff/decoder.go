// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"fmt"
	"io"

	"github.com/go-audio/aiff"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/formats/internal/pcmio"
)

// uncompressed lists the AIFF-C compression types that carry big-endian PCM.
var uncompressed = map[[4]byte]bool{
	{}:                   true,
	{'N', 'O', 'N', 'E'}: true,
	{'t', 'w', 'o', 's'}: true,
}

type Decoder struct{}

// Decode reads AIFF and uncompressed AIFF-C. r is buffered in memory when it
// cannot seek.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := pcmio.Seekable(r)
	if err != nil {
		return nil, err
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()

	if !uncompressed[dec.Encoding] {
		return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedAiffLayout, dec.Encoding[:])
	}

	bitDepth := int(dec.BitDepth)
	if !pcmio.ValidBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	src, err := pcmio.NewSource(dec, bitDepth, 0, int64(dec.NumSampleFrames))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedAiffLayout, err)
	}
	return src, nil
}
