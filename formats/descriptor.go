// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"fmt"
	"strings"
)

// Flags is the format flag bitset of a Descriptor. For linear PCM the bits
// below apply; compressed codecs store a codec specific value instead.
type Flags uint32

const (
	FlagFloat         Flags = 1 << 0
	FlagBigEndian     Flags = 1 << 1
	FlagSignedInteger Flags = 1 << 2
	FlagPacked        Flags = 1 << 3
)

// FlagAACLowComplexity is the MPEG-4 object type stored in Flags for AAC-LC.
const FlagAACLowComplexity Flags = 2

// Has reports whether every bit of f2 is set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Descriptor describes the numeric layout of a sample stream.
//
// For linear PCM, BytesPerFrame equals BitsPerChannel/8 * Channels. For
// compressed codecs BytesPerPacket and FramesPerPacket are codec constants and
// zero means "variable".
type Descriptor struct {
	SampleRate      float64
	Codec           Codec
	Flags           Flags
	BytesPerPacket  int
	FramesPerPacket int
	BytesPerFrame   int
	Channels        int
	BitsPerChannel  int
}

// IsLinearPCM reports whether d carries uncompressed samples.
func (d Descriptor) IsLinearPCM() bool { return d.Codec == CodecLinearPCM }

// IsFloat reports whether d carries floating point linear PCM.
func (d Descriptor) IsFloat() bool { return d.IsLinearPCM() && d.Flags.Has(FlagFloat) }

// IsBigEndian reports whether d stores linear PCM big-endian.
func (d Descriptor) IsBigEndian() bool { return d.IsLinearPCM() && d.Flags.Has(FlagBigEndian) }

// Validate checks the size invariants of d.
func (d Descriptor) Validate() error {
	if d.Channels <= 0 {
		return fmt.Errorf("%w: channels %d", ErrInvalidDescriptor, d.Channels)
	}
	if d.SampleRate < 0 {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidDescriptor, d.SampleRate)
	}
	if !d.IsLinearPCM() {
		return nil
	}
	if d.BitsPerChannel <= 0 || d.BitsPerChannel%8 != 0 {
		return fmt.Errorf("%w: bits per channel %d", ErrInvalidDescriptor, d.BitsPerChannel)
	}
	if want := d.BitsPerChannel / 8 * d.Channels; d.BytesPerFrame != want {
		return fmt.Errorf("%w: bytes per frame %d, want %d", ErrInvalidDescriptor, d.BytesPerFrame, want)
	}
	return nil
}

func (d Descriptor) String() string {
	var flags []string
	if d.IsLinearPCM() {
		for _, f := range []struct {
			bit  Flags
			name string
		}{
			{FlagFloat, "float"},
			{FlagBigEndian, "be"},
			{FlagSignedInteger, "signed"},
			{FlagPacked, "packed"},
		} {
			if d.Flags.Has(f.bit) {
				flags = append(flags, f.name)
			}
		}
	} else if d.Flags != 0 {
		flags = append(flags, fmt.Sprintf("0x%x", uint32(d.Flags)))
	}

	return fmt.Sprintf("%s %gHz %dch %dbit fpp=%d bpp=%d bpf=%d [%s]",
		d.Codec, d.SampleRate, d.Channels, d.BitsPerChannel,
		d.FramesPerPacket, d.BytesPerPacket, d.BytesPerFrame, strings.Join(flags, ","))
}

// DurationFrames converts a duration in seconds into a frame count at the
// descriptor's sample rate.
func (d Descriptor) DurationFrames(seconds float64) int64 {
	if seconds <= 0 || d.SampleRate <= 0 {
		return 0
	}
	return int64(seconds * d.SampleRate)
}
