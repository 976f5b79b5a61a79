// SPDX-License-Identifier: EPL-2.0

package formats

import "fmt"

// DefaultPCMSampleRate is the rate linear PCM destinations are normalized to.
const DefaultPCMSampleRate = 44100

const (
	clientBitsPerChannel = 32
	ima4BytesPerPacket   = 34
	ima4FramesPerPacket  = 64
	alacFramesPerPacket  = 4096
	aacFramesPerPacket   = 1024
	mp3FramesPerPacket   = 1152
)

// BuildOptions tune destination descriptor construction.
type BuildOptions struct {
	Quality Quality

	// PCMSampleRate overrides the normalized linear PCM rate. Zero means
	// DefaultPCMSampleRate.
	PCMSampleRate float64
	// KeepPCMRate writes linear PCM at the source rate instead.
	KeepPCMRate bool

	// Channels overrides the destination channel count when positive.
	Channels int

	// Strict rejects codecs without a construction rule instead of falling
	// back to 16-bit linear PCM.
	Strict bool
}

// Destination is the result of Build.
type Destination struct {
	// Format is the descriptor the destination file is written with.
	Format Descriptor
	// Client is the 32-bit float working format both stream ends exchange.
	Client Descriptor
	// BitRate is the encoder target for lossy codecs, zero otherwise.
	BitRate int
}

// Build derives the destination descriptor for writing codec into container
// from the source descriptor, along with the client format.
func Build(src Descriptor, codec Codec, container Container, opts BuildOptions) (Destination, error) {
	channels := src.Channels
	if opts.Channels > 0 {
		channels = opts.Channels
	}
	if channels <= 0 {
		return Destination{}, fmt.Errorf("%w: source has %d channels", ErrInvalidDescriptor, src.Channels)
	}

	dst := Destination{
		Client: ClientFormat(src.SampleRate, channels),
	}

	switch codec {
	case CodecAAC:
		dst.Format = Descriptor{
			SampleRate:      src.SampleRate,
			Codec:           CodecAAC,
			Flags:           FlagAACLowComplexity,
			FramesPerPacket: aacFramesPerPacket,
			Channels:        channels,
		}
		dst.BitRate = opts.Quality.BitRate()
	case CodecAppleLossless:
		dst.Format = Descriptor{
			SampleRate:      src.SampleRate,
			Codec:           CodecAppleLossless,
			FramesPerPacket: alacFramesPerPacket,
			Channels:        channels,
		}
	case CodecFLAC:
		// byte and frame sizes stay 0: the encoder is variable rate
		dst.Format = Descriptor{
			SampleRate:     src.SampleRate,
			Codec:          CodecFLAC,
			Channels:       channels,
			BitsPerChannel: 16,
		}
	case CodecMPEGLayer3:
		dst.Format = Descriptor{
			SampleRate:      src.SampleRate,
			Codec:           CodecMPEGLayer3,
			FramesPerPacket: mp3FramesPerPacket,
			Channels:        channels,
		}
		dst.BitRate = opts.Quality.BitRate()
	case CodecIMA4:
		dst.Format = Descriptor{
			SampleRate:      src.SampleRate,
			Codec:           CodecIMA4,
			BytesPerPacket:  ima4BytesPerPacket,
			FramesPerPacket: ima4FramesPerPacket,
			BytesPerFrame:   2,
			Channels:        channels,
			BitsPerChannel:  16,
		}
	case CodecLinearPCM:
		rate := opts.PCMSampleRate
		if rate <= 0 {
			rate = DefaultPCMSampleRate
		}
		if opts.KeepPCMRate {
			rate = src.SampleRate
		}
		dst.Format = pcm16(rate, channels, container.BigEndian())
	default:
		if opts.Strict {
			return Destination{}, fmt.Errorf("%w: %s", ErrUnsupportedCodec, codec)
		}
		dst.Format = pcm16(src.SampleRate, channels, false)
	}

	return dst, nil
}

// ClientFormat returns the packed 32-bit float working format at the given
// rate and channel count.
func ClientFormat(sampleRate float64, channels int) Descriptor {
	bytesPerFrame := clientBitsPerChannel / 8 * channels
	return Descriptor{
		SampleRate:      sampleRate,
		Codec:           CodecLinearPCM,
		Flags:           FlagFloat | FlagPacked,
		BytesPerPacket:  bytesPerFrame,
		FramesPerPacket: 1,
		BytesPerFrame:   bytesPerFrame,
		Channels:        channels,
		BitsPerChannel:  clientBitsPerChannel,
	}
}

func pcm16(rate float64, channels int, bigEndian bool) Descriptor {
	flags := FlagPacked | FlagSignedInteger
	if bigEndian {
		flags |= FlagBigEndian
	}
	return Descriptor{
		SampleRate:      rate,
		Codec:           CodecLinearPCM,
		Flags:           flags,
		BytesPerPacket:  2 * channels,
		FramesPerPacket: 1,
		BytesPerFrame:   2 * channels,
		Channels:        channels,
		BitsPerChannel:  16,
	}
}
