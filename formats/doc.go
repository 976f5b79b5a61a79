// SPDX-License-Identifier: EPL-2.0

// Package formats describes conversion targets and sample layouts.
//
// It holds the static format catalog, which maps every supported FileType to
// a container and codec pair with canonical sample format hints, and the
// destination builder, which derives the on-disk Descriptor for a target codec
// from the source Descriptor.
//
// # Catalog
//
//	entry, err := formats.Resolve(formats.FileTypeM4A)
//	// entry.Container == formats.ContainerM4A
//	// entry.Codec == formats.CodecAAC
//
// Resolve is total over the tags returned by FileTypes. MustResolve panics on
// a tag outside that set.
//
// # Destination Descriptors
//
//	src := formats.Descriptor{SampleRate: 48000, Codec: formats.CodecLinearPCM, Channels: 2, ...}
//	dst, err := formats.Build(src, entry.Codec, entry.Container, formats.BuildOptions{})
//
// The rules are codec specific:
//   - AAC: source rate, 1024 frames per packet, AAC-LC object flag
//   - Apple Lossless: source rate, 4096 frames per packet
//   - FLAC: source rate, 16 bits, variable packet sizes
//   - MP3: source rate, 1152 frames per packet
//   - IMA4: 16 bits, 34 bytes and 64 frames per packet
//   - linear PCM: 44.1 kHz, 16-bit signed packed, big-endian for AIFF, AIFC and AU
//
// Unknown codecs fall back to 16-bit linear PCM at the source rate unless
// BuildOptions.Strict is set.
//
// # Client Format
//
// Build also returns the client format: packed 32-bit float linear PCM at the
// source rate. Decoders and encoders exchange frames in this representation,
// which keeps their numeric layouts independent.
package formats
