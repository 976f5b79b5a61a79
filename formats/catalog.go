// SPDX-License-Identifier: EPL-2.0

package formats

import "fmt"

// Hints are the canonical sample format parameters of a catalog entry. A
// zero SampleRate means the source rate is kept.
type Hints struct {
	SampleRate      float64
	BitsPerChannel  int
	FramesPerPacket int
	Flags           Flags
}

// Entry is one row of the format catalog.
type Entry struct {
	FileType  FileType
	Container Container
	Codec     Codec
	Hints     Hints

	// FastPath marks the codec families that can be re-muxed without a full
	// decode and encode pass.
	FastPath bool
}

// Some rows keep historical mappings: wma is written as linear PCM in an
// AIFF container, ogg as FLAC.
var catalog = [fileTypeCount]Entry{
	FileTypeMP3: {
		Container: ContainerMP3,
		Codec:     CodecMPEGLayer3,
		Hints:     Hints{FramesPerPacket: 1152},
	},
	FileTypeM4A: {
		Container: ContainerM4A,
		Codec:     CodecAAC,
		Hints:     Hints{FramesPerPacket: 1024, Flags: FlagAACLowComplexity},
		FastPath:  true,
	},
	FileTypeWAV: {
		Container: ContainerWAVE,
		Codec:     CodecLinearPCM,
		Hints:     Hints{SampleRate: 44100, BitsPerChannel: 16, FramesPerPacket: 1, Flags: FlagPacked | FlagSignedInteger},
	},
	FileTypeWMA: {
		Container: ContainerAIFF,
		Codec:     CodecLinearPCM,
		Hints:     Hints{SampleRate: 44100, BitsPerChannel: 16, FramesPerPacket: 1, Flags: FlagPacked | FlagSignedInteger | FlagBigEndian},
	},
	FileTypeFLAC: {
		Container: ContainerFLAC,
		Codec:     CodecFLAC,
		Hints:     Hints{BitsPerChannel: 16},
		FastPath:  true,
	},
	FileTypeALAC: {
		Container: ContainerM4A,
		Codec:     CodecAppleLossless,
		Hints:     Hints{FramesPerPacket: 4096},
		FastPath:  true,
	},
	FileTypeAAC: {
		Container: ContainerADTS,
		Codec:     CodecAAC,
		Hints:     Hints{FramesPerPacket: 1024, Flags: FlagAACLowComplexity},
		FastPath:  true,
	},
	FileTypeAIFF: {
		Container: ContainerAIFF,
		Codec:     CodecLinearPCM,
		Hints:     Hints{SampleRate: 44100, BitsPerChannel: 16, FramesPerPacket: 1, Flags: FlagPacked | FlagSignedInteger | FlagBigEndian},
	},
	FileTypeAIFC: {
		Container: ContainerAIFC,
		Codec:     CodecIMA4,
		Hints:     Hints{BitsPerChannel: 16, FramesPerPacket: 64},
	},
	FileTypeOgg: {
		Container: ContainerFLAC,
		Codec:     CodecFLAC,
		Hints:     Hints{BitsPerChannel: 16},
	},
	FileTypeCAF: {
		Container: ContainerCAF,
		Codec:     CodecLinearPCM,
		Hints:     Hints{SampleRate: 44100, BitsPerChannel: 16, FramesPerPacket: 1, Flags: FlagPacked | FlagSignedInteger},
		FastPath:  true,
	},
	FileTypeAU: {
		Container: ContainerAU,
		Codec:     CodecLinearPCM,
		Hints:     Hints{SampleRate: 44100, BitsPerChannel: 16, FramesPerPacket: 1, Flags: FlagPacked | FlagSignedInteger | FlagBigEndian},
	},
	FileTypeM4R: {
		Container: ContainerM4A,
		Codec:     CodecAAC,
		Hints:     Hints{FramesPerPacket: 1024, Flags: FlagAACLowComplexity},
		FastPath:  true,
	},
}

func init() {
	for ft := range fileTypeCount {
		catalog[ft].FileType = ft
	}
}

// Resolve returns the catalog entry of ft.
func Resolve(ft FileType) (Entry, error) {
	if !ft.Valid() {
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownFileType, int(ft))
	}
	return catalog[ft], nil
}

// MustResolve is like Resolve but panics for a tag outside the supported set.
func MustResolve(ft FileType) Entry {
	e, err := Resolve(ft)
	if err != nil {
		panic(err)
	}
	return e
}
