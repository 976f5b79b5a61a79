// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"errors"
	"testing"
)

func sourceDescriptor(rate float64, channels int) Descriptor {
	return Descriptor{
		SampleRate:      rate,
		Codec:           CodecLinearPCM,
		Flags:           FlagPacked | FlagSignedInteger,
		BytesPerPacket:  2 * channels,
		FramesPerPacket: 1,
		BytesPerFrame:   2 * channels,
		Channels:        channels,
		BitsPerChannel:  16,
	}
}

func TestBuild_CodecRules(t *testing.T) {
	t.Parallel()

	sources := []Descriptor{
		sourceDescriptor(44100, 2),
		sourceDescriptor(48000, 1),
		sourceDescriptor(22050, 6),
	}

	for _, src := range sources {
		aac, err := Build(src, CodecAAC, ContainerM4A, BuildOptions{})
		if err != nil {
			t.Fatalf("Build(AAC) error = %v", err)
		}
		if aac.Format.FramesPerPacket != 1024 {
			t.Errorf("AAC frames per packet = %d, want 1024", aac.Format.FramesPerPacket)
		}
		if aac.Format.Flags != FlagAACLowComplexity {
			t.Errorf("AAC flags = %v, want AAC-LC", aac.Format.Flags)
		}
		if aac.Format.SampleRate != src.SampleRate {
			t.Errorf("AAC sample rate = %v, want %v", aac.Format.SampleRate, src.SampleRate)
		}

		alac, err := Build(src, CodecAppleLossless, ContainerM4A, BuildOptions{})
		if err != nil {
			t.Fatalf("Build(ALAC) error = %v", err)
		}
		if alac.Format.FramesPerPacket != 4096 || alac.Format.Flags != 0 {
			t.Errorf("ALAC = %s, want 4096 frames per packet and no flags", alac.Format)
		}

		ima, err := Build(src, CodecIMA4, ContainerAIFC, BuildOptions{})
		if err != nil {
			t.Fatalf("Build(IMA4) error = %v", err)
		}
		if ima.Format.BytesPerPacket != 34 || ima.Format.FramesPerPacket != 64 {
			t.Errorf("IMA4 = %s, want 34 bytes / 64 frames per packet", ima.Format)
		}
		if ima.Format.BitsPerChannel != 16 || ima.Format.BytesPerFrame != 2 {
			t.Errorf("IMA4 = %s, want 16 bits and 2 bytes per frame", ima.Format)
		}

		flac, err := Build(src, CodecFLAC, ContainerFLAC, BuildOptions{})
		if err != nil {
			t.Fatalf("Build(FLAC) error = %v", err)
		}
		if flac.Format.BitsPerChannel != 16 || flac.Format.BytesPerFrame != 0 || flac.Format.BytesPerPacket != 0 || flac.Format.FramesPerPacket != 0 {
			t.Errorf("FLAC = %s, want 16 bits with variable sizes", flac.Format)
		}
	}
}

func TestBuild_LinearPCM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		container Container
		opts      BuildOptions
		wantRate  float64
		bigEndian bool
	}{
		{name: "wav normalizes rate", container: ContainerWAVE, wantRate: 44100},
		{name: "aiff is big-endian", container: ContainerAIFF, wantRate: 44100, bigEndian: true},
		{name: "aifc uncompressed is big-endian", container: ContainerAIFC, wantRate: 44100, bigEndian: true},
		{name: "au is big-endian", container: ContainerAU, wantRate: 44100, bigEndian: true},
		{name: "caf little-endian", container: ContainerCAF, wantRate: 44100},
		{name: "custom rate", container: ContainerWAVE, opts: BuildOptions{PCMSampleRate: 16000}, wantRate: 16000},
		{name: "keep source rate", container: ContainerWAVE, opts: BuildOptions{KeepPCMRate: true}, wantRate: 48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dst, err := Build(sourceDescriptor(48000, 2), CodecLinearPCM, tt.container, tt.opts)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			f := dst.Format
			if f.SampleRate != tt.wantRate {
				t.Errorf("sample rate = %v, want %v", f.SampleRate, tt.wantRate)
			}
			if f.BitsPerChannel != 16 || f.BytesPerFrame != 4 || f.BytesPerPacket != 4 || f.FramesPerPacket != 1 {
				t.Errorf("format = %s, want 16-bit stereo packed", f)
			}
			if !f.Flags.Has(FlagPacked | FlagSignedInteger) {
				t.Errorf("flags = %v, want packed|signed", f.Flags)
			}
			if f.IsBigEndian() != tt.bigEndian {
				t.Errorf("big-endian = %v, want %v", f.IsBigEndian(), tt.bigEndian)
			}
			if err := f.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestBuild_ClientFormat(t *testing.T) {
	t.Parallel()

	dst, err := Build(sourceDescriptor(48000, 2), CodecLinearPCM, ContainerWAVE, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	c := dst.Client
	if !c.IsFloat() || c.BitsPerChannel != 32 {
		t.Errorf("client = %s, want 32-bit float", c)
	}
	if c.SampleRate != 48000 {
		t.Errorf("client sample rate = %v, want source rate 48000", c.SampleRate)
	}
	if c.Channels != 2 || c.BytesPerFrame != 8 {
		t.Errorf("client = %s, want 2 channels and 8 bytes per frame", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("client Validate() error = %v", err)
	}
}

func TestBuild_ChannelOverride(t *testing.T) {
	t.Parallel()

	dst, err := Build(sourceDescriptor(44100, 2), CodecLinearPCM, ContainerWAVE, BuildOptions{Channels: 1})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if dst.Format.Channels != 1 || dst.Format.BytesPerFrame != 2 {
		t.Errorf("format = %s, want mono", dst.Format)
	}
	if dst.Client.Channels != 1 {
		t.Errorf("client channels = %d, want 1", dst.Client.Channels)
	}
}

func TestBuild_UnknownCodec(t *testing.T) {
	t.Parallel()

	src := sourceDescriptor(32000, 2)

	dst, err := Build(src, CodecVorbis, ContainerOgg, BuildOptions{})
	if err != nil {
		t.Fatalf("permissive Build() error = %v", err)
	}
	if !dst.Format.IsLinearPCM() || dst.Format.BitsPerChannel != 16 || dst.Format.SampleRate != 32000 {
		t.Errorf("fallback = %s, want 16-bit PCM at source rate", dst.Format)
	}

	_, err = Build(src, CodecVorbis, ContainerOgg, BuildOptions{Strict: true})
	if !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("strict Build() error = %v, want ErrUnsupportedCodec", err)
	}
}

func TestBuild_BitRate(t *testing.T) {
	t.Parallel()

	src := sourceDescriptor(44100, 2)

	std, _ := Build(src, CodecAAC, ContainerM4A, BuildOptions{})
	high, _ := Build(src, CodecAAC, ContainerM4A, BuildOptions{Quality: QualityHigh})
	pcm, _ := Build(src, CodecLinearPCM, ContainerWAVE, BuildOptions{Quality: QualityHigh})

	if std.BitRate != 128000 {
		t.Errorf("standard bitrate = %d, want 128000", std.BitRate)
	}
	if high.BitRate != 96000 {
		t.Errorf("high bitrate = %d, want 96000", high.BitRate)
	}
	if pcm.BitRate != 0 {
		t.Errorf("pcm bitrate = %d, want 0", pcm.BitRate)
	}
}

func TestBuild_InvalidSource(t *testing.T) {
	t.Parallel()

	_, err := Build(Descriptor{SampleRate: 44100, Codec: CodecLinearPCM}, CodecAAC, ContainerM4A, BuildOptions{})
	if !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("Build() error = %v, want ErrInvalidDescriptor", err)
	}
}

func TestDescriptor_Validate(t *testing.T) {
	t.Parallel()

	bad := sourceDescriptor(44100, 2)
	bad.BytesPerFrame = 3

	if err := bad.Validate(); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("Validate() error = %v, want ErrInvalidDescriptor", err)
	}

	compressed := Descriptor{SampleRate: 44100, Codec: CodecAAC, Channels: 2, FramesPerPacket: 1024}
	if err := compressed.Validate(); err != nil {
		t.Errorf("compressed Validate() error = %v", err)
	}
}

func TestDescriptor_DurationFrames(t *testing.T) {
	t.Parallel()

	d := sourceDescriptor(44100, 2)
	if got := d.DurationFrames(5); got != 220500 {
		t.Errorf("DurationFrames(5) = %d, want 220500", got)
	}
	if got := d.DurationFrames(-1); got != 0 {
		t.Errorf("DurationFrames(-1) = %d, want 0", got)
	}
}

func BenchmarkBuild(b *testing.B) {
	src := sourceDescriptor(44100, 2)

	b.ReportAllocs()

	for b.Loop() {
		_, _ = Build(src, CodecAAC, ContainerM4A, BuildOptions{})
	}
}
