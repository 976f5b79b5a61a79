// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audconv/audio"
)

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("This is not AIFF data")},
		{"empty", nil},
		{"riff", []byte("RIFF\x24\x00\x00\x00WAVEfmt ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
			}
		})
	}
}

func TestEncoder_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		rate      int
		channels  int
		bitDepth  int
		tolerance float64
	}{
		{"16 bit stereo", 44100, 2, 16, 1.0 / 16384},
		{"24 bit mono", 48000, 1, 24, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			const frames = 512
			in := make([]float32, frames*tt.channels)
			for i := range in {
				in[i] = float32(0.5 * math.Cos(float64(i)/7))
			}

			path := filepath.Join(t.TempDir(), "clip.aiff")
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			sink, err := Encoder{}.Encode(f, tt.rate, tt.channels, tt.bitDepth)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if err := sink.WriteSamples(in); err != nil {
				t.Fatalf("WriteSamples() error = %v", err)
			}
			if err := sink.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			f.Close()

			rf, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer rf.Close()

			src, err := Decoder{}.Decode(rf)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if src.SampleRate() != tt.rate || src.Channels() != tt.channels {
				t.Errorf("format = %d Hz/%d ch, want %d Hz/%d ch",
					src.SampleRate(), src.Channels(), tt.rate, tt.channels)
			}
			if info := src.(audio.Describer).Info(); info.TotalFrames != frames {
				t.Errorf("Info().TotalFrames = %d, want %d", info.TotalFrames, frames)
			}

			buf := make([]float32, 100*tt.channels)
			var out []float32
			for {
				n, err := src.ReadSamples(buf)
				out = append(out, buf[:n]...)
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("ReadSamples() error = %v", err)
				}
			}

			if len(out) != len(in) {
				t.Fatalf("read %d samples, want %d", len(out), len(in))
			}
			for i := range in {
				if math.Abs(float64(out[i]-in[i])) > tt.tolerance {
					t.Fatalf("sample[%d] = %v, want %v", i, out[i], in[i])
				}
			}
		})
	}
}

func TestEncoder_UnsupportedBitDepth(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "bad.aiff"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := (Encoder{}).Encode(f, 44100, 2, 4); !errors.Is(err, ErrUnsupportedBitDepth) {
		t.Errorf("Encode(4 bits) error = %v, want ErrUnsupportedBitDepth", err)
	}
}
