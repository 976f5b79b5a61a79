// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"
)

// drain reads r until io.EOF and returns every sample produced.
func drain(t *testing.T, r Source, bufSize int) []float32 {
	t.Helper()

	buf := make([]float32, bufSize)
	var out []float32
	for range 1_000_000 {
		n, err := r.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	t.Fatal("ReadSamples() never reached io.EOF")
	return nil
}

// pushSource hands out queued samples and reports (0, nil) when the queue is
// empty but not closed.
type pushSource struct {
	rate, channels int
	queue          []float32
	closed         bool
}

func (p *pushSource) SampleRate() int { return p.rate }
func (p *pushSource) Channels() int   { return p.channels }
func (p *pushSource) BufSize() int    { return 4096 }
func (p *pushSource) Close() error    { return nil }

func (p *pushSource) ReadSamples(dst []float32) (int, error) {
	n := copy(dst, p.queue)
	n -= n % p.channels
	p.queue = p.queue[n:]
	if len(p.queue) == 0 && p.closed {
		return n, io.EOF
	}
	return n, nil
}

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	src := newSilentSource(44100, 2, 1000)
	resampler := NewResampler(src, 8000)

	if resampler.SampleRate() != 8000 {
		t.Errorf("Resampler.SampleRate() = %d, want 8000", resampler.SampleRate())
	}
	if resampler.Channels() != 2 {
		t.Errorf("Resampler.Channels() = %d, want 2", resampler.Channels())
	}
	if got := resampler.Ratio(); math.Abs(got-5.5125) > 1e-9 {
		t.Errorf("Resampler.Ratio() = %v, want 5.5125", got)
	}
}

func TestResampler_FrameCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		srcRate  int
		dstRate  int
		channels int
		frames   int
		want     int
	}{
		{"same rate", 8000, 8000, 1, 100, 100},
		{"44.1k to 16k", 44100, 16000, 1, 44100, 16000},
		{"44.1k to 8k stereo", 44100, 8000, 2, 44100, 8000},
		{"8k to 44.1k", 8000, 44100, 1, 8000, 44100},
		{"48k to 44.1k", 48000, 44100, 2, 4800, 4410},
		{"22.05k to 44.1k", 22050, 44100, 2, 3, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newSineSource(tt.srcRate, tt.channels, tt.frames, 440.0)
			out := drain(t, NewResampler(src, tt.dstRate), 1024*tt.channels)

			if got := len(out) / tt.channels; got != tt.want {
				t.Errorf("resampled frames = %d, want %d", got, tt.want)
			}
			for i, s := range out {
				if s < -1.5 || s > 1.5 {
					t.Fatalf("out[%d] = %v, outside [-1.5, 1.5]", i, s)
				}
			}
		})
	}
}

func TestResampler_SameRateIsTransparent(t *testing.T) {
	t.Parallel()

	src := newMockSource(8000, 1, 64, func(sample, _ int) float32 {
		return float32(sample) / 64
	})
	out := drain(t, NewResampler(src, 8000), 16)

	for i, s := range out {
		want := float32(i) / 64
		if math.Abs(float64(s-want)) > 1e-6 {
			t.Fatalf("out[%d] = %v, want %v", i, s, want)
		}
	}
}

func TestResampler_StereoPreserved(t *testing.T) {
	t.Parallel()

	src := newMockSource(44100, 2, 1000, func(_ int, channel int) float32 {
		if channel == 0 {
			return 0.3
		}
		return 0.7
	})
	out := drain(t, NewResampler(src, 8000), 20)

	for f := 0; f+1 < len(out); f += 2 {
		if math.Abs(float64(out[f]-0.3)) > 1e-3 {
			t.Fatalf("frame %d left = %v, want 0.3", f/2, out[f])
		}
		if math.Abs(float64(out[f+1]-0.7)) > 1e-3 {
			t.Fatalf("frame %d right = %v, want 0.7", f/2, out[f+1])
		}
	}
}

func TestResampler_StarvedSourceResumes(t *testing.T) {
	t.Parallel()

	src := &pushSource{rate: 22050, channels: 1}
	resampler := NewResampler(src, 44100)
	buf := make([]float32, 256)

	n, err := resampler.ReadSamples(buf)
	if n != 0 || err != nil {
		t.Fatalf("empty queue: ReadSamples() = (%d, %v), want (0, nil)", n, err)
	}

	var out []float32
	for range 10 {
		for i := range 100 {
			src.queue = append(src.queue, float32(i%10)/10)
		}
		for {
			n, err = resampler.ReadSamples(buf)
			if err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			out = append(out, buf[:n]...)
			if n == 0 {
				break
			}
		}
	}

	src.closed = true
	out = append(out, drain(t, resampler, 256)...)

	if len(out) != 2000 {
		t.Errorf("resampled frames = %d, want 2000", len(out))
	}
}

func TestResampler_EOF(t *testing.T) {
	t.Parallel()

	src := newSilentSource(44100, 1, 100)
	resampler := NewResampler(src, 8000)

	if out := drain(t, resampler, 1024); len(out) == 0 {
		t.Error("no samples read before EOF")
	}

	buf := make([]float32, 16)
	n, err := resampler.ReadSamples(buf)
	if err != io.EOF || n != 0 {
		t.Errorf("after EOF, ReadSamples() = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestResampler_EmptySource(t *testing.T) {
	t.Parallel()

	resampler := NewResampler(newSilentSource(44100, 2, 0), 8000)

	n, err := resampler.ReadSamples(make([]float32, 8))
	if err != io.EOF || n != 0 {
		t.Errorf("ReadSamples() = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestResampler_InvalidDstSize(t *testing.T) {
	t.Parallel()

	resampler := NewResampler(newSilentSource(44100, 2, 1000), 8000)

	_, err := resampler.ReadSamples(make([]float32, 7))
	if !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_LongStreamCompactsHistory(t *testing.T) {
	t.Parallel()

	src := newConstantSource(48000, 2, 48000*3, 0.25)
	resampler := NewResampler(src, 44100)
	out := drain(t, resampler, 512)

	if len(out)/2 != 44100*3 {
		t.Errorf("resampled frames = %d, want %d", len(out)/2, 44100*3)
	}
	if len(resampler.hist) > (historyCompactFrames+2048)*2 {
		t.Errorf("history holds %d samples, want it compacted", len(resampler.hist))
	}
}

func TestResampler_Close(t *testing.T) {
	t.Parallel()

	if err := NewResampler(newSilentSource(44100, 2, 1000), 8000).Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func BenchmarkResampler_Downsample(b *testing.B) {
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		resampler := NewResampler(newSineSource(48000, 2, 48000, 440.0), 44100)
		for {
			_, err := resampler.ReadSamples(buf)
			if err != nil {
				break
			}
		}
	}
}

func BenchmarkResampler_Upsample(b *testing.B) {
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		resampler := NewResampler(newSineSource(22050, 2, 22050, 440.0), 44100)
		for {
			_, err := resampler.ReadSamples(buf)
			if err != nil {
				break
			}
		}
	}
}
