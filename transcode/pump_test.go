// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/internal/audiotest"
)

func pcmPlan(src formats.Descriptor) (formats.Destination, error) {
	return formats.Build(src, formats.CodecLinearPCM, formats.ContainerWAVE, formats.BuildOptions{KeepPCMRate: true})
}

func newTestPump(p *audiotest.Provider, progress func(float64)) *Pump {
	return NewPump(PumpConfig{
		Provider:    p,
		Source:      "in.wav",
		Destination: "out.wav",
		Container:   formats.ContainerWAVE,
		Plan:        pcmPlan,
		Progress:    progress,
	})
}

func TestBufferFrames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes    int
		channels int
		want     int
	}{
		{DefaultBufferBytes, 2, 8192},
		{DefaultBufferBytes, 1, 16384},
		{DefaultBufferBytes, 6, 2730},
		{4, 2, 1},
	}

	for _, tt := range tests {
		if got := BufferFrames(tt.bytes, formats.ClientFormat(44100, tt.channels)); got != tt.want {
			t.Errorf("BufferFrames(%d, %dch) = %d, want %d", tt.bytes, tt.channels, got, tt.want)
		}
	}
	if got := BufferFrames(1024, formats.Descriptor{}); got != 1 {
		t.Errorf("BufferFrames(zero descriptor) = %d, want 1", got)
	}
}

func TestPumpProcessesAllFrames(t *testing.T) {
	t.Parallel()

	const capacity = 8192

	tests := []struct {
		name   string
		frames int
	}{
		{"empty", 0},
		{"one frame", 1},
		{"under one buffer", capacity - 1},
		{"exactly one buffer", capacity},
		{"one frame over", capacity + 1},
		{"five seconds", 5 * 44100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := audiotest.NewProvider()
			p.AddSource("in.wav", 44100, 2, tt.frames)

			pump := newTestPump(p, nil)
			if err := pump.Run(); err != nil {
				t.Fatalf("Run() error: %v", err)
			}

			stats := pump.Stats()
			wantTrips := int64((tt.frames + capacity - 1) / capacity)
			if stats.ProcessedFrames != int64(tt.frames) {
				t.Errorf("ProcessedFrames = %d, want %d", stats.ProcessedFrames, tt.frames)
			}
			if stats.RoundTrips != wantTrips {
				t.Errorf("RoundTrips = %d, want %d", stats.RoundTrips, wantTrips)
			}
			if stats.Reads != wantTrips+1 {
				t.Errorf("Reads = %d, want %d", stats.Reads, wantTrips+1)
			}
			if stats.BufferFrames != capacity {
				t.Errorf("BufferFrames = %d, want %d", stats.BufferFrames, capacity)
			}
			if pump.State() != PumpClosed {
				t.Errorf("State() = %v, want closed", pump.State())
			}

			out, ok := p.Output("out.wav")
			if !ok {
				t.Fatal("no output recorded")
			}
			if out.Frames != int64(tt.frames) || !out.Closed {
				t.Errorf("output frames=%d closed=%v, want %d true", out.Frames, out.Closed, tt.frames)
			}
			if !out.Client.IsFloat() || out.Client.SampleRate != 44100 {
				t.Errorf("writer client format = %s", out.Client)
			}
		})
	}
}

func TestPumpProgressCadence(t *testing.T) {
	t.Parallel()

	const capacity = 8192

	p := audiotest.NewProvider()
	p.AddSource("in.wav", 44100, 2, 25*capacity)

	var got []float64
	pump := newTestPump(p, func(f float64) { got = append(got, f) })
	if err := pump.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if want := []float64{10.0 / 25, 20.0 / 25}; !slices.Equal(got, want) {
		t.Errorf("progress = %v, want %v", got, want)
	}
}

func TestPumpProgressWithoutHint(t *testing.T) {
	t.Parallel()

	p := audiotest.NewProvider()
	p.AddSourceNoHint("in.wav", 44100, 2, 30*8192)

	called := false
	pump := newTestPump(p, func(float64) { called = true })
	if err := pump.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if called {
		t.Error("progress reported without a length hint")
	}
	if pump.ProcessedFrames() != 30*8192 {
		t.Errorf("ProcessedFrames() = %d", pump.ProcessedFrames())
	}
}

func TestPumpErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fail      audiotest.Failure
		kind      error
		outClosed bool
	}{
		{"open reader", audiotest.FailOpenReader, ErrCannotOpenSource, false},
		{"open writer", audiotest.FailOpenWriter, ErrCannotCreateDestination, false},
		{"reader client", audiotest.FailReaderClient, ErrFormatNegotiationFailed, true},
		{"writer client", audiotest.FailWriterClient, ErrFormatNegotiationFailed, true},
		{"read", audiotest.FailRead, ErrCannotConvert, true},
		{"write", audiotest.FailWrite, ErrCannotConvert, true},
		{"close", audiotest.FailWriterClose, ErrFinalizeFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := audiotest.NewProvider()
			p.AddSource("in.wav", 44100, 2, 4*8192)
			p.Fail = tt.fail
			p.FailAfter = 2

			err := newTestPump(p, nil).Run()
			if !errors.Is(err, tt.kind) {
				t.Fatalf("Run() error = %v, want %v", err, tt.kind)
			}
			if !errors.Is(err, audiotest.ErrInjected) {
				t.Errorf("Run() error = %v, cause lost", err)
			}
			if out, ok := p.Output("out.wav"); ok && out.Closed != tt.outClosed {
				t.Errorf("writer closed = %v, want %v", out.Closed, tt.outClosed)
			}
		})
	}
}

func TestPumpFinalizeIsCannotConvert(t *testing.T) {
	t.Parallel()

	if !errors.Is(ErrFinalizeFailed, ErrCannotConvert) || !errors.Is(ErrUnsupportedCodec, ErrCannotConvert) {
		t.Fatal("specific kinds must wrap ErrCannotConvert")
	}
}

func TestPumpMissingSource(t *testing.T) {
	t.Parallel()

	err := newTestPump(audiotest.NewProvider(), nil).Run()
	if !errors.Is(err, ErrCannotOpenSource) {
		t.Errorf("Run() error = %v, want ErrCannotOpenSource", err)
	}
}

func TestPumpStrictPlan(t *testing.T) {
	t.Parallel()

	p := audiotest.NewProvider()
	p.AddSource("in.wav", 44100, 2, 100)

	pump := NewPump(PumpConfig{
		Provider:    p,
		Source:      "in.wav",
		Destination: "out.wav",
		Container:   formats.ContainerWAVE,
		Plan: func(src formats.Descriptor) (formats.Destination, error) {
			return formats.Build(src, formats.CodecVorbis, formats.ContainerOgg, formats.BuildOptions{Strict: true})
		},
	})
	if err := pump.Run(); !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("Run() error = %v, want ErrUnsupportedCodec", err)
	}
	if _, ok := p.Output("out.wav"); ok {
		t.Error("destination opened after planning failed")
	}
}

func TestPumpCancelMidStream(t *testing.T) {
	t.Parallel()

	const capacity = 8192

	p := audiotest.NewProvider()
	p.AddSource("in.wav", 44100, 2, 20*capacity)

	var mu sync.Mutex
	var progress []float64
	pump := NewPump(PumpConfig{
		Provider:         p,
		Source:           "in.wav",
		Destination:      "out.wav",
		Container:        formats.ContainerWAVE,
		Plan:             pcmPlan,
		ProgressInterval: 1,
		Progress: func(f float64) {
			mu.Lock()
			progress = append(progress, f)
			mu.Unlock()
		},
	})
	p.OnRead = func(_ string, reads int) {
		if reads == 3 {
			pump.Cancel()
		}
	}

	if err := pump.Run(); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Run() error = %v, want ErrCancelled", err)
	}

	// the read that observed the cancel is still written
	if got := pump.ProcessedFrames(); got != 3*capacity {
		t.Errorf("ProcessedFrames() = %d, want %d", got, 3*capacity)
	}
	if len(progress) != 2 {
		t.Errorf("progress calls = %d, want 2 (none after cancel)", len(progress))
	}
	if out, _ := p.Output("out.wav"); !out.Closed {
		t.Error("writer not released after cancel")
	}
}

func TestPumpCancelledBeforeRun(t *testing.T) {
	t.Parallel()

	p := audiotest.NewProvider()
	p.AddSource("in.wav", 44100, 2, 100)

	pump := newTestPump(p, nil)
	pump.Cancel()
	if err := pump.Run(); !errors.Is(err, ErrCancelled) {
		t.Errorf("Run() error = %v, want ErrCancelled", err)
	}
	if p.Reads("in.wav") != 0 {
		t.Error("source read after cancellation")
	}
}

func TestPumpContextStops(t *testing.T) {
	t.Parallel()

	const capacity = 8192

	p := audiotest.NewProvider()
	p.AddSource("in.wav", 44100, 2, 50*capacity)

	ctx, cancel := context.WithCancel(t.Context())
	p.OnRead = func(_ string, reads int) {
		if reads == 2 {
			cancel()
		}
	}

	pump := NewPump(PumpConfig{
		Provider:    p,
		Source:      "in.wav",
		Destination: "out.wav",
		Container:   formats.ContainerWAVE,
		Plan:        pcmPlan,
		Context:     ctx,
	})
	if err := pump.Run(); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Run() error = %v, want ErrCancelled", err)
	}
	if got := pump.ProcessedFrames(); got != 2*capacity {
		t.Errorf("ProcessedFrames() = %d, want %d", got, 2*capacity)
	}
	if out, _ := p.Output("out.wav"); !out.Closed {
		t.Error("destination not closed after context cancellation")
	}
}

func TestPumpTimeRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		start    time.Duration
		duration time.Duration
		want     int64
	}{
		{"window", time.Second, 2 * time.Second, 88200},
		{"start only", 9 * time.Second, 0, 44100},
		{"past the end", 12 * time.Second, time.Second, 0},
		{"longer than source", 0, time.Minute, 441000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := audiotest.NewProvider()
			p.AddSource("in.wav", 44100, 2, 441000)

			pump := NewPump(PumpConfig{
				Provider:    p,
				Source:      "in.wav",
				Destination: "out.wav",
				Container:   formats.ContainerWAVE,
				Plan:        pcmPlan,
				Start:       tt.start,
				Duration:    tt.duration,
			})
			if err := pump.Run(); err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if got := pump.ProcessedFrames(); got != tt.want {
				t.Errorf("ProcessedFrames() = %d, want %d", got, tt.want)
			}
			if got := pump.Stats().TotalFrames; got != tt.want {
				t.Errorf("TotalFrames = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPumpStateString(t *testing.T) {
	t.Parallel()

	if PumpPumping.String() != "pumping" || PumpState(42).String() != "unknown" {
		t.Error("unexpected PumpState names")
	}
}

func BenchmarkPump(b *testing.B) {
	p := audiotest.NewProvider()
	p.AddSource("in.wav", 44100, 2, 10*44100)

	for b.Loop() {
		if err := newTestPump(p, nil).Run(); err != nil {
			b.Fatal(err)
		}
	}
}
