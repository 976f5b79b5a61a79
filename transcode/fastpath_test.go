// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/internal/audiotest"
)

func TestFastPathRefusesIncompatible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		exp  *audiotest.Exporter
	}{
		{"container not offered", &audiotest.Exporter{Containers: []formats.Container{formats.ContainerMP3, formats.ContainerCAF}}},
		{"probe failed", &audiotest.Exporter{ProbeErr: errors.New("ffprobe: not found")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dst := filepath.Join(t.TempDir(), "out.m4a")
			if err := os.WriteFile(dst, []byte("keep"), 0o644); err != nil {
				t.Fatal(err)
			}

			fp := NewFastPath(FastPathConfig{
				Exporter:    tt.exp,
				Source:      "in.mp3",
				Destination: dst,
				Container:   formats.ContainerM4A,
			})
			if err := fp.Run(context.Background()); !errors.Is(err, ErrFormatNotCompatible) {
				t.Fatalf("Run() error = %v, want ErrFormatNotCompatible", err)
			}

			if len(tt.exp.Jobs()) != 0 {
				t.Error("export attempted for an incompatible target")
			}
			if data, err := os.ReadFile(dst); err != nil || string(data) != "keep" {
				t.Errorf("destination touched: %q, %v", data, err)
			}
		})
	}
}

func TestFastPathNoExporter(t *testing.T) {
	t.Parallel()

	if err := NewFastPath(FastPathConfig{}).Compatible(context.Background()); !errors.Is(err, ErrFormatNotCompatible) {
		t.Errorf("Compatible() error = %v, want ErrFormatNotCompatible", err)
	}
}

func TestFastPathExport(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "out.m4a")
	if err := os.WriteFile(dst, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	exp := &audiotest.Exporter{
		Containers: []formats.Container{formats.ContainerM4A, formats.ContainerCAF},
		Progress:   []float64{0.5, 1},
	}
	var progress []float64
	fp := NewFastPath(FastPathConfig{
		Exporter:    exp,
		Source:      "in.m4a",
		Destination: dst,
		Container:   formats.ContainerM4A,
		Quality:     formats.QualityHigh,
		Start:       time.Second,
		Progress:    func(f float64) { progress = append(progress, f) },
	})
	if err := fp.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	jobs := exp.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	job := jobs[0]
	if job.Container != formats.ContainerM4A || job.Quality != formats.QualityHigh || job.Start != time.Second {
		t.Errorf("unexpected job %+v", job)
	}
	if data, _ := os.ReadFile(dst); string(data) != "in.m4a" {
		t.Errorf("destination = %q, want the exported file", data)
	}
	if !slices.Equal(progress, []float64{0.5, 1}) {
		t.Errorf("progress = %v", progress)
	}
}

func TestFastPathExportError(t *testing.T) {
	t.Parallel()

	exp := &audiotest.Exporter{
		Containers: []formats.Container{formats.ContainerFLAC},
		ExportErr:  errors.New("muxer failed"),
	}
	fp := NewFastPath(FastPathConfig{
		Exporter:    exp,
		Source:      "in.flac",
		Destination: filepath.Join(t.TempDir(), "out.flac"),
		Container:   formats.ContainerFLAC,
	})
	if err := fp.Run(context.Background()); !errors.Is(err, ErrCannotConvert) {
		t.Errorf("Run() error = %v, want ErrCannotConvert", err)
	}
}

func TestFastPathCancel(t *testing.T) {
	t.Parallel()

	exp := &audiotest.Exporter{
		Containers: []formats.Container{formats.ContainerCAF},
		Block:      true,
		Started:    make(chan struct{}),
	}
	fp := NewFastPath(FastPathConfig{
		Exporter:    exp,
		Source:      "in.caf",
		Destination: filepath.Join(t.TempDir(), "out.caf"),
		Container:   formats.ContainerCAF,
	})

	done := make(chan error, 1)
	go func() { done <- fp.Run(context.Background()) }()

	<-exp.Started
	fp.Cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("Run() error = %v, want ErrCancelled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("export not cancelled")
	}

	if err := fp.Run(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Errorf("Run() after Cancel error = %v, want ErrCancelled", err)
	}
}
