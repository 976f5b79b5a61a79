// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func near(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		y    [4]float32
		x    float32
		want float32
		tol  float32
	}{
		{"start is y1", [4]float32{0, 1, 2, 3}, 0, 1, 1e-6},
		{"end is y2", [4]float32{0, 1, 2, 3}, 1, 2, 1e-6},
		{"linear ramp stays linear", [4]float32{1, 2, 3, 4}, 0.25, 2.25, 1e-6},
		{"symmetric crossing", [4]float32{-1, -0.5, 0.5, 1}, 0.5, 0, 1e-6},
		{"near a peak", [4]float32{0.5, 0.9, 0.7, 0.3}, 0.3, 0.8904, 1e-4},
		{"flat", [4]float32{0.25, 0.25, 0.25, 0.25}, 0.7, 0.25, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y[0], tt.y[1], tt.y[2], tt.y[3], tt.x)
			if !near(got, tt.want, tt.tol) {
				t.Errorf("CubicInterpolate(%v, %v) = %v, want %v", tt.y, tt.x, got, tt.want)
			}
		})
	}
}

func TestCubicInterpolateEndpoints(t *testing.T) {
	t.Parallel()

	for i := range 64 {
		base := float32(i) * 0.03
		y := [4]float32{base, base + 0.5, base - 0.25, base + 1}
		if got := CubicInterpolate(y[0], y[1], y[2], y[3], 0); !near(got, y[1], 1e-6) {
			t.Fatalf("x=0: got %v, want %v", got, y[1])
		}
		if got := CubicInterpolate(y[0], y[1], y[2], y[3], 1); !near(got, y[2], 1e-5) {
			t.Fatalf("x=1: got %v, want %v", got, y[2])
		}
	}
}

func TestCubicFrame(t *testing.T) {
	// Not parallel: testing.AllocsPerRun panics when called from a parallel test.
	y0 := []float32{0, 10, -1}
	y1 := []float32{1, 20, -2}
	y2 := []float32{2, 30, -3}
	y3 := []float32{3, 40, -4}

	dst := make([]float32, 3)
	CubicFrame(dst, y0, y1, y2, y3, 0.5)

	want := []float32{1.5, 25, -2.5}
	for c := range dst {
		if !near(dst[c], want[c], 1e-5) {
			t.Errorf("channel %d = %v, want %v", c, dst[c], want[c])
		}
	}

	allocs := testing.AllocsPerRun(100, func() {
		CubicFrame(dst, y0, y1, y2, y3, 0.25)
	})
	if allocs > 0 {
		t.Errorf("CubicFrame allocated %v times, want 0", allocs)
	}
}

func BenchmarkCubicFrame(b *testing.B) {
	y0 := []float32{0.1, -0.1}
	y1 := []float32{0.5, -0.5}
	y2 := []float32{0.3, -0.3}
	y3 := []float32{-0.2, 0.2}
	dst := make([]float32, 2)

	b.ReportAllocs()
	var x float32
	for b.Loop() {
		CubicFrame(dst, y0, y1, y2, y3, x)
		x += 0.01
		if x > 1 {
			x = 0
		}
	}
}
