// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audconv/utils"
)

// errStarved reports a source that has no data right now but is not finished.
var errStarved = errors.New("source starved")

// historyCompactFrames is how far the history may grow past the interpolation
// window before consumed frames are discarded.
const historyCompactFrames = 4096

// Resampler streams from src to target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// Includes basic anti-aliasing filtering when downsampling.
//
// A source may return (0, nil) to signal it has nothing buffered yet. The
// resampler then returns what it produced so far with a nil error and resumes
// on the next call, which makes it usable behind push fed queues.
type Resampler struct {
	src      Source
	srcRate  float64
	dstRate  float64
	ratio    float64 // srcRate / dstRate - how many source frames per output frame
	channels int

	// hist holds interleaved source frames starting at absolute frame base.
	hist   []float32
	base   int64
	loaded int64

	// produced counts output frames; its source position is
	// produced*srcRate/dstRate, kept exact with integer math.
	produced int64

	srcBuf []float32
	eof    bool

	// Simple low-pass filter state for anti-aliasing (when downsampling)
	filterState  []float32
	filterPrimed bool
	useFilter    bool
	filterAlpha  float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	// Enable simple low-pass filter when downsampling
	useFilter := ratio > 1.0
	var filterAlpha float32
	if useFilter {
		// One-pole low-pass with cutoff near the destination Nyquist frequency
		filterAlpha = 0.5
	}

	return &Resampler{
		src:         src,
		srcRate:     float64(src.SampleRate()),
		dstRate:     float64(dstRate),
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, 1024*channels),
		useFilter:   useFilter,
		filterAlpha: filterAlpha,
		filterState: make([]float32, channels),
	}
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

// Ratio returns how many source frames make up one output frame.
func (r *Resampler) Ratio() float64 { return r.ratio }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// fill reads from the source until frame index need is loaded or the source
// ends. It returns errStarved when the source has nothing buffered.
func (r *Resampler) fill(need int64) error {
	for r.loaded <= need && !r.eof {
		n, err := r.src.ReadSamples(r.srcBuf)
		frames := n / r.channels
		if frames > 0 {
			chunk := r.srcBuf[:frames*r.channels]
			if r.useFilter {
				r.lowPass(chunk)
			}
			r.hist = append(r.hist, chunk...)
			r.loaded += int64(frames)
		}

		if err == io.EOF {
			r.eof = true
			break
		}
		if err != nil {
			return fmt.Errorf("%w", err)
		}
		if frames == 0 {
			return errStarved
		}
	}

	return nil
}

// lowPass applies y[n] = alpha * x[n] + (1-alpha) * y[n-1] per channel.
func (r *Resampler) lowPass(chunk []float32) {
	if !r.filterPrimed {
		// Start from the first sample to avoid warm-up transients
		copy(r.filterState, chunk[:r.channels])
		r.filterPrimed = true
	}

	for i := 0; i < len(chunk); i += r.channels {
		for c := range r.channels {
			v := r.filterAlpha*chunk[i+c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = v
			chunk[i+c] = v
		}
	}
}

// frame returns source frame idx, clamping to the loaded edges.
func (r *Resampler) frame(idx int64) []float32 {
	if idx < r.base {
		idx = r.base
	}
	if idx >= r.loaded {
		idx = r.loaded - 1
	}
	off := int(idx-r.base) * r.channels
	return r.hist[off : off+r.channels]
}

// compact discards history before frame keepFrom once enough has piled up.
func (r *Resampler) compact(keepFrom int64) {
	if keepFrom-r.base < historyCompactFrames {
		return
	}
	drop := int(keepFrom-r.base) * r.channels
	n := copy(r.hist, r.hist[drop:])
	r.hist = r.hist[:n]
	r.base = keepFrom
}

// ReadSamples produces dst samples at r.dstRate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	src, dstRate := int64(r.srcRate), int64(r.dstRate)

	for written < framesNeeded {
		num := r.produced * src
		i := num / dstRate

		// Cubic interpolation needs the frame after next loaded
		if err := r.fill(i + 2); err != nil {
			if errors.Is(err, errStarved) {
				return written * r.channels, nil
			}
			return written * r.channels, err
		}

		if r.eof && i >= r.loaded {
			// Source exhausted - return what we have
			if written == 0 {
				return 0, io.EOF
			}
			return written * r.channels, io.EOF
		}

		alpha := float32(num%dstRate) / float32(dstRate)
		y0 := r.frame(i - 1)
		y1 := r.frame(i)
		y2 := r.frame(i + 1)
		y3 := r.frame(i + 2)

		utils.CubicFrame(dst[written*r.channels:(written+1)*r.channels], y0, y1, y2, y3, alpha)

		written++
		r.produced++
		r.compact(r.produced*src/dstRate - 1)
	}

	return written * r.channels, nil
}
