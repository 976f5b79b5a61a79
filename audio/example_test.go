// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"fmt"
	"io"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/internal/audiotest"
)

func countSamples(src audio.Source) int {
	buf := make([]float32, 4096)
	total := 0
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if err != nil {
			if err != io.EOF {
				fmt.Printf("Error: %v\n", err)
			}
			return total
		}
	}
}

// Example_resampler normalizes one second of 48kHz audio to 44.1kHz.
func Example_resampler() {
	source := audiotest.NewSineSource(48000, 1, 48000, 440.0)
	resampler := audio.NewResampler(source, 44100)

	fmt.Printf("Output sample rate: %d Hz\n", resampler.SampleRate())
	fmt.Printf("Ratio: %.4f\n", resampler.Ratio())
	fmt.Printf("Total samples read: %d\n", countSamples(resampler))
	// Output:
	// Output sample rate: 44100 Hz
	// Ratio: 1.0884
	// Total samples read: 44100
}

// Example_processingChain folds stereo to mono and then doubles the rate.
func Example_processingChain() {
	source := audiotest.NewSineSource(22050, 2, 22050, 440.0)

	mono := audio.NewMonoMixer(source)
	out := audio.NewResampler(mono, 44100)

	fmt.Printf("Channels: %d -> %d\n", source.Channels(), out.Channels())
	fmt.Printf("Total samples: %d\n", countSamples(out))
	// Output:
	// Channels: 2 -> 1
	// Total samples: 44100
}

type toneDecoder struct{}

func (toneDecoder) Decode(io.Reader) (audio.Source, error) {
	return audiotest.NewSineSource(16000, 1, 1000, 440.0), nil
}

// Example_registry shows decoder lookup by container key.
func Example_registry() {
	registry := audio.NewRegistry()
	registry.Register("tone", toneDecoder{})

	decoder, ok := registry.Get("tone")
	fmt.Printf("tone: %T %v\n", decoder, ok)

	_, ok = registry.Get("wma")
	fmt.Printf("wma: %v\n", ok)
	// Output:
	// tone: audio_test.toneDecoder true
	// wma: false
}
