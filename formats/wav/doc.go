// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF WAVE files with integer PCM samples.
//
// Decoding and encoding go through github.com/go-audio/wav. The decoder
// accepts 8, 16, 24 and 32 bit PCM (including WAVE_FORMAT_EXTENSIBLE) and
// reports the frame count of the data chunk through audio.Describer:
//
//	src, err := wav.Decoder{}.Decode(file)
//	if d, ok := src.(audio.Describer); ok {
//	    fmt.Println(d.Info().TotalFrames)
//	}
//
// The encoder returns an audio.Sink; its Close patches the RIFF sizes but
// leaves the underlying file open.
package wav
