// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM plumbing shared by every codec.
//
// Samples are interleaved float32 values in [-1.0, 1.0]. A Source is pulled
// with ReadSamples and reports io.EOF once drained; a Sink is pushed with
// WriteSamples and finalized with Close.
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    if n > 0 {
//	        sink.WriteSamples(buf[:n])
//	    }
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
//
// Resampler converts between sample rates with cubic interpolation and a
// one-pole low-pass when downsampling. A source may answer (0, nil) when it
// has nothing buffered, and the Resampler resumes where it stopped on the next
// call, so it can sit behind a push fed queue.
//
// MonoMixer averages all channels of each frame.
//
// Registry maps container keys ("wav", "aiff", "mp3", "ogg", ...) to Decoder
// and Encoder implementations.
package audio
