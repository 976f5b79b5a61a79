// SPDX-License-Identifier: EPL-2.0

// Package native is the in-process codec.Provider.
//
// Readers exist for WAV, AIFF and uncompressed AIFC, MP3, Ogg Vorbis, Sun AU
// and linear PCM CAF. Writers produce integer linear PCM in WAV, AIFF, AIFC
// (AIFF form), AU and CAF at the bit depth of the destination descriptor.
// Compressed destinations fail with codec.ErrUnsupportedCodec; those are left
// to a codec.Exporter or another Provider.
//
// Client formats are packed 32-bit float. On the read side a one channel
// client folds the source down with audio.MonoMixer, and a client rate that
// differs from the stored rate goes through audio.Resampler. On the write
// side the resampler converts the client rate to the destination rate, which
// is how the 44.1 kHz normalization of linear PCM destinations happens.
//
//	p := native.New(native.WithLogger(logger))
//	w, err := p.OpenWriter("out.wav", formats.ContainerWAVE, dst.Format)
//	if err != nil {
//		return err
//	}
//	if err := w.SetClientFormat(dst.Client); err != nil {
//		return err
//	}
package native
