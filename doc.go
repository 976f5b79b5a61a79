// SPDX-License-Identifier: EPL-2.0

// Package audconv converts audio files between containers and codecs.
//
// A Converter accepts a Request naming a source, a destination and a
// target file type, and returns a *transcode.Session right away. The
// conversion runs on its own goroutine:
//
//	conv := audconv.New(audconv.WithLogger(logger))
//	s, err := conv.Convert(ctx, audconv.Request{
//		Source:      "in.wav",
//		Destination: "out.aiff",
//		FileType:    formats.FileTypeAIFF,
//	})
//	if err != nil {
//		return err
//	}
//	err = s.Wait(ctx)
//
// # Strategies
//
// File types whose codec can be re-muxed (AAC, ALAC, FLAC and CAF) go
// through the exporter first when one is configured. If the exporter cannot
// produce the target container from the source, the conversion falls back
// to the streaming pump, which decodes into 32-bit float frames and encodes
// them again through a codec.Provider.
//
// Sources the provider cannot read are re-muxed by the exporter into a
// container it can read, at a locked temporary path that is removed once
// the session ends.
//
// # Cancellation
//
// Session.Cancel, cancelling the Convert context and Converter.Shutdown all
// stop a conversion within one buffer round trip. A cancelled session
// always reports transcode.ErrCancelled.
//
// # Formats
//
// The formats package holds the file type catalog and the destination
// descriptor rules. The native provider in codec/native reads WAV, AIFF,
// MP3, Ogg Vorbis, AU and CAF and writes linear PCM in WAV, AIFF, AIFC, AU
// and CAF. Compressed destinations need an exporter such as codec/ffmpeg.
package audconv
