// SPDX-License-Identifier: EPL-2.0

// Package codec defines the boundary between the conversion engine and the
// code that actually demuxes, decodes and encodes audio.
//
// A Provider opens Reader and Writer streams. Both ends exchange frames in a
// client format negotiated with SetClientFormat, which for every provider in
// this module is packed 32-bit float linear PCM:
//
//	r, err := p.OpenReader("in.mp3")
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	client := formats.ClientFormat(r.Format().SampleRate, r.Format().Channels)
//	if err := r.SetClientFormat(client); err != nil {
//		return err
//	}
//
// An Exporter performs passthrough re-muxing for codecs that need no decode
// pass. CompatibleContainers must be consulted before Export.
//
// Implementations live in the native and ffmpeg subpackages.
package codec
