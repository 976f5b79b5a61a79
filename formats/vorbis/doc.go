// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
// Samples come out of the codec as float32 already, so the source is a thin
// pass-through. The decoder reports a 32-bit depth and, for seekable inputs,
// the stream length in frames.
package vorbis
