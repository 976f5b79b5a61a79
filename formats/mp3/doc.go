// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio with
// github.com/hajimehoshi/go-mp3.
//
// The decoder output is always 16-bit stereo at the stream's sample rate.
// When the input is an io.Seeker the stream length is known up front and is
// reported through audio.Describer; otherwise TotalFrames is zero.
//
// Encoding MP3 is not supported here.
package mp3
