// SPDX-License-Identifier: EPL-2.0

// Package ffmpeg implements codec.Exporter on top of the ffmpeg and ffprobe
// command line tools.
//
// CompatibleContainers asks ffprobe for the codec of the first audio stream
// and maps it to the containers that can carry that codec as is. Export runs
// ffmpeg with "-c:a copy", so no decode or encode pass happens, and turns the
// "-progress pipe:1" output into fractions when the duration is known.
// Cancelling the context kills the ffmpeg process.
package ffmpeg
