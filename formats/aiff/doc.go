// SPDX-License-Identifier: EPL-2.0

// Package aiff reads and writes AIFF files through github.com/go-audio/aiff.
//
// AIFF-C input is accepted when its compression type is NONE or twos, which
// is plain big-endian PCM. IMA4 and the other compressed AIFF-C variants are
// rejected with ErrUnsupportedAiffLayout.
//
// The frame count from the COMM chunk is exposed through audio.Describer.
package aiff
