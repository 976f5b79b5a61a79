// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// Buffer size errors. Interleaved buffers must hold whole frames.
var (
	// ErrInvalidDstSize is returned by readers given a destination that
	// does not hold a whole number of frames.
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	// ErrInvalidSrcSize is returned by sinks given a partial frame.
	ErrInvalidSrcSize = errors.New("src size must be multiple of channels")
)
