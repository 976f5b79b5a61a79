// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"errors"
	"fmt"
)

// Terminal error kinds of a conversion. Every error returned by Pump.Run,
// FastPath.Run and reported through Session wraps exactly one of them.
var (
	ErrCannotOpenSource        = errors.New("cannot open source")
	ErrCannotCreateDestination = errors.New("cannot create destination")
	ErrFormatNegotiationFailed = errors.New("format negotiation failed")
	ErrFormatNotCompatible     = errors.New("format not compatible")
	ErrCannotConvert           = errors.New("cannot convert")
	ErrCancelled               = errors.New("conversion cancelled")

	// ErrFinalizeFailed is a close failure while draining.
	ErrFinalizeFailed = fmt.Errorf("%w: finalize failed", ErrCannotConvert)
	// ErrUnsupportedCodec is a destination codec without a construction rule.
	ErrUnsupportedCodec = fmt.Errorf("%w: unsupported codec", ErrCannotConvert)

	// ErrDuplicateSession is returned when registering a session twice.
	ErrDuplicateSession = errors.New("session already registered")
)

// wrap tags cause with kind.
func wrap(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}
