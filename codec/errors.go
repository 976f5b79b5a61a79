// SPDX-License-Identifier: EPL-2.0

package codec

import "errors"

var (
	// ErrUnsupportedContainer is returned for containers a provider cannot open.
	ErrUnsupportedContainer = errors.New("unsupported container")

	// ErrUnsupportedCodec is returned when a provider cannot encode or decode the codec.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrClientFormat is returned when a client format is rejected or was never set.
	ErrClientFormat = errors.New("client format not accepted")

	// ErrClosed is returned by operations on a closed stream.
	ErrClosed = errors.New("stream closed")
)
