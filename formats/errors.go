// SPDX-License-Identifier: EPL-2.0

package formats

import "errors"

var (
	// ErrUnknownFileType indicates a tag outside the supported file type set.
	ErrUnknownFileType = errors.New("unknown file type")

	// ErrUnsupportedCodec indicates the destination codec has no construction rule.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrInvalidDescriptor indicates a descriptor breaks its own size invariants.
	ErrInvalidDescriptor = errors.New("invalid sample format descriptor")
)
