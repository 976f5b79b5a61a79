// SPDX-License-Identifier: EPL-2.0

package audconv

import "errors"

var (
	// ErrInvalidRequest is returned by Convert for requests that cannot
	// start a session.
	ErrInvalidRequest = errors.New("invalid conversion request")
	// ErrShutdown is returned by Convert after Shutdown was called.
	ErrShutdown = errors.New("converter is shut down")
)
