// SPDX-License-Identifier: EPL-2.0

// Package transcode runs conversions.
//
// A Pump opens a source and a destination through a codec.Provider,
// negotiates the packed float client format on both ends and copies
// bounded buffers until the source is exhausted:
//
//	opening -> negotiating -> pumping -> draining -> closed
//
// Any failure or a cancellation moves it straight to closed after both
// streams are released. The buffer holds BufferBytes of client format, so
// a source of N frames takes ceil(N/capacity) round trips. Progress is
// reported every ProgressInterval reads when the source has a length hint.
//
// A FastPath hands a passthrough re-mux to a codec.Exporter instead. It
// refuses to start, without touching the destination, when the exporter
// does not offer the target container.
//
// A Session wraps one conversion with an identity, write-once progress and
// completion callbacks, and Done/Err/Wait. Sessions live in a Registry while
// they run and leave it exactly once when they finish.
//
// Cancellation is cooperative: the pump checks its flag once per buffer,
// and the fast path cancels the exporter's context.
//
// Every terminal error wraps one of the Err kinds of this package.
package transcode
