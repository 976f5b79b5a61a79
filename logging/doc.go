// SPDX-License-Identifier: EPL-2.0

// Package logging builds the slog loggers used by the converter and its
// command line front end.
//
// New selects a console (text) or json handler, a level and an output.
// Discard is the default for library types constructed without a logger.
// ProgressSampler keeps progress logging down to one line per bucket.
package logging
