// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds test doubles: generated audio sources, an
// in-memory codec.Provider with failure injection and a scripted
// codec.Exporter.
package audiotest
