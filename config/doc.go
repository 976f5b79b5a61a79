// SPDX-License-Identifier: EPL-2.0

// Package config loads the converter settings from a TOML file.
//
// Missing files are not an error: Load returns Default with exists set to
// false so callers can offer CreateSample.
package config
