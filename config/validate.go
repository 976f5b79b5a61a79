// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConvert() error {
	if c.Convert.BufferBytes < minBufferBytes {
		return fmt.Errorf("convert.buffer_bytes must be at least %d", minBufferBytes)
	}
	if c.Convert.ProgressInterval <= 0 {
		return errors.New("convert.progress_interval must be positive")
	}
	if c.Convert.PCMSampleRate < 0 || c.Convert.PCMSampleRate > maxPCMSampleRate {
		return fmt.Errorf("convert.pcm_sample_rate must be between 0 and %d", maxPCMSampleRate)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
