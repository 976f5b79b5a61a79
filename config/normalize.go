// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if c.Convert.BufferBytes == 0 {
		c.Convert.BufferBytes = defaultBufferBytes
	}
	if c.Convert.ProgressInterval == 0 {
		c.Convert.ProgressInterval = defaultProgressInterval
	}

	c.Convert.TempDir = strings.TrimSpace(c.Convert.TempDir)
	if c.Convert.TempDir != "" {
		dir, err := expandPath(c.Convert.TempDir)
		if err != nil {
			return err
		}
		c.Convert.TempDir = dir
	}

	c.normalizeFFmpeg()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.FFmpegPath = strings.TrimSpace(c.FFmpeg.FFmpegPath)
	if c.FFmpeg.FFmpegPath == "" {
		if value, ok := os.LookupEnv("FFMPEG_PATH"); ok && strings.TrimSpace(value) != "" {
			c.FFmpeg.FFmpegPath = strings.TrimSpace(value)
		} else {
			c.FFmpeg.FFmpegPath = defaultFFmpegPath
		}
	}
	c.FFmpeg.FFprobePath = strings.TrimSpace(c.FFmpeg.FFprobePath)
	if c.FFmpeg.FFprobePath == "" {
		if value, ok := os.LookupEnv("FFPROBE_PATH"); ok && strings.TrimSpace(value) != "" {
			c.FFmpeg.FFprobePath = strings.TrimSpace(value)
		} else {
			c.FFmpeg.FFprobePath = defaultFFprobePath
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Output = strings.TrimSpace(c.Logging.Output)
	if c.Logging.Output == "" {
		c.Logging.Output = defaultLogOutput
	}
}
