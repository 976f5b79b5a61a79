// SPDX-License-Identifier: EPL-2.0

package config

const (
	defaultBufferBytes      = 65536
	defaultProgressInterval = 10
	defaultPCMSampleRate    = 44100
	defaultFastPath         = true
	defaultFFmpegEnabled    = true
	defaultFFmpegPath       = "ffmpeg"
	defaultFFprobePath      = "ffprobe"
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
	defaultLogOutput        = "stderr"
	defaultConfigPath       = "~/.config/audconv/config.toml"
	projectConfigName       = "audconv.toml"

	maxPCMSampleRate = 384000
	minBufferBytes   = 64
)

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		Convert: Convert{
			BufferBytes:      defaultBufferBytes,
			ProgressInterval: defaultProgressInterval,
			PCMSampleRate:    defaultPCMSampleRate,
			FastPath:         defaultFastPath,
		},
		FFmpeg: FFmpeg{
			Enabled:     defaultFFmpegEnabled,
			FFmpegPath:  defaultFFmpegPath,
			FFprobePath: defaultFFprobePath,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			Output: defaultLogOutput,
		},
	}
}
