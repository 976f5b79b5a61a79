// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// probeResult is the subset of ffprobe's JSON output the exporter reads.
type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Duration   string `json:"duration"`
}

type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

func (e *Exporter) probe(ctx context.Context, path string) (probeResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return probeResult{}, errors.New("ffprobe: empty path")
	}

	cmd := commandContext(ctx, e.ffprobe, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		return probeResult{}, fmt.Errorf("ffprobe %s: %w%s", path, err, stderrOf(err))
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return probeResult{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// audio returns the first audio stream.
func (r probeResult) audio() (probeStream, bool) {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "audio") {
			return s, true
		}
	}
	return probeStream{}, false
}

// duration prefers the audio stream length over the container length.
func (r probeResult) duration() time.Duration {
	if s, ok := r.audio(); ok {
		if d := parseSeconds(s.Duration); d > 0 {
			return d
		}
	}
	return parseSeconds(r.Format.Duration)
}

func parseSeconds(value string) time.Duration {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || parsed <= 0 {
		return 0
	}
	return time.Duration(parsed * float64(time.Second))
}
