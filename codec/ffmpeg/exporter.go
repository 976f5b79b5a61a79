// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ik5/audconv/codec"
	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/logging"
)

var commandContext = exec.CommandContext

// ErrNoAudioStream is returned when the probed source has no audio stream.
var ErrNoAudioStream = errors.New("no audio stream")

// muxers maps containers to ffmpeg muxer names.
var muxers = map[formats.Container]string{
	formats.ContainerM4A:  "ipod",
	formats.ContainerADTS: "adts",
	formats.ContainerCAF:  "caf",
	formats.ContainerFLAC: "flac",
	formats.ContainerMP3:  "mp3",
	formats.ContainerWAVE: "wav",
	formats.ContainerAIFF: "aiff",
	formats.ContainerAIFC: "aiff",
	formats.ContainerAU:   "au",
	formats.ContainerOgg:  "ogg",
}

// Option configures the Exporter.
type Option func(*Exporter)

// WithFFmpeg overrides the ffmpeg binary.
func WithFFmpeg(binary string) Option {
	return func(e *Exporter) {
		if binary = strings.TrimSpace(binary); binary != "" {
			e.ffmpeg = binary
		}
	}
}

// WithFFprobe overrides the ffprobe binary.
func WithFFprobe(binary string) Option {
	return func(e *Exporter) {
		if binary = strings.TrimSpace(binary); binary != "" {
			e.ffprobe = binary
		}
	}
}

// WithLogger sets the exporter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Exporter re-muxes audio with ffmpeg stream copy.
type Exporter struct {
	ffmpeg  string
	ffprobe string
	logger  *slog.Logger
}

// New constructs an Exporter using the binaries found on PATH by default.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		ffmpeg:  "ffmpeg",
		ffprobe: "ffprobe",
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Available reports whether both binaries can be resolved.
func (e *Exporter) Available() bool {
	if _, err := exec.LookPath(e.ffmpeg); err != nil {
		return false
	}
	_, err := exec.LookPath(e.ffprobe)
	return err == nil
}

// CompatibleContainers probes the first audio stream of source and returns
// the containers that can carry its codec unchanged.
func (e *Exporter) CompatibleContainers(ctx context.Context, source string) ([]formats.Container, error) {
	res, err := e.probe(ctx, source)
	if err != nil {
		return nil, err
	}
	stream, ok := res.audio()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoAudioStream, source)
	}
	return containersFor(stream.CodecName), nil
}

// containersFor lists the containers able to hold codec without re-encoding.
func containersFor(codecName string) []formats.Container {
	name := strings.ToLower(strings.TrimSpace(codecName))
	switch {
	case name == "aac":
		return []formats.Container{formats.ContainerM4A, formats.ContainerADTS, formats.ContainerCAF}
	case name == "alac":
		return []formats.Container{formats.ContainerM4A, formats.ContainerCAF}
	case name == "flac":
		return []formats.Container{formats.ContainerFLAC, formats.ContainerCAF}
	case name == "mp3":
		return []formats.Container{formats.ContainerMP3, formats.ContainerCAF}
	case name == "vorbis":
		return []formats.Container{formats.ContainerOgg}
	case name == "adpcm_ima_qt":
		return []formats.Container{formats.ContainerAIFC, formats.ContainerCAF}
	case name == "pcm_u8" || (strings.HasPrefix(name, "pcm_") && strings.HasSuffix(name, "le")):
		return []formats.Container{formats.ContainerWAVE, formats.ContainerCAF}
	case name == "pcm_s8" || (strings.HasPrefix(name, "pcm_") && strings.HasSuffix(name, "be")):
		return []formats.Container{formats.ContainerAIFF, formats.ContainerAIFC, formats.ContainerCAF, formats.ContainerAU}
	default:
		return nil
	}
}

// Export runs ffmpeg with stream copy. The destination is overwritten.
// Quality is not applied: stream copy keeps the source bitrate.
func (e *Exporter) Export(ctx context.Context, job codec.ExportJob) error {
	muxer, ok := muxers[job.Container]
	if !ok {
		return fmt.Errorf("%w: %s", codec.ErrUnsupportedContainer, job.Container)
	}
	if job.Source == "" || job.Destination == "" {
		return errors.New("ffmpeg export: source and destination required")
	}

	total := job.Duration
	if total <= 0 && job.Progress != nil {
		if res, err := e.probe(ctx, job.Source); err == nil {
			total = res.duration() - job.Start
		}
	}

	args := exportArgs(job, muxer)
	logger := e.logger.With(
		slog.String(logging.FieldSource, job.Source),
		slog.String(logging.FieldDestination, job.Destination),
	)
	logger.Debug("ffmpeg export starting",
		slog.String("muxer", muxer),
		slog.String("quality", job.Quality.String()),
	)

	cmd := commandContext(ctx, e.ffmpeg, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	progressErr := readProgress(stdout, total, job.Progress)
	waitErr := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if waitErr != nil {
		msg := strings.TrimSpace(stderr.String())
		logger.Debug("ffmpeg export failed", logging.Error(waitErr), slog.String("stderr", msg))
		return fmt.Errorf("ffmpeg export: %w: %s", waitErr, msg)
	}
	if progressErr != nil {
		return fmt.Errorf("read ffmpeg progress: %w", progressErr)
	}
	return nil
}

func exportArgs(job codec.ExportJob, muxer string) []string {
	args := []string{"-hide_banner", "-nostdin", "-v", "error", "-y"}
	if job.Start > 0 {
		args = append(args, "-ss", seconds(job.Start))
	}
	args = append(args, "-i", job.Source)
	if job.Duration > 0 {
		args = append(args, "-t", seconds(job.Duration))
	}
	return append(args,
		"-map", "0:a:0",
		"-vn",
		"-c:a", "copy",
		"-f", muxer,
		"-progress", "pipe:1",
		job.Destination,
	)
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func stderrOf(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return ": " + strings.TrimSpace(string(exitErr.Stderr))
	}
	return ""
}

var _ codec.Exporter = (*Exporter)(nil)
