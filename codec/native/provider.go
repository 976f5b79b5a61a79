// SPDX-License-Identifier: EPL-2.0

package native

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/codec"
	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/formats/aiff"
	"github.com/ik5/audconv/formats/au"
	"github.com/ik5/audconv/formats/caf"
	"github.com/ik5/audconv/formats/mp3"
	"github.com/ik5/audconv/formats/vorbis"
	"github.com/ik5/audconv/formats/wav"
	"github.com/ik5/audconv/logging"
)

// readOrder is the preference order used when a caller has to pick a
// container to stage a source in.
var readOrder = []formats.Container{
	formats.ContainerWAVE,
	formats.ContainerAIFF,
	formats.ContainerAIFC,
	formats.ContainerMP3,
	formats.ContainerOgg,
	formats.ContainerAU,
	formats.ContainerCAF,
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger used for stream open and close events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRegistry replaces the built in codec registry. Keys are container
// names as returned by formats.Container.String.
func WithRegistry(r *audio.Registry) Option {
	return func(p *Provider) {
		if r != nil {
			p.registry = r
		}
	}
}

// Provider opens streams with the in-process codecs.
type Provider struct {
	registry *audio.Registry
	logger   *slog.Logger
}

// DefaultRegistry returns a registry holding every codec of the formats
// subpackages keyed by container name.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()

	r.Register(formats.ContainerWAVE.String(), wav.Decoder{})
	r.Register(formats.ContainerAIFF.String(), aiff.Decoder{})
	r.Register(formats.ContainerAIFC.String(), aiff.Decoder{})
	r.Register(formats.ContainerMP3.String(), mp3.Decoder{})
	r.Register(formats.ContainerOgg.String(), vorbis.Decoder{})
	r.Register(formats.ContainerAU.String(), au.Decoder{})
	r.Register(formats.ContainerCAF.String(), caf.Decoder{})

	r.RegisterEncoder(formats.ContainerWAVE.String(), wav.Encoder{})
	r.RegisterEncoder(formats.ContainerAIFF.String(), aiff.Encoder{})
	// uncompressed AIFC is written in the plain AIFF form
	r.RegisterEncoder(formats.ContainerAIFC.String(), aiff.Encoder{})
	r.RegisterEncoder(formats.ContainerAU.String(), au.Encoder{})
	r.RegisterEncoder(formats.ContainerCAF.String(), caf.Encoder{})

	return r
}

// New returns a Provider backed by DefaultRegistry unless overridden.
func New(opts ...Option) *Provider {
	p := &Provider{
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = DefaultRegistry()
	}
	return p
}

// ReadableContainers implements codec.Provider.
func (p *Provider) ReadableContainers() []formats.Container {
	out := make([]formats.Container, 0, len(readOrder))
	for _, c := range readOrder {
		if _, ok := p.registry.Get(c.String()); ok {
			out = append(out, c)
		}
	}
	return out
}

// OpenReader opens path with the decoder registered for its extension.
func (p *Provider) OpenReader(path string) (codec.Reader, error) {
	c := formats.ContainerForExtension(filepath.Ext(path))
	dec, ok := p.registry.Get(c.String())
	if !ok {
		return nil, fmt.Errorf("%w: %q", codec.ErrUnsupportedContainer, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("decode %s: %w", path, err), f.Close())
	}

	r := newReader(f, src, c)
	p.logger.Debug("reader opened",
		slog.String("path", path),
		slog.String("format", r.format.String()),
	)
	return r, nil
}

// OpenWriter creates path and prepares an encoder for dst. Only integer
// linear PCM destinations are supported.
func (p *Provider) OpenWriter(path string, c formats.Container, dst formats.Descriptor) (codec.Writer, error) {
	if !dst.IsLinearPCM() || dst.IsFloat() {
		return nil, fmt.Errorf("%w: %s", codec.ErrUnsupportedCodec, dst.Codec)
	}
	if err := dst.Validate(); err != nil {
		return nil, err
	}
	if dst.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %v", formats.ErrInvalidDescriptor, dst.SampleRate)
	}

	enc, ok := p.registry.Encoder(c.String())
	if !ok {
		return nil, fmt.Errorf("%w: %s", codec.ErrUnsupportedContainer, c)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	sink, err := enc.Encode(f, int(dst.SampleRate), dst.Channels, dst.BitsPerChannel)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("encode %s: %w", path, err), f.Close())
	}

	p.logger.Debug("writer opened",
		slog.String("path", path),
		slog.String("container", c.String()),
		slog.String("format", dst.String()),
	)
	return newWriter(f, sink, dst), nil
}

var _ codec.Provider = (*Provider)(nil)
