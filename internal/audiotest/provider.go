// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/ik5/audconv/codec"
	"github.com/ik5/audconv/formats"
)

// Failure selects where a Provider injects an error.
type Failure int

const (
	FailNone Failure = iota
	FailOpenReader
	FailOpenWriter
	FailReaderClient
	FailWriterClient
	FailRead
	FailWrite
	FailWriterClose
)

// ErrInjected is returned by every injected failure.
var ErrInjected = errors.New("injected failure")

// Output records what a Provider writer received.
type Output struct {
	Container formats.Container
	Format    formats.Descriptor
	Client    formats.Descriptor
	Frames    int64
	Writes    int
	Closed    bool
}

type sourceSpec struct {
	format formats.Descriptor
	frames int
	noHint bool
}

// Provider is an in-memory codec.Provider. Sources are sine waves registered
// with AddSource; writers record what they receive.
type Provider struct {
	mu       sync.Mutex
	sources  map[string]sourceSpec
	outputs  map[string]*Output
	reads    map[string]int
	readable []formats.Container

	// Fail injects ErrInjected at one step. FailRead and FailWrite trigger
	// after FailAfter successful calls.
	Fail      Failure
	FailAfter int

	// Gate, when set, is received from before every ReadFrames call.
	Gate chan struct{}

	// OnRead runs after each ReadFrames call with the number of calls so
	// far on that path.
	OnRead func(path string, reads int)
}

func NewProvider() *Provider {
	return &Provider{
		sources:  make(map[string]sourceSpec),
		outputs:  make(map[string]*Output),
		reads:    make(map[string]int),
		readable: []formats.Container{formats.ContainerWAVE, formats.ContainerAIFF, formats.ContainerCAF},
	}
}

// SetReadable replaces the containers reported by ReadableContainers.
func (p *Provider) SetReadable(cs ...formats.Container) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readable = cs
}

// AddSource registers a 16-bit linear PCM source at path.
func (p *Provider) AddSource(path string, sampleRate float64, channels, frames int) {
	p.addSource(path, sampleRate, channels, frames, false)
}

// AddSourceNoHint registers a source that reports no length hint.
func (p *Provider) AddSourceNoHint(path string, sampleRate float64, channels, frames int) {
	p.addSource(path, sampleRate, channels, frames, true)
}

func (p *Provider) addSource(path string, sampleRate float64, channels, frames int, noHint bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sources[path] = sourceSpec{
		format: formats.Descriptor{
			SampleRate:      sampleRate,
			Codec:           formats.CodecLinearPCM,
			Flags:           formats.FlagPacked | formats.FlagSignedInteger,
			BytesPerPacket:  2 * channels,
			FramesPerPacket: 1,
			BytesPerFrame:   2 * channels,
			Channels:        channels,
			BitsPerChannel:  16,
		},
		frames: frames,
		noHint: noHint,
	}
}

// Output returns what was written to path.
func (p *Provider) Output(path string) (Output, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	o, ok := p.outputs[path]
	if !ok {
		return Output{}, false
	}
	return *o, true
}

// Reads returns the number of ReadFrames calls made on path.
func (p *Provider) Reads(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads[path]
}

func (p *Provider) ReadableContainers() []formats.Container {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]formats.Container(nil), p.readable...)
}

func (p *Provider) OpenReader(path string) (codec.Reader, error) {
	if p.Fail == FailOpenReader {
		return nil, ErrInjected
	}

	p.mu.Lock()
	spec, ok := p.sources[path]
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", codec.ErrUnsupportedContainer, filepath.Base(path))
	}

	return &fakeReader{
		p:    p,
		path: path,
		spec: spec,
		src:  NewSineSource(int(spec.format.SampleRate), spec.format.Channels, spec.frames, 440),
	}, nil
}

func (p *Provider) OpenWriter(path string, c formats.Container, dst formats.Descriptor) (codec.Writer, error) {
	if p.Fail == FailOpenWriter {
		return nil, ErrInjected
	}
	if dst.Channels <= 0 {
		return nil, formats.ErrInvalidDescriptor
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.outputs[path] = &Output{Container: c, Format: dst}
	return &fakeWriter{p: p, path: path}, nil
}

type fakeReader struct {
	p      *Provider
	path   string
	spec   sourceSpec
	src    *MockSource
	client *formats.Descriptor
	eof    bool
	closed bool
}

func (r *fakeReader) Format() formats.Descriptor { return r.spec.format }

func (r *fakeReader) SetClientFormat(d formats.Descriptor) error {
	if r.p.Fail == FailReaderClient {
		return ErrInjected
	}
	if !d.IsFloat() || d.Channels != r.spec.format.Channels || d.SampleRate != r.spec.format.SampleRate {
		return fmt.Errorf("%w: %s", codec.ErrClientFormat, d)
	}
	r.client = &d
	return nil
}

func (r *fakeReader) ReadFrames(buf []float32, maxFrames int) (int, error) {
	if r.closed {
		return 0, codec.ErrClosed
	}
	if r.client == nil {
		return 0, codec.ErrClientFormat
	}
	if r.p.Gate != nil {
		<-r.p.Gate
	}

	r.p.mu.Lock()
	r.p.reads[r.path]++
	reads := r.p.reads[r.path]
	r.p.mu.Unlock()
	if r.p.OnRead != nil {
		defer r.p.OnRead(r.path, reads)
	}

	if r.p.Fail == FailRead && reads > r.p.FailAfter {
		return 0, ErrInjected
	}
	if r.eof {
		return 0, io.EOF
	}

	ch := r.client.Channels
	n, err := r.src.ReadSamples(buf[:maxFrames*ch])
	if errors.Is(err, io.EOF) {
		r.eof = true
	}
	return n / ch, nil
}

func (r *fakeReader) TotalFrames() (int64, bool) {
	if r.spec.noHint {
		return 0, false
	}
	return int64(r.src.Frames()), true
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

type fakeWriter struct {
	p      *Provider
	path   string
	client *formats.Descriptor
	writes int
	closed bool
}

func (w *fakeWriter) SetClientFormat(d formats.Descriptor) error {
	if w.p.Fail == FailWriterClient {
		return ErrInjected
	}
	if !d.IsFloat() {
		return fmt.Errorf("%w: %s", codec.ErrClientFormat, d)
	}
	w.client = &d

	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	w.p.outputs[w.path].Client = d
	return nil
}

func (w *fakeWriter) WriteFrames(buf []float32, frames int) error {
	if w.closed {
		return codec.ErrClosed
	}
	if w.client == nil {
		return codec.ErrClientFormat
	}
	if frames*w.client.Channels > len(buf) {
		return fmt.Errorf("write %d frames from %d samples", frames, len(buf))
	}
	w.writes++
	if w.p.Fail == FailWrite && w.writes > w.p.FailAfter {
		return ErrInjected
	}

	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	o := w.p.outputs[w.path]
	o.Frames += int64(frames)
	o.Writes++
	return nil
}

func (w *fakeWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.p.mu.Lock()
	w.p.outputs[w.path].Closed = true
	w.p.mu.Unlock()

	if w.p.Fail == FailWriterClose {
		return ErrInjected
	}
	return nil
}

var _ codec.Provider = (*Provider)(nil)
