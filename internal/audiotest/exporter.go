// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"context"
	"os"
	"sync"

	"github.com/ik5/audconv/codec"
	"github.com/ik5/audconv/formats"
)

// Exporter is a scripted codec.Exporter. Export writes a small file at the
// job destination unless ExportErr is set.
type Exporter struct {
	mu   sync.Mutex
	jobs []codec.ExportJob

	// Containers is returned by CompatibleContainers.
	Containers []formats.Container
	ProbeErr   error
	ExportErr  error

	// Progress is reported in order during Export.
	Progress []float64

	// Block makes Export wait for its context to end.
	Block bool
	// Started, when set, is closed once Export starts.
	Started chan struct{}

	// OnExport runs before Export returns successfully.
	OnExport func(job codec.ExportJob) error
}

func (e *Exporter) CompatibleContainers(ctx context.Context, source string) ([]formats.Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.ProbeErr != nil {
		return nil, e.ProbeErr
	}
	return append([]formats.Container(nil), e.Containers...), nil
}

func (e *Exporter) Export(ctx context.Context, job codec.ExportJob) error {
	e.mu.Lock()
	e.jobs = append(e.jobs, job)
	e.mu.Unlock()

	if e.Started != nil {
		close(e.Started)
	}
	for _, f := range e.Progress {
		if job.Progress != nil {
			job.Progress(f)
		}
	}
	if e.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	if e.ExportErr != nil {
		return e.ExportErr
	}
	if err := os.WriteFile(job.Destination, []byte(job.Source), 0o644); err != nil {
		return err
	}
	if e.OnExport != nil {
		return e.OnExport(job)
	}
	return nil
}

// Jobs returns the jobs Export received.
func (e *Exporter) Jobs() []codec.ExportJob {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]codec.ExportJob(nil), e.jobs...)
}

var _ codec.Exporter = (*Exporter)(nil)
