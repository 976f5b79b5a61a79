// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/ik5/audconv/codec"
	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/logging"
)

const stageLockRetry = 50 * time.Millisecond

// Stager re-muxes sources the provider cannot read into a container it can,
// at a deterministic temporary path.
type Stager struct {
	Exporter codec.Exporter
	// Dir holds the staged files. Empty means os.TempDir().
	Dir    string
	Logger *slog.Logger
}

// Staged is a re-muxed copy of a source. Release removes it.
type Staged struct {
	Path      string
	Container formats.Container

	lock *flock.Flock
}

// StagePath returns where source is staged for container c.
func (st *Stager) StagePath(source string, c formats.Container) string {
	dir := st.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+".remux"+c.Extension())
}

// Stage picks the first container of readable the exporter can re-mux
// source into and exports it there. The staging path is locked for the
// lifetime of the returned Staged, and any stale file at it is removed
// before the export starts.
func (st *Stager) Stage(ctx context.Context, source string, readable []formats.Container) (*Staged, error) {
	if st.Exporter == nil {
		return nil, fmt.Errorf("%w: no exporter for re-mux", ErrCannotOpenSource)
	}

	offered, err := st.Exporter.CompatibleContainers(ctx, source)
	if err != nil {
		return nil, wrap(ErrCannotOpenSource, err)
	}

	target := formats.ContainerUnknown
	for _, c := range readable {
		if slices.Contains(offered, c) {
			target = c
			break
		}
	}
	if target == formats.ContainerUnknown {
		return nil, fmt.Errorf("%w: no readable container among %v", ErrFormatNotCompatible, offered)
	}

	path := st.StagePath(source, target)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, wrap(ErrCannotCreateDestination, err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, stageLockRetry)
	if err != nil || !locked {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, wrap(ErrCancelled, ctxErr)
		}
		return nil, wrap(ErrCannotCreateDestination, fmt.Errorf("lock %s: %w", path, err))
	}

	staged := &Staged{Path: path, Container: target, lock: lock}
	if err := removeIfExists(path); err != nil {
		return nil, errors.Join(wrap(ErrCannotCreateDestination, err), staged.Release())
	}

	logging.Component(st.Logger, "stager").Debug("re-muxing source",
		slog.String(logging.FieldSource, source),
		slog.String("staged", path),
	)

	if err := st.Exporter.Export(ctx, codec.ExportJob{
		Source:      source,
		Destination: path,
		Container:   target,
	}); err != nil {
		kind := ErrCannotOpenSource
		if ctx.Err() != nil {
			kind = ErrCancelled
		}
		return nil, errors.Join(wrap(kind, err), staged.Release())
	}
	return staged, nil
}

// Release removes the staged file and drops the lock. It is safe to call
// more than once.
func (s *Staged) Release() error {
	if s == nil || s.lock == nil {
		return nil
	}
	err := removeIfExists(s.Path)
	err = errors.Join(err, s.lock.Unlock())
	s.lock = nil
	return err
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
