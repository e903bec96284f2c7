// Copyright © 2018 One Concern

package repo

import (
	"bytes"
	"context"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/oneconcern/depot/pkg/core/status"
	"github.com/oneconcern/depot/pkg/errors"
	"github.com/oneconcern/depot/pkg/model"
	"github.com/oneconcern/depot/pkg/storage"
	"github.com/oneconcern/depot/pkg/storage/localfs"
	storagestatus "github.com/oneconcern/depot/pkg/storage/status"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	infoDir     = "info"
	packagesDir = "packages"
)

// Option configures a repository home
type Option func(*Home)

// Logger sets the logger for the home. Defaults to a no-op logger.
func Logger(l *zap.Logger) Option {
	return func(h *Home) {
		if l != nil {
			h.l = l
		}
	}
}

// Concurrency sets the max number of files copied in parallel on import. Defaults to #cpus.
func Concurrency(n int) Option {
	return func(h *Home) {
		if n > 0 {
			h.concurrency = n
		}
	}
}

// Home is the version repository: a store for metadata and a store for binaries
type Home struct {
	info        storage.Store
	packages    storage.Store
	l           *zap.Logger
	concurrency int
	statusMx    sync.Mutex
}

// New repository home over an info store and a packages store
func New(info, packages storage.Store, opts ...Option) *Home {
	h := &Home{
		info:        info,
		packages:    packages,
		l:           zap.NewNop(),
		concurrency: runtime.NumCPU(),
	}
	for _, apply := range opts {
		apply(h)
	}
	return h
}

// Open a repository home located in some local directory.
//
// Storage calls are logged at debug level.
func Open(root string, opts ...Option) *Home {
	h := New(
		localfs.NewAt(filepath.Join(root, infoDir), localfs.Atomic(true)),
		localfs.NewAt(filepath.Join(root, packagesDir), localfs.Atomic(true)),
		opts...,
	)
	h.info = storage.Instrument(h.l, h.info)
	h.packages = storage.Instrument(h.l, h.packages)
	return h
}

func metadataKey(id string) string {
	return path.Join(id, model.MetadataFileName)
}

// String representation of the home
func (h *Home) String() string {
	return "info: " + h.info.String() + ", packages: " + h.packages.String()
}

// Has tells if a version exists in this home
func (h *Home) Has(ctx context.Context, id string) (bool, error) {
	return h.info.Has(ctx, metadataKey(id))
}

// Resolve a version by its id
func (h *Home) Resolve(ctx context.Context, id string) (*Version, error) {
	data, err := storage.ReadAll(ctx, h.info, metadataKey(id))
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) || errors.Is(err, storagestatus.ErrInvalidResource) {
			return nil, status.ErrNotFound.Detailf("%q", id)
		}
		return nil, err
	}

	metadata, err := model.Decode(data)
	if err != nil {
		return nil, err
	}
	if metadata.VersionID != id {
		return nil, model.ErrValidation.Detailf("metadata stored for %q declares version_id %q", id, metadata.VersionID)
	}

	hasBinaries, err := h.packages.HasPrefix(ctx, id)
	if err != nil {
		return nil, err
	}
	var binaries *Binaries
	if hasBinaries {
		binaries = NewBinaries(h.packages, id)
	}
	return NewVersion(metadata, binaries), nil
}

// Versions lists the ids of all versions in this home, in lexicographic order
func (h *Home) Versions(ctx context.Context) ([]string, error) {
	keys, err := h.info.Keys(ctx)
	if err != nil {
		return nil, err
	}
	suffix := "/" + model.MetadataFileName
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if id := strings.TrimSuffix(key, suffix); id != key {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Import copies a version with all its declared files into this home.
//
// Binaries are copied first and the metadata is written last.
// An existing version is never replaced.
func (h *Home) Import(ctx context.Context, v *Version) error {
	if err := v.Metadata.Validate(); err != nil {
		return err
	}
	has, err := h.Has(ctx, v.ID)
	if err != nil {
		return err
	}
	if has {
		return storagestatus.ErrExists.Detailf("version %q", v.ID)
	}
	if len(v.Metadata.Files) > 0 && v.Binaries == nil {
		return status.ErrMissingBinaries.Detailf("version '%s'", v.ID)
	}

	l := h.l.With(zap.String("version", v.ID))
	l.Info("importing version", zap.Int("files", len(v.Metadata.Files)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for _, file := range v.Metadata.Files {
		file := file
		g.Go(func() error {
			source := v.Binaries.Path(file.Path)
			l.Debug("importing file", zap.String("path", file.Path), zap.Stringer("source", source))
			return storage.Copy(gctx, source.store, source.Key(), h.packages, path.Join(v.ID, file.Path), storage.OverWrite)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	data, err := v.Metadata.Encode()
	if err != nil {
		return err
	}
	return h.info.Put(ctx, metadataKey(v.ID), bytes.NewReader(data), storage.NoOverWrite)
}
