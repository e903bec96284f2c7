// Copyright © 2018 One Concern

package repo

import (
	"context"
	"io"
	"path"
	"path/filepath"

	"github.com/oneconcern/depot/pkg/model"
	"github.com/oneconcern/depot/pkg/storage"
	"github.com/oneconcern/depot/pkg/storage/localfs"
	"github.com/spf13/afero"
)

// Version of a component, with its metadata and a handle on its binaries.
//
// Binaries is nil when the version has no physical files.
type Version struct {
	ID       string
	Metadata *model.Metadata
	Binaries *Binaries
}

// NewVersion builds a version from its metadata
func NewVersion(metadata *model.Metadata, binaries *Binaries) *Version {
	return &Version{
		ID:       metadata.VersionID,
		Metadata: metadata,
		Binaries: binaries,
	}
}

// NewVersionFromFile loads a transient version from a metadata file.
//
// Binaries are looked up in inputDir, or in the directory of the metadata file
// when inputDir is empty.
func NewVersionFromFile(fs afero.Fs, metadataFile, inputDir string) (*Version, error) {
	metadata, err := model.LoadFile(fs, metadataFile)
	if err != nil {
		return nil, err
	}
	if inputDir == "" {
		inputDir = filepath.Dir(metadataFile)
	}
	return NewVersion(metadata, NewBinaries(localfs.New(subFs(fs, inputDir)), "")), nil
}

func subFs(fs afero.Fs, dir string) afero.Fs {
	if dir = filepath.Clean(dir); dir == "." {
		return fs
	}
	return afero.NewBasePathFs(fs, dir)
}

// Binaries locates the physical files of a version
type Binaries struct {
	store  storage.Store
	prefix string
}

// NewBinaries builds a binaries handle for all objects under some prefix in a store
func NewBinaries(store storage.Store, prefix string) *Binaries {
	return &Binaries{store: store, prefix: prefix}
}

// String representation of where the binaries are stored
func (b *Binaries) String() string {
	if b.prefix == "" {
		return b.store.String()
	}
	return Locator{store: b.store, key: b.prefix}.String()
}

// Path returns the locator of a file, relative to the binaries root
func (b *Binaries) Path(rel string) Locator {
	return Locator{store: b.store, key: path.Join(b.prefix, rel)}
}

// Locator is an opaque handle on the physical source of a file
type Locator struct {
	store storage.Store
	key   string
}

// Key of the object in its store
func (l Locator) Key() string {
	return l.key
}

// Open the physical source for reading
func (l Locator) Open(ctx context.Context) (io.ReadCloser, error) {
	return l.store.Get(ctx, l.key)
}

// Exists tells if the physical source is present
func (l Locator) Exists(ctx context.Context) (bool, error) {
	return l.store.Has(ctx, l.key)
}

func (l Locator) String() string {
	if l.store == nil {
		return l.key
	}
	return l.store.String() + ":" + l.key
}
