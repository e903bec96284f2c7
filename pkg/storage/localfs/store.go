// Copyright © 2018 One Concern

package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oneconcern/depot/pkg/errors"
	"github.com/oneconcern/depot/pkg/storage"
	"github.com/oneconcern/depot/pkg/storage/status"
	"github.com/spf13/afero"
)

// staging area for atomic puts, within the afero.Fs itself
const nestedPutStageName = ".put-stage"

// errFound stops a walk at the first key
var errFound = errors.New("found")

// Option configures a local file system store
type Option func(*localFS)

// Atomic makes Put()s atomic: objects are written in a staging area, then
// Rename()d into place. This holds for file systems where Rename() is atomic.
func Atomic(enabled bool) Option {
	return func(l *localFS) {
		l.atomic = enabled
	}
}

// New creates a new local file system backed storage model.
//
// When no file system is specified, the store is rooted at ".depot" in the current directory.
func New(fs afero.Fs, opts ...Option) storage.Store {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), ".depot")
	}
	l := &localFS{
		fs: fs,
	}
	for _, apply := range opts {
		apply(l)
	}
	return l
}

// NewAt creates a local file system store rooted at some directory on the OS file system
func NewAt(root string, opts ...Option) storage.Store {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), root), opts...)
}

type localFS struct {
	fs     afero.Fs
	atomic bool
}

func toPath(key string) string {
	return filepath.FromSlash(strings.TrimPrefix(path.Clean("/"+key), "/"))
}

func toKey(pth string) string {
	return strings.TrimPrefix(filepath.ToSlash(pth), "/")
}

func invalidKey(key string) error {
	k := toKey(toPath(key))
	if k == "" || k == "." {
		return status.ErrInvalidResource.Detailf("empty key %q", key)
	}
	if k == nestedPutStageName || strings.HasPrefix(k, nestedPutStageName+"/") {
		return status.ErrInvalidResource.Detailf("key %q conflicts with put staging area name %q", key, nestedPutStageName)
	}
	return nil
}

func (l *localFS) Has(ctx context.Context, key string) (bool, error) {
	if err := invalidKey(key); err != nil {
		return false, err
	}
	fi, err := l.fs.Stat(toPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !fi.IsDir(), nil
}

func (l *localFS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	has, err := l.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, status.ErrNotExists.Detailf("%q in %s", key, l.String())
	}
	return l.fs.Open(toPath(key))
}

func (l *localFS) Put(ctx context.Context, key string, source io.Reader, exclusive bool) error {
	if err := invalidKey(key); err != nil {
		return err
	}
	if exclusive {
		has, err := l.Has(ctx, key)
		if err != nil {
			return err
		}
		if has {
			return status.ErrExists.Detailf("%q in %s", key, l.String())
		}
	}

	target := toPath(key)
	if !l.atomic {
		return l.write(target, source)
	}

	staged := filepath.Join(nestedPutStageName, target)
	if err := l.write(staged, source); err != nil {
		return err
	}
	// Rename() doesn't create directories automatically
	if err := l.fs.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return fmt.Errorf("ensuring directories for %q: %w", key, err)
	}
	return l.fs.Rename(staged, target)
}

func (l *localFS) write(pth string, source io.Reader) error {
	if err := l.fs.MkdirAll(filepath.Dir(pth), 0700); err != nil {
		return fmt.Errorf("ensuring directories for %q: %w", pth, err)
	}
	target, err := l.fs.OpenFile(pth, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create record for %q: %w", pth, err)
	}
	if _, err = io.Copy(target, source); err != nil {
		_ = target.Close()
		return fmt.Errorf("write record for %q: %w", pth, err)
	}
	return target.Close()
}

func (l *localFS) Delete(ctx context.Context, key string) error {
	if err := invalidKey(key); err != nil {
		return err
	}
	if err := l.fs.Remove(toPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %q: %w", key, err)
	}
	return nil
}

func (l *localFS) Keys(ctx context.Context) ([]string, error) {
	return l.walk(".")
}

// KeysPrefix lists the keys located under some directory-like prefix
func (l *localFS) KeysPrefix(ctx context.Context, prefix string) ([]string, error) {
	root := toPath(prefix)
	fi, err := l.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	if !fi.IsDir() {
		return []string{toKey(root)}, nil
	}
	return l.walk(root)
}

// HasPrefix tells if at least one key is located under some directory-like prefix.
//
// The walk stops at the first key found.
func (l *localFS) HasPrefix(ctx context.Context, prefix string) (bool, error) {
	root := toPath(prefix)
	fi, err := l.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !fi.IsDir() {
		return toKey(root) != nestedPutStageName, nil
	}
	e := afero.Walk(l.fs, root, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if toKey(filepath.Clean(pth)) == nestedPutStageName {
				return filepath.SkipDir
			}
			return nil
		}
		return errFound
	})
	switch {
	case e == nil:
		return false, nil
	case errors.Is(e, errFound):
		return true, nil
	default:
		return false, e
	}
}

func (l *localFS) walk(root string) ([]string, error) {
	res := []string{}
	e := afero.Walk(l.fs, root, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && pth == root {
				return filepath.SkipDir
			}
			return err
		}
		key := toKey(filepath.Clean(pth))
		if info.IsDir() {
			if key == nestedPutStageName {
				return filepath.SkipDir
			}
			return nil
		}
		res = append(res, key)
		return nil
	})
	if e != nil {
		return nil, e
	}
	sort.Strings(res)
	return res, nil
}

func (l *localFS) Clear(ctx context.Context) error {
	entries, err := afero.ReadDir(l.fs, ".")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if err := l.fs.RemoveAll(entry.Name()); err != nil {
			return err
		}
	}
	return nil
}

func (l *localFS) String() string {
	const localfs = "localfs"
	switch fs := l.fs.(type) {
	case *afero.BasePathFs:
		pp, err := fs.RealPath("")
		if err != nil {
			return localfs
		}
		return localfs + "@" + pp
	case *afero.MemMapFs:
		return localfs + "@memory"
	default:
		return localfs
	}
}
