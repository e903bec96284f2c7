// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
)

// Put modes
const (
	// OverWrite replaces any existing object
	OverWrite = false

	// NoOverWrite refuses to replace an existing object
	NoOverWrite = true
)

// Store implementations know how to write objects to a K/V model.
//
// Keys are slash-separated paths. Typically this is something file system-like.
// Implementations of this interface are assumed to be fairly simple.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(context.Context, string, io.Reader, bool) error
	Delete(context.Context, string) error
	Keys(context.Context) ([]string, error)
	KeysPrefix(context.Context, string) ([]string, error)
	HasPrefix(context.Context, string) (bool, error)
	Clear(context.Context) error
}

// Copy streams an object from a source store to a destination store
func Copy(ctx context.Context, sStore Store, source string, dStore Store, destination string, exclusive bool) error {
	reader, err := sStore.Get(ctx, source)
	if err != nil {
		return err
	}
	defer reader.Close()
	return dStore.Put(ctx, destination, reader, exclusive)
}

// ReadAll reads a whole object into memory
func ReadAll(ctx context.Context, store Store, key string) ([]byte, error) {
	reader, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
