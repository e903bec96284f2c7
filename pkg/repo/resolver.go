// Copyright © 2018 One Concern

package repo

import (
	"context"

	"github.com/oneconcern/depot/pkg/core/status"
)

// Resolver knows how to find a version from its identifier.
//
// Implementations return an error matching status.ErrNotFound for unknown versions.
type Resolver interface {
	Resolve(context.Context, string) (*Version, error)
}

// ResolverFunc adapts a function into a Resolver
type ResolverFunc func(context.Context, string) (*Version, error)

// Resolve a version
func (f ResolverFunc) Resolve(ctx context.Context, id string) (*Version, error) {
	return f(ctx, id)
}

// WithVersions makes a resolver which knows about some extra versions,
// e.g. a version loaded from a metadata file which is not imported yet.
//
// Extra versions shadow the ones known by the base resolver. The base resolver may be nil.
func WithVersions(base Resolver, versions ...*Version) Resolver {
	known := make(map[string]*Version, len(versions))
	for _, v := range versions {
		known[v.ID] = v
	}
	return ResolverFunc(func(ctx context.Context, id string) (*Version, error) {
		if v, ok := known[id]; ok {
			return v, nil
		}
		if base == nil {
			return nil, status.ErrNotFound.Detailf("%q", id)
		}
		return base.Resolve(ctx, id)
	})
}
