package core

import (
	"context"

	"github.com/oneconcern/depot/pkg/core/status"
	"github.com/oneconcern/depot/pkg/match"
	"github.com/oneconcern/depot/pkg/repo"
	"go.uber.org/zap"
)

// FileLister knows how to compute the complete file map of a version
type FileLister interface {
	FileList(context.Context, string, ...Option) (FileMap, error)
}

var _ FileLister = &Finder{}

// Finder resolves the files of a version, including those contributed by its dependencies
type Finder struct {
	resolver repo.Resolver
	settings Settings
}

// NewFinder builds a file finder. Options given here apply to every listing.
func NewFinder(resolver repo.Resolver, opts ...Option) *Finder {
	return &Finder{
		resolver: resolver,
		settings: newSettings(opts...),
	}
}

// FileList returns the virtual path to physical source mapping of a version.
//
// Dependencies are merged in declaration order: on a path collision, the last
// declared dependency wins. The version's own files come next, then its operations
// apply to the whole map.
func (f *Finder) FileList(ctx context.Context, id string, opts ...Option) (FileMap, error) {
	return f.fileList(ctx, id, f.settings.with(opts...))
}

// Find returns the files of a version whose virtual path matches any of the globs
func (f *Finder) Find(ctx context.Context, id string, globs []string, opts ...Option) (FileMap, error) {
	files, err := f.FileList(ctx, id, opts...)
	if err != nil {
		return nil, err
	}
	return files.Filter(globs...)
}

func (f *Finder) fileList(ctx context.Context, id string, settings Settings) (FileMap, error) {
	includes, err := match.Globs(settings.files)
	if err != nil {
		return nil, invalidPattern(err)
	}
	excludes, err := match.Globs(settings.excludeFiles)
	if err != nil {
		return nil, invalidPattern(err)
	}

	w := &Walker{resolver: f.resolver, settings: settings}
	root, err := w.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	r := &resolution{walker: w, includes: includes, excludes: excludes}
	return r.files(ctx, w.Root(root))
}

type resolution struct {
	walker   *Walker
	includes match.List
	excludes match.List
}

func (r *resolution) accept(pth string) bool {
	return (len(r.includes) == 0 || r.includes.Any(pth)) && !r.excludes.Any(pth)
}

func (r *resolution) files(ctx context.Context, node Node) (FileMap, error) {
	dependencies, err := Dependencies(ctx, r.walker, node, r.files)
	if err != nil {
		return nil, err
	}

	res := make(FileMap)
	for _, dep := range dependencies {
		files, err := ApplyOperations(dep.Result, dep.Dependency.Operations)
		if err != nil {
			return nil, err
		}
		res.merge(files)
	}

	v := node.Version
	for _, file := range v.Metadata.Files {
		if v.Binaries == nil {
			return nil, status.ErrMissingBinaries.Detailf("version '%s'", v.ID)
		}
		pth := joinOptional(node.Path, file.Path)
		if !r.accept(pth) {
			continue
		}
		res[pth] = Entry{
			Source:  v.Binaries.Path(file.Path),
			Version: v.ID,
			File:    file,
		}
	}

	res, err = ApplyOperations(res, v.Metadata.Operations)
	if err != nil {
		return nil, err
	}
	r.walker.settings.l.Debug("resolved files",
		zap.String("version", v.ID),
		zap.String("path", node.Path),
		zap.Int("files", len(res)),
	)
	return res, nil
}
