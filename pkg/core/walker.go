package core

import (
	"context"
	"path"
	"strings"

	"github.com/oneconcern/depot/pkg/core/status"
	"github.com/oneconcern/depot/pkg/match"
	"github.com/oneconcern/depot/pkg/model"
	"github.com/oneconcern/depot/pkg/repo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Node is the traversal context of a version in a dependency graph
type Node struct {
	Version *repo.Version

	// Dependency is the edge leading to this node, nil for the root
	Dependency *model.Dependency

	// Path is the virtual path prefix of the files contributed by this node. Empty means no prefix.
	Path string

	// DependencyPath is the chain of dependency names leading to this node. Empty means unnamed.
	DependencyPath string

	// Exclusions are the patterns pruning the dependencies of this node: the
	// excluded dependencies of the traversal, then the remove targets declared
	// on the edges leading to this node
	Exclusions []string

	Depth int

	chain   []string
	removed match.List
}

// Visited is a node reached by the traversal, with the result of the visit
type Visited[T any] struct {
	Node
	Result T
}

// VisitFunc is called on every node reached by the traversal
type VisitFunc[T any] func(context.Context, Node) (T, error)

// Walker traverses dependency graphs
type Walker struct {
	resolver repo.Resolver
	settings Settings
}

// NewWalker builds a walker resolving versions with some resolver
func NewWalker(resolver repo.Resolver, opts ...Option) *Walker {
	return &Walker{
		resolver: resolver,
		settings: newSettings(opts...),
	}
}

// Root node of a traversal starting at some version
func (w *Walker) Root(v *repo.Version) Node {
	return Node{
		Version:    v,
		Exclusions: append([]string(nil), w.settings.excludeDependencies...),
		chain:      []string{v.ID},
	}
}

// Resolve a version by id
func (w *Walker) Resolve(ctx context.Context, id string) (*repo.Version, error) {
	return w.resolver.Resolve(ctx, id)
}

// IterateVersions calls fn on every version of the graph, depth first, in order of declaration.
// The root version comes first.
func (w *Walker) IterateVersions(ctx context.Context, v *repo.Version, fn func(Node) error) error {
	nodes, err := w.flatten(ctx, w.Root(v))
	if err != nil {
		return err
	}
	for _, node := range nodes {
		if err := fn(node); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) flatten(ctx context.Context, node Node) ([]Node, error) {
	children, err := Dependencies(ctx, w, node, w.flatten)
	if err != nil {
		return nil, err
	}
	res := []Node{node}
	for _, child := range children {
		res = append(res, child.Result...)
	}
	return res, nil
}

// Dependencies visits the dependencies of a node which are not pruned.
//
// Siblings are visited concurrently. Results are returned in order of declaration.
func Dependencies[T any](ctx context.Context, w *Walker, parent Node, visit VisitFunc[T]) ([]Visited[T], error) {
	children, err := w.children(parent)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, nil
	}

	results := make([]Visited[T], len(children))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.settings.concurrency)
	for i := range children {
		i := i
		g.Go(func() error {
			child := children[i]
			v, err := w.resolver.Resolve(gctx, child.Dependency.VersionID)
			if err != nil {
				return err
			}
			child.Version = v

			res, err := visit(gctx, child)
			if err != nil {
				return err
			}
			results[i] = Visited[T]{Node: child, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// children computes the traversal context of every dependency of a node which is not pruned.
// Versions are not resolved yet.
func (w *Walker) children(parent Node) ([]Node, error) {
	excluded, err := match.Regexps(w.settings.excludeDependencies)
	if err != nil {
		return nil, invalidPattern(err)
	}
	pruned := func(candidate string) bool {
		return excluded.Any(candidate) || parent.removed.Any(candidate)
	}
	internals := parent.Depth == 0 || w.settings.internals
	deps := parent.Version.Metadata.Dependencies
	l := w.settings.l.With(zap.String("version", parent.Version.ID))

	children := make([]Node, 0, len(deps))
	for i := range deps {
		dep := &deps[i]
		if dep.Internal && !internals {
			l.Debug("skipping internal dependency", zap.String("dependency", dep.VersionID))
			continue
		}

		child := Node{
			Dependency:     dep,
			Path:           joinOptional(parent.Path, dep.Path),
			DependencyPath: joinOptional(parent.DependencyPath, dep.Name),
			Depth:          parent.Depth + 1,
		}
		if pruned(dep.VersionID) || (child.DependencyPath != "" && pruned(child.DependencyPath)) {
			l.Debug("excluding dependency",
				zap.String("dependency", dep.VersionID),
				zap.String("dependency_path", child.DependencyPath),
				zap.Strings("excluded", excluded.Patterns()),
				zap.Strings("removed", parent.removed.Patterns()),
			)
			continue
		}

		for _, ancestor := range parent.chain {
			if ancestor == dep.VersionID {
				return nil, status.ErrCycle.Detailf("%s", strings.Join(append(append([]string(nil), parent.chain...), dep.VersionID), " -> "))
			}
		}

		child.chain = append(append(make([]string, 0, len(parent.chain)+1), parent.chain...), dep.VersionID)
		targets := dep.Operations.RemoveTargets()
		child.Exclusions = append(append([]string(nil), parent.Exclusions...), targets...)
		child.removed = append(append(make(match.List, 0, len(parent.removed)+len(targets)), parent.removed...), removalMatchers(targets)...)
		children = append(children, child)
	}
	return children, nil
}

// removalMatchers turns remove targets into dependency matchers.
//
// A target is a regular expression when it compiles as one, and a glob otherwise.
// Targets which are neither never prune a dependency: they still apply to files.
func removalMatchers(targets []string) match.List {
	res := make(match.List, 0, len(targets))
	for _, target := range targets {
		if m, err := match.Regexp(target); err == nil {
			res = append(res, m)
			continue
		}
		if m, err := match.Glob(target); err == nil {
			res = append(res, m)
		}
	}
	return res
}

func joinOptional(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return path.Join(prefix, name)
	}
}

func invalidPattern(err error) error {
	return status.ErrInvalidPattern.Wrap(err)
}
