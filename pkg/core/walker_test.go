package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iterate(t testing.TB, w *Walker, id string) []Node {
	t.Helper()
	root, err := w.Resolve(context.Background(), id)
	require.NoError(t, err)

	var nodes []Node
	require.NoError(t, w.IterateVersions(context.Background(), root, func(n Node) error {
		nodes = append(nodes, n)
		return nil
	}))
	return nodes
}

func ids(nodes []Node) []string {
	res := make([]string, 0, len(nodes))
	for _, n := range nodes {
		res = append(res, n.Version.ID)
	}
	return res
}

func TestIterateVersions(t *testing.T) {
	r := productFixture(t)

	nodes := iterate(t, NewWalker(r.home), "test/product/1")
	assert.Equal(t, []string{"test/product/1", "test/comp/13", "test/product-internal/2"}, ids(nodes))

	assert.Nil(t, nodes[0].Dependency)
	assert.Equal(t, "comp", nodes[1].Path)
	assert.Equal(t, "dep-comp", nodes[1].DependencyPath)
	assert.Equal(t, 1, nodes[1].Depth)
	assert.Equal(t, "test", nodes[2].Path)
	assert.True(t, nodes[2].Dependency.Internal)
}

func TestIterateInternals(t *testing.T) {
	r := productFixture(t)

	nodes := iterate(t, NewWalker(r.home, Internals(true)), "test/product/1")
	assert.Equal(t, []string{"test/product/1", "test/comp/13", "test/comp-internal/3", "test/product-internal/2"}, ids(nodes))
	assert.Equal(t, "comp/test", nodes[2].Path)
	assert.Equal(t, "dep-comp/test", nodes[2].DependencyPath)
	assert.Equal(t, 2, nodes[2].Depth)
}

func TestIterateExclusions(t *testing.T) {
	r := productFixture(t)

	nodes := iterate(t, NewWalker(r.home, ExcludeDependencies("internal")), "test/product/1")
	assert.Equal(t, []string{"test/product/1", "test/comp/13"}, ids(nodes))
	assert.Equal(t, []string{"internal"}, nodes[1].Exclusions)
}

func TestDependenciesOrder(t *testing.T) {
	r := productFixture(t)
	w := NewWalker(r.home, Concurrency(1))
	root, err := w.Resolve(context.Background(), "test/product/1")
	require.NoError(t, err)

	visited, err := Dependencies(context.Background(), w, w.Root(root), func(_ context.Context, n Node) (int, error) {
		return len(n.Version.Metadata.Files), nil
	})
	require.NoError(t, err)
	require.Len(t, visited, 2)
	assert.Equal(t, "test/comp/13", visited[0].Version.ID)
	assert.Equal(t, 1, visited[0].Result)
	assert.Equal(t, "test/product-internal/2", visited[1].Version.ID)
	assert.Equal(t, 1, visited[1].Result)
}
