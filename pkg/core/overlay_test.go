package core

import (
	"testing"

	"github.com/oneconcern/depot/pkg/errors"
	"github.com/oneconcern/depot/pkg/model"
	"github.com/oneconcern/depot/pkg/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileMap(paths ...string) FileMap {
	res := make(FileMap, len(paths))
	for _, pth := range paths {
		res[pth] = Entry{Source: repo.NewBinaries(nil, "src").Path(pth)}
	}
	return res
}

func mustParse(t testing.TB, ops ...string) model.Operations {
	t.Helper()
	res := make(model.Operations, 0, len(ops))
	for _, op := range ops {
		parsed, err := model.ParseOperationString(op)
		require.NoError(t, err)
		res = append(res, parsed)
	}
	return res
}

func TestApplyOperations(t *testing.T) {
	for _, toPin := range []struct {
		name     string
		files    []string
		ops      []string
		expected []string
	}{
		{
			name:     "copy keeps sources",
			files:    []string{"a/x.txt", "b/y.bin"},
			ops:      []string{"cp *.txt out/"},
			expected: []string{"a/x.txt", "b/y.bin", "out/x.txt"},
		},
		{
			name:     "copy with several patterns and no trailing slash",
			files:    []string{"a/x.txt", "b/y.bin", "c/z.md"},
			ops:      []string{"cp *.txt *.bin out"},
			expected: []string{"a/x.txt", "b/y.bin", "c/z.md", "out/x.txt", "out/y.bin"},
		},
		{
			name:     "star crosses directories",
			files:    []string{"a/b/c/deep.txt"},
			ops:      []string{"cp a*.txt flat/"},
			expected: []string{"a/b/c/deep.txt", "flat/deep.txt"},
		},
		{
			name:     "remove respects segment boundaries",
			files:    []string{"foo/a", "foo", "foo2/b", "foobar"},
			ops:      []string{"rm foo"},
			expected: []string{"foo2/b", "foobar"},
		},
		{
			name:     "remove with trailing slash",
			files:    []string{"foo/a", "foo2/b"},
			ops:      []string{"remove foo/"},
			expected: []string{"foo2/b"},
		},
		{
			name:     "remove glob",
			files:    []string{"a/x.txt", "b/y.bin", "c/z.txt"},
			ops:      []string{"rm *.txt"},
			expected: []string{"b/y.bin"},
		},
		{
			name:     "operations apply in order",
			files:    []string{"a/x.txt"},
			ops:      []string{"rm a", "cp *.txt out/"},
			expected: []string{},
		},
		{
			name:     "copied entries can be removed",
			files:    []string{"a/x.txt"},
			ops:      []string{"cp *.txt out/", "dep-rm a"},
			expected: []string{"out/x.txt"},
		},
	} {
		testcase := toPin
		t.Run(testcase.name, func(t *testing.T) {
			files, err := ApplyOperations(fileMap(testcase.files...), mustParse(t, testcase.ops...))
			require.NoError(t, err)
			assert.Equal(t, testcase.expected, files.Paths())
		})
	}
}

func TestApplyCopySource(t *testing.T) {
	files, err := ApplyOperations(fileMap("a/x.txt"), model.Operations{model.Copy("out/", "*.txt")})
	require.NoError(t, err)
	assert.Equal(t, files["a/x.txt"], files["out/x.txt"])
	assert.Equal(t, "src/a/x.txt", files["out/x.txt"].Source.Key())
}

func TestApplyCopyCollision(t *testing.T) {
	// sources are copied in path order: the last one wins
	files, err := ApplyOperations(fileMap("b/x.txt", "a/x.txt"), mustParse(t, "cp *.txt out/"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a/x.txt", "b/x.txt", "out/x.txt"}, files.Paths())
	assert.Equal(t, "src/b/x.txt", files["out/x.txt"].Source.Key())
}

func TestApplyMalformed(t *testing.T) {
	_, err := ApplyOperations(fileMap("a"), model.Operations{{Kind: model.OpCopy, Patterns: []string{"*"}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedOperation))

	_, err = ApplyOperations(fileMap("a"), model.Operations{{Kind: 0}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedOperation))
}
