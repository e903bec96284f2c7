package core

import (
	"maps"
	"sort"

	"github.com/oneconcern/depot/pkg/match"
	"github.com/oneconcern/depot/pkg/model"
	"github.com/oneconcern/depot/pkg/repo"
)

// Entry is the physical source of a file exposed at some virtual path
type Entry struct {
	Source  repo.Locator
	Version string
	File    model.FileDescriptor
}

// FileMap maps virtual paths to their physical source
type FileMap map[string]Entry

// Paths returns the virtual paths of the map, sorted
func (m FileMap) Paths() []string {
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// Clone the map
func (m FileMap) Clone() FileMap {
	if m == nil {
		return FileMap{}
	}
	return maps.Clone(m)
}

// Filter returns the entries whose virtual path matches any of the globs.
// With no globs, the whole map is returned.
func (m FileMap) Filter(globs ...string) (FileMap, error) {
	if len(globs) == 0 {
		return m.Clone(), nil
	}
	matchers, err := match.Globs(globs)
	if err != nil {
		return nil, invalidPattern(err)
	}
	res := make(FileMap)
	for k, v := range m {
		if matchers.Any(k) {
			res[k] = v
		}
	}
	return res, nil
}

// merge entries into the map, overwriting existing paths
func (m FileMap) merge(other FileMap) {
	for k, v := range other {
		m[k] = v
	}
}
