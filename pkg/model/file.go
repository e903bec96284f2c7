package model

import (
	"sort"
)

// FileDescriptor describes a file of a version
type FileDescriptor struct {
	Path    string            `json:"path" yaml:"path"`
	Size    int64             `json:"size" yaml:"size"`
	Digests map[string]string `json:"-" yaml:"digests,omitempty"` // persisted as top-level keys named after the algorithm
	Tags    []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	extra   []rawField
	_       struct{}
}

// Algorithms returns the sorted names of the recorded digests
func (f FileDescriptor) Algorithms() []string {
	algos := make([]string, 0, len(f.Digests))
	for algo := range f.Digests {
		algos = append(algos, algo)
	}
	sort.Strings(algos)
	return algos
}

// normalizeTags sorts tags and removes duplicates
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tags))
	res := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := set[t]; ok || t == "" {
			continue
		}
		set[t] = struct{}{}
		res = append(res, t)
	}
	sort.Strings(res)
	return res
}
