package model

import (
	"sort"
	"strconv"
	"strings"
)

// MetadataFileName is the conventional name of a metadata document
const MetadataFileName = "ki-metadata.json"

// Provenance keys for the source of a version
const (
	SourceURL      = "url"
	SourceTagURL   = "tag-url"
	SourceAuthor   = "author"
	SourceRepoType = "repotype"
)

// SourceKeys lists the well-known provenance keys
var SourceKeys = []string{SourceURL, SourceTagURL, SourceAuthor, SourceRepoType}

// Metadata describes a version: its provenance, files, dependencies and operations.
//
// Metadata is built incrementally with AddFiles, AddDependency and AddOperation, then
// encoded with Encode. Once stored in a repository, it is never mutated.
type Metadata struct {
	VersionID    string            `json:"version_id" yaml:"version_id"`
	Source       map[string]string `json:"source,omitempty" yaml:"source,omitempty"`
	Files        []FileDescriptor  `json:"files,omitempty" yaml:"files,omitempty"`
	Dependencies []Dependency      `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Operations   Operations        `json:"operations,omitempty" yaml:"operations,omitempty"`
	extra        []rawField
	_            struct{}
}

// DependencyRef is a handle on a dependency declared in some metadata.
//
// It is an index in the list of dependencies, used to attach operations to a
// previously added dependency.
type DependencyRef int

// NewMetadata builds an empty metadata for some version
func NewMetadata(versionID string) *Metadata {
	return &Metadata{VersionID: versionID}
}

// SetSource merges provenance information
func (m *Metadata) SetSource(source map[string]string) {
	if len(source) == 0 {
		return
	}
	if m.Source == nil {
		m.Source = make(map[string]string, len(source))
	}
	for k, v := range source {
		m.Source[k] = v
	}
}

// AddDependency parses a compact dependency definition and appends it, with some optional operations.
func (m *Metadata) AddDependency(definition string, ops ...Operation) (DependencyRef, error) {
	dep, err := ParseDependency(definition)
	if err != nil {
		return -1, err
	}
	dep.Operations = append(dep.Operations, ops...)
	return m.AppendDependency(dep), nil
}

// AppendDependency appends a dependency descriptor
func (m *Metadata) AppendDependency(dep Dependency) DependencyRef {
	m.Dependencies = append(m.Dependencies, dep)
	return DependencyRef(len(m.Dependencies) - 1)
}

// AddDependencyOperation attaches an operation to a previously added dependency
func (m *Metadata) AddDependencyOperation(ref DependencyRef, op Operation) error {
	if int(ref) < 0 || int(ref) >= len(m.Dependencies) {
		return ErrValidation.Detailf("no dependency defined at index %d: define a dependency before adding operations to it", ref)
	}
	m.Dependencies[ref].Operations = append(m.Dependencies[ref].Operations, op)
	return nil
}

// AddOperation appends a version-level operation
func (m *Metadata) AddOperation(op Operation) {
	m.Operations = append(m.Operations, op)
}

// File returns the descriptor of a file by path
func (m *Metadata) File(pth string) (FileDescriptor, bool) {
	for _, f := range m.Files {
		if f.Path == pth {
			return f, true
		}
	}
	return FileDescriptor{}, false
}

// PutFile adds a file descriptor, replacing any previous descriptor with the same path.
//
// Unknown keys recorded for the previous descriptor are kept.
func (m *Metadata) PutFile(f FileDescriptor) {
	f.Tags = normalizeTags(f.Tags)
	for i := range m.Files {
		if m.Files[i].Path == f.Path {
			if f.extra == nil {
				f.extra = m.Files[i].extra
			}
			m.Files[i] = f
			return
		}
	}
	m.Files = append(m.Files, f)
}

// RemoveFile drops a file from the version's own files. It returns false if no such file was declared.
func (m *Metadata) RemoveFile(pth string) bool {
	for i := range m.Files {
		if m.Files[i].Path == pth {
			m.Files = append(m.Files[:i], m.Files[i+1:]...)
			return true
		}
	}
	return false
}

// Validate checks that the metadata may be saved
func (m *Metadata) Validate() error {
	var problems []string
	if m.VersionID == "" {
		problems = append(problems, "missing version_id")
	}

	seen := make(map[string]struct{}, len(m.Files))
	for i, f := range m.Files {
		if f.Path == "" {
			problems = append(problems, "missing path for file #"+strconv.Itoa(i))
			continue
		}
		if _, dup := seen[f.Path]; dup {
			problems = append(problems, "duplicate file path "+f.Path)
		}
		seen[f.Path] = struct{}{}
	}

	for i, d := range m.Dependencies {
		if d.VersionID == "" {
			problems = append(problems, "missing version_id for dependency #"+strconv.Itoa(i))
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return ErrValidation.Detailf("%s", strings.Join(problems, ", "))
	}
	return nil
}
