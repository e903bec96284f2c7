package model

import (
	"strings"
)

// Dependency describes an edge from a version to another version
type Dependency struct {
	VersionID  string     `json:"version_id" yaml:"version_id"`
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	Path       string     `json:"path,omitempty" yaml:"path,omitempty"`
	Internal   bool       `json:"internal,omitempty" yaml:"internal,omitempty"`
	Operations Operations `json:"operations,omitempty" yaml:"operations,omitempty"`
	extra      []rawField
	_          struct{}
}

// ParseDependency decodes a compact dependency definition:
//
//	my/component/123[,name=N][,path=P][,internal]
func ParseDependency(definition string) (Dependency, error) {
	parts := strings.Split(definition, ",")
	dep := Dependency{VersionID: strings.TrimSpace(parts[0])}
	if dep.VersionID == "" {
		return Dependency{}, ErrMalformedDependency.Detailf("missing version id in %q", definition)
	}

	for _, part := range parts[1:] {
		key, value, hasValue := strings.Cut(strings.TrimSpace(part), "=")
		switch {
		case key == "internal" && !hasValue:
			dep.Internal = true
		case key == "name" && hasValue && value != "":
			dep.Name = value
		case key == "path" && hasValue && value != "":
			dep.Path = value
		default:
			return Dependency{}, ErrMalformedDependency.Detailf("unsupported parameter %q in %q", part, definition)
		}
	}
	return dep, nil
}

// String renders the dependency in its compact form
func (d Dependency) String() string {
	parts := []string{d.VersionID}
	if d.Name != "" {
		parts = append(parts, "name="+d.Name)
	}
	if d.Path != "" {
		parts = append(parts, "path="+d.Path)
	}
	if d.Internal {
		parts = append(parts, "internal")
	}
	return strings.Join(parts, ",")
}
