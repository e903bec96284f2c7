package model

import (
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/oneconcern/depot/pkg/digest"
	"github.com/oneconcern/depot/pkg/match"
)

// DefaultHashes are the digests computed when none are specified
var DefaultHashes = []string{digest.SHA1}

// FileParams are the parameters applied to the files added to some metadata
type FileParams struct {
	Hashes   []string
	Tags     []string
	Registry *digest.Registry
}

// FileParamsOption is a functor to build file parameters with some options
type FileParamsOption func(*FileParams)

// Hashes defines the digest algorithms computed for each file
func Hashes(algos ...string) FileParamsOption {
	return func(p *FileParams) {
		p.Hashes = algos
	}
}

// Tags defines the tags assigned to each file
func Tags(tags ...string) FileParamsOption {
	return func(p *FileParams) {
		p.Tags = tags
	}
}

// DigestRegistry defines the registry used to compute digests
func DigestRegistry(r *digest.Registry) FileParamsOption {
	return func(p *FileParams) {
		p.Registry = r
	}
}

// NewFileParams builds file parameters, defaulting to sha1 digests and no tags
func NewFileParams(opts ...FileParamsOption) FileParams {
	p := FileParams{
		Hashes:   DefaultHashes,
		Registry: digest.Default,
	}
	for _, apply := range opts {
		apply(&p)
	}
	if len(p.Hashes) == 0 {
		p.Hashes = DefaultHashes
	}
	if p.Registry == nil {
		p.Registry = digest.Default
	}
	return p
}

// AddFiles scans a directory and adds a descriptor for every regular file matching
// at least one of the glob patterns (all files when no pattern is given).
//
// Paths are recorded relative to root, with forward slashes. Files already
// described are replaced.
func (m *Metadata) AddFiles(fs afero.Fs, root string, patterns []string, params FileParams) error {
	params = NewFileParams(Hashes(params.Hashes...), Tags(params.Tags...), DigestRegistry(params.Registry))
	for _, algo := range params.Hashes {
		if !params.Registry.Has(algo) {
			return digest.ErrUnknownAlgorithm.Detailf("%q", algo)
		}
	}

	matchers, err := match.Globs(patterns)
	if err != nil {
		return err
	}

	var found []string
	err = afero.Walk(fs, root, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, pth)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if len(matchers) > 0 && !matchers.Any(rel) {
			return nil
		}
		found = append(found, rel)
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(found)

	for _, rel := range found {
		f, err := describeFile(fs, filepath.Join(root, filepath.FromSlash(rel)), rel, params)
		if err != nil {
			return err
		}
		m.PutFile(f)
	}
	return nil
}

func describeFile(fs afero.Fs, pth, rel string, params FileParams) (FileDescriptor, error) {
	file, err := fs.Open(pth)
	if err != nil {
		return FileDescriptor{}, err
	}
	defer file.Close()

	sums, size, err := params.Registry.SumAll(params.Hashes, file)
	if err != nil {
		return FileDescriptor{}, err
	}
	return FileDescriptor{
		Path:    path.Clean(rel),
		Size:    size,
		Digests: sums,
		Tags:    append([]string(nil), params.Tags...),
	}, nil
}

// LoadFile reads and decodes a metadata document
func LoadFile(fs afero.Fs, pth string) (*Metadata, error) {
	data, err := afero.ReadFile(fs, pth)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// SaveFile encodes and writes a metadata document
func (m *Metadata) SaveFile(fs afero.Fs, pth string) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(pth); dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return afero.WriteFile(fs, pth, data, 0644)
}
