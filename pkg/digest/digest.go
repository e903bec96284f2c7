// Package digest computes named content digests.
//
// Algorithms are looked up by name in a Registry. The Default registry knows
// about sha1, sha2 (SHA-256), sha512, md5 and blake2b. Custom registries are
// passed to the metadata builder and to the verifier as options.
package digest

import (
	"crypto/md5"  // #nosec: md5 is a content fingerprint here, not a security primitive
	"crypto/sha1" // #nosec: same as above
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"sort"
	"sync"

	blake2b "github.com/minio/blake2b-simd"

	"github.com/oneconcern/depot/pkg/errors"
)

// Well-known algorithm names
const (
	SHA1    = "sha1"
	SHA2    = "sha2"
	SHA512  = "sha512"
	MD5     = "md5"
	Blake2b = "blake2b"
)

// ErrUnknownAlgorithm is returned when a digest algorithm is not registered
var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// Factory builds a new hash for some algorithm
type Factory func() hash.Hash

// Registry maps algorithm names to hash factories
type Registry struct {
	mu    sync.RWMutex
	algos map[string]Factory
}

// NewRegistry builds an empty registry
func NewRegistry() *Registry {
	return &Registry{algos: make(map[string]Factory)}
}

// NewDefaultRegistry builds a registry with all built-in algorithms
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(SHA1, sha1.New)
	r.Register(SHA2, sha256.New)
	r.Register(SHA512, sha512.New)
	r.Register(MD5, md5.New)
	r.Register(Blake2b, blake2b.New512)
	return r
}

// Default registry
var Default = NewDefaultRegistry()

// Register a hash factory under some name, replacing any previous one
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.algos[name] = factory
}

// Has tells if an algorithm is known
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.algos[name]
	return ok
}

// Names of the registered algorithms, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.algos))
	for name := range r.algos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New hash for some algorithm name
func (r *Registry) New(name string) (hash.Hash, error) {
	r.mu.RLock()
	factory, ok := r.algos[name]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownAlgorithm.Detailf("%q", name)
	}
	return factory(), nil
}

// Sum reads a stream and returns its hex-encoded digest
func (r *Registry) Sum(name string, rdr io.Reader) (string, error) {
	sums, _, err := r.SumAll([]string{name}, rdr)
	if err != nil {
		return "", err
	}
	return sums[name], nil
}

// SumAll reads a stream once and computes the hex-encoded digests for all the
// requested algorithms. It also returns the number of bytes read.
func (r *Registry) SumAll(names []string, rdr io.Reader) (map[string]string, int64, error) {
	hashers := make(map[string]hash.Hash, len(names))
	writers := make([]io.Writer, 0, len(names))
	for _, name := range names {
		if _, seen := hashers[name]; seen {
			continue
		}
		h, err := r.New(name)
		if err != nil {
			return nil, 0, err
		}
		hashers[name] = h
		writers = append(writers, h)
	}

	n, err := io.Copy(io.MultiWriter(writers...), rdr)
	if err != nil {
		return nil, n, err
	}

	sums := make(map[string]string, len(hashers))
	for name, h := range hashers {
		sums[name] = hex.EncodeToString(h.Sum(nil))
	}
	return sums, n, nil
}
