package core

import (
	"runtime"

	"github.com/oneconcern/depot/pkg/digest"
	"go.uber.org/zap"
)

// Option sets options for dependency resolution and verification
type Option func(*Settings)

// Settings defines various settings for core features
type Settings struct {
	l                   *zap.Logger
	concurrency         int
	internals           bool
	excludeDependencies []string
	files               []string
	excludeFiles        []string
	registry            *digest.Registry
}

var (
	defaultConcurrency = runtime.NumCPU()
)

// Logger sets the logger. Defaults to a no-op logger.
func Logger(l *zap.Logger) Option {
	return func(s *Settings) {
		if l == nil {
			s.l = zap.NewNop()
			return
		}
		s.l = l
	}
}

// Concurrency sets the max number of sibling dependencies resolved in parallel,
// as well as the number of files verified in parallel. It defaults to #cpus.
func Concurrency(concurrency int) Option {
	return func(s *Settings) {
		if concurrency <= 0 {
			s.concurrency = defaultConcurrency
			return
		}
		s.concurrency = concurrency
	}
}

// Internals makes internal dependencies visible at every level of the traversal.
//
// The root version always sees its own internal dependencies.
func Internals(enabled bool) Option {
	return func(s *Settings) {
		s.internals = enabled
	}
}

// ExcludeDependencies prunes dependencies whose version id or dependency path matches
// any of these regular expressions
func ExcludeDependencies(patterns ...string) Option {
	return func(s *Settings) {
		s.excludeDependencies = patterns
	}
}

// Files restricts the files declared by versions to those matching any of these globs
func Files(patterns ...string) Option {
	return func(s *Settings) {
		s.files = patterns
	}
}

// ExcludeFiles drops the files declared by versions which match any of these globs
func ExcludeFiles(patterns ...string) Option {
	return func(s *Settings) {
		s.excludeFiles = patterns
	}
}

// DigestRegistry sets the digest algorithms known by the verifier. Defaults to digest.Default.
func DigestRegistry(registry *digest.Registry) Option {
	return func(s *Settings) {
		if registry == nil {
			s.registry = digest.Default
			return
		}
		s.registry = registry
	}
}

func defaultSettings() Settings {
	return Settings{
		l:           zap.NewNop(),
		concurrency: defaultConcurrency,
		registry:    digest.Default,
	}
}

func newSettings(opts ...Option) Settings {
	return defaultSettings().with(opts...)
}

func (s Settings) with(opts ...Option) Settings {
	for _, apply := range opts {
		apply(&s)
	}
	return s
}
