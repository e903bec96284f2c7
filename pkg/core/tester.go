package core

import (
	"context"
	"fmt"

	"github.com/oneconcern/depot/pkg/core/status"
	"github.com/oneconcern/depot/pkg/errors"
	"github.com/oneconcern/depot/pkg/model"
	"github.com/oneconcern/depot/pkg/repo"
	storagestatus "github.com/oneconcern/depot/pkg/storage/status"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FailureKind tells what went wrong when verifying a file
type FailureKind uint8

// Kinds of verification failures
const (
	// FailureMismatch is a recorded digest which differs from the actual content
	FailureMismatch FailureKind = iota + 1

	// FailureMissing is a file with no physical source
	FailureMissing

	// FailureUnknownAlgorithm is a digest recorded with an algorithm we can't compute
	FailureUnknownAlgorithm
)

func (k FailureKind) String() string {
	switch k {
	case FailureMismatch:
		return "mismatch"
	case FailureMissing:
		return "missing"
	case FailureUnknownAlgorithm:
		return "unknown algorithm"
	default:
		return "unknown"
	}
}

// Failure describes a file which did not pass verification
type Failure struct {
	Version   string
	Path      string
	Kind      FailureKind
	Algorithm string
	Expected  string
	Actual    string
}

func (f Failure) String() string {
	switch f.Kind {
	case FailureMismatch:
		return fmt.Sprintf("%s: '%s' %s digest mismatch: expected %s, got %s", f.Version, f.Path, f.Algorithm, f.Expected, f.Actual)
	case FailureUnknownAlgorithm:
		return fmt.Sprintf("%s: '%s' unknown digest algorithm %q", f.Version, f.Path, f.Algorithm)
	default:
		return fmt.Sprintf("%s: '%s' %s", f.Version, f.Path, f.Kind)
	}
}

// Result of a verification
type Result struct {
	// Failures, ordered like the versions and files they relate to
	Failures []Failure

	// Versions which have been verified
	Versions []string

	// Files and Bytes actually read
	Files int64
	Bytes int64
}

// OK is true when no failure was found
func (r *Result) OK() bool {
	return len(r.Failures) == 0
}

// Err combines all failures into one error, or returns nil if no failure was found
func (r *Result) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, status.ErrVerification.Detailf("%s", f.String()))
	}
	return err
}

// Tester verifies the integrity of the files of versions
type Tester struct {
	resolver repo.Resolver
	settings Settings
}

// NewTester builds a verifier. The resolver is only used by recursive verifications.
func NewTester(resolver repo.Resolver, opts ...Option) *Tester {
	return &Tester{
		resolver: resolver,
		settings: newSettings(opts...),
	}
}

type verifyJob struct {
	version *repo.Version
	file    model.FileDescriptor
}

// Test recomputes the digests of the files declared by a version and compares them with the recorded ones.
//
// When recursive, all dependencies are verified too, internal ones included.
// A version reachable through several paths is verified once.
//
// Discrepancies do not interrupt the verification: they are reported in the result.
// An error is returned only when verification could not be carried out.
func (t *Tester) Test(ctx context.Context, v *repo.Version, recursive bool) (*Result, error) {
	versions := []*repo.Version{v}
	if recursive {
		var err error
		if versions, err = t.collect(ctx, v); err != nil {
			return nil, err
		}
	}

	result := &Result{Versions: make([]string, 0, len(versions))}
	var jobs []verifyJob
	for _, version := range versions {
		if len(version.Metadata.Files) > 0 && version.Binaries == nil {
			return nil, status.ErrMissingBinaries.Detailf("version '%s'", version.ID)
		}
		result.Versions = append(result.Versions, version.ID)
		for _, file := range version.Metadata.Files {
			jobs = append(jobs, verifyJob{version: version, file: file})
		}
	}

	var (
		files  atomic.Int64
		nbytes atomic.Int64
	)
	failures := make([][]Failure, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.settings.concurrency)
	for i := range jobs {
		i := i
		g.Go(func() error {
			res, err := t.verify(gctx, jobs[i], &files, &nbytes)
			if err != nil {
				return err
			}
			failures[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range failures {
		result.Failures = append(result.Failures, res...)
	}
	result.Files = files.Load()
	result.Bytes = nbytes.Load()

	t.settings.l.Debug("verification done",
		zap.String("version", v.ID),
		zap.Bool("recursive", recursive),
		zap.Strings("versions", result.Versions),
		zap.Int64("files", result.Files),
		zap.Int64("bytes", result.Bytes),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}

func (t *Tester) collect(ctx context.Context, v *repo.Version) ([]*repo.Version, error) {
	w := &Walker{resolver: t.resolver, settings: t.settings.with(Internals(true))}
	seen := make(map[string]struct{})
	var versions []*repo.Version
	err := w.IterateVersions(ctx, v, func(node Node) error {
		if _, ok := seen[node.Version.ID]; ok {
			return nil
		}
		seen[node.Version.ID] = struct{}{}
		versions = append(versions, node.Version)
		return nil
	})
	return versions, err
}

func (t *Tester) verify(ctx context.Context, job verifyJob, files, nbytes *atomic.Int64) ([]Failure, error) {
	failure := func(kind FailureKind) Failure {
		return Failure{Version: job.version.ID, Path: job.file.Path, Kind: kind}
	}

	missing := func() ([]Failure, error) {
		t.settings.l.Debug("missing file", zap.String("version", job.version.ID), zap.String("path", job.file.Path))
		return []Failure{failure(FailureMissing)}, nil
	}

	source := job.version.Binaries.Path(job.file.Path)
	exists, err := source.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return missing()
	}
	rdr, err := source.Open(ctx)
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return missing()
		}
		return nil, err
	}
	defer rdr.Close()

	algorithms := job.file.Algorithms()
	known := make([]string, 0, len(algorithms))
	for _, algo := range algorithms {
		if t.settings.registry.Has(algo) {
			known = append(known, algo)
		}
	}

	sums, n, err := t.settings.registry.SumAll(known, rdr)
	if err != nil {
		return nil, fmt.Errorf("verifying '%s' in %s: %w", job.file.Path, job.version.ID, err)
	}
	files.Inc()
	nbytes.Add(n)

	var res []Failure
	for _, algo := range algorithms {
		actual, ok := sums[algo]
		switch {
		case !ok:
			f := failure(FailureUnknownAlgorithm)
			f.Algorithm = algo
			res = append(res, f)
		case actual != job.file.Digests[algo]:
			f := failure(FailureMismatch)
			f.Algorithm = algo
			f.Expected = job.file.Digests[algo]
			f.Actual = actual
			res = append(res, f)
		}
	}
	return res, nil
}
