package core

import (
	"path"
	"strings"

	"github.com/oneconcern/depot/pkg/match"
	"github.com/oneconcern/depot/pkg/model"
)

// ApplyOperations edits a file map with a sequence of operations, in order.
//
// The map is modified in place and returned.
//
//   - copy adds an entry at destination + base name for every path matching one
//     of the patterns. Sources are left in place.
//   - remove drops every path equal to a target or nested under it. A target with glob
//     metacharacters drops every path it matches.
func ApplyOperations(files FileMap, ops model.Operations) (FileMap, error) {
	if files == nil {
		files = make(FileMap)
	}
	for _, op := range ops {
		var err error
		switch op.Kind {
		case model.OpCopy:
			err = applyCopy(files, op)
		case model.OpRemove:
			err = applyRemove(files, op)
		default:
			err = model.ErrMalformedOperation.Detailf("unsupported operation %q", op.String())
		}
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func applyCopy(files FileMap, op model.Operation) error {
	if len(op.Patterns) == 0 || op.Destination == "" {
		return model.ErrMalformedOperation.Detailf("%q", op.String())
	}
	matchers, err := match.Globs(op.Patterns)
	if err != nil {
		return model.ErrMalformedOperation.Detailf("%q", op.String()).Wrap(err)
	}

	// entries added by this copy are not candidates for it
	for _, pth := range files.Paths() {
		if matchers.Any(pth) {
			files[path.Join(op.Destination, path.Base(pth))] = files[pth]
		}
	}
	return nil
}

func applyRemove(files FileMap, op model.Operation) error {
	if len(op.Targets) == 0 {
		return model.ErrMalformedOperation.Detailf("%q", op.String())
	}
	for _, target := range op.Targets {
		matches, err := removeMatcher(target)
		if err != nil {
			return model.ErrMalformedOperation.Detailf("%q", op.String()).Wrap(err)
		}
		for pth := range files {
			if matches(pth) {
				delete(files, pth)
			}
		}
	}
	return nil
}

func removeMatcher(target string) (func(string) bool, error) {
	if match.HasMeta(target) {
		m, err := match.Glob(target)
		if err != nil {
			return nil, err
		}
		return m.Match, nil
	}

	prefix := strings.TrimSuffix(target, "/") + "/"
	return func(pth string) bool {
		return pth == target || strings.HasPrefix(pth, prefix)
	}, nil
}
