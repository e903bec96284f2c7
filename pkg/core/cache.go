package core

import (
	"context"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// DefaultCacheSize is the number of file maps kept by a CachedFinder, unless specified otherwise
const DefaultCacheSize = 128

var _ FileLister = &CachedFinder{}

// CachedFinder memoizes the file maps computed by a Finder.
//
// Results are keyed by version id, dependency exclusions, file filters and internals visibility.
// Versions are immutable, so cached entries never go stale unless a version is deleted from the repository.
type CachedFinder struct {
	finder *Finder
	cache  *lru.Cache[string, FileMap]
}

// NewCachedFinder wraps a finder with an LRU cache of the given size
func NewCachedFinder(finder *Finder, size int) (*CachedFinder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, FileMap](size)
	if err != nil {
		return nil, err
	}
	return &CachedFinder{finder: finder, cache: cache}, nil
}

// FileList returns the file map of a version, from cache if possible.
//
// Callers get their own copy of the map.
func (c *CachedFinder) FileList(ctx context.Context, id string, opts ...Option) (FileMap, error) {
	settings := c.finder.settings.with(opts...)
	key := cacheKey(id, settings)
	if files, ok := c.cache.Get(key); ok {
		settings.l.Debug("file list cache hit", zap.String("version", id))
		return files.Clone(), nil
	}

	files, err := c.finder.fileList(ctx, id, settings)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, files.Clone())
	return files, nil
}

// Purge the cache
func (c *CachedFinder) Purge() {
	c.cache.Purge()
}

// Len is the number of cached file maps
func (c *CachedFinder) Len() int {
	return c.cache.Len()
}

func cacheKey(id string, s Settings) string {
	const sep = "\x00"
	var b strings.Builder
	b.WriteString(id)
	for _, list := range [][]string{s.excludeDependencies, s.files, s.excludeFiles} {
		b.WriteString(sep)
		b.WriteString(strconv.Itoa(len(list)))
		for _, pattern := range list {
			b.WriteString(sep)
			b.WriteString(pattern)
		}
	}
	b.WriteString(sep)
	b.WriteString(strconv.FormatBool(s.internals))
	return b.String()
}
