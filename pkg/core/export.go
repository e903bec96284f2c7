package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Export materializes the complete file map of a version into a destination file system.
//
// Virtual paths become paths relative to the root of the destination. The exported map is returned.
func Export(ctx context.Context, lister FileLister, id string, dest afero.Fs, opts ...Option) (FileMap, error) {
	settings := newSettings(opts...)
	files, err := lister.FileList(ctx, id, opts...)
	if err != nil {
		return nil, err
	}

	// directories first, so files may be written concurrently
	for _, pth := range files.Paths() {
		if err := dest.MkdirAll(filepath.Dir(filepath.FromSlash(pth)), 0755); err != nil {
			return nil, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(settings.concurrency)
	for pth, entry := range files {
		pth, entry := pth, entry
		g.Go(func() error {
			settings.l.Debug("exporting file", zap.String("path", pth), zap.Stringer("source", entry.Source))
			return exportFile(gctx, entry, dest, filepath.FromSlash(pth))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	settings.l.Info("exported version", zap.String("version", id), zap.Int("files", len(files)))
	return files, nil
}

func exportFile(ctx context.Context, entry Entry, dest afero.Fs, pth string) (err error) {
	rdr, err := entry.Source.Open(ctx)
	if err != nil {
		return fmt.Errorf("exporting %q from %s: %w", pth, entry.Version, err)
	}
	defer func() {
		err = multierr.Append(err, rdr.Close())
	}()

	target, err := dest.OpenFile(pth, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, target.Close())
	}()

	_, err = io.Copy(target, rdr)
	return err
}
