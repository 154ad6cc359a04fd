package modules

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Finder scans a base directory for categorized modules. The zero
// value is not usable; construct one with NewFinder.
type Finder struct {
	logger *slog.Logger

	// includeAssets controls whether unrecognized child directories
	// are reported as asset directories.
	includeAssets bool
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithLogger sets the logger used for scan progress.
func WithLogger(logger *slog.Logger) FinderOption {
	return func(f *Finder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithoutAssetDirs disables treating unrecognized child directories as
// asset directories.
func WithoutAssetDirs() FinderOption {
	return func(f *Finder) { f.includeAssets = false }
}

// NewFinder creates a Finder with asset directory discovery enabled.
func NewFinder(opts ...FinderOption) *Finder {
	f := &Finder{
		logger:        slog.Default(),
		includeAssets: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find scans baseDir and returns the categorized modules. The category
// scans run concurrently; the first error cancels the rest. A missing
// base directory is an error, an existing but sparse one is not.
func (f *Finder) Find(ctx context.Context, baseDir string) (*Modules, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("batchwrite/modules: resolve base dir %q: %w", baseDir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("batchwrite/modules: stat base dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("batchwrite/modules: base dir %q is not a directory", abs)
	}

	f.logger.Debug("scanning for modules", "base_dir", abs)

	m := &Modules{}
	g, ctx := errgroup.WithContext(ctx)

	scan := func(dest *[]string, dir string, patterns ...string) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			matches, err := glob(filepath.Join(abs, dir), patterns...)
			if err != nil {
				return err
			}
			*dest = matches
			return nil
		})
	}

	scan(&m.Services, servicesPath, "*.xq*", "*.sjs")
	scan(&m.Options, optionsPath, "*.*")
	scan(&m.Transforms, transformsPath, "*.xq*", "*.xsl*", "*.sjs")
	scan(&m.Namespaces, namespacesPath, "*.*")

	g.Go(func() error {
		matches, err := glob(abs, propertiesFilename)
		if err != nil {
			return err
		}
		if len(matches) == 1 {
			m.PropertiesFile = matches[0]
		}
		return nil
	})

	if f.includeAssets {
		g.Go(func() error {
			dirs, err := f.assetDirs(abs)
			if err != nil {
				return err
			}
			m.AssetDirs = dirs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.logger.Debug("module scan complete",
		"services", len(m.Services),
		"options", len(m.Options),
		"transforms", len(m.Transforms),
		"namespaces", len(m.Namespaces),
		"asset_dirs", len(m.AssetDirs),
	)
	return m, nil
}

// assetDirs returns the child directories of baseDir that are not one
// of the recognized category paths.
func (f *Finder) assetDirs(baseDir string) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("batchwrite/modules: read base dir: %w", err)
	}

	recognized := make(map[string]struct{})
	for _, p := range recognizedPaths() {
		recognized[p] = struct{}{}
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := recognized[entry.Name()]; ok {
			continue
		}
		dirs = append(dirs, filepath.Join(baseDir, entry.Name()))
	}
	sort.Strings(dirs)
	return dirs, nil
}
