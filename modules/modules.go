// Package modules discovers categorized server modules under a base
// directory: REST service extensions, query options, document
// transforms, namespace files, an optional rest-properties.json, and
// any unrecognized child directories, which are treated as asset
// directories.
package modules

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Modules is the result of a directory scan. All slices hold absolute
// paths, sorted for deterministic ordering.
type Modules struct {
	Services   []string
	Options    []string
	Transforms []string
	Namespaces []string
	AssetDirs  []string

	// PropertiesFile is the path to rest-properties.json when exactly
	// one exists under the base directory, empty otherwise.
	PropertiesFile string
}

// IsEmpty reports whether the scan found nothing at all.
func (m *Modules) IsEmpty() bool {
	return len(m.Services) == 0 &&
		len(m.Options) == 0 &&
		len(m.Transforms) == 0 &&
		len(m.Namespaces) == 0 &&
		len(m.AssetDirs) == 0 &&
		m.PropertiesFile == ""
}

const propertiesFilename = "rest-properties.json"

// Category path names under the base directory. schemas is recognized
// only to keep it out of the asset directories.
const (
	servicesPath   = "services"
	optionsPath    = "options"
	transformsPath = "transforms"
	namespacesPath = "namespaces"
	schemasPath    = "schemas"
)

func recognizedPaths() []string {
	return []string{servicesPath, optionsPath, transformsPath, namespacesPath, schemasPath}
}

// glob resolves patterns relative to dir and returns the matches as a
// sorted, deduplicated list.
func glob(dir string, patterns ...string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("batchwrite/modules: bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}
