package grabber

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// DefaultSearchPaths returns the locations scanned for grabber modules, in
// scan order.
func DefaultSearchPaths() []string {
	paths := []string{
		"/usr/local/lib/tvmeta/grabbers",
		"/usr/lib/tvmeta/grabbers",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".tvmeta", "grabbers"))
	}
	return paths
}

// Discover scans the search locations for files named tv_meta_<name> and
// returns their identifiers (filename minus extension), de-duplicated and
// lexicographically sorted. An unreadable location is skipped, not an error.
func Discover(paths []string) []string {
	seen := make(map[string]bool)
	for _, dir := range paths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if !strings.HasPrefix(name, modulePrefix) {
				continue
			}
			id := strings.TrimSuffix(name, filepath.Ext(name))
			if len(id) <= len(modulePrefix) {
				continue
			}
			seen[id] = true
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadManifests registers a manifest-backed grabber for every
// tv_meta_<name>.toml file found in the search locations. A manifest that
// fails to load is logged and skipped; an identifier already registered
// (a builtin, or an earlier location) keeps its existing factory.
func (r *Registry) LoadManifests(log hclog.Logger, paths []string) {
	for _, dir := range paths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasPrefix(name, modulePrefix) || filepath.Ext(name) != ".toml" {
				continue
			}
			id := strings.TrimSuffix(name, ".toml")
			if _, exists := r.Lookup(id); exists {
				continue
			}

			path := filepath.Join(dir, name)
			manifest, err := LoadManifest(path)
			if err != nil {
				log.Warn("skipping unloadable grabber manifest", "path", path, "error", err)
				continue
			}
			if err := r.Register(id, manifest.Factory(id, path)); err != nil {
				log.Warn("skipping grabber manifest", "grabber", id, "error", err)
			}
		}
	}
}
