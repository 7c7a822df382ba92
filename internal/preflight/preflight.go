package preflight

import (
	"path/filepath"

	"intake/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Watch root", cfg.Paths.WatchRoot),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	if cfg.Catalog.Enabled {
		results = append(results, CheckDirectoryAccess("Catalog directory", filepath.Dir(cfg.CatalogPath())))
	}

	return results
}

// AllPassed reports whether every check in results passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
