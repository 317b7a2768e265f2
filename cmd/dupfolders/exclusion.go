// cmd/dupfolders/exclusion.go
package main

import (
	"log/slog"
	"path/filepath"
	"strings"
)

// defaultExcludeFolders are Synology housekeeping trees that show up in
// duplicate reports but are never worth reporting on.
var defaultExcludeFolders = []string{"#recycle", "@eaDir"}

// FolderExcluder drops report records whose path contains a component
// matching one of the configured glob patterns.
type FolderExcluder struct {
	patterns []string
}

// NewFolderExcluder validates the patterns and returns an excluder.
// Patterns with invalid glob syntax are logged and ignored.
func NewFolderExcluder(patterns []string) *FolderExcluder {
	valid := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if _, err := filepath.Match(pattern, "a"); err != nil {
			slog.Warn("Invalid exclude pattern syntax, ignoring.", "pattern", pattern, "error", err)
			continue
		}
		valid = append(valid, pattern)
	}
	return &FolderExcluder{patterns: valid}
}

// IsExcluded reports whether any component of path matches an exclude
// pattern. Matching components anywhere in the path excludes the record,
// so "/volume1/photos/@eaDir/thumb.jpg" is dropped by pattern "@eaDir".
func (e *FolderExcluder) IsExcluded(path string) bool {
	if len(e.patterns) == 0 {
		return false
	}
	for _, component := range strings.Split(strings.Trim(path, "/"), "/") {
		if component == "" {
			continue
		}
		if match, pattern := matchesGlob(component, e.patterns); match {
			slog.Debug("Excluding record.", "path", path, "component", component, "pattern", pattern)
			return true
		}
	}
	return false
}

// matchesGlob returns the first pattern in patterns matching name.
func matchesGlob(name string, patterns []string) (bool, string) {
	for _, pattern := range patterns {
		if match, err := filepath.Match(pattern, name); err == nil && match {
			return true, pattern
		}
	}
	return false, ""
}
