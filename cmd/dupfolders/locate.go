// cmd/dupfolders/locate.go
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gocodewalker "github.com/boyter/gocodewalker"
)

// locateLatestReport walks dir and returns the most recently modified file
// whose basename matches pattern. Synology scanners drop timestamped report
// files into a shared folder; pointing --input at that folder picks up the
// newest run automatically.
func locateLatestReport(dir, pattern string) (string, error) {
	if _, err := filepath.Match(pattern, "a"); err != nil {
		return "", fmt.Errorf("invalid report pattern %q: %w", pattern, err)
	}

	fileListQueue := make(chan *gocodewalker.File, 100)
	fileWalker := gocodewalker.NewFileWalker(dir, fileListQueue)
	// Reports live on NAS shares; repository ignore files are irrelevant there.
	fileWalker.IgnoreGitIgnore = true
	fileWalker.IgnoreIgnoreFile = true

	var walkErr error
	walkDone := make(chan struct{})
	go func() {
		defer close(walkDone)
		fileWalker.SetErrorHandler(func(e error) bool {
			slog.Warn("Error reported by report walker.", "dir", dir, "error", e)
			return true // keep walking
		})
		walkErr = fileWalker.Start()
	}()

	var (
		newest     string
		newestTime time.Time
	)
	for f := range fileListQueue {
		base := filepath.Base(f.Location)
		if match, err := filepath.Match(pattern, base); err != nil || !match {
			continue
		}
		info, statErr := os.Stat(f.Location)
		if statErr != nil {
			slog.Warn("Cannot stat candidate report, skipping.", "path", f.Location, "error", statErr)
			continue
		}
		if info.IsDir() {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = f.Location
			newestTime = info.ModTime()
		}
	}
	<-walkDone

	if walkErr != nil {
		return "", fmt.Errorf("walking '%s' for reports failed: %w", dir, walkErr)
	}
	if newest == "" {
		return "", fmt.Errorf("no report matching %q found under '%s'", pattern, dir)
	}
	slog.Info("Located duplicate report.", "path", newest, "modified", newestTime)
	return newest, nil
}
