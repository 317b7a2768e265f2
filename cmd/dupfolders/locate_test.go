// cmd/dupfolders/locate_test.go
package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFileWithModTime(t *testing.T, path, content string, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestLocateLatestReportPicksNewest(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-24 * time.Hour)
	writeFileWithModTime(t, filepath.Join(dir, "duplicates_20240101.csv"), "old", base)
	writeFileWithModTime(t, filepath.Join(dir, "duplicates_20240301.csv"), "new", base.Add(2*time.Hour))
	writeFileWithModTime(t, filepath.Join(dir, "notes.txt"), "noise", base.Add(4*time.Hour))

	found, err := locateLatestReport(dir, "*.csv")

	require.NoError(t, err)
	assert.Equal(t, "duplicates_20240301.csv", filepath.Base(found))
}

func TestLocateLatestReportSearchesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-24 * time.Hour)
	writeFileWithModTime(t, filepath.Join(dir, "reports", "duplicates.csv"), "nested", base)

	found, err := locateLatestReport(dir, "*.csv")

	require.NoError(t, err)
	assert.Equal(t, "duplicates.csv", filepath.Base(found))
}

func TestLocateLatestReportNoMatch(t *testing.T) {
	dir := t.TempDir()
	writeFileWithModTime(t, filepath.Join(dir, "notes.txt"), "noise", time.Now())

	_, err := locateLatestReport(dir, "*.csv")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no report matching")
}

func TestLocateLatestReportInvalidPattern(t *testing.T) {
	_, err := locateLatestReport(t.TempDir(), "[")
	assert.Error(t, err)
}
