// cmd/dupfolders/analyzer_test.go
package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// df is a terse DuplicateFile constructor for tests.
func df(groupID, folder, path string, size int64) DuplicateFile {
	return DuplicateFile{GroupID: groupID, Folder: folder, Path: path, Size: size}
}

func TestAnalyzeFolderGroupsSingleCluster(t *testing.T) {
	files := []DuplicateFile{
		df("1", "SORT", "/volume1/SORT/a.bin", 1731859),
		df("1", "photo", "/volume1/photo/a.bin", 1731859),
	}

	groups, anomalies := analyzeFolderGroups(files, 0)

	require.Len(t, groups, 1)
	assert.Empty(t, anomalies)
	assert.Equal(t, []string{"SORT", "photo"}, groups[0].Folders)
	assert.Equal(t, int64(1731859), groups[0].TotalSharedSize)
	assert.Equal(t, int64(1731859), groups[0].WastedSpace)
	require.Contains(t, groups[0].SharedFiles, "1")
	assert.Len(t, groups[0].SharedFiles["1"], 2)
}

func TestAnalyzeFolderGroupsAccumulatesSameFolderSet(t *testing.T) {
	files := []DuplicateFile{
		df("1", "SORT", "/volume1/SORT/a.bin", 1000000),
		df("1", "photo", "/volume1/photo/a.bin", 1000000),
		df("2", "SORT", "/volume1/SORT/b.bin", 2000000),
		df("2", "photo", "/volume1/photo/b.bin", 2000000),
	}

	groups, anomalies := analyzeFolderGroups(files, 0)

	require.Len(t, groups, 1)
	assert.Empty(t, anomalies)
	assert.Equal(t, int64(3000000), groups[0].TotalSharedSize)
	assert.Equal(t, int64(3000000), groups[0].WastedSpace)
	assert.Len(t, groups[0].SharedFiles, 2)
}

func TestAnalyzeFolderGroupsPartialOverlap(t *testing.T) {
	files := []DuplicateFile{
		df("1", "photos", "/volume1/photos/img1.jpg", 1000),
		df("1", "backup", "/volume1/backup/img1.jpg", 1000),
		df("2", "photos", "/volume1/photos/img2.jpg", 2000),
		df("2", "documents", "/volume1/documents/img2.jpg", 2000),
	}

	groups, _ := analyzeFolderGroups(files, 0)

	require.Len(t, groups, 2)
	folderSets := [][]string{groups[0].Folders, groups[1].Folders}
	assert.Contains(t, folderSets, []string{"backup", "photos"})
	assert.Contains(t, folderSets, []string{"documents", "photos"})
}

func TestAnalyzeFolderGroupsSameFolderClusterExcluded(t *testing.T) {
	files := []DuplicateFile{
		df("1", "photos", "/volume1/photos/a/img.jpg", 1000),
		df("1", "photos", "/volume1/photos/b/img.jpg", 1000),
	}

	groups, anomalies := analyzeFolderGroups(files, 0)

	assert.Empty(t, groups)
	assert.Empty(t, anomalies)
}

func TestAnalyzeFolderGroupsEmptyInput(t *testing.T) {
	groups, anomalies := analyzeFolderGroups(nil, 0)
	assert.Empty(t, groups)
	assert.Empty(t, anomalies)
}

func TestAnalyzeFolderGroupsThreshold(t *testing.T) {
	files := []DuplicateFile{
		df("1", "photos", "/volume1/photos/big.iso", 40_000_000),
		df("1", "backup", "/volume1/backup/big.iso", 40_000_000),
	}

	groups, _ := analyzeFolderGroups(files, 50_000_000)

	assert.Empty(t, groups, "40 MB of shared content must not survive a 50 MB threshold")
}

func TestAnalyzeFolderGroupsThresholdBoundary(t *testing.T) {
	files := []DuplicateFile{
		df("1", "photos", "/volume1/photos/big.iso", 50_000_000),
		df("1", "backup", "/volume1/backup/big.iso", 50_000_000),
	}

	groups, _ := analyzeFolderGroups(files, 50_000_000)

	require.Len(t, groups, 1, "a group exactly at the threshold is kept")
}

func TestAnalyzeFolderGroupsThreeFolders(t *testing.T) {
	files := []DuplicateFile{
		df("1", "photos", "/volume1/photos/x.raw", 5000),
		df("1", "backup", "/volume1/backup/x.raw", 5000),
		df("1", "archive", "/volume1/archive/x.raw", 5000),
	}

	groups, _ := analyzeFolderGroups(files, 0)

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"archive", "backup", "photos"}, groups[0].Folders)
	assert.Equal(t, int64(5000), groups[0].TotalSharedSize)
	// Two redundant copies beyond the first.
	assert.Equal(t, int64(10000), groups[0].WastedSpace)
}

func TestAnalyzeFolderGroupsSizeAnomaly(t *testing.T) {
	files := []DuplicateFile{
		df("bad", "photos", "/volume1/photos/a.bin", 1000),
		df("bad", "backup", "/volume1/backup/a.bin", 9999),
		df("good", "photos", "/volume1/photos/b.bin", 500),
		df("good", "backup", "/volume1/backup/b.bin", 500),
	}

	groups, anomalies := analyzeFolderGroups(files, 0)

	require.Len(t, anomalies, 1)
	assert.Equal(t, "bad", anomalies[0].GroupID)
	assert.ElementsMatch(t, []int64{1000, 9999}, anomalies[0].Sizes)

	// The inconsistent cluster contributes nothing to the aggregates.
	require.Len(t, groups, 1)
	assert.Equal(t, int64(500), groups[0].TotalSharedSize)
	assert.Equal(t, int64(500), groups[0].WastedSpace)
}

func TestAnalyzeFolderGroupsSortOrder(t *testing.T) {
	var files []DuplicateFile
	sizes := map[string]int64{"small": 100, "mid": 5000, "big": 90000}
	i := 0
	for name, size := range sizes {
		i++
		folder := fmt.Sprintf("src%d", i)
		files = append(files,
			df(name, folder, fmt.Sprintf("/volume1/%s/%s.bin", folder, name), size),
			df(name, "mirror", fmt.Sprintf("/volume1/mirror/%s.bin", name), size),
		)
	}

	groups, _ := analyzeFolderGroups(files, 0)

	require.Len(t, groups, 3)
	for i := 1; i < len(groups); i++ {
		assert.GreaterOrEqual(t, groups[i-1].TotalSharedSize, groups[i].TotalSharedSize,
			"groups must be sorted by shared size, largest first")
	}
}

func TestAnalyzeFolderGroupsDeterministicTieBreak(t *testing.T) {
	files := []DuplicateFile{
		df("1", "a", "/volume1/a/x.bin", 1000),
		df("1", "mirror", "/volume1/mirror/x.bin", 1000),
		df("2", "b", "/volume1/b/y.bin", 1000),
		df("2", "mirror", "/volume1/mirror/y.bin", 1000),
	}

	groups, _ := analyzeFolderGroups(files, 0)

	require.Len(t, groups, 2)
	assert.Equal(t, []string{"a", "mirror"}, groups[0].Folders)
	assert.Equal(t, []string{"b", "mirror"}, groups[1].Folders)
}

func TestDedupeAnomalies(t *testing.T) {
	anomalies := []SizeAnomaly{
		{GroupID: "a", Sizes: []int64{1, 2}},
		{GroupID: "b", Sizes: []int64{3, 4}},
		{GroupID: "a", Sizes: []int64{1, 2}},
	}

	deduped := dedupeAnomalies(anomalies)

	require.Len(t, deduped, 2)
	assert.Equal(t, "a", deduped[0].GroupID)
	assert.Equal(t, "b", deduped[1].GroupID)
}

// Size conservation: the aggregates always equal what SharedFiles implies.
func TestRecomputeAggregatesConservation(t *testing.T) {
	group := &FolderGroup{
		Folders: []string{"backup", "photos"},
		SharedFiles: map[string][]DuplicateFile{
			"1": {
				df("1", "photos", "/volume1/photos/a.bin", 300),
				df("1", "backup", "/volume1/backup/a.bin", 300),
				df("1", "backup", "/volume1/backup/copy/a.bin", 300),
			},
			"2": {
				df("2", "photos", "/volume1/photos/b.bin", 700),
				df("2", "backup", "/volume1/backup/b.bin", 700),
			},
		},
		// Stale values that must be overwritten, never trusted.
		TotalSharedSize: 12345,
		WastedSpace:     67890,
	}

	anomalies := recomputeAggregates(group)

	assert.Empty(t, anomalies)
	assert.Equal(t, int64(300+700), group.TotalSharedSize)
	assert.Equal(t, int64(2*300+700), group.WastedSpace)
}

func TestRecomputeAggregatesDeduplicatesPaths(t *testing.T) {
	group := &FolderGroup{
		Folders: []string{"backup", "photos"},
		SharedFiles: map[string][]DuplicateFile{
			"1": {
				df("1", "photos", "/volume1/photos/a.bin", 300),
				df("1", "backup", "/volume1/backup/a.bin", 300),
				// Same path twice, as after merging overlapping groups.
				df("1", "photos", "/volume1/photos/a.bin", 300),
			},
		},
	}

	anomalies := recomputeAggregates(group)

	assert.Empty(t, anomalies)
	assert.Len(t, group.SharedFiles["1"], 2)
	assert.Equal(t, int64(300), group.TotalSharedSize)
	assert.Equal(t, int64(300), group.WastedSpace)
}
