// cmd/dupfolders/analyzer.go
package main

import (
	"log/slog"
	"sort"
	"strings"
)

// FolderGroup is the aggregated relationship between a set of folders that
// jointly hold one or more duplicate clusters.
//
// Folders is kept sorted and acts as the group's canonical identity.
// TotalSharedSize and WastedSpace are derived from SharedFiles and must be
// recomputed (never adjusted in place) whenever SharedFiles changes.
type FolderGroup struct {
	Folders         []string
	SharedFiles     map[string][]DuplicateFile
	TotalSharedSize int64
	WastedSpace     int64
}

// SizeAnomaly flags a duplicate cluster whose members disagree on size.
// Duplicates are byte-identical by construction, so this means the input
// data is untrustworthy; the cluster is excluded from size accounting and
// reported instead of being averaged or silently picked from.
type SizeAnomaly struct {
	GroupID string
	Sizes   []int64
}

// folderKey is the canonical, order-independent map key for a folder set.
// Folder names never contain a NUL, so the join is unambiguous.
func folderKey(folders []string) string {
	return strings.Join(folders, "\x00")
}

// sortedFolderSet deduplicates and sorts folder names into canonical form.
func sortedFolderSet(folders map[string]struct{}) []string {
	out := make([]string, 0, len(folders))
	for f := range folders {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// analyzeFolderGroups rolls a flat list of duplicate-file records up into
// folder groups: for every duplicate cluster spanning at least two distinct
// folders, the cluster's files are folded into the group keyed by that exact
// folder set. Groups below minGroupSize are dropped and the survivors are
// sorted by shared size, largest first.
//
// Clusters confined to a single folder carry no cross-folder relationship
// and are skipped entirely.
func analyzeFolderGroups(files []DuplicateFile, minGroupSize int64) ([]FolderGroup, []SizeAnomaly) {
	clusters := make(map[string][]DuplicateFile)
	clusterOrder := make([]string, 0)
	for _, f := range files {
		if _, seen := clusters[f.GroupID]; !seen {
			clusterOrder = append(clusterOrder, f.GroupID)
		}
		clusters[f.GroupID] = append(clusters[f.GroupID], f)
	}

	groups := make(map[string]*FolderGroup)
	keys := make([]string, 0)
	for _, groupID := range clusterOrder {
		clusterFiles := clusters[groupID]

		folderSet := make(map[string]struct{}, len(clusterFiles))
		for _, f := range clusterFiles {
			folderSet[f.Folder] = struct{}{}
		}
		if len(folderSet) < 2 {
			// Same-folder duplicates imply no folder relationship.
			continue
		}

		folders := sortedFolderSet(folderSet)
		key := folderKey(folders)
		group, ok := groups[key]
		if !ok {
			group = &FolderGroup{
				Folders:     folders,
				SharedFiles: make(map[string][]DuplicateFile),
			}
			groups[key] = group
			keys = append(keys, key)
		}
		group.SharedFiles[groupID] = append(group.SharedFiles[groupID], clusterFiles...)
	}

	var anomalies []SizeAnomaly
	results := make([]FolderGroup, 0, len(groups))
	for _, key := range keys {
		group := groups[key]
		anomalies = append(anomalies, recomputeAggregates(group)...)
		results = append(results, *group)
	}

	results = filterAndSortGroups(results, minGroupSize)
	slog.Debug("Folder grouping complete.",
		"clusters", len(clusters), "groups", len(results), "anomalies", len(anomalies))
	return results, anomalies
}

// recomputeAggregates rebuilds TotalSharedSize and WastedSpace from
// SharedFiles. One representative size per cluster counts as shared
// payload; every copy beyond the first counts as waste. Clusters with
// inconsistent member sizes are excluded from both sums and returned as
// anomalies.
func recomputeAggregates(group *FolderGroup) []SizeAnomaly {
	group.TotalSharedSize = 0
	group.WastedSpace = 0

	var anomalies []SizeAnomaly
	for groupID, clusterFiles := range group.SharedFiles {
		clusterFiles = dedupeByPath(clusterFiles)
		group.SharedFiles[groupID] = clusterFiles
		if len(clusterFiles) == 0 {
			continue
		}

		size := clusterFiles[0].Size
		consistent := true
		for _, f := range clusterFiles[1:] {
			if f.Size != size {
				consistent = false
				break
			}
		}
		if !consistent {
			sizes := make([]int64, len(clusterFiles))
			for i, f := range clusterFiles {
				sizes[i] = f.Size
			}
			slog.Warn("Duplicate cluster members disagree on size, excluding from totals.",
				"group_id", groupID, "sizes", sizes)
			anomalies = append(anomalies, SizeAnomaly{GroupID: groupID, Sizes: sizes})
			continue
		}

		group.TotalSharedSize += size
		group.WastedSpace += size * int64(len(clusterFiles)-1)
	}
	return anomalies
}

// dedupeAnomalies keeps the first report per cluster id, preserving order.
func dedupeAnomalies(anomalies []SizeAnomaly) []SizeAnomaly {
	seen := make(map[string]struct{}, len(anomalies))
	out := anomalies[:0]
	for _, a := range anomalies {
		if _, dup := seen[a.GroupID]; dup {
			continue
		}
		seen[a.GroupID] = struct{}{}
		out = append(out, a)
	}
	return out
}

// dedupeByPath drops repeated records for the same file path, preserving
// first-seen order. Paths are unique within a report, so repeats only
// appear when merged groups carried overlapping clusters.
func dedupeByPath(files []DuplicateFile) []DuplicateFile {
	if len(files) < 2 {
		return files
	}
	seen := make(map[string]struct{}, len(files))
	out := files[:0]
	for _, f := range files {
		if _, dup := seen[f.Path]; dup {
			continue
		}
		seen[f.Path] = struct{}{}
		out = append(out, f)
	}
	return out
}

// filterAndSortGroups applies the minimum-size threshold and orders groups
// by shared size descending, with the canonical folder key as a
// deterministic tie-breaker.
func filterAndSortGroups(groups []FolderGroup, minGroupSize int64) []FolderGroup {
	kept := make([]FolderGroup, 0, len(groups))
	for _, g := range groups {
		if g.TotalSharedSize < minGroupSize {
			slog.Debug("Dropping folder group below size threshold.",
				"folders", g.Folders, "total_shared_size", g.TotalSharedSize, "min", minGroupSize)
			continue
		}
		kept = append(kept, g)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].TotalSharedSize != kept[j].TotalSharedSize {
			return kept[i].TotalSharedSize > kept[j].TotalSharedSize
		}
		return folderKey(kept[i].Folders) < folderKey(kept[j].Folders)
	})
	return kept
}
