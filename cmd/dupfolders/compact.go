// cmd/dupfolders/compact.go
package main

import (
	"log/slog"
	"strings"
)

// compactNestedFolders merges folder groups related by path containment so
// the result reports each folder relationship once, at its broadest root.
// Aggregates are recomputed from the merged file sets (never summed, which
// would double-count files present in both groups), then the minimum-size
// filter and the ordering are re-applied.
//
// The pass is idempotent: running it on its own output changes nothing.
func compactNestedFolders(groups []FolderGroup, minGroupSize int64) ([]FolderGroup, []SizeAnomaly) {
	if len(groups) == 0 {
		return []FolderGroup{}, nil
	}

	// Merging mutates folder sets and file lists, so work on copies and
	// leave the caller's groups intact.
	work := make([]FolderGroup, len(groups))
	for i, g := range groups {
		work[i] = cloneGroup(g)
		work[i].Folders = collapseFolderSet(work[i].Folders)
	}

	// Each merge removes a group, so this terminates within len(work) passes.
	for {
		merged := false
	scan:
		for i := 0; i < len(work); i++ {
			for j := i + 1; j < len(work); j++ {
				keep, fold, ok := pickMergeTarget(&work[i], &work[j])
				if !ok {
					continue
				}
				slog.Debug("Merging nested folder groups.",
					"into", keep.Folders, "absorbed", fold.Folders)
				mergeSharedFiles(keep, fold)
				if fold == &work[i] {
					work[i] = *keep
				}
				work = append(work[:j], work[j+1:]...)
				merged = true
				break scan
			}
		}
		if !merged {
			break
		}
	}

	var anomalies []SizeAnomaly
	for i := range work {
		anomalies = append(anomalies, recomputeAggregates(&work[i])...)
	}
	return filterAndSortGroups(work, minGroupSize), anomalies
}

// pickMergeTarget decides whether two groups should merge and which one
// survives. Groups merge when their folder sets are identical, when one set
// is a plain subset of the other, or when one is nested in the other under
// a one-to-one ancestor pairing. The broader (ancestor/superset) group
// keeps its folders. ok is false when the groups are unrelated.
func pickMergeTarget(a, b *FolderGroup) (keep, fold *FolderGroup, ok bool) {
	switch {
	case folderKey(a.Folders) == folderKey(b.Folders):
		return a, b, true
	case subsetOf(a.Folders, b.Folders):
		return b, a, true
	case subsetOf(b.Folders, a.Folders):
		return a, b, true
	case nestedIn(a.Folders, b.Folders):
		return b, a, true
	case nestedIn(b.Folders, a.Folders):
		return a, b, true
	}
	return nil, nil, false
}

// mergeSharedFiles unions fold's clusters into keep. Cluster ids are
// globally unique across distinct folder sets; when the same id does show
// up on both sides the file lists are unioned and deduplicated by path at
// the next aggregate recomputation.
func mergeSharedFiles(keep, fold *FolderGroup) {
	for groupID, files := range fold.SharedFiles {
		keep.SharedFiles[groupID] = append(keep.SharedFiles[groupID], files...)
	}
}

// cloneGroup copies a group deeply enough that merging and aggregate
// recomputation cannot touch the original's folder set or file lists.
func cloneGroup(g FolderGroup) FolderGroup {
	folders := make([]string, len(g.Folders))
	copy(folders, g.Folders)
	shared := make(map[string][]DuplicateFile, len(g.SharedFiles))
	for groupID, files := range g.SharedFiles {
		copied := make([]DuplicateFile, len(files))
		copy(copied, files)
		shared[groupID] = copied
	}
	return FolderGroup{
		Folders:         folders,
		SharedFiles:     shared,
		TotalSharedSize: g.TotalSharedSize,
		WastedSpace:     g.WastedSpace,
	}
}

// collapseFolderSet removes folders that are path-descendants of another
// folder in the same set: a cluster spanning "photos" and "photos/2020"
// is really rooted at "photos".
func collapseFolderSet(folders []string) []string {
	kept := make(map[string]struct{}, len(folders))
	for _, f := range folders {
		absorbed := false
		for _, other := range folders {
			if f != other && isDescendant(f, other) {
				absorbed = true
				break
			}
		}
		if !absorbed {
			kept[f] = struct{}{}
		}
	}
	return sortedFolderSet(kept)
}

// subsetOf reports whether every folder in a appears verbatim in b.
// Both slices are canonical (sorted, deduplicated).
func subsetOf(a, b []string) bool {
	if len(a) >= len(b) {
		return false
	}
	i := 0
	for _, f := range a {
		for i < len(b) && b[i] < f {
			i++
		}
		if i == len(b) || b[i] != f {
			return false
		}
		i++
	}
	return true
}

// nestedIn reports whether folder set a is nested in folder set b: the sets
// have the same cardinality and there is a one-to-one pairing where every
// a-folder is equal to or a path-descendant of its paired b-folder.
func nestedIn(a, b []string) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	used := make([]bool, len(b))
	return matchNested(a, b, used, 0)
}

// matchNested searches for a perfect ancestor pairing by backtracking.
// Folder sets are tiny (a handful of entries), so the exponential worst
// case never matters in practice.
func matchNested(a, b []string, used []bool, i int) bool {
	if i == len(a) {
		return true
	}
	for j := range b {
		if used[j] || !isDescendantOrEqual(a[i], b[j]) {
			continue
		}
		used[j] = true
		if matchNested(a, b, used, i+1) {
			return true
		}
		used[j] = false
	}
	return false
}

// isDescendantOrEqual reports whether path a equals b or lives under it.
// Malformed (empty) names are treated as unrelated: compaction never
// merges on a comparison it cannot trust.
func isDescendantOrEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || isDescendant(a, b)
}

// isDescendant reports whether a is a strict path-descendant of b.
func isDescendant(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, b+"/")
}
