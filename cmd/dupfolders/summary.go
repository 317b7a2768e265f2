// cmd/dupfolders/summary.go
package main

import (
	"fmt"
	"io"
	"strings"
)

// printSummary writes the human-readable run summary: every surviving
// folder group with its sizes, overall totals, then the rows that could not
// be parsed and the clusters excluded for inconsistent sizes.
func printSummary(
	groups []FolderGroup,
	rowErrors []RowError,
	anomalies []SizeAnomaly,
	minGroupSize int64,
	writer io.Writer,
) {
	fmt.Fprintln(writer, "\n--- Summary ---")

	if len(groups) > 0 {
		var totalShared, totalWasted int64
		fmt.Fprintf(writer, "Found %d folder group(s) above %s:\n", len(groups), formatBytes(minGroupSize))
		for i, g := range groups {
			totalShared += g.TotalSharedSize
			totalWasted += g.WastedSpace
			connector := tern(i == len(groups)-1, "└── ", "├── ")
			fmt.Fprintf(writer, "%s%s\n", connector, strings.Join(g.Folders, " + "))
			childIndent := tern(i == len(groups)-1, "    ", "│   ")
			fmt.Fprintf(writer, "%sshared %s (%s bytes), wasted %s, %d cluster(s)\n",
				childIndent,
				formatBytes(g.TotalSharedSize), formatCount(g.TotalSharedSize),
				formatBytes(g.WastedSpace), len(g.SharedFiles))
		}
		fmt.Fprintf(writer, "Total: %s shared, %s recoverable by deduplicating.\n",
			formatBytes(totalShared), formatBytes(totalWasted))
	} else {
		fmt.Fprintln(writer, "No folder groups above the size threshold.")
	}

	printSummarySection(writer, "\nRows skipped (%d):\n", rowErrors,
		func(e RowError) string { return e.Error() })

	printSummarySection(writer, "\nClusters with inconsistent sizes (%d):\n", anomalies,
		func(a SizeAnomaly) string {
			return fmt.Sprintf("group %s: sizes %v", a.GroupID, a.Sizes)
		})

	fmt.Fprintln(writer, "---------------")
}

// printSummarySection prints a titled bullet list, or nothing when the list
// is empty.
func printSummarySection[T any](writer io.Writer, titleFormat string, items []T, format func(T) string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(writer, titleFormat, len(items))
	for _, item := range items {
		fmt.Fprintf(writer, "- %s\n", format(item))
	}
}
