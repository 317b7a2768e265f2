// cmd/dupfolders/helpers.go
package main

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// countPrinter groups digits for human eyes (1234567 -> "1,234,567").
var countPrinter = message.NewPrinter(language.English)

// formatCount renders an integer with digit grouping.
func formatCount(n int64) string {
	return countPrinter.Sprintf("%d", n)
}

// formatBytes formats bytes into human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	val := float64(b) / float64(div)
	unitPrefix := "KMGTPE"[exp]
	if val == float64(int64(val)) {
		return fmt.Sprintf("%d %ciB", int64(val), unitPrefix)
	}
	return fmt.Sprintf("%.1f %ciB", val, unitPrefix)
}

// tern is a tiny ternary helper for readable one-line choices.
func tern[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

// mapsKeys returns a map's keys sorted by their printed form, for stable
// logging of set contents.
func mapsKeys[M ~map[K]V, K comparable, V any](m M) []K {
	r := make([]K, 0, len(m))
	for k := range m {
		r = append(r, k)
	}
	sort.Slice(r, func(i, j int) bool {
		return fmt.Sprint(r[i]) < fmt.Sprint(r[j])
	})
	return r
}
