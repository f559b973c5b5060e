package sync

import (
	"fmt"
	"strings"
)

// Result aggregates per-record outcomes of one pass. Individual failures are
// folded into these counts rather than surfaced one by one.
type Result struct {
	Synced   int
	Skipped  int
	Updated  int
	Excluded int
}

// Summary renders a human-readable one-line outcome with correct plurals.
func (r Result) Summary() string {
	parts := []string{
		pluralize(r.Synced, "file") + " synced",
		pluralize(r.Skipped, "file") + " skipped",
	}
	if r.Updated > 0 {
		parts = append(parts, pluralize(r.Updated, "note")+" updated in Karakeep")
	}
	if r.Excluded > 0 {
		parts = append(parts, pluralize(r.Excluded, "bookmark")+" excluded by tag")
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
