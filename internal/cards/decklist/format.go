package decklist

import (
	"fmt"
	"sort"
	"strings"
)

// Format renders entries as decklist text, one "<quantity> <name>" line per
// entry, sorted by name. Tokenize(Format(e)) yields e in name order.
func Format(entries []Entry) string {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	SortByName(sorted)

	var sb strings.Builder
	for _, e := range sorted {
		writeLine(&sb, e)
	}
	return sb.String()
}

// FormatSection renders entries under a "// title" comment line. An empty
// section renders nothing.
func FormatSection(title string, entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	return fmt.Sprintf("// %s\n%s", title, Format(entries))
}

// SortByName orders entries case-insensitively by name, keeping the input
// order for equal names.
func SortByName(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}

func writeLine(sb *strings.Builder, e Entry) {
	fmt.Fprintf(sb, "%d %s\n", e.Quantity, e.Name)
}
