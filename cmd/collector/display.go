package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ramonehamilton/mtg-collector/internal/collection"
)

// printReport displays the outcome of a decklist import.
func printReport(w io.Writer, report collection.ImportReport) {
	fmt.Fprintf(w, "Resolved %d of %d lines\n", report.Found, report.Lines)
	fmt.Fprintf(w, "  New entries:     %d\n", report.Merged.Created)
	fmt.Fprintf(w, "  Updated entries: %d\n", report.Merged.Updated)
	fmt.Fprintf(w, "  Cards added:     %d\n", report.Merged.Cards)

	if len(report.Missing) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Missing (%d not found, %d lookup failures):\n", report.NotFound, report.Failed)
	for _, m := range report.Missing {
		line := fmt.Sprintf("  %d %s [%s]", m.Quantity, m.Name, m.Outcome)
		if len(m.Suggestions) > 0 {
			line += " did you mean: " + strings.Join(m.Suggestions, ", ")
		}
		fmt.Fprintln(w, line)
	}
}

// printStats displays collection totals.
func printStats(w io.Writer, stats collection.Stats) {
	fmt.Fprintln(w, "Collection Summary")
	fmt.Fprintln(w, "==================")
	fmt.Fprintf(w, "  Total Cards:  %d\n", stats.TotalCards)
	fmt.Fprintf(w, "  Unique Cards: %d\n", stats.UniqueCards)
	fmt.Fprintf(w, "  Foils:        %d\n", stats.FoilCards)
	fmt.Fprintf(w, "  Value (USD):  $%s\n", stats.ValueUSD.StringFixed(2))
	if stats.Unpriced > 0 {
		fmt.Fprintf(w, "  Unpriced:     %d\n", stats.Unpriced)
	}
	fmt.Fprintf(w, "  Decks:        %d\n", stats.Decks)

	printCounts(w, "By Rarity:", stats.ByRarity)
	printCounts(w, "By Language:", stats.ByLanguage)
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %d\n", k, counts[k])
	}
}
