// Package decklist converts between decklist text and quantity/name entries.
//
// The text format is one card per line:
//
//	4 Lightning Bolt
//	4x Counterspell
//	Sol Ring
//	// Sideboard
//	2 Negate
//
// Quantity is optional and defaults to 1; an "x" or "X" may directly follow
// the digits. Lines starting with "//" or "#" are comments.
package decklist

import (
	"regexp"
	"strconv"
	"strings"
)

// Entry is one tokenized decklist line.
type Entry struct {
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// lineRegex captures an optional leading quantity (with an optional x/X
// directly after the digits) and the remainder of the line as the name.
var lineRegex = regexp.MustCompile(`^(?:(\d+)[xX]?)?\s*(.*)$`)

// Tokenize splits text into entries in line order. It never fails: blank
// lines, comments, lines without a name and lines whose quantity is zero
// or does not fit an int are skipped. Duplicate names stay separate entries.
func Tokenize(text string) []Entry {
	lines := strings.Split(text, "\n")
	entries := make([]Entry, 0, len(lines))

	for _, line := range lines {
		if entry, ok := ParseLine(line); ok {
			entries = append(entries, entry)
		}
	}

	return entries
}

// ParseLine tokenizes a single line. ok is false when the line carries no card.
func ParseLine(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Entry{}, false
	}

	matches := lineRegex.FindStringSubmatch(line)
	if matches == nil {
		return Entry{}, false
	}

	quantity := 1
	if matches[1] != "" {
		q, err := strconv.Atoi(matches[1])
		if err != nil || q < 1 {
			return Entry{}, false
		}
		quantity = q
	}

	// The comment marker is checked after the quantity is stripped
	name := strings.TrimSpace(matches[2])
	if name == "" || isComment(name) {
		return Entry{}, false
	}

	return Entry{Quantity: quantity, Name: name}, true
}

func isComment(s string) bool {
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, "#")
}
