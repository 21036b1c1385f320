package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/ramonehamilton/mtg-collector/internal/collection"
)

// CSVHeader is the fixed column order of collection CSV exports.
var CSVHeader = []string{
	"Name", "Quantity", "Set Name", "Set Code", "Collector Number",
	"Rarity", "Condition", "Foil", "USD Price", "Notes",
}

// WriteCSV writes one row per entry. String columns are always quoted;
// quantity, foil and price are not.
func WriteCSV(w io.Writer, entries []collection.Entry) error {
	bw := bufio.NewWriter(w)

	header := make([]string, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = quoteCSV(h)
	}
	bw.WriteString(strings.Join(header, ","))
	bw.WriteString("\n")

	for i := range entries {
		e := &entries[i]
		price := ""
		if p, ok := e.UnitPrice(); ok {
			price = p.StringFixed(2)
		}
		row := []string{
			quoteCSV(e.Name),
			strconv.Itoa(e.Quantity),
			quoteCSV(e.SetName),
			quoteCSV(e.SetCode),
			quoteCSV(e.CollectorNumber),
			quoteCSV(e.Rarity),
			quoteCSV(e.Condition),
			strconv.FormatBool(e.Foil),
			price,
			quoteCSV(e.Notes),
		}
		bw.WriteString(strings.Join(row, ","))
		bw.WriteString("\n")
	}

	return bw.Flush()
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
