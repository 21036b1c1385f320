// Package export writes the collection and decks as JSON, CSV or decklist
// text, and reads JSON exports back.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format represents the export format.
type Format string

const (
	// FormatJSON is the full snapshot of the collection and decks.
	FormatJSON Format = "json"
	// FormatCSV is one row per collection entry.
	FormatCSV Format = "csv"
	// FormatDecklist is "<qty> <name>" lines sorted by name.
	FormatDecklist Format = "txt"
)

// ParseFormat parses a format name. "decklist" and "text" mean FormatDecklist.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "txt", "text", "decklist":
		return FormatDecklist, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Options holds configuration for export operations.
type Options struct {
	Format     Format
	FilePath   string
	PrettyJSON bool
	Overwrite  bool
}

// Exporter writes snapshots to a file.
type Exporter struct {
	opts Options
}

// NewExporter creates a new Exporter with the given options.
func NewExporter(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export writes snap to the configured file in the configured format.
func (e *Exporter) Export(snap Snapshot) error {
	var buf bytes.Buffer
	if err := Write(&buf, e.opts.Format, snap, e.opts.PrettyJSON); err != nil {
		return err
	}
	return e.writeToFile(buf.Bytes())
}

// Write writes snap to w in format. CSV and decklist text cover the
// collection only.
func Write(w io.Writer, format Format, snap Snapshot, prettyJSON bool) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, snap, prettyJSON)
	case FormatCSV:
		return WriteCSV(w, snap.Collection)
	case FormatDecklist:
		_, err := io.WriteString(w, CollectionDecklist(snap.Collection))
		return err
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// writeToFile writes data to the configured file path.
func (e *Exporter) writeToFile(data []byte) (err error) {
	file, fileErr := e.createFile()
	if fileErr != nil {
		return fileErr
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err = file.Write(data); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}

// createFile creates the output file, refusing to replace an existing one
// unless Overwrite is set.
func (e *Exporter) createFile() (*os.File, error) {
	if e.opts.FilePath == "" {
		return nil, fmt.Errorf("no output file configured")
	}
	if err := os.MkdirAll(filepath.Dir(e.opts.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(e.opts.FilePath); err == nil && !e.opts.Overwrite {
		return nil, fmt.Errorf("file already exists: %s (use overwrite option to replace)", e.opts.FilePath)
	}

	file, err := os.Create(e.opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}
