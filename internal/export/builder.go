package export

import (
	"fmt"
	"io"
	"time"
)

// Builder configures an export fluently:
//
//	err := NewBuilder().
//	    WithFormat(FormatCSV).
//	    WithTimestampedFilename("collection", time.Now()).
//	    Export(snap)
type Builder struct {
	format     Format
	filePath   string
	prettyJSON bool
	overwrite  bool
	writer     io.Writer
}

// NewBuilder creates a Builder for pretty-printed JSON.
func NewBuilder() *Builder {
	return &Builder{
		format:     FormatJSON,
		prettyJSON: true,
	}
}

// WithFormat sets the export format.
func (b *Builder) WithFormat(format Format) *Builder {
	b.format = format
	return b
}

// WithFilePath writes the export to filePath. The directory is created if
// needed.
func (b *Builder) WithFilePath(filePath string) *Builder {
	b.filePath = filePath
	b.writer = nil
	return b
}

// WithWriter writes the export to w instead of a file.
func (b *Builder) WithWriter(w io.Writer) *Builder {
	b.writer = w
	b.filePath = ""
	return b
}

// WithPrettyJSON toggles indentation for JSON exports.
func (b *Builder) WithPrettyJSON(pretty bool) *Builder {
	b.prettyJSON = pretty
	return b
}

// WithOverwrite allows replacing an existing file.
func (b *Builder) WithOverwrite(overwrite bool) *Builder {
	b.overwrite = overwrite
	return b
}

// WithTimestampedFilename names the output file after prefix and t, e.g.
// "collection_20240504_103000.csv".
func (b *Builder) WithTimestampedFilename(prefix string, t time.Time) *Builder {
	return b.WithFilePath(Filename(prefix, b.format, t))
}

// Build returns the file export options.
func (b *Builder) Build() Options {
	return Options{
		Format:     b.format,
		FilePath:   b.filePath,
		PrettyJSON: b.prettyJSON,
		Overwrite:  b.overwrite,
	}
}

// Export writes snap to the configured writer or file.
func (b *Builder) Export(snap Snapshot) error {
	if err := b.validate(); err != nil {
		return err
	}
	if b.writer != nil {
		return Write(b.writer, b.format, snap, b.prettyJSON)
	}
	return NewExporter(b.Build()).Export(snap)
}

func (b *Builder) validate() error {
	if b.writer == nil && b.filePath == "" {
		return fmt.Errorf("either file path or writer must be set")
	}
	switch b.format {
	case FormatJSON, FormatCSV, FormatDecklist:
		return nil
	default:
		return fmt.Errorf("unsupported export format: %s", b.format)
	}
}

// Filename returns "<prefix>_<timestamp>.<format>".
func Filename(prefix string, format Format, t time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, t.Format("20060102_150405"), format)
}
