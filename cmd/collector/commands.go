package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ramonehamilton/mtg-collector/internal/collection"
	"github.com/ramonehamilton/mtg-collector/internal/export"
)

// collector is the part of collection.Service the commands use.
type collector interface {
	Collection(ctx context.Context) ([]collection.Entry, error)
	ListDecks(ctx context.Context) ([]collection.Deck, error)
	ImportDecklist(ctx context.Context, text, lang string) (collection.ImportReport, error)
	CreateDeckFromDecklist(ctx context.Context, spec collection.NewDeck, text, lang string) (collection.Deck, collection.ImportReport, error)
	Stats(ctx context.Context) (collection.Stats, error)
}

type commands struct {
	service collector
	stdin   io.Reader
	stdout  io.Writer
	// flagOutput receives flag usage and parse errors; stderr when nil.
	flagOutput io.Writer
	now        func() time.Time
}

func (c *commands) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "import":
		return c.importCmd(ctx, args)
	case "deck-import":
		return c.deckImportCmd(ctx, args)
	case "export":
		return c.exportCmd(ctx, args)
	case "stats":
		return c.statsCmd(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

func (c *commands) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if c.flagOutput != nil {
		fs.SetOutput(c.flagOutput)
	}
	return fs
}

func (c *commands) importCmd(ctx context.Context, args []string) error {
	fs := c.flagSet("import")
	lang := fs.String("lang", "", "Print language (default: saved setting)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := c.readDecklist(fs.Arg(0))
	if err != nil {
		return err
	}

	report, err := c.service.ImportDecklist(ctx, text, strings.ToLower(*lang))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	printReport(c.stdout, report)
	return nil
}

func (c *commands) deckImportCmd(ctx context.Context, args []string) error {
	fs := c.flagSet("deck-import")
	name := fs.String("name", "", "Deck name (required)")
	format := fs.String("format", "", "Deck format, e.g. commander")
	description := fs.String("description", "", "Deck description")
	commander := fs.String("commander", "", "Commander card name")
	lang := fs.String("lang", "", "Print language (default: saved setting)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("-name is required")
	}

	text, err := c.readDecklist(fs.Arg(0))
	if err != nil {
		return err
	}

	deck, report, err := c.service.CreateDeckFromDecklist(ctx, collection.NewDeck{
		Name:          *name,
		Format:        *format,
		Description:   *description,
		CommanderName: *commander,
	}, text, strings.ToLower(*lang))
	if err != nil {
		return fmt.Errorf("deck import failed: %w", err)
	}

	fmt.Fprintf(c.stdout, "Created deck %q (%s) with %d cards\n", deck.Name, deck.ID, deck.CardCount())
	if deck.Commander != nil {
		fmt.Fprintf(c.stdout, "  Commander: %s\n", deck.Commander.Name)
	}
	printReport(c.stdout, report)
	return nil
}

func (c *commands) exportCmd(ctx context.Context, args []string) error {
	fs := c.flagSet("export")
	formatName := fs.String("format", string(export.FormatJSON), "Export format: json, csv or txt")
	output := fs.String("o", "", "Output file (default: stdout)")
	timestamped := fs.Bool("t", false, "Write to a timestamped file in the current directory")
	pretty := fs.Bool("pretty", true, "Indent JSON output")
	overwrite := fs.Bool("overwrite", false, "Replace an existing output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return err
	}

	entries, err := c.service.Collection(ctx)
	if err != nil {
		return err
	}
	var decks []collection.Deck
	if format == export.FormatJSON {
		if decks, err = c.service.ListDecks(ctx); err != nil {
			return err
		}
	}

	now := time.Now()
	if c.now != nil {
		now = c.now()
	}

	builder := export.NewBuilder().
		WithFormat(format).
		WithPrettyJSON(*pretty).
		WithOverwrite(*overwrite)
	switch {
	case *output != "":
		builder.WithFilePath(*output)
	case *timestamped:
		builder.WithTimestampedFilename("collection", now)
	default:
		builder.WithWriter(c.stdout)
	}

	if err := builder.Export(export.NewSnapshot(entries, decks, now)); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if path := builder.Build().FilePath; path != "" {
		fmt.Fprintf(c.stdout, "Exported %d entries to %s\n", len(entries), path)
	}
	return nil
}

func (c *commands) statsCmd(ctx context.Context, args []string) error {
	fs := c.flagSet("stats")
	if err := fs.Parse(args); err != nil {
		return err
	}

	stats, err := c.service.Stats(ctx)
	if err != nil {
		return err
	}
	printStats(c.stdout, stats)
	return nil
}

// readDecklist reads the decklist from path, or from stdin when path is
// empty or "-".
func (c *commands) readDecklist(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(c.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read decklist: %w", err)
	}
	return string(data), nil
}
