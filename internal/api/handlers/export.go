package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ramonehamilton/mtg-collector/internal/api/response"
	"github.com/ramonehamilton/mtg-collector/internal/collection"
	"github.com/ramonehamilton/mtg-collector/internal/export"
)

// maxRestoreBytes bounds the size of an uploaded JSON export.
const maxRestoreBytes = 32 << 20

// ExportService is the part of collection.Service exports and restores use.
type ExportService interface {
	Collection(ctx context.Context) ([]collection.Entry, error)
	ListDecks(ctx context.Context) ([]collection.Deck, error)
	Restore(ctx context.Context, entries []collection.Entry, decks []collection.Deck) error
}

// ExportHandler handles export-related API requests.
type ExportHandler struct {
	service ExportService
	now     func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(service ExportService) *ExportHandler {
	return &ExportHandler{service: service, now: time.Now}
}

// ExportCollection downloads the collection in ?format=json|csv|txt, JSON by
// default. Only JSON carries the decks.
func (h *ExportHandler) ExportCollection(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		writeError(w, r, badRequest("%v", err))
		return
	}

	entries, err := h.service.Collection(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var decks []collection.Deck
	if format == export.FormatJSON {
		if decks, err = h.service.ListDecks(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
	}

	now := h.now()
	snap := export.NewSnapshot(entries, decks, now)
	filename := export.Filename("collection", format, now)
	pretty := r.URL.Query().Get("pretty") == "true"
	_ = response.Attachment(w, format.ContentType(), filename, func(out io.Writer) error {
		return export.Write(out, format, snap, pretty)
	})
}

// GetExportFormats returns the supported export formats.
func (h *ExportHandler) GetExportFormats(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, []map[string]string{
		{"format": string(export.FormatJSON), "description": "Collection and decks, restorable"},
		{"format": string(export.FormatCSV), "description": "One row per collection entry"},
		{"format": string(export.FormatDecklist), "description": "Decklist text, one \"<qty> <name>\" line per card"},
	})
}

// RestoreResult tells what a restore replaced the collection with.
type RestoreResult struct {
	Entries int `json:"entries"`
	Decks   int `json:"decks"`
}

// Restore replaces the collection and decks with an uploaded JSON export.
func (h *ExportHandler) Restore(w http.ResponseWriter, r *http.Request) {
	snap, err := export.ParseJSON(http.MaxBytesReader(w, r.Body, maxRestoreBytes))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if snap.Version != export.Version {
		writeError(w, r, badRequest("unsupported export version %q", snap.Version))
		return
	}

	if err := h.service.Restore(r.Context(), snap.Collection, snap.Decks); err != nil {
		writeError(w, r, fmt.Errorf("restore: %w", err))
		return
	}

	response.Success(w, RestoreResult{Entries: len(snap.Collection), Decks: len(snap.Decks)})
}
