package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ramonehamilton/mtg-collector/internal/collection"
)

// Version is written into every JSON export.
const Version = "1.0"

// ErrInvalidSnapshot is returned when a JSON document is not an export.
var ErrInvalidSnapshot = errors.New("invalid export")

// Snapshot is the full JSON export.
type Snapshot struct {
	Version    string             `json:"version"`
	ExportDate time.Time          `json:"exportDate"`
	Collection []collection.Entry `json:"collection"`
	Decks      []collection.Deck  `json:"decks"`
}

// NewSnapshot builds a snapshot taken at now.
func NewSnapshot(entries []collection.Entry, decks []collection.Deck, now time.Time) Snapshot {
	if entries == nil {
		entries = []collection.Entry{}
	}
	if decks == nil {
		decks = []collection.Deck{}
	}
	return Snapshot{
		Version:    Version,
		ExportDate: now.UTC(),
		Collection: entries,
		Decks:      decks,
	}
}

// WriteJSON encodes snap.
func WriteJSON(w io.Writer, snap Snapshot, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// ParseJSON reads a snapshot written by WriteJSON.
func ParseJSON(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if snap.Version == "" {
		return Snapshot{}, fmt.Errorf("%w: missing version", ErrInvalidSnapshot)
	}
	if snap.Collection == nil {
		snap.Collection = []collection.Entry{}
	}
	if snap.Decks == nil {
		snap.Decks = []collection.Deck{}
	}
	return snap, nil
}
