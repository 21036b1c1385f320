package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtg-collector/internal/api/response"
	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-collector/internal/collection"
)

// CollectionService is the part of collection.Service the collection
// endpoints use.
type CollectionService interface {
	Collection(ctx context.Context) ([]collection.Entry, error)
	GetEntry(ctx context.Context, id string) (collection.Entry, error)
	AddCard(ctx context.Context, card *scryfall.Card, qty int, opts collection.AddOptions) (collection.Entry, error)
	RemoveCard(ctx context.Context, id string, qty int) (int, error)
	UpdateEntry(ctx context.Context, id string, patch collection.EntryPatch) (*collection.Entry, error)
	ImportDecklist(ctx context.Context, text, lang string) (collection.ImportReport, error)
	Stats(ctx context.Context) (collection.Stats, error)
}

// CardCatalog looks cards up in the remote catalog.
type CardCatalog interface {
	GetCard(ctx context.Context, id string) (*scryfall.Card, error)
	GetCardByExactName(ctx context.Context, name string) (*scryfall.Card, error)
	GetCardByFuzzyName(ctx context.Context, name string) (*scryfall.Card, error)
	Autocomplete(ctx context.Context, prefix string) ([]string, error)
}

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// CollectionHandler handles collection-related API requests.
type CollectionHandler struct {
	service CollectionService
	catalog CardCatalog
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(service CollectionService, catalog CardCatalog) *CollectionHandler {
	return &CollectionHandler{service: service, catalog: catalog}
}

// GetCollection returns a page of entries, optionally filtered by name.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1, 1, 1<<20)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt(r, "page_size", defaultPageSize, 1, maxPageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := h.service.Collection(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q"))); q != "" {
		filtered := entries[:0:0]
		for _, e := range entries {
			if strings.Contains(strings.ToLower(e.Name), q) || strings.Contains(strings.ToLower(e.PrintedName), q) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	total := len(entries)
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)
	response.Paginated(w, entries[start:end], page, pageSize, total)
}

// GetCollectionStats returns collection statistics.
func (h *CollectionHandler) GetCollectionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, stats)
}

// GetEntry returns a single entry by card id.
func (h *CollectionHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetEntry(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, entry)
}

// AddCardRequest adds copies of one catalog card.
type AddCardRequest struct {
	ID        string `json:"id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Foil      bool   `json:"foil"`
	Condition string `json:"condition"`
	Notes     string `json:"notes" validate:"max=500"`
}

// AddCard fetches the card from the catalog and merges it into the collection.
func (h *CollectionHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req AddCardRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	card, err := h.catalog.GetCard(r.Context(), req.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := h.service.AddCard(r.Context(), card, req.Quantity, collection.AddOptions{
		Foil:      req.Foil,
		Condition: req.Condition,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, entry)
}

// UpdateEntryRequest changes the local fields of an entry.
type UpdateEntryRequest struct {
	Quantity  *int    `json:"quantity,omitempty"`
	Foil      *bool   `json:"foil,omitempty"`
	Condition *string `json:"condition,omitempty"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// UpdateEntry patches an entry. A quantity of zero deletes it.
func (h *CollectionHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req UpdateEntryRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := h.service.UpdateEntry(r.Context(), chi.URLParam(r, "entryID"), collection.EntryPatch{
		Quantity:  req.Quantity,
		Foil:      req.Foil,
		Condition: req.Condition,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entry == nil {
		response.NoContent(w)
		return
	}

	response.Success(w, entry)
}

// RemoveCard removes ?quantity= copies of an entry, one by default.
func (h *CollectionHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	qty, err := queryInt(r, "quantity", 1, 1, 1<<20)
	if err != nil {
		writeError(w, r, err)
		return
	}

	remaining, err := h.service.RemoveCard(r.Context(), chi.URLParam(r, "entryID"), qty)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, map[string]int{"remaining": remaining})
}

// ImportRequest carries decklist text to merge into the collection.
type ImportRequest struct {
	Decklist string `json:"decklist" validate:"required"`
	Lang     string `json:"lang" validate:"omitempty,min=2,max=3"`
}

// ImportDecklist resolves a decklist and merges the found cards.
func (h *CollectionHandler) ImportDecklist(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.service.ImportDecklist(r.Context(), req.Decklist, strings.ToLower(req.Lang))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, report)
}
