package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtg-collector/internal/api/response"
	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
)

// minAutocompleteLength is the shortest prefix the catalog is asked about.
const minAutocompleteLength = 2

// CardHandler handles card lookups against the catalog.
type CardHandler struct {
	catalog CardCatalog
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(catalog CardCatalog) *CardHandler {
	return &CardHandler{catalog: catalog}
}

// Autocomplete returns card names starting with ?q=.
func (h *CardHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(q) < minAutocompleteLength {
		response.Success(w, []string{})
		return
	}

	names, err := h.catalog.Autocomplete(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	response.Success(w, names)
}

// GetCardByName looks a card up by ?exact= or ?fuzzy= name.
func (h *CardHandler) GetCardByName(w http.ResponseWriter, r *http.Request) {
	var (
		card *scryfall.Card
		err  error
	)
	switch q := r.URL.Query(); {
	case strings.TrimSpace(q.Get("exact")) != "":
		card, err = h.catalog.GetCardByExactName(r.Context(), strings.TrimSpace(q.Get("exact")))
	case strings.TrimSpace(q.Get("fuzzy")) != "":
		card, err = h.catalog.GetCardByFuzzyName(r.Context(), strings.TrimSpace(q.Get("fuzzy")))
	default:
		err = badRequest("exact or fuzzy is required")
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, card)
}

// GetCard returns a card by catalog id.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.catalog.GetCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, card)
}
