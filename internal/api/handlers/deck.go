package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtg-collector/internal/api/response"
	"github.com/ramonehamilton/mtg-collector/internal/cards/resolve"
	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-collector/internal/collection"
	"github.com/ramonehamilton/mtg-collector/internal/export"
)

// DeckService is the part of collection.Service the deck endpoints use.
type DeckService interface {
	ListDecks(ctx context.Context) ([]collection.Deck, error)
	GetDeck(ctx context.Context, id string) (collection.Deck, error)
	CreateDeck(ctx context.Context, spec collection.NewDeck, results []resolve.Resolved) (collection.Deck, error)
	CreateDeckFromDecklist(ctx context.Context, spec collection.NewDeck, text, lang string) (collection.Deck, collection.ImportReport, error)
	UpdateDeck(ctx context.Context, id string, patch collection.DeckPatch) (collection.Deck, error)
	DeleteDeck(ctx context.Context, id string) error
	AddCardsToDeck(ctx context.Context, id string, results []resolve.Resolved) (collection.Deck, error)
	RemoveCardFromDeck(ctx context.Context, id, cardID string, qty int) (collection.Deck, error)
	UpdateDeckCardQuantity(ctx context.Context, id, cardID string, qty int) (collection.Deck, error)
	SetCommander(ctx context.Context, id string, card *scryfall.Card) (collection.Deck, error)
}

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	service DeckService
	catalog CardCatalog
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(service DeckService, catalog CardCatalog) *DeckHandler {
	return &DeckHandler{service: service, catalog: catalog}
}

// GetDecks returns all decks, optionally only those of ?format=.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.service.ListDecks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if format := strings.TrimSpace(r.URL.Query().Get("format")); format != "" {
		filtered := decks[:0:0]
		for _, d := range decks {
			if strings.EqualFold(d.Format, format) {
				filtered = append(filtered, d)
			}
		}
		decks = filtered
	}

	response.Success(w, decks)
}

// CreateDeckRequest represents a request to create a deck. When Decklist or
// Commander is set the names are resolved against the catalog.
type CreateDeckRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Format      string `json:"format" validate:"max=50"`
	Description string `json:"description" validate:"max=2000"`
	Commander   string `json:"commander"`
	Decklist    string `json:"decklist"`
	Lang        string `json:"lang" validate:"omitempty,min=2,max=3"`
}

// CreateDeckResponse is the created deck, with the import report when a
// decklist was resolved.
type CreateDeckResponse struct {
	Deck   collection.Deck          `json:"deck"`
	Report *collection.ImportReport `json:"report,omitempty"`
}

// CreateDeck creates a new deck.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req CreateDeckRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	spec := collection.NewDeck{
		Name:          req.Name,
		Format:        req.Format,
		Description:   req.Description,
		CommanderName: req.Commander,
	}

	if strings.TrimSpace(req.Decklist) == "" && strings.TrimSpace(req.Commander) == "" {
		deck, err := h.service.CreateDeck(r.Context(), spec, nil)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Created(w, CreateDeckResponse{Deck: deck})
		return
	}

	deck, report, err := h.service.CreateDeckFromDecklist(r.Context(), spec, req.Decklist, strings.ToLower(req.Lang))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, CreateDeckResponse{Deck: deck, Report: &report})
}

// GetDeck returns a single deck by ID.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := h.service.GetDeck(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, deck)
}

// UpdateDeckRequest represents a request to update a deck.
type UpdateDeckRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Format      *string `json:"format,omitempty" validate:"omitempty,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// UpdateDeck updates deck metadata.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	var req UpdateDeckRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	deck, err := h.service.UpdateDeck(r.Context(), chi.URLParam(r, "deckID"), collection.DeckPatch{
		Name:        req.Name,
		Format:      req.Format,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, deck)
}

// DeleteDeck deletes a deck.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDeck(r.Context(), chi.URLParam(r, "deckID")); err != nil {
		writeError(w, r, err)
		return
	}

	response.NoContent(w)
}

// DeckCardRequest adds copies of one catalog card to a deck.
type DeckCardRequest struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// AddCard fetches the card from the catalog and adds it to the deck.
func (h *DeckHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req DeckCardRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	card, err := h.catalog.GetCard(r.Context(), req.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	deck, err := h.service.AddCardsToDeck(r.Context(), chi.URLParam(r, "deckID"), []resolve.Resolved{{
		Quantity: req.Quantity,
		RawName:  card.Name,
		Found:    true,
		Card:     card,
		Outcome:  resolve.OutcomeFound,
	}})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, deck)
}

// DeckCardQuantityRequest sets the quantity of a deck card.
type DeckCardQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

// UpdateCardQuantity sets a deck card's quantity. Zero removes the card.
func (h *DeckHandler) UpdateCardQuantity(w http.ResponseWriter, r *http.Request) {
	var req DeckCardQuantityRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	deck, err := h.service.UpdateDeckCardQuantity(r.Context(), chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID"), *req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, deck)
}

// RemoveCard removes ?quantity= copies of a card from the deck, one by default.
func (h *DeckHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	qty, err := queryInt(r, "quantity", 1, 1, 1<<20)
	if err != nil {
		writeError(w, r, err)
		return
	}

	deck, err := h.service.RemoveCardFromDeck(r.Context(), chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID"), qty)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, deck)
}

// CommanderRequest names the commander card by catalog id. An empty id
// clears the commander.
type CommanderRequest struct {
	ID string `json:"id"`
}

// SetCommander sets or clears the deck's commander.
func (h *DeckHandler) SetCommander(w http.ResponseWriter, r *http.Request) {
	var req CommanderRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var card *scryfall.Card
	if id := strings.TrimSpace(req.ID); id != "" {
		var err error
		if card, err = h.catalog.GetCard(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
	}

	deck, err := h.service.SetCommander(r.Context(), chi.URLParam(r, "deckID"), card)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, deck)
}

// ExportDeck returns the deck as decklist text.
func (h *DeckHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := h.service.GetDeck(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	text := export.DeckDecklist(deck)
	_ = response.Attachment(w, export.FormatDecklist.ContentType(), deckFilename(deck.Name), func(out io.Writer) error {
		_, err := io.WriteString(out, text)
		return err
	})
}

// deckFilename turns a deck name into a safe download name.
func deckFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "deck.txt"
	}
	return b.String() + ".txt"
}
