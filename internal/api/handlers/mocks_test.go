package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtg-collector/internal/cards/resolve"
	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-collector/internal/collection"
)

// mockService implements every service interface the handlers use.
type mockService struct {
	entries  []collection.Entry
	entry    collection.Entry
	updated  *collection.Entry
	report   collection.ImportReport
	stats    collection.Stats
	decks    []collection.Deck
	deck     collection.Deck
	settings collection.Settings
	left     int
	err      error

	// recorded arguments
	addedCard     *scryfall.Card
	addedQty      int
	addOpts       collection.AddOptions
	removedID     string
	removedQty    int
	patch         collection.EntryPatch
	importText    string
	importLang    string
	newDeck       collection.NewDeck
	deckResults   []resolve.Resolved
	deckPatch     collection.DeckPatch
	commander     *scryfall.Card
	commanderSet  bool
	restored      []collection.Entry
	restoredDecks []collection.Deck
	savedSettings collection.Settings
}

func (m *mockService) Collection(_ context.Context) ([]collection.Entry, error) {
	return m.entries, m.err
}

func (m *mockService) GetEntry(_ context.Context, _ string) (collection.Entry, error) {
	return m.entry, m.err
}

func (m *mockService) AddCard(_ context.Context, card *scryfall.Card, qty int, opts collection.AddOptions) (collection.Entry, error) {
	m.addedCard, m.addedQty, m.addOpts = card, qty, opts
	return m.entry, m.err
}

func (m *mockService) RemoveCard(_ context.Context, id string, qty int) (int, error) {
	m.removedID, m.removedQty = id, qty
	return m.left, m.err
}

func (m *mockService) UpdateEntry(_ context.Context, _ string, patch collection.EntryPatch) (*collection.Entry, error) {
	m.patch = patch
	return m.updated, m.err
}

func (m *mockService) ImportDecklist(_ context.Context, text, lang string) (collection.ImportReport, error) {
	m.importText, m.importLang = text, lang
	return m.report, m.err
}

func (m *mockService) Stats(_ context.Context) (collection.Stats, error) {
	return m.stats, m.err
}

func (m *mockService) ListDecks(_ context.Context) ([]collection.Deck, error) {
	return m.decks, m.err
}

func (m *mockService) GetDeck(_ context.Context, _ string) (collection.Deck, error) {
	return m.deck, m.err
}

func (m *mockService) CreateDeck(_ context.Context, spec collection.NewDeck, results []resolve.Resolved) (collection.Deck, error) {
	m.newDeck, m.deckResults = spec, results
	return m.deck, m.err
}

func (m *mockService) CreateDeckFromDecklist(_ context.Context, spec collection.NewDeck, text, lang string) (collection.Deck, collection.ImportReport, error) {
	m.newDeck, m.importText, m.importLang = spec, text, lang
	return m.deck, m.report, m.err
}

func (m *mockService) UpdateDeck(_ context.Context, _ string, patch collection.DeckPatch) (collection.Deck, error) {
	m.deckPatch = patch
	return m.deck, m.err
}

func (m *mockService) DeleteDeck(_ context.Context, _ string) error {
	return m.err
}

func (m *mockService) AddCardsToDeck(_ context.Context, _ string, results []resolve.Resolved) (collection.Deck, error) {
	m.deckResults = results
	return m.deck, m.err
}

func (m *mockService) RemoveCardFromDeck(_ context.Context, _, cardID string, qty int) (collection.Deck, error) {
	m.removedID, m.removedQty = cardID, qty
	return m.deck, m.err
}

func (m *mockService) UpdateDeckCardQuantity(_ context.Context, _, cardID string, qty int) (collection.Deck, error) {
	m.removedID, m.removedQty = cardID, qty
	return m.deck, m.err
}

func (m *mockService) SetCommander(_ context.Context, _ string, card *scryfall.Card) (collection.Deck, error) {
	m.commander, m.commanderSet = card, true
	return m.deck, m.err
}

func (m *mockService) Restore(_ context.Context, entries []collection.Entry, decks []collection.Deck) error {
	m.restored, m.restoredDecks = entries, decks
	return m.err
}

func (m *mockService) Settings(_ context.Context) (collection.Settings, error) {
	return m.settings, m.err
}

func (m *mockService) SaveSettings(_ context.Context, settings collection.Settings) (collection.Settings, error) {
	m.savedSettings = settings
	return settings, m.err
}

// mockCatalog serves cards by id and name.
type mockCatalog struct {
	cards map[string]*scryfall.Card
	names []string
	err   error
}

func (m *mockCatalog) GetCard(_ context.Context, id string) (*scryfall.Card, error) {
	if m.err != nil {
		return nil, m.err
	}
	if card, ok := m.cards[id]; ok {
		return card, nil
	}
	return nil, &scryfall.NotFoundError{URL: "/cards/" + id}
}

func (m *mockCatalog) GetCardByExactName(ctx context.Context, name string) (*scryfall.Card, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, card := range m.cards {
		if card.Name == name {
			return card, nil
		}
	}
	return nil, &scryfall.NotFoundError{URL: "/cards/named"}
}

func (m *mockCatalog) GetCardByFuzzyName(ctx context.Context, name string) (*scryfall.Card, error) {
	return m.GetCardByExactName(ctx, name)
}

func (m *mockCatalog) Autocomplete(_ context.Context, _ string) ([]string, error) {
	return m.names, m.err
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{cards: map[string]*scryfall.Card{
		"bolt-id": {ID: "bolt-id", Name: "Lightning Bolt", Lang: "en"},
		"ring-id": {ID: "ring-id", Name: "Sol Ring", Lang: "en"},
	}}
}

// serve routes one request through a chi router so URL params resolve.
func serve(method, pattern, target string, body any, h http.HandlerFunc) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	r := chi.NewRouter()
	r.Method(method, pattern, h)

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the "data" member of a success envelope.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}
