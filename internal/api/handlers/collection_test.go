package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ramonehamilton/mtg-collector/internal/api/response"
	"github.com/ramonehamilton/mtg-collector/internal/cards/resolve"
	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-collector/internal/collection"
	"github.com/ramonehamilton/mtg-collector/internal/storage"
)

func TestCollectionHandler_GetCollection(t *testing.T) {
	entries := make([]collection.Entry, 0, 5)
	for i := 1; i <= 5; i++ {
		entries = append(entries, collection.Entry{ID: fmt.Sprintf("id-%d", i), Name: fmt.Sprintf("Card %d", i), Quantity: i})
	}
	entries = append(entries, collection.Entry{ID: "bolt", Name: "Lightning Bolt", Quantity: 4})

	tests := []struct {
		name           string
		query          string
		mockErr        error
		expectedStatus int
		expectedCount  int
		expectedTotal  int
	}{
		{"default page", "", nil, http.StatusOK, 6, 6},
		{"second page", "?page=2&page_size=4", nil, http.StatusOK, 2, 6},
		{"past the end", "?page=9&page_size=4", nil, http.StatusOK, 0, 6},
		{"name filter", "?q=bolt", nil, http.StatusOK, 1, 1},
		{"bad page", "?page=zero", nil, http.StatusBadRequest, 0, 0},
		{"page size too large", "?page_size=10000", nil, http.StatusBadRequest, 0, 0},
		{"storage error", "", fmt.Errorf("%w: boom", storage.ErrStore), http.StatusInternalServerError, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockService{entries: entries, err: tt.mockErr}
			handler := NewCollectionHandler(mock, newMockCatalog())

			rec := serve(http.MethodGet, "/collection", "/collection"+tt.query, nil, handler.GetCollection)
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if rec.Code != http.StatusOK {
				return
			}

			var resp struct {
				Data       []collection.Entry `json:"data"`
				TotalCount int                `json:"total_count"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Data) != tt.expectedCount {
				t.Errorf("expected %d entries, got %d", tt.expectedCount, len(resp.Data))
			}
			if resp.TotalCount != tt.expectedTotal {
				t.Errorf("expected total %d, got %d", tt.expectedTotal, resp.TotalCount)
			}
		})
	}
}

func TestCollectionHandler_GetEntry(t *testing.T) {
	tests := []struct {
		name           string
		mockErr        error
		expectedStatus int
	}{
		{"found", nil, http.StatusOK},
		{"missing", fmt.Errorf("entry x: %w", collection.ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockService{entry: collection.Entry{ID: "bolt", Name: "Lightning Bolt", Quantity: 4}, err: tt.mockErr}
			handler := NewCollectionHandler(mock, newMockCatalog())

			rec := serve(http.MethodGet, "/collection/{entryID}", "/collection/bolt", nil, handler.GetEntry)
			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

func TestCollectionHandler_AddCard(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{"adds card", AddCardRequest{ID: "bolt-id", Quantity: 2, Foil: true, Condition: "lp"}, http.StatusCreated},
		{"missing id", AddCardRequest{Quantity: 2}, http.StatusBadRequest},
		{"zero quantity", AddCardRequest{ID: "bolt-id"}, http.StatusBadRequest},
		{"unknown field", `{"id":"bolt-id","quantity":1,"price":3}`, http.StatusBadRequest},
		{"empty body", "", http.StatusBadRequest},
		{"unknown card", AddCardRequest{ID: "nope", Quantity: 1}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockService{entry: collection.Entry{ID: "bolt-id", Quantity: 2}}
			handler := NewCollectionHandler(mock, newMockCatalog())

			rec := serve(http.MethodPost, "/collection/cards", "/collection/cards", tt.body, handler.AddCard)
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if rec.Code == http.StatusCreated {
				if mock.addedCard == nil || mock.addedCard.ID != "bolt-id" || mock.addedQty != 2 {
					t.Errorf("service got card %+v qty %d", mock.addedCard, mock.addedQty)
				}
				if !mock.addOpts.Foil || mock.addOpts.Condition != "lp" {
					t.Errorf("options not passed through: %+v", mock.addOpts)
				}
			}
		})
	}
}

func TestCollectionHandler_AddCard_ValidationFields(t *testing.T) {
	handler := NewCollectionHandler(&mockService{}, newMockCatalog())

	rec := serve(http.MethodPost, "/collection/cards", "/collection/cards", `{"quantity":0}`, handler.AddCard)

	var resp response.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Fields["id"] != "is required" {
		t.Errorf("expected id to be reported, got %v", resp.Fields)
	}
	if _, ok := resp.Fields["quantity"]; !ok {
		t.Errorf("expected quantity to be reported, got %v", resp.Fields)
	}
}

func TestCollectionHandler_AddCard_CatalogDown(t *testing.T) {
	catalog := newMockCatalog()
	catalog.err = &scryfall.TransportError{URL: "/cards/bolt-id", StatusCode: http.StatusServiceUnavailable}
	handler := NewCollectionHandler(&mockService{}, catalog)

	rec := serve(http.MethodPost, "/collection/cards", "/collection/cards", AddCardRequest{ID: "bolt-id", Quantity: 1}, handler.AddCard)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected status %d, got %d", http.StatusBadGateway, rec.Code)
	}
}

func TestCollectionHandler_UpdateEntry(t *testing.T) {
	kept := &collection.Entry{ID: "bolt", Quantity: 3}

	tests := []struct {
		name           string
		body           string
		updated        *collection.Entry
		mockErr        error
		expectedStatus int
	}{
		{"updates", `{"quantity":3,"notes":"binder"}`, kept, nil, http.StatusOK},
		{"deletes at zero", `{"quantity":0}`, nil, nil, http.StatusNoContent},
		{"bad condition", `{"condition":"mint"}`, nil, fmt.Errorf("%w: %q", collection.ErrInvalidCondition, "mint"), http.StatusBadRequest},
		{"missing entry", `{"foil":true}`, nil, collection.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockService{updated: tt.updated, err: tt.mockErr}
			handler := NewCollectionHandler(mock, newMockCatalog())

			rec := serve(http.MethodPatch, "/collection/{entryID}", "/collection/bolt", tt.body, handler.UpdateEntry)
			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCollectionHandler_UpdateEntry_PassesOnlyGivenFields(t *testing.T) {
	mock := &mockService{updated: &collection.Entry{ID: "bolt"}}
	handler := NewCollectionHandler(mock, newMockCatalog())

	serve(http.MethodPatch, "/collection/{entryID}", "/collection/bolt", `{"notes":"binder"}`, handler.UpdateEntry)

	if mock.patch.Quantity != nil || mock.patch.Foil != nil || mock.patch.Condition != nil {
		t.Errorf("unset fields must stay nil: %+v", mock.patch)
	}
	if mock.patch.Notes == nil || *mock.patch.Notes != "binder" {
		t.Errorf("notes not passed: %+v", mock.patch)
	}
}

func TestCollectionHandler_RemoveCard(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		expectedStatus int
		expectedQty    int
	}{
		{"default one copy", "/collection/bolt", http.StatusOK, 1},
		{"explicit quantity", "/collection/bolt?quantity=3", http.StatusOK, 3},
		{"zero quantity", "/collection/bolt?quantity=0", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockService{left: 1}
			handler := NewCollectionHandler(mock, newMockCatalog())

			rec := serve(http.MethodDelete, "/collection/{entryID}", tt.target, nil, handler.RemoveCard)
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if mock.removedQty != tt.expectedQty {
				t.Errorf("expected quantity %d, got %d", tt.expectedQty, mock.removedQty)
			}
			if rec.Code == http.StatusOK {
				var data map[string]int
				decodeData(t, rec, &data)
				if data["remaining"] != 1 {
					t.Errorf("expected remaining 1, got %v", data)
				}
			}
		})
	}
}

func TestCollectionHandler_ImportDecklist(t *testing.T) {
	report := collection.ImportReport{
		Lines:    2,
		Found:    1,
		NotFound: 1,
		Missing:  []collection.MissingCard{{Quantity: 1, Name: "Ligthning Bolt", Outcome: resolve.OutcomeNotFound, Suggestions: []string{"Lightning Bolt"}}},
	}

	tests := []struct {
		name           string
		body           any
		mockErr        error
		expectedStatus int
	}{
		{"imports", ImportRequest{Decklist: "4 Sol Ring\n1 Ligthning Bolt", Lang: "DE"}, nil, http.StatusOK},
		{"empty decklist", ImportRequest{}, nil, http.StatusBadRequest},
		{"bad language", ImportRequest{Decklist: "1 Sol Ring", Lang: "german"}, nil, http.StatusBadRequest},
		{"no resolver", ImportRequest{Decklist: "1 Sol Ring"}, collection.ErrNoResolver, http.StatusServiceUnavailable},
		{"store failure", ImportRequest{Decklist: "1 Sol Ring"}, errors.Join(storage.ErrStore, errors.New("disk full")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockService{report: report, err: tt.mockErr}
			handler := NewCollectionHandler(mock, newMockCatalog())

			rec := serve(http.MethodPost, "/collection/import", "/collection/import", tt.body, handler.ImportDecklist)
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if rec.Code != http.StatusOK {
				return
			}

			if mock.importLang != "de" {
				t.Errorf("expected language to be lowercased, got %q", mock.importLang)
			}
			var got collection.ImportReport
			decodeData(t, rec, &got)
			if got.Found != 1 || len(got.Missing) != 1 || got.Missing[0].Suggestions[0] != "Lightning Bolt" {
				t.Errorf("unexpected report: %+v", got)
			}
		})
	}
}

func TestCollectionHandler_GetCollectionStats(t *testing.T) {
	mock := &mockService{stats: collection.Stats{TotalCards: 7, UniqueCards: 2}}
	handler := NewCollectionHandler(mock, newMockCatalog())

	rec := serve(http.MethodGet, "/collection/stats", "/collection/stats", nil, handler.GetCollectionStats)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var got collection.Stats
	decodeData(t, rec, &got)
	if got.TotalCards != 7 || got.UniqueCards != 2 {
		t.Errorf("unexpected stats: %+v", got)
	}
}
