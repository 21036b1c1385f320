package handlers

import (
	"net/http"
	"testing"

	"github.com/ramonehamilton/mtg-collector/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-collector/internal/collection"
)

func TestCardHandler_Autocomplete(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		expectedNames int
	}{
		{"returns names", "?q=Light", 2},
		{"short prefix skips the catalog", "?q=L", 0},
		{"missing query", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newMockCatalog()
			catalog.names = []string{"Lightning Bolt", "Lightning Helix"}
			handler := NewCardHandler(catalog)

			rec := serve(http.MethodGet, "/cards/autocomplete", "/cards/autocomplete"+tt.query, nil, handler.Autocomplete)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}

			var names []string
			decodeData(t, rec, &names)
			if len(names) != tt.expectedNames {
				t.Errorf("expected %d names, got %v", tt.expectedNames, names)
			}
		})
	}
}

func TestCardHandler_GetCardByName(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
	}{
		{"exact", "?exact=Sol+Ring", http.StatusOK},
		{"fuzzy", "?fuzzy=Lightning+Bolt", http.StatusOK},
		{"unknown", "?exact=Nope", http.StatusNotFound},
		{"no name", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCardHandler(newMockCatalog())

			rec := serve(http.MethodGet, "/cards/named", "/cards/named"+tt.query, nil, handler.GetCardByName)
			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

func TestCardHandler_GetCard(t *testing.T) {
	handler := NewCardHandler(newMockCatalog())

	rec := serve(http.MethodGet, "/cards/{cardID}", "/cards/ring-id", nil, handler.GetCard)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var card scryfall.Card
	decodeData(t, rec, &card)
	if card.Name != "Sol Ring" {
		t.Errorf("expected Sol Ring, got %q", card.Name)
	}
}

func TestSettingsHandler(t *testing.T) {
	mock := &mockService{settings: collection.DefaultSettings()}
	handler := NewSettingsHandler(mock)

	rec := serve(http.MethodGet, "/settings", "/settings", nil, handler.GetSettings)
	var got collection.Settings
	decodeData(t, rec, &got)
	if got != collection.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}

	rec = serve(http.MethodPut, "/settings", "/settings", UpdateSettingsRequest{Language: "JA", DefaultCondition: "lp"}, handler.UpdateSettings)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if mock.savedSettings.Language != "ja" || mock.savedSettings.DefaultCondition != "lp" {
		t.Errorf("unexpected saved settings: %+v", mock.savedSettings)
	}

	rec = serve(http.MethodPut, "/settings", "/settings", `{"language":"japanese"}`, handler.UpdateSettings)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
