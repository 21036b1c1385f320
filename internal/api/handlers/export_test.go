package handlers

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ramonehamilton/mtg-collector/internal/collection"
	"github.com/ramonehamilton/mtg-collector/internal/export"
)

func newTestExportHandler(mock *mockService) *ExportHandler {
	h := NewExportHandler(mock)
	h.now = func() time.Time { return time.Date(2024, 5, 4, 10, 30, 0, 0, time.UTC) }
	return h
}

func TestExportHandler_ExportCollection(t *testing.T) {
	entries := []collection.Entry{
		{ID: "ring", Name: "Sol Ring", Quantity: 2, Condition: "NM"},
		{ID: "bolt", Name: "Lightning Bolt", Quantity: 4, Condition: "NM"},
	}

	tests := []struct {
		name            string
		query           string
		expectedStatus  int
		expectedType    string
		expectedFile    string
		expectedContent string
	}{
		{"json by default", "", http.StatusOK, "application/json", "collection_20240504_103000.json", `"version":"1.0"`},
		{"csv", "?format=csv", http.StatusOK, "text/csv; charset=utf-8", "collection_20240504_103000.csv", `"Sol Ring",2,`},
		{"decklist", "?format=txt", http.StatusOK, "text/plain; charset=utf-8", "collection_20240504_103000.txt", "4 Lightning Bolt\n2 Sol Ring\n"},
		{"unknown format", "?format=xml", http.StatusBadRequest, "application/json", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestExportHandler(&mockService{entries: entries, decks: []collection.Deck{{ID: "d", Name: "Deck"}}})

			rec := serve(http.MethodGet, "/export/collection", "/export/collection"+tt.query, nil, handler.ExportCollection)
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != tt.expectedType {
				t.Errorf("expected Content-Type %q, got %q", tt.expectedType, got)
			}
			if tt.expectedFile != "" && !strings.Contains(rec.Header().Get("Content-Disposition"), tt.expectedFile) {
				t.Errorf("expected filename %s in %q", tt.expectedFile, rec.Header().Get("Content-Disposition"))
			}
			if !strings.Contains(rec.Body.String(), tt.expectedContent) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedContent, rec.Body.String())
			}
		})
	}
}

func TestExportHandler_GetExportFormats(t *testing.T) {
	handler := newTestExportHandler(&mockService{})

	rec := serve(http.MethodGet, "/export/formats", "/export/formats", nil, handler.GetExportFormats)

	var formats []map[string]string
	decodeData(t, rec, &formats)
	if len(formats) != 3 {
		t.Errorf("expected 3 formats, got %d", len(formats))
	}
}

func TestExportHandler_Restore(t *testing.T) {
	var backup bytes.Buffer
	snap := export.NewSnapshot(
		[]collection.Entry{{ID: "bolt", Name: "Lightning Bolt", Quantity: 4}},
		[]collection.Deck{{ID: "deck-1", Name: "Burn"}},
		time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC),
	)
	if err := export.WriteJSON(&backup, snap, false); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"restores", backup.String(), http.StatusOK},
		{"not an export", `{"collection":[]}`, http.StatusBadRequest},
		{"unknown version", `{"version":"9.0"}`, http.StatusBadRequest},
		{"garbage", `<xml/>`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockService{}
			handler := newTestExportHandler(mock)

			rec := serve(http.MethodPost, "/import/backup", "/import/backup", tt.body, handler.Restore)
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if rec.Code != http.StatusOK {
				if mock.restored != nil {
					t.Error("a rejected export must not reach the service")
				}
				return
			}

			var got RestoreResult
			decodeData(t, rec, &got)
			if got.Entries != 1 || got.Decks != 1 {
				t.Errorf("unexpected result: %+v", got)
			}
			if len(mock.restored) != 1 || mock.restored[0].Name != "Lightning Bolt" || len(mock.restoredDecks) != 1 {
				t.Errorf("service got %+v / %+v", mock.restored, mock.restoredDecks)
			}
		})
	}
}
