package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ramonehamilton/mtg-collector/internal/api/handlers"
	"github.com/ramonehamilton/mtg-collector/internal/api/response"
	"github.com/ramonehamilton/mtg-collector/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)
	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		collectionHandler := handlers.NewCollectionHandler(s.service, s.catalog)
		r.Route("/collection", func(r chi.Router) {
			r.Get("/", collectionHandler.GetCollection)
			r.Get("/stats", collectionHandler.GetCollectionStats)
			r.Post("/import", collectionHandler.ImportDecklist)
			r.Post("/cards", collectionHandler.AddCard)
			r.Get("/{entryID}", collectionHandler.GetEntry)
			r.Patch("/{entryID}", collectionHandler.UpdateEntry)
			r.Delete("/{entryID}", collectionHandler.RemoveCard)
		})

		deckHandler := handlers.NewDeckHandler(s.service, s.catalog)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.GetDecks)
			r.Post("/", deckHandler.CreateDeck)
			r.Get("/{deckID}", deckHandler.GetDeck)
			r.Patch("/{deckID}", deckHandler.UpdateDeck)
			r.Delete("/{deckID}", deckHandler.DeleteDeck)
			r.Get("/{deckID}/export", deckHandler.ExportDeck)
			r.Put("/{deckID}/commander", deckHandler.SetCommander)
			r.Post("/{deckID}/cards", deckHandler.AddCard)
			r.Put("/{deckID}/cards/{cardID}", deckHandler.UpdateCardQuantity)
			r.Delete("/{deckID}/cards/{cardID}", deckHandler.RemoveCard)
		})

		cardHandler := handlers.NewCardHandler(s.catalog)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/autocomplete", cardHandler.Autocomplete)
			r.Get("/named", cardHandler.GetCardByName)
			r.Get("/{cardID}", cardHandler.GetCard)
		})

		settingsHandler := handlers.NewSettingsHandler(s.service)
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.GetSettings)
			r.Put("/", settingsHandler.UpdateSettings)
		})

		exportHandler := handlers.NewExportHandler(s.service)
		r.Get("/export/collection", exportHandler.ExportCollection)
		r.Get("/export/formats", exportHandler.GetExportFormats)
		r.Post("/import/backup", exportHandler.Restore)
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "mtg-collector-api",
		"version": version.Version,
	})
}
