package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/ramonehamilton/mtg-collector/internal/api/response"
	"github.com/ramonehamilton/mtg-collector/internal/collection"
)

// SettingsService reads and writes the saved settings.
type SettingsService interface {
	Settings(ctx context.Context) (collection.Settings, error)
	SaveSettings(ctx context.Context, settings collection.Settings) (collection.Settings, error)
}

// SettingsHandler handles settings-related API requests.
type SettingsHandler struct {
	service SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(service SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// GetSettings returns the saved settings.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, settings)
}

// UpdateSettingsRequest replaces the saved settings. Empty fields take
// their defaults.
type UpdateSettingsRequest struct {
	Language         string `json:"language" validate:"omitempty,min=2,max=3"`
	DefaultCondition string `json:"defaultCondition"`
}

// UpdateSettings saves the settings.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	settings, err := h.service.SaveSettings(r.Context(), collection.Settings{
		Language:         strings.ToLower(req.Language),
		DefaultCondition: req.DefaultCondition,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, settings)
}
