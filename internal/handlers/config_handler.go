package handlers

import (
	"net/http"

	"github.com/ternarybob/indago/internal/catalog"
)

// ConfigHandler serves the static research configuration catalogs.
type ConfigHandler struct{}

// NewConfigHandler creates a new config handler.
func NewConfigHandler() *ConfigHandler {
	return &ConfigHandler{}
}

// CountriesHandler handles GET /api/research/config/countries
func (h *ConfigHandler) CountriesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, catalog.Countries())
}

// LanguagesHandler handles GET /api/research/config/languages
func (h *ConfigHandler) LanguagesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, catalog.Languages())
}
