package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Research jobs
	mux.HandleFunc("/api/research", s.handleResearchCollection) // POST - submit a job
	mux.HandleFunc("/api/research/", s.handleResearchRoutes)    // GET/DELETE /{id}, GET /{id}/export

	// API routes - Catalog (exact patterns beat the /api/research/ prefix)
	mux.HandleFunc("/api/research/config/countries", s.app.ConfigHandler.CountriesHandler)
	mux.HandleFunc("/api/research/config/languages", s.app.ConfigHandler.LanguagesHandler)

	// API routes - Logs
	mux.HandleFunc("/api/logs/recent", s.app.WSHandler.GetRecentLogsHandler)

	// API routes - System
	mux.HandleFunc("/health", s.app.StatusHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleResearchCollection routes /api/research requests. Jobs are
// submitted with POST; progress is observed over the websocket feed,
// so there is no collection listing.
func (s *Server) handleResearchCollection(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, nil, s.app.ResearchHandler.CreateResearchHandler)
}

// handleResearchRoutes routes /api/research/{id} requests and subpaths
func (s *Server) handleResearchRoutes(w http.ResponseWriter, r *http.Request) {
	subroutes := []PathSuffixRouter{
		{Suffix: "/export", Handler: s.app.ResearchHandler.ExportResearchHandler},
	}
	if RouteByPathSuffix(w, r, "/api/research/", subroutes) {
		return
	}

	RouteResourceItem(w, r,
		s.app.ResearchHandler.GetResearchHandler,
		nil,
		s.app.ResearchHandler.DeleteResearchHandler)
}
