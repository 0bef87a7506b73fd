package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// ResearchHandler serves the research job API: create, poll, delete, export.
type ResearchHandler struct {
	service  interfaces.ResearchService
	exporter interfaces.ExportService
	config   *common.Config
	logger   arbor.ILogger
}

// NewResearchHandler creates a new research handler.
func NewResearchHandler(service interfaces.ResearchService, exporter interfaces.ExportService, config *common.Config, logger arbor.ILogger) *ResearchHandler {
	return &ResearchHandler{
		service:  service,
		exporter: exporter,
		config:   config,
		logger:   logger.WithPrefix("research_handler"),
	}
}

// CreateResearchHandler handles POST /api/research
// Accepts the job and returns immediately; the pipeline runs in the background.
func (h *ResearchHandler) CreateResearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxBodyBytes)

	var req models.ResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	clientIP := ClientIP(r, h.config.Server.TrustProxy)

	job, err := h.service.StartResearch(r.Context(), &req, clientIP)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	h.logger.Info().
		Str("job_id", job.ID).
		Str("url", job.URL).
		Str("country", job.Country).
		Msg("Research job accepted")

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(job.Status),
	})
}

// GetResearchHandler handles GET /api/research/{id}
// Returns the job snapshot including progress and, once completed, the result.
func (h *ResearchHandler) GetResearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	jobID := researchJobID(r.URL.Path)
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := h.service.GetJob(jobID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// DeleteResearchHandler handles DELETE /api/research/{id}
// Cancels the job if it is still processing and removes it from the store.
func (h *ResearchHandler) DeleteResearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	jobID := researchJobID(r.URL.Path)
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	if err := h.service.DeleteJob(jobID); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	h.logger.Info().Str("job_id", jobID).Msg("Research job deleted")

	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Job deleted",
		"jobId":   jobID,
	})
}

// ExportResearchHandler handles GET /api/research/{id}/export?format=json|csv|pdf
// Streams the rendered result as a file download.
func (h *ResearchHandler) ExportResearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	jobID := researchJobID(r.URL.Path)
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := h.service.GetJob(jobID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if job.Status != models.JobStatusCompleted || job.Data == nil {
		WriteError(w, http.StatusBadRequest, "Job is not completed")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = string(interfaces.ExportJSON)
	}

	export, err := h.exporter.Render(job.Data, interfaces.ExportFormat(format))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	h.logger.Info().
		Str("job_id", jobID).
		Str("format", format).
		Int("bytes", len(export.Data)).
		Msg("Research export served")

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(export.Data)
}

// researchJobID extracts the job ID segment from /api/research/{id} and
// /api/research/{id}/export paths.
func researchJobID(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}
