package export

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// Service renders completed research results into downloadable files.
type Service struct {
	logger arbor.ILogger
}

// NewService creates an export service.
func NewService(logger arbor.ILogger) interfaces.ExportService {
	return &Service{
		logger: logger.WithPrefix("export"),
	}
}

// Render produces the download bytes plus HTTP metadata for the given format.
func (s *Service) Render(result *models.ResearchResult, format interfaces.ExportFormat) (*interfaces.Export, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: no result to export", models.ErrInvalidInput)
	}

	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case interfaces.ExportJSON:
		data, err = json.MarshalIndent(result, "", "  ")
		contentType = "application/json"
	case interfaces.ExportCSV:
		data, err = renderCSV(result)
		contentType = "text/csv"
	case interfaces.ExportPDF:
		data, err = markdownToPDF(MarkdownReport(result))
		contentType = "application/pdf"
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", models.ErrInvalidInput, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	export := &interfaces.Export{
		ContentType: contentType,
		Filename:    exportFilename(result, string(format)),
		Data:        data,
	}

	s.logger.Debug().
		Str("format", string(format)).
		Str("filename", export.Filename).
		Int("size", len(export.Data)).
		Msg("Export rendered")

	return export, nil
}

// exportFilename derives the download name from the researched host and the
// result generation date.
func exportFilename(result *models.ResearchResult, ext string) string {
	host := "site"
	if u, err := url.Parse(result.URL); err == nil && u.Hostname() != "" {
		host = strings.ReplaceAll(u.Hostname(), ".", "-")
	}
	stamp := result.GeneratedAt
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}
	return fmt.Sprintf("keyword-research-%s-%s.%s", host, stamp.Format("20060102"), ext)
}
