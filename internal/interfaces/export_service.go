package interfaces

import "github.com/ternarybob/indago/internal/models"

// ExportFormat names a supported download format.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportPDF  ExportFormat = "pdf"
)

// Export is a rendered download: bytes plus HTTP metadata.
type Export struct {
	ContentType string
	Filename    string
	Data        []byte
}

// ExportService renders a completed research result for download.
type ExportService interface {
	Render(result *models.ResearchResult, format ExportFormat) (*Export, error)
}
