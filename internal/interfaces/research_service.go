package interfaces

import (
	"context"

	"github.com/ternarybob/indago/internal/models"
)

// ResearchService is the front door of the pipeline: it validates requests,
// enforces rate limits, and runs jobs asynchronously.
type ResearchService interface {
	// StartResearch validates the request, creates the job, and launches
	// the pipeline in the background. It returns the created job snapshot
	// immediately.
	StartResearch(ctx context.Context, req *models.ResearchRequest, clientIP string) (*models.ResearchJob, error)

	// GetJob returns a snapshot of the job.
	GetJob(id string) (*models.ResearchJob, error)

	// DeleteJob cancels a processing job and removes it from the store.
	DeleteJob(id string) error

	// Run executes the full pipeline synchronously against the given job,
	// mutating it in place through to a terminal state. The caller owns the
	// job; nothing is stored or published.
	Run(ctx context.Context, job *models.ResearchJob) (*models.ResearchResult, error)
}
