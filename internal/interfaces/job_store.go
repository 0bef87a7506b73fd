package interfaces

import (
	"context"

	"github.com/ternarybob/indago/internal/models"
)

// JobStore owns every research job for the life of the process. Mutations
// are serialized; readers receive snapshots and never observe a job mid-write.
type JobStore interface {
	// Create stores a new job and registers its cancel function.
	Create(job *models.ResearchJob, cancel context.CancelFunc) error

	// Get returns a snapshot of the job, or false when the id is unknown.
	Get(id string) (*models.ResearchJob, bool)

	// Update applies the mutator to the stored job under the write lock.
	// It reports false when the id is unknown.
	Update(id string, mutate func(*models.ResearchJob)) bool

	// Cancel fires the job's cancel function, marks it cancelled, and
	// removes it from the store.
	Cancel(id string) bool

	// Delete removes the job without touching its state.
	Delete(id string) bool

	// List returns snapshots of every stored job, newest first.
	List() []*models.ResearchJob

	// Sweep removes jobs older than the retention TTL and returns how many
	// were dropped.
	Sweep() int

	// Count returns the number of stored jobs.
	Count() int
}
