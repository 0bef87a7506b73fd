package jobstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// DefaultRetention is how long jobs stay retrievable after creation.
const DefaultRetention = 24 * time.Hour

// Store keeps every research job in memory behind a single RWMutex.
// Mutations run under the write lock; readers get Clone snapshots so the
// pipeline can keep mutating the stored copy without racing them.
type Store struct {
	mu        sync.RWMutex
	jobs      map[string]*models.ResearchJob
	cancels   map[string]context.CancelFunc
	retention time.Duration
	logger    arbor.ILogger
}

var _ interfaces.JobStore = (*Store)(nil)

// New creates a store. A non-positive retention falls back to
// DefaultRetention.
func New(retention time.Duration, logger arbor.ILogger) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{
		jobs:      make(map[string]*models.ResearchJob),
		cancels:   make(map[string]context.CancelFunc),
		retention: retention,
		logger:    logger.WithPrefix("jobstore"),
	}
}

// Create stores a new job and registers its cancel function. Expired jobs
// are swept on every create so the map cannot grow unbounded between the
// hourly sweeps.
func (s *Store) Create(job *models.ResearchJob, cancel context.CancelFunc) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("job must have an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(time.Now())

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}

	s.jobs[job.ID] = job
	if cancel != nil {
		s.cancels[job.ID] = cancel
	}

	s.logger.Debug().
		Str("job_id", job.ID).
		Int("job_count", len(s.jobs)).
		Msg("Job created")

	return nil
}

// Get returns a snapshot of the job, or false when the id is unknown.
func (s *Store) Get(id string) (*models.ResearchJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, false
	}
	return job.Clone(), true
}

// Update applies mutate to the stored job under the write lock. Updates to
// removed jobs miss the map and report false; a running pipeline treats
// that as "job is gone, stop reporting".
func (s *Store) Update(id string, mutate func(*models.ResearchJob)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return false
	}
	mutate(job)
	return true
}

// Cancel fires the job's cancel function, marks a processing job cancelled,
// and removes it. The pipeline goroutine sees the cancelled context at its
// next stage boundary; any result it still produces has nowhere to land.
func (s *Store) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return false
	}

	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
	if !job.IsTerminal() {
		job.MarkCancelled()
	}
	delete(s.jobs, id)

	s.logger.Info().Str("job_id", id).Msg("Job cancelled and removed")
	return true
}

// Delete removes the job without touching its state. The registered cancel
// function is still released so the job context does not leak.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; !exists {
		return false
	}

	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
	delete(s.jobs, id)

	s.logger.Debug().Str("job_id", id).Msg("Job removed")
	return true
}

// List returns snapshots of every stored job, newest first.
func (s *Store) List() []*models.ResearchJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ResearchJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Sweep removes jobs older than the retention window and returns how many
// were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(time.Now())
}

// Count returns the number of stored jobs.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func (s *Store) sweepLocked(now time.Time) int {
	cutoff := now.Add(-s.retention)
	removed := 0
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			if cancel, ok := s.cancels[id]; ok {
				cancel()
				delete(s.cancels, id)
			}
			delete(s.jobs, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info().
			Int("removed", removed).
			Int("remaining", len(s.jobs)).
			Msg("Swept expired jobs")
	}
	return removed
}
