package research

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/catalog"
	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/services/events"
)

// Service orchestrates the research pipeline. It owns the job lifecycle from
// validated request to terminal state and drives the stage services in order:
// scrape, seed extraction, metrics enrichment, clustering, AI enhancement.
type Service struct {
	store    interfaces.JobStore
	limiter  interfaces.RateLimiter
	scraper  interfaces.ScraperService
	seeds    interfaces.SeedGenerator
	metrics  interfaces.MetricsService
	engine   interfaces.ClusterEngine
	enhancer interfaces.AIEnhancer
	events   interfaces.EventService
	config   *common.Config
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService wires the orchestrator. enhancer and eventService may be nil:
// AI passes are skipped and no events are published in that case.
func NewService(
	store interfaces.JobStore,
	limiter interfaces.RateLimiter,
	scraper interfaces.ScraperService,
	seeds interfaces.SeedGenerator,
	metrics interfaces.MetricsService,
	engine interfaces.ClusterEngine,
	enhancer interfaces.AIEnhancer,
	eventService interfaces.EventService,
	config *common.Config,
	logger arbor.ILogger,
) interfaces.ResearchService {
	return &Service{
		store:    store,
		limiter:  limiter,
		scraper:  scraper,
		seeds:    seeds,
		metrics:  metrics,
		engine:   engine,
		enhancer: enhancer,
		events:   eventService,
		config:   config,
		validate: validator.New(),
		logger:   logger.WithPrefix("research"),
	}
}

// StartResearch validates the request, charges the caller's rate budget, and
// launches the pipeline in the background. The returned snapshot reflects the
// job as stored, before any stage has run.
func (s *Service) StartResearch(ctx context.Context, req *models.ResearchRequest, clientIP string) (*models.ResearchJob, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	if allowed, retryAfter := s.limiter.Allow(clientIP); !allowed {
		s.logger.Warn().
			Str("client_ip", clientIP).
			Int("retry_after_s", retryAfter).
			Msg("Job creation rate limited")
		return nil, models.NewRateLimitError(retryAfter)
	}

	options := models.ResearchOptions{}
	if req.Options != nil {
		options = *req.Options
	}
	options.Normalize(s.config.Research.MaxPages)

	resolved := catalog.ResolveLanguage(req.Language, req.Country)
	job := models.NewResearchJob(req.URL, req.Country, req.Language, resolved, options, clientIP)

	// The pipeline outlives the creating request, so the job context derives
	// from Background. Cancellation comes through the store on delete or sweep.
	jobCtx, cancel := context.WithCancel(context.Background())
	if err := s.store.Create(job, cancel); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to store job: %w", err)
	}

	snapshot := job.Clone()
	s.publish(ctx, interfaces.EventJobCreated, snapshot)

	s.logger.Info().
		Str("job_id", job.ID).
		Str("url", job.URL).
		Str("country", job.Country).
		Str("language", job.ResolvedLanguage).
		Int("max_pages", options.MaxPages).
		Msg("Research job created")

	common.SafeGoWithContext(jobCtx, s.logger, "research.pipeline", func() {
		s.runStored(jobCtx, job.ID)
	})

	return snapshot, nil
}

// GetJob returns a snapshot of the job.
func (s *Service) GetJob(id string) (*models.ResearchJob, error) {
	if !models.ValidateJobID(id) {
		return nil, fmt.Errorf("%w: malformed job id %q", models.ErrInvalidInput, id)
	}
	job, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: job %s", models.ErrNotFound, id)
	}
	return job, nil
}

// DeleteJob cancels a processing job and removes it from the store. Deleting
// a finished job just removes it.
func (s *Service) DeleteJob(id string) error {
	if !models.ValidateJobID(id) {
		return fmt.Errorf("%w: malformed job id %q", models.ErrInvalidInput, id)
	}

	snapshot, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: job %s", models.ErrNotFound, id)
	}
	if !s.store.Cancel(id) {
		return fmt.Errorf("%w: job %s", models.ErrNotFound, id)
	}

	if !snapshot.IsTerminal() {
		snapshot.MarkCancelled()
		s.publish(context.Background(), interfaces.EventJobCancelled, snapshot)
	}

	s.logger.Info().Str("job_id", id).Msg("Research job deleted")
	return nil
}

// publish fans a job lifecycle event out without blocking the pipeline.
func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, snapshot *models.ResearchJob) {
	if s.events == nil || snapshot == nil {
		return
	}
	if err := s.events.Publish(ctx, events.NewJobEvent(eventType, snapshot)); err != nil {
		s.logger.Warn().
			Err(err).
			Str("job_id", snapshot.ID).
			Msg("Failed to publish job event")
	}
}
