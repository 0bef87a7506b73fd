package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/services/ai"
)

// maxSeedKeywords caps how many seed phrases are requested per job.
const maxSeedKeywords = 100

// siteContextPageCap bounds how many pages feed the relevance context; the
// context text also flows into AI prompts, so it has to stay small.
const siteContextPageCap = 10

// errJobGone signals that the job disappeared from the store mid-run: it was
// deleted or swept, so the pipeline stops reporting and discards its work.
var errJobGone = errors.New("job no longer stored")

// progressFn advances the job to a progress signpost. A non-nil error means
// the job was cancelled or removed and the pipeline must stop.
type progressFn func(progress int, step string) error

// warnFn records a non-fatal problem on the job.
type warnFn func(message string)

// Run executes the full pipeline synchronously against the given job,
// mutating it in place through to a terminal state. The caller owns the job;
// nothing is stored or published. The MCP tools use this path.
func (s *Service) Run(ctx context.Context, job *models.ResearchJob) (*models.ResearchResult, error) {
	report := func(progress int, step string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		job.SetProgress(progress, step)
		return nil
	}

	result, err := s.execute(ctx, job, report, job.AddWarning)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			job.MarkCancelled()
			return nil, err
		}
		stage, message := s.failureLabel(err)
		job.MarkFailed(stage, message)
		return nil, err
	}

	job.MarkCompleted(result)
	return result, nil
}

// runStored drives the pipeline for a stored job, mirroring every state
// change into the store and onto the event bus. The stored job is only ever
// mutated under the store's write lock; execute works on a snapshot.
func (s *Service) runStored(ctx context.Context, jobID string) {
	stored, ok := s.store.Get(jobID)
	if !ok {
		return
	}

	report := func(progress int, step string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var snapshot *models.ResearchJob
		if !s.store.Update(jobID, func(j *models.ResearchJob) {
			j.SetProgress(progress, step)
			snapshot = j.Clone()
		}) {
			return errJobGone
		}
		s.publish(ctx, interfaces.EventJobProgress, snapshot)
		return nil
	}
	warn := func(message string) {
		var snapshot *models.ResearchJob
		if s.store.Update(jobID, func(j *models.ResearchJob) {
			j.AddWarning(message)
			snapshot = j.Clone()
		}) {
			s.publish(ctx, interfaces.EventJobProgress, snapshot)
		}
	}

	// Per-job logs carry the job id as correlation id so registered log
	// channels can attribute them.
	contextLogger := s.logger.WithContextWriter(jobID)
	contextLogger.Info().
		Str("job_id", jobID).
		Str("url", stored.URL).
		Msg("Research pipeline started")

	result, err := s.execute(ctx, stored, report, warn)
	switch {
	case err == nil:
		var snapshot *models.ResearchJob
		if s.store.Update(jobID, func(j *models.ResearchJob) {
			j.MarkCompleted(result)
			snapshot = j.Clone()
		}) {
			s.publish(ctx, interfaces.EventJobCompleted, snapshot)
			contextLogger.Info().
				Str("job_id", jobID).
				Int("clusters", result.TotalClusters).
				Int("keywords", result.TotalKeywords).
				Int64("elapsed_ms", snapshot.ProcessingTimeMs).
				Msg("Research completed")
		}
	case errors.Is(err, errJobGone):
		contextLogger.Debug().Str("job_id", jobID).Msg("Job removed mid-run, discarding result")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		contextLogger.Info().Str("job_id", jobID).Msg("Research cancelled")
	default:
		stage, message := s.failureLabel(err)
		var snapshot *models.ResearchJob
		if s.store.Update(jobID, func(j *models.ResearchJob) {
			j.MarkFailed(stage, message)
			snapshot = j.Clone()
		}) {
			s.publish(ctx, interfaces.EventJobFailed, snapshot)
		}
		contextLogger.Warn().
			Str("job_id", jobID).
			Str("stage", stage).
			Err(err).
			Msg("Research failed")
	}
}

// execute runs the pipeline stages in order against a job snapshot. All job
// mutations flow through report and warn so the stored and synchronous paths
// share the same stage logic. Cancellation is checked at every stage boundary;
// an in-flight remote call may finish, but its results are discarded.
func (s *Service) execute(ctx context.Context, job *models.ResearchJob, report progressFn, warn warnFn) (*models.ResearchResult, error) {
	if err := report(5, models.StepValidating); err != nil {
		return nil, err
	}

	if err := report(10, models.StepScanning); err != nil {
		return nil, err
	}
	if err := s.scraper.Probe(ctx, job.URL); err != nil {
		return nil, stageWrap(models.StepScanning, err)
	}
	scrape, err := s.scraper.Scrape(ctx, job.URL, interfaces.ScrapeOptions{
		MaxPages:    job.Options.MaxPages,
		FollowLinks: job.Options.ShouldFollowLinks(),
		Strategy:    job.Options.ScrapeStrategy,
	})
	if err != nil {
		return nil, stageWrap(models.StepScanning, err)
	}
	siteContext := buildSiteContext(job.URL, scrape)

	if err := report(30, models.StepExtracting); err != nil {
		return nil, err
	}
	seedPhrases, err := s.seeds.Generate(ctx, scrape, job.ResolvedLanguage, maxSeedKeywords)
	if err != nil {
		return nil, stageWrap(models.StepExtracting, err)
	}
	if len(seedPhrases) == 0 {
		return nil, models.NewStageError(models.StepExtracting, models.ErrNoSeeds, "no usable seed phrases from %d pages", len(scrape.Pages))
	}

	if err := report(50, models.StepEnriching); err != nil {
		return nil, err
	}
	keywords, err := s.metrics.GetKeywordMetrics(ctx, seedPhrases, job.Country, job.ResolvedLanguage)
	if err != nil {
		return nil, stageWrap(models.StepEnriching, err)
	}
	if len(keywords) == 0 {
		return nil, models.NewStageError(models.StepEnriching, models.ErrNoMetrics, "provider returned no metrics for %d seeds", len(seedPhrases))
	}

	if err := report(70, models.StepClustering); err != nil {
		return nil, err
	}
	clusters, err := s.engine.Cluster(keywords, interfaces.ClusterOptions{
		Algorithm:      job.Options.ClusterAlgo,
		MinClusterSize: job.Options.MinClusterSize,
	})
	if err != nil {
		return nil, stageWrap(models.StepClustering, err)
	}
	if len(clusters) == 0 {
		return nil, models.NewStageError(models.StepClustering, models.ErrClusterEmpty, "no clusters formed from %d keywords", len(keywords))
	}
	clusters = s.engine.ApplyRelevanceScores(clusters, siteContext, job.Options.MinClusterSize)

	if job.Options.AIEnabled() {
		if len(clusters) > 0 && s.enhancer != nil && s.enhancer.Available() {
			clusters = s.enhance(ctx, clusters, keywords, siteContext, job.ResolvedLanguage, job.Options.MinClusterSize, warn)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		} else if s.enhancer == nil || !s.enhancer.Available() {
			warn("AI enhancement skipped: no AI provider available")
		}
	}

	for i := range clusters {
		ai.FillNarrative(&clusters[i], siteContext)
	}
	if len(clusters) == 0 {
		warn("every cluster was filtered out as irrelevant to the site content")
	}

	if err := report(90, models.StepFinalizing); err != nil {
		return nil, err
	}
	clusters = s.engine.SortAndRank(clusters)

	result := &models.ResearchResult{
		URL:           job.URL,
		Country:       job.Country,
		Language:      job.ResolvedLanguage,
		Clusters:      clusters,
		TotalClusters: len(clusters),
		ScrapedPages:  len(scrape.Pages),
		Strategy:      scrape.Strategy,
		GeneratedAt:   time.Now().UTC(),
	}
	result.TotalKeywords = result.KeywordCount()
	return result, nil
}

// enhance runs the optional AI passes over the cluster set. Every failure is
// downgraded to a warning and leaves the set as it was. Membership changes
// re-run uniqueness enforcement and relevance scoring so the cluster
// invariants hold afterwards.
func (s *Service) enhance(ctx context.Context, clusters []models.Cluster, keywords []models.Keyword, siteContext *models.SiteContext, language string, minClusterSize int, warn warnFn) []models.Cluster {
	if regroup, err := s.enhancer.RegroupSuggestions(ctx, clusters, siteContext, keywords, language); err != nil {
		warn(fmt.Sprintf("AI regrouping failed: %v", err))
	} else {
		ai.ApplyRegroup(clusters, regroup)
	}
	if ctx.Err() != nil {
		return clusters
	}

	if scrutiny, err := s.enhancer.Scrutinize(ctx, clusters, keywords, siteContext, language); err != nil {
		warn(fmt.Sprintf("AI scrutiny failed: %v", err))
	} else {
		clusters = ai.ApplyScrutiny(clusters, scrutiny)
		clusters = s.engine.EnsureUniqueKeywords(clusters, minClusterSize)
		clusters = s.engine.ApplyRelevanceScores(clusters, siteContext, minClusterSize)
	}

	for i := range clusters {
		if ctx.Err() != nil {
			return clusters
		}
		enhancement, err := s.enhancer.EnhanceCluster(ctx, &clusters[i], siteContext, language)
		if err != nil {
			warn(fmt.Sprintf("AI enhancement failed for cluster %q: %v", clusters[i].PillarTopic, err))
			continue
		}
		ai.ApplyEnhancement(&clusters[i], enhancement)
	}
	return clusters
}

// buildSiteContext assembles the relevance context from the scraped pages:
// the start URL, the first page's title and meta description, and the titles,
// descriptions, and H1 headings of the first pages.
func buildSiteContext(startURL string, scrape *models.ScrapeResult) *models.SiteContext {
	siteContext := &models.SiteContext{URL: startURL}
	if scrape == nil || len(scrape.Pages) == 0 {
		return siteContext
	}

	siteContext.Title = strings.TrimSpace(scrape.Pages[0].Title)
	siteContext.Description = strings.TrimSpace(scrape.Pages[0].MetaDescription)

	pages := scrape.Pages
	if len(pages) > siteContextPageCap {
		pages = pages[:siteContextPageCap]
	}
	for _, p := range pages {
		if title := strings.TrimSpace(p.Title); title != "" {
			siteContext.PageTitles = append(siteContext.PageTitles, title)
		}
		if desc := strings.TrimSpace(p.MetaDescription); desc != "" {
			siteContext.MetaDescriptions = append(siteContext.MetaDescriptions, desc)
		}
		for _, h := range p.H1 {
			if heading := strings.TrimSpace(h); heading != "" {
				siteContext.Focus = append(siteContext.Focus, heading)
			}
		}
	}
	return siteContext
}

// failureLabel maps a pipeline error to the stage and the stable message
// recorded on the failed job. Known kinds map to their sentinel text;
// anything unexpected surfaces its detail only outside production.
func (s *Service) failureLabel(err error) (string, string) {
	stage := models.StageOf(err)

	switch {
	case errors.Is(err, models.ErrUnreachable):
		return stage, models.ErrUnreachable.Error()
	case errors.Is(err, models.ErrNoSeeds):
		return stage, models.ErrNoSeeds.Error()
	case errors.Is(err, models.ErrNoMetrics):
		return stage, models.ErrNoMetrics.Error()
	case errors.Is(err, models.ErrClusterEmpty):
		return stage, models.ErrClusterEmpty.Error()
	case errors.Is(err, models.ErrInvalidInput):
		return stage, stageDetail(err)
	}

	if s.config.IsProduction() {
		return stage, models.ErrInternal.Error()
	}
	return stage, stageDetail(err)
}

// stageDetail prefers the human-written stage message over the full error
// chain text.
func stageDetail(err error) string {
	var stageErr *models.StageError
	if errors.As(err, &stageErr) && stageErr.Msg != "" {
		return stageErr.Msg
	}
	return err.Error()
}

// stageWrap attaches the stage label to errors that lack one. Context errors
// pass through untouched so cancellation stays recognizable upstream.
func stageWrap(stage string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if models.StageOf(err) != "" {
		return err
	}
	return models.NewStageError(stage, models.ErrInternal, "%v", err)
}
