package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a research job. Transitions are
// monotonic: processing is the only non-terminal state.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Pipeline step labels reported through job progress.
const (
	StepValidating = "validating"
	StepScanning   = "scanning"
	StepExtracting = "extracting"
	StepEnriching  = "enriching"
	StepClustering = "clustering"
	StepFinalizing = "finalizing"
	StepCompleted  = "completed"
)

// ResearchJob is the unit of work tracked by the job store. Mutations happen
// only under the store's write lock; readers receive snapshots.
type ResearchJob struct {
	ID                string          `json:"jobId"`
	URL               string          `json:"url"`
	Country           string          `json:"country"`
	RequestedLanguage string          `json:"requestedLanguage,omitempty"`
	ResolvedLanguage  string          `json:"language"`
	Options           ResearchOptions `json:"options"`
	Status            JobStatus       `json:"status"`
	Progress          int             `json:"progress"`
	Step              string          `json:"step"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty"`
	FailedAt          *time.Time      `json:"failedAt,omitempty"`
	Error             string          `json:"error,omitempty"`
	Warnings          []string        `json:"warnings,omitempty"`
	Data              *ResearchResult `json:"data,omitempty"`
	ProcessingTimeMs  int64           `json:"processingTimeMs,omitempty"`

	// ClientIP is internal bookkeeping for rate limiting and is never
	// exposed through the API.
	ClientIP string `json:"-"`
}

// NewResearchJob creates a job in the processing state with a fresh UUID.
func NewResearchJob(url, country, requestedLanguage, resolvedLanguage string, options ResearchOptions, clientIP string) *ResearchJob {
	now := time.Now()
	return &ResearchJob{
		ID:                uuid.New().String(),
		URL:               url,
		Country:           country,
		RequestedLanguage: requestedLanguage,
		ResolvedLanguage:  resolvedLanguage,
		Options:           options,
		Status:            JobStatusProcessing,
		Progress:          0,
		Step:              StepValidating,
		CreatedAt:         now,
		UpdatedAt:         now,
		ClientIP:          clientIP,
	}
}

// SetProgress advances progress and the step label. Progress never moves
// backwards; stale updates are ignored.
func (j *ResearchJob) SetProgress(progress int, step string) {
	if progress > 100 {
		progress = 100
	}
	if progress > j.Progress {
		j.Progress = progress
	}
	if step != "" {
		j.Step = step
	}
	j.UpdatedAt = time.Now()
}

// AddWarning records a non-fatal problem on the job.
func (j *ResearchJob) AddWarning(warning string) {
	j.Warnings = append(j.Warnings, warning)
	j.UpdatedAt = time.Now()
}

// MarkCompleted finalizes the job with its result.
func (j *ResearchJob) MarkCompleted(result *ResearchResult) {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.Step = StepCompleted
	j.Progress = 100
	j.Data = result
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.ProcessingTimeMs = now.Sub(j.CreatedAt).Milliseconds()
}

// MarkFailed finalizes the job with a stage label and stable error message.
// No partial data survives a failure.
func (j *ResearchJob) MarkFailed(stage, message string) {
	now := time.Now()
	j.Status = JobStatusFailed
	if stage != "" {
		j.Step = stage
	}
	j.Error = message
	j.Data = nil
	j.FailedAt = &now
	j.UpdatedAt = now
	j.ProcessingTimeMs = now.Sub(j.CreatedAt).Milliseconds()
}

// MarkCancelled finalizes the job as cancelled.
func (j *ResearchJob) MarkCancelled() {
	now := time.Now()
	j.Status = JobStatusCancelled
	j.UpdatedAt = now
	j.ProcessingTimeMs = now.Sub(j.CreatedAt).Milliseconds()
}

// IsTerminal reports whether the job has reached a final state.
func (j *ResearchJob) IsTerminal() bool {
	return j.Status != JobStatusProcessing
}

// Clone returns a snapshot safe to hand to readers while the pipeline keeps
// mutating the stored job.
func (j *ResearchJob) Clone() *ResearchJob {
	clone := *j
	if len(j.Warnings) > 0 {
		clone.Warnings = append([]string(nil), j.Warnings...)
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		clone.CompletedAt = &t
	}
	if j.FailedAt != nil {
		t := *j.FailedAt
		clone.FailedAt = &t
	}
	if j.Data != nil {
		data := *j.Data
		data.Clusters = append([]Cluster(nil), j.Data.Clusters...)
		for i := range data.Clusters {
			data.Clusters[i].Keywords = append([]Keyword(nil), data.Clusters[i].Keywords...)
		}
		clone.Data = &data
	}
	return &clone
}

// ValidateJobID reports whether id is a well-formed UUIDv4.
func ValidateJobID(id string) bool {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return parsed.Version() == 4
}
