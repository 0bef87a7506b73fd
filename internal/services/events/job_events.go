package events

import (
	"time"

	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// NewJobEvent builds a lifecycle event from a job snapshot. The payload is a
// flat map so subscribers can forward it as JSON without touching job
// internals; result data stays out of the payload so the wire stays light and
// clients fetch full results over the API.
func NewJobEvent(eventType interfaces.EventType, job *models.ResearchJob) interfaces.Event {
	payload := map[string]interface{}{
		"job_id":    job.ID,
		"status":    string(job.Status),
		"progress":  job.Progress,
		"step":      job.Step,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if job.URL != "" {
		payload["url"] = job.URL
	}
	if job.Error != "" {
		payload["error"] = job.Error
	}
	if len(job.Warnings) > 0 {
		payload["warning_count"] = len(job.Warnings)
	}

	return interfaces.Event{
		Type:    eventType,
		JobID:   job.ID,
		Payload: payload,
	}
}

// EventTypeForStatus maps a job status to the event type announcing it.
// Non-terminal statuses map to a progress event.
func EventTypeForStatus(status models.JobStatus) interfaces.EventType {
	switch status {
	case models.JobStatusCompleted:
		return interfaces.EventJobCompleted
	case models.JobStatusFailed:
		return interfaces.EventJobFailed
	case models.JobStatusCancelled:
		return interfaces.EventJobCancelled
	default:
		return interfaces.EventJobProgress
	}
}
