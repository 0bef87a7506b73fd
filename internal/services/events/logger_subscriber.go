package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
)

// NewLoggerSubscriber creates an event handler that logs every event it
// receives. Wired up once at startup so the job lifecycle shows up in the
// service log without each publisher logging twice.
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		var status, step string
		progress := -1
		if payload, ok := event.Payload.(map[string]interface{}); ok {
			if s, ok := payload["status"].(string); ok {
				status = s
			}
			if s, ok := payload["step"].(string); ok {
				step = s
			}
			if p, ok := payload["progress"].(int); ok {
				progress = p
			}
		}

		logEvent := logger.Debug().
			Str("event_type", string(event.Type))

		if event.JobID != "" {
			logEvent = logEvent.Str("job_id", event.JobID)
		}
		if status != "" {
			logEvent = logEvent.Str("status", status)
		}
		if step != "" {
			logEvent = logEvent.Str("step", step)
		}
		if progress >= 0 {
			logEvent = logEvent.Int("progress", progress)
		}

		logEvent.Msg("Event published")

		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to every job event type.
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	eventTypes := []interfaces.EventType{
		interfaces.EventJobCreated,
		interfaces.EventJobProgress,
		interfaces.EventJobCompleted,
		interfaces.EventJobFailed,
		interfaces.EventJobCancelled,
	}

	for _, eventType := range eventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	logger.Debug().
		Int("event_type_count", len(eventTypes)).
		Msg("Logger subscribed to all job events")

	return nil
}
