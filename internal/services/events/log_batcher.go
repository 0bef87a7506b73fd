package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
)

// LogEntry is one log line shaped for UI streaming.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// LogBatcher coalesces streamed log lines into periodic batches so the
// websocket hub pushes one frame per interval instead of one frame per line.
// Entries beyond maxPending are dropped oldest-first so a slow consumer
// cannot grow memory without bound; drops surface in the next batch.
type LogBatcher struct {
	mu            sync.Mutex
	timeThreshold time.Duration
	maxPending    int

	pending []LogEntry
	dropped int

	onFlush func(ctx context.Context, entries []LogEntry)

	logger arbor.ILogger
}

// NewLogBatcher creates a batcher that flushes every timeThreshold.
func NewLogBatcher(
	timeThreshold time.Duration,
	maxPending int,
	onFlush func(ctx context.Context, entries []LogEntry),
	logger arbor.ILogger,
) *LogBatcher {
	if timeThreshold <= 0 {
		timeThreshold = time.Second
	}
	if maxPending <= 0 {
		maxPending = 1000
	}

	return &LogBatcher{
		timeThreshold: timeThreshold,
		maxPending:    maxPending,
		onFlush:       onFlush,
		logger:        logger,
	}
}

// Record queues a log entry for the next flush.
func (b *LogBatcher) Record(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) >= b.maxPending {
		b.pending = b.pending[1:]
		b.dropped++
	}
	b.pending = append(b.pending, entry)
}

// FlushAll pushes pending entries immediately (used on shutdown/cleanup).
func (b *LogBatcher) FlushAll(ctx context.Context) {
	b.flush(ctx)
}

// StartPeriodicFlush starts a background goroutine that flushes every
// timeThreshold until ctx is cancelled.
func (b *LogBatcher) StartPeriodicFlush(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(b.timeThreshold)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				// Flush remaining entries on shutdown
				b.flush(context.Background())
				return
			case <-ticker.C:
				b.flush(ctx)
			}
		}
	}()
}

// flush hands the pending batch to onFlush.
// NOTE: This function must NOT log anything - its output feeds the same
// stream the logger writes to, so logging here would queue another entry
// and the batcher would never drain.
func (b *LogBatcher) flush(ctx context.Context) {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	entries := b.pending
	b.pending = nil
	dropped := b.dropped
	b.dropped = 0
	b.mu.Unlock()

	if dropped > 0 {
		entries = append(entries, LogEntry{
			Timestamp: time.Now().Format("15:04:05"),
			Level:     "warn",
			Message:   fmt.Sprintf("%d log entries dropped (stream backlog)", dropped),
		})
	}

	go b.safeOnFlush(ctx, entries)
}

// safeOnFlush wraps onFlush with panic recovery to prevent crashes
func (b *LogBatcher) safeOnFlush(ctx context.Context, entries []LogEntry) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Int("entry_count", len(entries)).
				Msg("PANIC in LogBatcher.onFlush - recovered")
		}
	}()
	b.onFlush(ctx, entries)
}
