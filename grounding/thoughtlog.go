package grounding

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/velocity/models"
)

// LogSink receives flushed thought log entries.
type LogSink interface {
	SendLog(ctx context.Context, entry models.LogEntry) error
}

// ThoughtLog is the ordered, append-only record of validator decisions.
// It is owned by one Validator and is not safe for concurrent use.
type ThoughtLog struct {
	entries []models.AgentThought
	now     func() time.Time
	logger  *slog.Logger
}

// NewThoughtLog returns an empty log.
func NewThoughtLog(logger *slog.Logger) *ThoughtLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThoughtLog{now: time.Now, logger: logger}
}

// Record appends one thought.
func (l *ThoughtLog) Record(thought, action string, status models.ThoughtStatus) {
	l.entries = append(l.entries, models.AgentThought{
		Timestamp: l.now(),
		Thought:   thought,
		Action:    action,
		Status:    status,
	})
	l.logger.Debug("grounding: thought", "action", action, "status", status, "details", thought)
}

// Entries returns a copy of the log in recording order.
func (l *ThoughtLog) Entries() []models.AgentThought {
	return append([]models.AgentThought(nil), l.entries...)
}

// Len returns the number of recorded thoughts.
func (l *ThoughtLog) Len() int { return len(l.entries) }

// Flush sends every entry to sink in order under a single deadline. A failed
// entry does not stop the rest. It returns the number of entries that could
// not be delivered; callers are free to ignore it.
func (l *ThoughtLog) Flush(ctx context.Context, sink LogSink, timeout time.Duration) int {
	if sink == nil || len(l.entries) == 0 {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	failed := 0
	for _, t := range l.entries {
		if err := sink.SendLog(ctx, t.Entry()); err != nil {
			failed++
			l.logger.Debug("grounding: log entry not delivered", "action", t.Action, "error", err)
		}
	}
	if failed > 0 {
		l.logger.Warn("grounding: thought log flush incomplete",
			"failed", failed,
			"total", len(l.entries),
		)
	}
	return failed
}
