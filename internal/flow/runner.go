package flow

import (
	"context"
	"time"

	"interview-backend/internal/shared/telemetry"
)

// Runner drives a machine's countdown with a real-time ticker and forces
// submission when the countdown reaches zero. Ticks only apply while the
// machine is in_progress, so pausing the machine pauses the clock.
type Runner struct {
	Machine *Machine

	// Interval between ticks. Defaults to one second.
	Interval time.Duration

	// Draft returns the answer text currently entered for a question, used
	// as the forced submission on timeout. Nil means submit empty text.
	Draft func(questionID string) string

	// OnAutoSubmit is invoked after a forced submission has advanced the
	// machine, e.g. to persist the answer server-side. May be nil.
	OnAutoSubmit func(questionID, answer string)

	lastFired int
}

// Run ticks until the machine completes or the context is cancelled. An
// auto-submit fires at most once per question index: a zero observed again
// for the same index (say, while a save is still outstanding) is ignored,
// and CompleteQuestion itself rejects stale question ids.
func (r *Runner) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = time.Second
	}
	r.lastFired = -1

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			remaining, ticked := r.Machine.Tick()
			if ticked && remaining == 0 {
				r.autoSubmit()
			}
			if r.Machine.Status() == StatusCompleted {
				return nil
			}
		}
	}
}

func (r *Runner) autoSubmit() {
	q, ok := r.Machine.CurrentQuestion()
	if !ok {
		return
	}
	idx := r.Machine.Snapshot().Current
	if idx == r.lastFired {
		return
	}

	answer := ""
	if r.Draft != nil {
		answer = r.Draft(q.ID)
	}
	if !r.Machine.CompleteQuestion(q.ID, answer) {
		return
	}
	r.lastFired = idx

	telemetry.Info("interview.auto_submit", map[string]any{
		"question_id": q.ID,
		"question":    idx,
	})
	if r.OnAutoSubmit != nil {
		r.OnAutoSubmit(q.ID, answer)
	}
}
