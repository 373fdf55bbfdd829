package engine

import (
	"context"
	"time"
)

// admission is the outcome of the run gate.
type admission int

const (
	admitOK admission = iota
	admitDuplicate
	admitFailed
)

// RunKey derives the idempotency key for a wall-clock instant: the UTC start
// of the bucket the instant falls in, minute precision (e.g.
// "2026-09-01T14:35Z" for a 5-minute bucket). Two invocations inside the same
// bucket compute the same key.
func RunKey(now time.Time, bucket time.Duration) string {
	return now.UTC().Truncate(bucket).Format("2006-01-02T15:04") + "Z"
}

// admit claims the current interval by inserting a run record under the
// unique run key. A uniqueness conflict means a run for this interval already
// started: a benign duplicate, not an error. Any other insert failure is
// fatal to the invocation.
func (e *Engine) admit(ctx context.Context, now time.Time) (runID, key string, adm admission, err error) {
	key = RunKey(now, e.bucket)
	runID, inserted, err := e.store.InsertRunIfAbsent(ctx, key)
	if err != nil {
		return "", key, admitFailed, err
	}
	if !inserted {
		e.logger.Info("duplicate tick rejected", "run_key", key)
		return "", key, admitDuplicate, nil
	}
	return runID, key, admitOK, nil
}
