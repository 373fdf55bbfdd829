package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// InsertRunIfAbsent claims a run key via the unique constraint on
// tick_runs.run_key. ON CONFLICT DO NOTHING turns a duplicate into zero
// affected rows, which callers treat as "already ran" rather than an error —
// the engine never inspects store error codes.
func (s *Store) InsertRunIfAbsent(ctx context.Context, runKey string) (string, bool, error) {
	id := uuid.NewString()
	tag, err := s.pool.Exec(ctx, "insert_tick_run", id, runKey)
	if err != nil {
		return "", false, fmt.Errorf("insert tick run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", false, nil
	}
	return id, true, nil
}

// FinishRun records the terminal status of a run. Run records are never
// deleted; the ledger is the audit trail of every interval.
func (s *Store) FinishRun(ctx context.Context, runID string, status game.RunStatus, runErr error) error {
	var errMsg *string
	if runErr != nil {
		msg := runErr.Error()
		errMsg = &msg
	}
	_, err := s.pool.Exec(ctx, "finish_tick_run", runID, string(status), errMsg)
	if err != nil {
		return fmt.Errorf("finish tick run: %w", err)
	}
	return nil
}
