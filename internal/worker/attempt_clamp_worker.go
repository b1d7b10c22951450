package worker

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepstack/prepcore-backend/internal/model"
	"github.com/rs/zerolog"
)

// AttemptClampWorker reconciles attempt counters after a chapter's limit is
// lowered. Chapter CRUD happens in the course management service, so this
// worker periodically clamps any chapter-type counter sitting above the
// chapter's current limit. Counters at or below the limit are untouched.
type AttemptClampWorker struct {
	pool     *pgxpool.Pool
	interval time.Duration
	log      zerolog.Logger
}

// NewAttemptClampWorker creates a new AttemptClampWorker.
func NewAttemptClampWorker(pool *pgxpool.Pool, interval time.Duration, log zerolog.Logger) *AttemptClampWorker {
	return &AttemptClampWorker{
		pool:     pool,
		interval: interval,
		log:      log.With().Str("component", "attempt_clamp_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *AttemptClampWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.clampOnce(ctx)
		}
	}
}

// clampOnce runs one bulk clamp pass.
func (w *AttemptClampWorker) clampOnce(ctx context.Context) {
	tag, err := w.pool.Exec(ctx,
		`UPDATE test_attempts AS a
		 SET attempt_count = c.attempt_limit, updated_at = NOW()
		 FROM chapters AS c
		 WHERE a.chapter_id = c.id
		   AND a.test_type = $1
		   AND c.attempt_limit IS NOT NULL
		   AND a.attempt_count > c.attempt_limit`,
		model.TestTypeChapter,
	)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Clamp pass failed")
		}
		return
	}

	if n := tag.RowsAffected(); n > 0 {
		w.log.Info().Int64("clamped", n).Msg("Clamped attempt counters above lowered limits")
	}
}
