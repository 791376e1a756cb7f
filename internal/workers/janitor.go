package workers

import (
	"context"
	"time"

	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/internal/store"
)

// janitor periodically removes expired short-lived state: pending-login
// markers whose TOTP step never completed, and deny-list rows for tokens
// past their natural expiry. Neither cleanup affects correctness — expired
// markers and tokens are already rejected on sight — it only bounds growth.
type janitor struct {
	pending  store.PendingLoginStore
	denyList store.DenyListRepository
	interval time.Duration
	logger   *logger.Logger
}

// NewJanitor constructs the cleanup worker. A zero interval defaults to one
// minute.
func NewJanitor(pending store.PendingLoginStore, denyList store.DenyListRepository, interval time.Duration, logger *logger.Logger) Worker {
	if interval == 0 {
		interval = time.Minute
	}

	return &janitor{
		pending:  pending,
		denyList: denyList,
		interval: interval,
		logger:   logger,
	}
}

// Run implements [Worker]. It ticks until ctx is canceled.
func (j *janitor) Run(ctx context.Context) {
	j.logger.Info().Dur("interval", j.interval).Msg("janitor started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("janitor stopped")
			return
		case now := <-ticker.C:
			j.sweep(ctx, now)
		}
	}
}

func (j *janitor) sweep(ctx context.Context, now time.Time) {
	markers := j.pending.PurgeExpired(ctx, now)

	tokens, err := j.denyList.PurgeExpired(ctx, now)
	if err != nil {
		j.logger.Err(err).Msg("deny-list purge failed")
	}

	if markers > 0 || tokens > 0 {
		j.logger.Debug().
			Int("pending_markers", markers).
			Int64("denied_tokens", tokens).
			Msg("janitor sweep finished")
	}
}
