package worker

// sweep.go
// Background goroutine that periodically re-enqueues refetches for every
// warm cache key. The per-mutation settle refetch corrects drift the local
// session caused; the sweep corrects drift it never saw — edits from other
// sessions, rows changed directly in the store.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"pantryos/internal/cache"
)

// KeyLister reports the cache keys currently holding a snapshot. The
// composition root composes it from every store in play.
type KeyLister func() []cache.Key

// StartSweep launches a goroutine that ticks every interval and schedules a
// refetch for each warm key. It respects ctx for graceful shutdown.
func StartSweep(ctx context.Context, interval time.Duration, keys KeyLister, sched *Dispatcher) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("drift sweep started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("drift sweep shutting down")
				return
			case <-ticker.C:
				warm := keys()
				if len(warm) == 0 {
					continue
				}
				log.Debug().Int("keys", len(warm)).Msg("drift sweep tick")
				for _, key := range warm {
					sched.ScheduleRefetch(ctx, key.Kind, key.OrgID)
				}
			}
		}
	}()
}
