package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"pantryos/internal/model"
)

// Channel carries refetch jobs between portal instances. Pub/sub, not a
// list: every instance holds its own in-process cache, so every instance
// must see every invalidation.
const Channel = "cache:refetch"

const maxRefetchAttempts = 4

// RefetchJob asks the pool to re-read one (kind, org) snapshot from the
// remote store.
type RefetchJob struct {
	Kind     string `json:"kind"`
	OrgID    string `json:"org_id"`
	Attempts int    `json:"attempts"`
}

// Dispatcher publishes refetch jobs. It implements service.RefetchScheduler;
// scheduling is fire-and-forget — a lost refetch is corrected by the next
// one or by the periodic sweep.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher { return &Dispatcher{rdb: rdb} }

func (d *Dispatcher) ScheduleRefetch(ctx context.Context, kind, orgID string) {
	data, err := json.Marshal(RefetchJob{Kind: kind, OrgID: orgID})
	if err != nil {
		log.Error().Err(err).Msg("refetch: failed to marshal job")
		return
	}
	if err := d.rdb.Publish(ctx, Channel, data).Err(); err != nil {
		log.Error().Err(err).Str("kind", kind).Str("org_id", orgID).Msg("refetch: publish failed")
	}
}

// Refresher re-reads one org's snapshot from the remote store. Both mutation
// executors satisfy it.
type Refresher interface {
	Refresh(ctx context.Context, orgID string) error
}

// Handlers wires one refresher per resource kind.
type Handlers struct {
	Items     Refresher
	Suppliers Refresher
}

func (h Handlers) byKind(kind string) Refresher {
	switch kind {
	case model.KindInventoryItems:
		return h.Items
	case model.KindSuppliers:
		return h.Suppliers
	default:
		return nil
	}
}

// StartPool subscribes to the refetch channel and launches numWorkers
// goroutines draining it. It returns once the subscription is confirmed so
// startup fails loudly when redis is unreachable; the pool then drains until
// ctx is cancelled.
func StartPool(ctx context.Context, rdb *redis.Client, handlers Handlers, numWorkers int) error {
	sub := rdb.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	jobs := make(chan RefetchJob, numWorkers*4)

	go func() {
		defer sub.Close()
		defer close(jobs)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var job RefetchJob
				if err := json.Unmarshal([]byte(msg.Payload), &job); err != nil {
					log.Error().Err(err).Msg("refetch: failed to unmarshal job")
					continue
				}
				select {
				case jobs <- job:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, jobs, i)
	}

	log.Info().Int("workers", numWorkers).Msg("refetch pool started")
	return nil
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers Handlers, jobs <-chan RefetchJob, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("refetch worker shutting down")
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			processJob(ctx, rdb, handlers, job)
		}
	}
}

// processJob runs one refetch with bounded in-process retries. Refetches are
// idempotent reads so retrying is always safe; after maxRefetchAttempts the
// job lands in the DLQ for inspection.
func processJob(ctx context.Context, rdb *redis.Client, handlers Handlers, job RefetchJob) {
	refresher := handlers.byKind(job.Kind)
	if refresher == nil {
		log.Error().Str("kind", job.Kind).Msg("refetch: unknown kind")
		return
	}

	for {
		job.Attempts++
		err := refresher.Refresh(ctx, job.OrgID)
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}

		log.Warn().
			Err(err).
			Str("kind", job.Kind).
			Str("org_id", job.OrgID).
			Int("attempt", job.Attempts).
			Msg("refetch failed")

		if job.Attempts >= maxRefetchAttempts {
			SendToDLQ(ctx, rdb, job, err.Error())
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(computeBackoff(job.Attempts)):
		}
	}
}

// computeBackoff doubles per attempt starting at one second, capped at 30s.
func computeBackoff(attempt int) time.Duration {
	backoff := time.Second << (attempt - 1)
	if backoff > 30*time.Second {
		return 30 * time.Second
	}
	return backoff
}
