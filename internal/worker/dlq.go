package worker

// dlq.go — Dead Letter Queue
// Refetch jobs that exceed the maximum retry count are parked here for
// manual inspection. A redis list, one entry per terminal failure.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQKey = "dlq:" + Channel

// DLQEntry wraps a terminally-failed refetch job with debugging metadata.
type DLQEntry struct {
	Kind     string `json:"kind"`
	OrgID    string `json:"org_id"`
	Reason   string `json:"reason"`
	FailedAt string `json:"failed_at"` // ISO 8601
	Attempts int    `json:"attempts"`
}

// SendToDLQ parks a failed refetch job. A nil client (tests, redis-less
// setups) degrades to logging only.
func SendToDLQ(ctx context.Context, rdb *redis.Client, job RefetchJob, reason string) {
	log.Error().
		Str("kind", job.Kind).
		Str("org_id", job.OrgID).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("dlq: refetch moved to dead letter queue")

	if rdb == nil {
		return
	}

	entry := DLQEntry{
		Kind:     job.Kind,
		OrgID:    job.OrgID,
		Reason:   reason,
		FailedAt: time.Now().UTC().Format(time.RFC3339),
		Attempts: job.Attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Msg("dlq: failed to marshal entry")
		return
	}
	if err := rdb.LPush(ctx, DLQKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", DLQKey).Msg("dlq: failed to push entry")
	}
}

// DLQLength returns the number of parked entries, for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client) (int64, error) {
	return rdb.LLen(ctx, DLQKey).Result()
}
