package worker

// requeue_cron.go
// Background goroutine that periodically drains a bounded batch from the
// receipt DLQ back onto the live queue — but only while the SMTP circuit
// breaker is not open, so a downed relay is never hammered.

import (
	"context"
	"encoding/json"
	"time"

	"machtrade/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	requeueTickInterval = 5 * time.Minute
	requeueBatchSize    = 10
)

// RequeueCronConfig holds the dependencies for the requeue goroutine.
type RequeueCronConfig struct {
	RDB *redis.Client
	CB  *infra.CircuitBreaker
}

// StartRequeueCron launches a background goroutine that ticks every 5 minutes
// and gives dead-lettered receipt jobs another chance. It respects the
// context for graceful shutdown.
func StartRequeueCron(ctx context.Context, cfg RequeueCronConfig) {
	go func() {
		ticker := time.NewTicker(requeueTickInterval)
		defer ticker.Stop()

		log.Info().Msg("requeue_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("requeue_cron: shutting down")
				return
			case <-ticker.C:
				processRequeues(ctx, cfg)
			}
		}
	}()
}

func processRequeues(ctx context.Context, cfg RequeueCronConfig) {
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("requeue_cron: circuit breaker is open, skipping tick")
		return
	}

	dlqKey := DLQPrefix + QueueReceipt
	requeued := 0

	for i := 0; i < requeueBatchSize; i++ {
		raw, err := cfg.RDB.RPop(ctx, dlqKey).Result()
		if err != nil {
			break // empty DLQ or redis unavailable
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("requeue_cron: corrupt DLQ entry dropped")
			continue
		}

		// Attempts reset to zero: the failure was environmental (relay down),
		// not a property of the job.
		job := Job{Type: entry.JobType, Payload: entry.Payload}
		encoded, err := json.Marshal(job)
		if err != nil {
			continue
		}
		if err := cfg.RDB.LPush(ctx, entry.OriginalQueue, encoded).Err(); err != nil {
			log.Error().Err(err).Msg("requeue_cron: failed to requeue, pushing back to DLQ")
			_ = cfg.RDB.LPush(ctx, dlqKey, raw).Err()
			break
		}
		requeued++
	}

	if requeued > 0 {
		log.Info().Int("count", requeued).Msg("requeue_cron: jobs returned to live queue")
	}
}
