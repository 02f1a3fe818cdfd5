package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Orbeng/engser/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	// MaxAttempts is how many times a job runs before it is moved to the DLQ.
	MaxAttempts = 3

	popTimeout = 5 * time.Second
)

// popErrorBackoff is the pause after a failed BRPOP other than a timeout.
var popErrorBackoff = time.Second

// ErrQueueDisabled is returned by the Dispatcher when redis is not configured.
var ErrQueueDisabled = errors.New("worker: job queue disabled (no redis)")

// Job is the envelope of every queued task.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler runs one job type. Returning an error schedules a retry unless the
// error is wrapped with Permanent.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// listClient is the subset of *redis.Client used by the queue.
type listClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
}

// Dispatcher enqueues jobs into redis lists; the pool dequeues them with BRPOP.
type Dispatcher struct {
	rdb listClient
}

// NewDispatcher returns a Dispatcher; a nil client yields one whose enqueue
// calls fail with ErrQueueDisabled.
func NewDispatcher(rdb *redis.Client) *Dispatcher {
	if rdb == nil {
		return &Dispatcher{}
	}
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail queues a plain-text email for delivery by the EmailWorker.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, to, subject, body string) error {
	return d.enqueue(ctx, QueueEmail, "email", EmailJobPayload{ToEmail: to, Subject: subject, Body: body})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return ErrQueueDisabled
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb listClient, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the queues that
// have a handler. Each goroutine blocks on BRPOP and exits when ctx is done;
// the returned WaitGroup is released once all of them have stopped.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Handler) *sync.WaitGroup {
	var wg sync.WaitGroup
	if rdb == nil || len(handlers) == 0 {
		log.Info().Msg("worker pool disabled")
		return &wg
	}
	queues := make([]string, 0, len(handlers))
	for q := range handlers {
		queues = append(queues, q)
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, rdb, id, queues, handlers)
		}(i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", queues).Msg("worker pool started")
	return &wg
}

func runWorker(ctx context.Context, rdb listClient, id int, queues []string, handlers map[string]Handler) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop: waits up to popTimeout then loops to check ctx
			result, err := rdb.BRPop(ctx, popTimeout, queues...).Result()
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			if err != nil {
				log.Error().Err(err).Int("worker", id).Msg("worker: BRPOP failed")
				select {
				case <-ctx.Done():
				case <-time.After(popErrorBackoff):
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1], handlers[result[0]])
		}
	}
}

// processJob runs one raw job. Failures are re-enqueued with an incremented
// attempt count; permanent failures and jobs past MaxAttempts go to the DLQ.
func processJob(ctx context.Context, rdb listClient, queue, raw string, h Handler) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		SendToDLQ(ctx, rdb, queue, "unknown", quoted, "invalid envelope: "+err.Error(), 0)
		metrics.JobsProcessed.WithLabelValues(queue, "dead").Inc()
		return
	}
	if h == nil {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "no handler for queue", job.Attempts)
		metrics.JobsProcessed.WithLabelValues(queue, "dead").Inc()
		return
	}

	err := h.Process(ctx, job.Payload)
	if err == nil {
		metrics.JobsProcessed.WithLabelValues(queue, "ok").Inc()
		return
	}

	job.Attempts++
	var perm *permanentError
	if errors.As(err, &perm) || job.Attempts >= MaxAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		metrics.JobsProcessed.WithLabelValues(queue, "dead").Inc()
		return
	}

	log.Warn().Err(err).Str("queue", queue).Str("type", job.Type).
		Int("attempt", job.Attempts).Msg("job failed, re-enqueueing")
	if pushErr := push(ctx, rdb, queue, job); pushErr != nil {
		log.Error().Err(pushErr).Str("queue", queue).Msg("failed to re-enqueue job")
	}
	metrics.JobsProcessed.WithLabelValues(queue, "retry").Inc()
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
