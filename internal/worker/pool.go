package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	// MaxIntentos is how many times a job runs before it is parked in the DLQ.
	MaxIntentos = 3
)

// ErrSinCola is returned when enqueueing without a Redis connection.
var ErrSinCola = errors.New("cola de trabajos no disponible")

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Intentos int             `json:"intentos"`
}

// Handler runs one job. A returned error schedules a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReciboPago pushes a payment-receipt email job.
func (d *Dispatcher) EnqueueReciboPago(ctx context.Context, job ReciboPagoJob) error {
	return d.enqueue(ctx, QueueEmail, JobReciboPago, job)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return ErrSinCola
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool is a fixed set of goroutines consuming the job queues.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	queues   []string
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, handlers: make(map[string]Handler), queues: []string{QueueEmail}}
}

// Handle registers the handler for a job type. Call before Start.
func (p *Pool) Handle(jobType string, h Handler) {
	p.handlers[jobType] = h
}

// Start launches numWorkers goroutines.
// Each goroutine blocks on BRPOP: zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.runWorker(ctx, id)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

// Wait blocks until every worker has returned after ctx is cancelled.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "desconocido", json.RawMessage(raw), "payload inválido", 0)
		return
	}
	err := p.run(ctx, job)
	if err == nil {
		log.Info().Str("type", job.Type).Str("queue", queue).Msg("job processed")
		return
	}

	job.Intentos++
	if !debeReintentar(job) {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Intentos)
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("intentos", job.Intentos).Msg("job failed, requeueing")
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		log.Error().Err(mErr).Msg("failed to marshal job for retry")
		return
	}
	if pErr := p.rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
		log.Error().Err(pErr).Str("queue", queue).Msg("failed to requeue job")
	}
}

func (p *Pool) run(ctx context.Context, job Job) (err error) {
	h, ok := p.handlers[job.Type]
	if !ok {
		return fmt.Errorf("sin handler para el tipo %q", job.Type)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx, job.Payload)
}

// debeReintentar reports whether a failed job still has attempts left.
func debeReintentar(job Job) bool {
	return job.Intentos < MaxIntentos
}
