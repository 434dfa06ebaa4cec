// Package syncer runs the background jobs that mirror local cart and
// wishlist state to the commerce API. Jobs are keyed: enqueueing a job
// under a key that is already pending replaces the stale payload, so a
// burst of edits collapses into one remote call per key.
package syncer

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/havenwood-client/pkg/errors"
	"github.com/angelmondragon/havenwood-client/pkg/logger"
	"github.com/angelmondragon/havenwood-client/pkg/metrics"
)

// Job is one unit of remote work. Kind labels the metric series,
// Key identifies the slot the job occupies in the queue.
type Job struct {
	Key  string
	Kind string
	Run  func(ctx context.Context) error
}

// Params configures a Queue.
type Params struct {
	Logger  *logger.Logger
	Metrics *metrics.SyncMetrics

	// JobTimeout bounds a single remote call. Zero means 15s.
	JobTimeout time.Duration
}

// Queue is a latest-wins job queue drained by a single worker
// goroutine. Failed jobs are logged and dropped, never retried and
// never surfaced to the caller: local state is authoritative and the
// next edit enqueues a fresh job anyway.
type Queue struct {
	mu    sync.Mutex
	jobs  map[string]Job
	order []string
	wake  chan struct{}

	logg       *logger.Logger
	metrics    *metrics.SyncMetrics
	jobTimeout time.Duration
}

func NewQueue(params Params) *Queue {
	timeout := params.JobTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Queue{
		jobs:       make(map[string]Job),
		order:      make([]string, 0, 8),
		wake:       make(chan struct{}, 1),
		logg:       params.Logger,
		metrics:    params.Metrics,
		jobTimeout: timeout,
	}
}

// Enqueue schedules a job. A pending job under the same key is
// replaced in place, keeping its position in the queue.
func (q *Queue) Enqueue(job Job) {
	if job.Run == nil || job.Key == "" {
		return
	}

	q.mu.Lock()
	if _, pending := q.jobs[job.Key]; !pending {
		q.order = append(q.order, job.Key)
	}
	q.jobs[job.Key] = job
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Cancel drops a pending job. It returns whether one was pending.
func (q *Queue) Cancel(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, pending := q.jobs[key]; !pending {
		return false
	}
	delete(q.jobs, key)
	for i, k := range q.order {
		if k == key {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return true
}

// Pending reports how many jobs are waiting to run.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Run drains the queue until ctx is cancelled. Call it from exactly
// one goroutine.
func (q *Queue) Run(ctx context.Context) {
	for {
		job, ok := q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}

		q.execute(ctx, job)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// Drain runs every pending job synchronously. Used on shutdown so the
// final cart push is not lost, and by tests.
func (q *Queue) Drain(ctx context.Context) {
	for {
		job, ok := q.pop()
		if !ok {
			return
		}
		q.execute(ctx, job)
	}
}

func (q *Queue) pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.order) > 0 {
		key := q.order[0]
		q.order = q.order[1:]
		job, pending := q.jobs[key]
		if !pending {
			continue
		}
		delete(q.jobs, key)
		return job, true
	}
	return Job{}, false
}

func (q *Queue) execute(ctx context.Context, job Job) {
	jobCtx, cancel := context.WithTimeout(ctx, q.jobTimeout)
	defer cancel()

	start := time.Now()
	err := job.Run(jobCtx)
	q.metrics.ObserveSync(job.Kind, time.Since(start), err)

	if err == nil {
		return
	}
	if q.logg != nil {
		logCtx := q.logg.WithFields(jobCtx, map[string]any{
			"job_key":  job.Key,
			"job_kind": job.Kind,
		})
		q.logg.Warn(logCtx, pkgerrors.Wrap(pkgerrors.CodeSync, err, "sync job failed").Error())
	}
}
