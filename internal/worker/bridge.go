// Package worker implements the message-passing bridge that offloads engine
// computation: each call becomes a uuid-tagged one-shot task dispatched to a
// fixed-size pool and resolved by a matching reply. Cancellation is
// cooperative and advisory: cancelling a pending request drops its eventual
// reply rather than interrupting in-flight computation. Because every
// offloaded function is pure, the bridge is an optimization, not a
// correctness requirement.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lottolens/lottolens/internal/domain"
)

// Task is a unit of work dispatched to the pool.
type Task func(ctx context.Context) (any, error)

// Result is the reply to one submitted task.
type Result struct {
	ID    string
	Value any
	Err   error
}

type job struct {
	id    string
	ctx   context.Context
	task  Task
	reply chan Result
}

// Bridge dispatches one-shot tasks to a worker pool.
type Bridge struct {
	queue  chan job
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]context.CancelFunc
	closed  bool
}

// New creates a Bridge with the given queue depth. Workers start on Run.
func New(queueDepth int, logger *slog.Logger) *Bridge {
	if queueDepth <= 0 {
		queueDepth = 64
	}
	return &Bridge{
		queue:   make(chan job, queueDepth),
		logger:  logger.With(slog.String("component", "worker")),
		pending: make(map[string]context.CancelFunc),
	}
}

// Run starts poolSize workers and blocks until ctx is cancelled. It always
// returns ctx.Err()'s disposition (nil on clean shutdown).
func (b *Bridge) Run(ctx context.Context, poolSize int) error {
	if poolSize <= 0 {
		poolSize = 1
	}
	b.logger.InfoContext(ctx, "worker bridge starting", slog.Int("pool_size", poolSize))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < poolSize; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case j := <-b.queue:
					b.execute(j)
				}
			}
		})
	}
	err := g.Wait()

	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	return err
}

// Submit enqueues a task and returns its request id and a buffered reply
// channel. The channel receives exactly one Result, or is closed without a
// send if the request was cancelled first. A full queue rejects immediately
// rather than blocking the caller.
func (b *Bridge) Submit(ctx context.Context, task Task) (string, <-chan Result, error) {
	id := uuid.NewString()
	taskCtx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		return "", nil, domain.ErrBridgeClosed
	}
	b.pending[id] = cancel
	b.mu.Unlock()

	reply := make(chan Result, 1)
	j := job{id: id, ctx: taskCtx, task: task, reply: reply}

	select {
	case b.queue <- j:
		return id, reply, nil
	default:
		b.forget(id)
		cancel()
		return "", nil, domain.ErrRateLimited
	}
}

// Cancel marks a pending request cancelled. If the task has not started it
// will be skipped; if it is in flight it runs to completion and its reply
// is dropped.
func (b *Bridge) Cancel(id string) {
	b.mu.Lock()
	cancel, ok := b.pending[id]
	b.mu.Unlock()
	if ok {
		cancel()
	}
}

func (b *Bridge) execute(j job) {
	defer b.forget(j.id)

	if j.ctx.Err() != nil {
		// Cancelled before starting: drop the reply.
		close(j.reply)
		return
	}

	value, err := j.task(j.ctx)

	if j.ctx.Err() != nil {
		// Cancelled mid-flight: the computation finished but the caller
		// walked away, so the reply is dropped, not delivered.
		b.logger.Debug("dropping reply for cancelled request", slog.String("request_id", j.id))
		close(j.reply)
		return
	}

	j.reply <- Result{ID: j.id, Value: value, Err: err}
	close(j.reply)
}

func (b *Bridge) forget(id string) {
	b.mu.Lock()
	if cancel, ok := b.pending[id]; ok {
		delete(b.pending, id)
		b.mu.Unlock()
		cancel()
		return
	}
	b.mu.Unlock()
}

// Await is a convenience that blocks until the reply arrives, the reply is
// dropped, or ctx expires.
func Await(ctx context.Context, id string, reply <-chan Result) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res, ok := <-reply:
		if !ok {
			return Result{}, domain.ErrCancelled
		}
		if res.Err != nil {
			return res, res.Err
		}
		return res, nil
	}
}
