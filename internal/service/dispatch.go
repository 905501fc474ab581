// Package service composes the stores, caches, rules table, and engine into
// the operations the API exposes: analysis, ticket generation, and
// scratch-off ranking. Engine computation is offloaded through the worker
// bridge.
package service

import (
	"context"

	"github.com/lottolens/lottolens/internal/worker"
)

// offload runs fn on the worker bridge and waits for its reply. A nil
// bridge runs fn inline; the offload is an optimization, not a correctness
// requirement, since every engine function is pure. If the caller's context
// expires first the pending request is cancelled so its reply is dropped.
func offload[T any](ctx context.Context, bridge *worker.Bridge, fn func() T) (T, error) {
	var zero T
	if bridge == nil {
		return fn(), nil
	}

	id, reply, err := bridge.Submit(ctx, func(context.Context) (any, error) {
		return fn(), nil
	})
	if err != nil {
		return zero, err
	}

	res, err := worker.Await(ctx, id, reply)
	if err != nil {
		bridge.Cancel(id)
		return zero, err
	}
	return res.Value.(T), nil
}
