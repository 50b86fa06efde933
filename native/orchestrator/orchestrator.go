// Package orchestrator implements the async update orchestrator (spec
// §4.7, §5, §8 P5): a per-publisher-id single-flight FIFO queue that drives
// a load -> modify -> save cycle through the host's callback-based storage.
// It is grounded on the same mutex-protected-map-of-per-key-state shape as
// nhbchain's core/engagement.Manager (a map of device states guarded by one
// mutex) combined with the ticker/channel worker loop of
// services/swapd/oracle.Manager, generalized here into one worker goroutine
// per id that drains its own FIFO queue instead of polling on an interval.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"attnledger/core/types"
	"attnledger/hostapi"
	"attnledger/observability/metrics"
)

// Modify mutates (or constructs, if fresh) the record in place and returns
// the value to persist. fresh is true when the load missed (NOT_FOUND).
type Modify func(current *types.PublisherInfo, fresh bool) *types.PublisherInfo

// Request is one queued load-modify-store cycle.
type Request struct {
	Filter   types.Filter
	Modify   Modify
	OnSaved  func(saved *types.PublisherInfo) // invoked after a successful save, still inside the per-id worker
	OnFailed func(err error)                  // invoked when load (non-NOT_FOUND) or save fails; cycle is abandoned
}

type idQueue struct {
	mu      sync.Mutex
	pending []Request
	running bool
}

// Orchestrator serializes cycles per publisher id (invariant P5/P7 in
// spec §8, Invariant 7 in §3).
type Orchestrator struct {
	store hostapi.PublisherInfoStore

	mu     sync.Mutex
	queues map[types.PublisherId]*idQueue

	metrics *metrics.LedgerMetrics
}

// New constructs an orchestrator bound to the host's publisher-info store.
func New(store hostapi.PublisherInfoStore) *Orchestrator {
	return &Orchestrator{
		store:   store,
		queues:  make(map[types.PublisherId]*idQueue),
		metrics: metrics.Ledger(),
	}
}

// Enqueue submits a cycle for id. If a cycle for id is already outstanding,
// this request is appended to that id's FIFO queue rather than collapsed
// (spec §4.7 single-flight contract).
func (o *Orchestrator) Enqueue(ctx context.Context, id types.PublisherId, req Request) {
	if o == nil {
		return
	}
	req.Filter.ID = id

	o.mu.Lock()
	q, ok := o.queues[id]
	if !ok {
		q = &idQueue{}
		o.queues[id] = q
	}

	q.mu.Lock()
	q.pending = append(q.pending, req)
	start := !q.running
	if start {
		q.running = true
	}
	depth := len(q.pending)
	q.mu.Unlock()
	o.mu.Unlock()

	o.reportDepth(depth)

	if start {
		go o.drain(ctx, id, q)
	}
}

func (o *Orchestrator) drain(ctx context.Context, id types.PublisherId, q *idQueue) {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			o.mu.Lock()
			if cur, ok := o.queues[id]; ok && cur == q && !q.running {
				delete(o.queues, id)
			}
			o.mu.Unlock()
			return
		}
		req := q.pending[0]
		q.pending = q.pending[1:]
		remaining := len(q.pending)
		q.mu.Unlock()

		o.reportDepth(remaining)
		o.runOne(ctx, id, req)
	}
}

func (o *Orchestrator) runOne(ctx context.Context, id types.PublisherId, req Request) {
	current, found, err := o.store.LoadPublisherInfo(ctx, req.Filter)
	if err != nil {
		if req.OnFailed != nil {
			req.OnFailed(fmt.Errorf("orchestrator: load %s: %w", id, err))
		}
		return
	}

	fresh := !found
	if fresh {
		current = &types.PublisherInfo{
			ID:    id,
			Month: req.Filter.Month,
			Year:  req.Filter.Year,
		}
	}

	updated := req.Modify(current, fresh)
	if updated == nil {
		return
	}

	if err := o.store.SavePublisherInfo(ctx, updated); err != nil {
		o.metrics.IncSaveFailure(string(id))
		if req.OnFailed != nil {
			req.OnFailed(fmt.Errorf("orchestrator: save %s: %w", id, err))
		}
		return
	}

	if req.OnSaved != nil {
		req.OnSaved(updated)
	}
}

func (o *Orchestrator) reportDepth(queued int) {
	o.mu.Lock()
	inflight := 0
	for _, q := range o.queues {
		q.mu.Lock()
		if q.running {
			inflight++
		}
		q.mu.Unlock()
	}
	o.mu.Unlock()
	o.metrics.SetOrchestratorDepth(queued, inflight)
}
