// Package registryrefresh implements the registry refresh scheduler (spec
// §4.8): IDLE -> ARMED -> FETCHING -> SAVING state machine driving periodic
// fetches of the verified/excluded publisher registry. Grounded on
// nhbchain's services/swapd/oracle.Manager ticker/poll loop for the overall
// shape and integrations/webhooks.rewards' retry/backoff dispatcher for the
// randomized retry delay.
package registryrefresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"attnledger/hostapi"
	"attnledger/native/registry"
	"attnledger/observability/metrics"
)

type phase int

const (
	phaseIdle phase = iota
	phaseArmed
	phaseFetching
	phaseSaving
)

// Timestamps is the narrow publisherstate slice the scheduler reads/writes
// (spec invariant 5 in §3).
type Timestamps interface {
	PubsLoadTimestamp() uint64
	SetPubsLoadTimestamp(ts uint64) error
}

// Scheduler is the C8 Registry Refresh Scheduler.
type Scheduler struct {
	fetcher  hostapi.RegistryFetcher
	registry *registry.Registry
	state    Timestamps
	clock    hostapi.Clock
	entropy  hostapi.Entropy
	timer    hostapi.Timer
	interval time.Duration
	retryMin time.Duration
	retryMax time.Duration
	metrics  *metrics.LedgerMetrics

	mu          sync.Mutex
	ph          phase
	cancelTimer func()
}

// New constructs a scheduler. interval is the normal refresh cadence;
// retryMin/retryMax bound the randomized backoff used after a failed fetch,
// parse, or save (spec §4.8).
func New(fetcher hostapi.RegistryFetcher, reg *registry.Registry, state Timestamps, clock hostapi.Clock, entropy hostapi.Entropy, timer hostapi.Timer, interval, retryMin, retryMax time.Duration) *Scheduler {
	return &Scheduler{
		fetcher:  fetcher,
		registry: reg,
		state:    state,
		clock:    clock,
		entropy:  entropy,
		timer:    timer,
		interval: interval,
		retryMin: retryMin,
		retryMax: retryMax,
		metrics:  metrics.Ledger(),
	}
}

// Refresh is the re-entrant-safe public entrypoint (spec §4.8 invariant):
// a call with retry=false while already ARMED is a no-op. The ledger façade
// calls Refresh(ctx, false) once during initialization (spec §4.10 step 4).
func (s *Scheduler) Refresh(ctx context.Context, retry bool) {
	s.mu.Lock()
	if s.ph == phaseArmed && !retry {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.arm(ctx, retry)
}

func (s *Scheduler) arm(ctx context.Context, retry bool) {
	var delay time.Duration
	if retry {
		delay = s.retryDelay()
	} else {
		delay = s.normalDelay()
	}

	s.mu.Lock()
	if s.cancelTimer != nil {
		s.cancelTimer()
	}
	s.ph = phaseArmed
	s.cancelTimer = s.timer.SetTimer(int(delay.Seconds()), func() { s.onFire(ctx) })
	s.mu.Unlock()

	s.metrics.SetRetryDelay(delay.Seconds())
}

// normalDelay implements spec §4.8's delay computation on entry to ARMED.
func (s *Scheduler) normalDelay() time.Duration {
	last := s.state.PubsLoadTimestamp()
	now := s.clock.Now()
	interval := uint64(s.interval.Seconds())

	if last == 0 || last > now {
		return 0
	}
	elapsed := now - last
	if elapsed >= interval {
		return 0
	}
	if elapsed == 0 {
		return s.interval
	}
	return time.Duration(interval-elapsed) * time.Second
}

func (s *Scheduler) retryDelay() time.Duration {
	minSeconds := int64(s.retryMin.Seconds())
	span := int64(s.retryMax.Seconds()) - minSeconds
	offset := int64(0)
	if s.entropy != nil && span > 0 {
		offset = s.entropy.Int63n(span + 1)
	}
	return time.Duration(minSeconds+offset) * time.Second
}

func (s *Scheduler) onFire(ctx context.Context) {
	s.mu.Lock()
	if s.ph != phaseArmed {
		s.mu.Unlock()
		return
	}
	s.ph = phaseFetching
	s.mu.Unlock()

	body, err := s.fetcher.FetchPublisherRegistry(ctx)
	if err != nil {
		s.metrics.IncRegistryRefreshFailure("fetch_error")
		s.arm(ctx, true)
		return
	}
	if len(body) == 0 {
		s.metrics.IncRegistryRefreshFailure("empty_body")
		s.arm(ctx, true)
		return
	}

	entries, err := registry.ParseWireFormat(body)
	if err != nil {
		s.metrics.IncRegistryRefreshFailure("unparsable_body")
		s.arm(ctx, true)
		return
	}

	s.mu.Lock()
	s.ph = phaseSaving
	s.mu.Unlock()

	if err := s.fetcher.SavePublishersList(ctx, body); err != nil {
		_ = s.state.SetPubsLoadTimestamp(0)
		s.metrics.IncRegistryRefreshFailure("save_error")
		s.arm(ctx, true)
		return
	}

	s.registry.Replace(entries)
	if err := s.state.SetPubsLoadTimestamp(s.clock.Now()); err != nil {
		s.metrics.IncRegistryRefreshFailure(fmt.Sprintf("timestamp_persist_error: %v", err))
	}
	s.metrics.IncRegistryRefreshOK()
	s.arm(ctx, false)
}
