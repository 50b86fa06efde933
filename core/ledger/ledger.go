// Package ledger implements the C10 Ledger Façade (spec §4.10): composes
// the scoring kernel, registry, publisher state store, attention tracker,
// synopsis normalizer, ballot allocator, async orchestrator, registry
// refresh scheduler, and tab aggregator behind one entrypoint the host
// drives. Grounded on nhbchain's services/otc-gateway.Server composition
// pattern (one struct wiring every collaborator, constructed once at
// startup) and original_source/'s ledger_impl.cc initialization ordering.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"attnledger/config"
	"attnledger/core/errors"
	"attnledger/core/types"
	"attnledger/hostapi"
	"attnledger/native/attention"
	"attnledger/native/ballot"
	"attnledger/native/orchestrator"
	"attnledger/native/publisherstate"
	"attnledger/native/registry"
	"attnledger/native/registryrefresh"
	"attnledger/native/synopsis"
	"attnledger/native/tabtracker"

	"log/slog"
	"time"
)

// Host bundles every capability the façade needs from its embedder. Each
// native/* component still only sees the narrow slice it requires (spec §9);
// this struct exists purely so callers assemble the dependencies once.
type Host struct {
	LedgerState    hostapi.LedgerStateStore
	PublisherState hostapi.PublisherStateStore
	PublisherInfo  hostapi.PublisherInfoStore
	Registry       hostapi.RegistryFetcher
	Clock          hostapi.Clock
	Entropy        hostapi.Entropy
	GUID           hostapi.GUIDGenerator
	Timer          hostapi.Timer
}

// Ledger is the C10 Ledger Façade.
type Ledger struct {
	cfg  config.Config
	host Host

	registry     *registry.Registry
	orchestrator *orchestrator.Orchestrator

	mu          sync.Mutex
	initialized bool
	stateStore  *publisherstate.Store
	tracker     *attention.Tracker
	scheduler   *registryrefresh.Scheduler
	tabs        *tabtracker.Aggregator

	synopsisMu sync.RWMutex
	lastRun    []*types.PublisherInfo

	// OnWalletInitialized is invoked exactly once, at the end of
	// Initialize, with the overall result (spec §4.10 step 3).
	OnWalletInitialized func(types.Result)
}

// New constructs a façade. The registry and orchestrator are stateless with
// respect to persisted settings, so they are built eagerly; the attention
// tracker and scheduler need the loaded PublisherState and are built inside
// Initialize.
func New(cfg config.Config, host Host) *Ledger {
	return &Ledger{
		cfg:          cfg,
		host:         host,
		registry:     registry.New(),
		orchestrator: orchestrator.New(host.PublisherInfo),
	}
}

type stateSaverAdapter struct {
	ctx   context.Context
	store hostapi.PublisherStateStore
}

func (a stateSaverAdapter) SavePublisherState(blob []byte) error {
	return a.store.SavePublisherState(a.ctx, blob)
}

// Initialize runs spec §4.10's strictly-ordered startup sequence.
func (l *Ledger) Initialize(ctx context.Context) (types.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized {
		return types.ResultOK, nil
	}

	if _, found, err := l.host.LedgerState.LoadLedgerState(ctx); err != nil {
		l.report(types.ResultInvalidLedgerState)
		return types.ResultInvalidLedgerState, fmt.Errorf("ledger: load ledger state: %w", err)
	} else if !found {
		slog.Default().Info("ledger: no prior wallet state, continuing with first-run defaults")
	}

	var state *publisherstate.State
	blob, found, err := l.host.PublisherState.LoadPublisherState(ctx)
	switch {
	case err != nil:
		l.report(types.ResultInvalidPublisherState)
		return types.ResultInvalidPublisherState, fmt.Errorf("ledger: load publisher state: %w", err)
	case !found:
		state = publisherstate.Default(l.cfg.MinPublisherDurationMS, l.cfg.MinVisits, l.cfg.AllowNonVerified, l.cfg.AllowVideos)
	default:
		state, err = publisherstate.Deserialize(blob)
		if err != nil {
			l.report(types.ResultInvalidPublisherState)
			return types.ResultInvalidPublisherState, fmt.Errorf("ledger: deserialize publisher state: %w", err)
		}
	}

	l.stateStore = publisherstate.NewStore(state, stateSaverAdapter{ctx: ctx, store: l.host.PublisherState})
	l.tracker = attention.New(l.registry, l.orchestrator, l.stateStore, l.cfg.ScoreDomain)
	l.tracker.OnUpdated = l.recompute
	l.tabs = tabtracker.New(l.tracker)
	l.scheduler = registryrefresh.New(l.host.Registry, l.registry, l.stateStore, l.host.Clock, l.host.Entropy, l.host.Timer,
		time.Duration(l.cfg.RegistryRefreshSeconds)*time.Second,
		time.Duration(l.cfg.RegistryRetryMinSecs)*time.Second,
		time.Duration(l.cfg.RegistryRetryMaxSecs)*time.Second)

	l.initialized = true
	l.report(types.ResultOK)
	l.scheduler.Refresh(ctx, false)

	return types.ResultOK, nil
}

func (l *Ledger) report(result types.Result) {
	if l.OnWalletInitialized != nil {
		l.OnWalletInitialized(result)
	}
}

func (l *Ledger) recompute() {
	run := synopsis.Run(l.tracker.WorkingSet())
	l.synopsisMu.Lock()
	l.lastRun = run
	l.synopsisMu.Unlock()
}

// Synopsis returns the most recently computed normalized working set.
func (l *Ledger) Synopsis() []*types.PublisherInfo {
	l.synopsisMu.RLock()
	defer l.synopsisMu.RUnlock()
	out := make([]*types.PublisherInfo, len(l.lastRun))
	for i, info := range l.lastRun {
		out[i] = info.Clone()
	}
	return out
}

// Reconcile implements spec §4.10's reconcile path: allocate ballots over
// the current synopsis for budget votes. The wallet collaborator's
// vote_publishers/prepare_ballots calls are outside this engine's scope
// (§1); callers forward the returned winners to that collaborator.
func (l *Ledger) Reconcile(budget uint32) []ballot.Winner {
	if budget == 0 {
		budget = l.cfg.BallotBudgetDefault
	}
	return ballot.Allocate(l.Synopsis(), budget)
}

// RecordVisit forwards to the attention tracker (spec §4.4).
func (l *Ledger) RecordVisit(ctx context.Context, id types.PublisherId, faviconURL string, month types.Month, year int, durationMS uint64, isMediaProvider bool) {
	l.tracker.RecordVisit(ctx, id, faviconURL, month, year, durationMS, isMediaProvider)
}

// RecordPayment forwards to the attention tracker (spec §4.4).
func (l *Ledger) RecordPayment(ctx context.Context, id types.PublisherId, category types.Category, amount float64, timestampSec uint64, month types.Month, year int) {
	l.tracker.RecordPayment(ctx, id, category, amount, timestampSec, month, year)
}

// Tabs exposes the C9 aggregator for host tab event wiring.
func (l *Ledger) Tabs() *tabtracker.Aggregator { return l.tabs }

// GenerateGUID delegates to the host utility (spec §6).
func (l *Ledger) GenerateGUID() string {
	return l.host.GUID.GenerateGUID()
}

// SetMinPublisherDurationMS is a settings accessor (spec §4.10).
func (l *Ledger) SetMinPublisherDurationMS(v uint64) error {
	return l.stateStore.SetMinPublisherDurationMS(v)
}

// SetMinVisits is a settings accessor (spec §4.10).
func (l *Ledger) SetMinVisits(v uint32) error {
	return l.stateStore.SetMinVisits(v)
}

// SetAllowNonVerified is a settings accessor (spec §4.10).
func (l *Ledger) SetAllowNonVerified(allow bool) error {
	return l.stateStore.SetAllowNonVerified(allow)
}

// SetAllowVideos is a settings accessor (spec §4.10).
func (l *Ledger) SetAllowVideos(allow bool) error {
	return l.stateStore.SetAllowVideos(allow)
}

// SetRecurringDonation is a donation accessor (spec §4.10, SPEC_FULL.md §5).
func (l *Ledger) SetRecurringDonation(id types.PublisherId, amount float64) error {
	return l.stateStore.SetRecurringDonation(id, amount)
}

// RecurringDonation is a donation accessor (SPEC_FULL.md §5).
func (l *Ledger) RecurringDonation(id types.PublisherId) (float64, bool) {
	return l.stateStore.RecurringDonation(id)
}

// GetBalanceReport is a balance accessor (spec §4.10, SPEC_FULL.md §5).
func (l *Ledger) GetBalanceReport(year int, month types.Month) (types.BalanceReport, bool) {
	return l.stateStore.BalanceReport(year, month)
}

// SetBalanceReport is a balance accessor (spec §4.10, SPEC_FULL.md §5).
func (l *Ledger) SetBalanceReport(year int, month types.Month, report types.BalanceReport) error {
	return l.stateStore.SetBalanceReport(year, month, report)
}

// DeletePublisher soft-deletes id (spec §4.10, SPEC_FULL.md §5): persists
// the flag, forgets the in-memory working-set entry and recomputes the
// synopsis, which then excludes id. RecordVisit and RecordPayment do not
// check the flag, so a later visit or payment for id brings it back.
func (l *Ledger) DeletePublisher(id types.PublisherId) error {
	if err := l.stateStore.DeletePublisher(id); err != nil {
		return err
	}
	l.tracker.Forget(id)
	l.recompute()
	return nil
}

// RestorePublisher clears a prior soft-delete (SPEC_FULL.md §5).
func (l *Ledger) RestorePublisher(id types.PublisherId) error {
	return l.stateStore.RestorePublisher(id)
}

// ListPublishers is the supplemented pagination surface (SPEC_FULL.md §5)
// over hostapi.LoadPublisherInfoList; TOO_MANY_RESULTS is surfaced as a
// distinct error per spec §7's contract-violation taxonomy entry.
func (l *Ledger) ListPublishers(ctx context.Context, start, limit int, filter types.Filter) ([]*types.PublisherInfo, error) {
	const maxPageSize = 500
	if limit > maxPageSize {
		return nil, fmt.Errorf("ledger: list publishers: %w (limit %d exceeds page size %d)", errors.ErrTooManyResults, limit, maxPageSize)
	}
	return l.host.PublisherInfo.LoadPublisherInfoList(ctx, start, limit, filter)
}
