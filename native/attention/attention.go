// Package attention implements the attention tracker (spec §4.4): gates,
// scores, and accumulates visit and payment samples into per-publisher
// records via the async update orchestrator, then refreshes the in-memory
// working set the synopsis normalizer reads from. It is grounded on
// nhbchain's native/potso heartbeat/meter accumulation shape (duration and
// score accrue on an existing record rather than being recomputed from
// scratch) combined with core/engagement.Manager's mutex-guarded map for
// the working set itself.
package attention

import (
	"context"
	"log/slog"
	"sync"

	"attnledger/core/types"
	"attnledger/native/orchestrator"
	"attnledger/native/registry"
	"attnledger/native/scoring"
	"attnledger/observability/metrics"
)

// Settings is the narrow slice of publisherstate.Store this tracker reads on
// every call (spec §9 design note: capability handle, not a façade pointer).
type Settings interface {
	MinPublisherDurationMS() uint64
	MinVisits() uint32
	AllowNonVerified() bool
	AllowVideos() bool
}

// Tracker is the C4 Attention Tracker.
type Tracker struct {
	registry     *registry.Registry
	orchestrator *orchestrator.Orchestrator
	settings     Settings
	domain       float64
	metrics      *metrics.LedgerMetrics

	mu         sync.Mutex
	workingSet map[types.PublisherId]*types.PublisherInfo

	// OnUpdated fires after every successful save, still on the
	// orchestrator's per-id worker goroutine, so the synopsis normalizer
	// sees a consistent snapshot via WorkingSet() (spec §4.5 "runs after
	// every successful publisher-info write").
	OnUpdated func()
}

// New constructs a tracker. domain is the fixed D constant of spec §4.1.
func New(reg *registry.Registry, orch *orchestrator.Orchestrator, settings Settings, domain float64) *Tracker {
	return &Tracker{
		registry:     reg,
		orchestrator: orch,
		settings:     settings,
		domain:       domain,
		metrics:      metrics.Ledger(),
		workingSet:   map[types.PublisherId]*types.PublisherInfo{},
	}
}

// WorkingSet returns a deep-copied snapshot of the eligible working set
// (spec §4.4 eligibility rule): score > 0, duration >= min duration,
// visits >= min visits, and verified-or-allow-non-verified.
func (t *Tracker) WorkingSet() []*types.PublisherInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*types.PublisherInfo, 0, len(t.workingSet))
	minDuration := t.settings.MinPublisherDurationMS()
	minVisits := t.settings.MinVisits()
	allowNonVerified := t.settings.AllowNonVerified()
	for _, info := range t.workingSet {
		if !eligible(info, minDuration, minVisits, allowNonVerified) {
			continue
		}
		out = append(out, info.Clone())
	}
	return out
}

func eligible(info *types.PublisherInfo, minDuration uint64, minVisits uint32, allowNonVerified bool) bool {
	if info.Score <= 0 {
		return false
	}
	if info.Duration < minDuration {
		return false
	}
	if info.Visits < minVisits {
		return false
	}
	return info.Verified || allowNonVerified
}

// RecordVisit implements spec §4.4's record_visit. isMediaProvider bypasses
// the minimum-duration gate (the id was already resolved via the media
// attribution path, out of scope here per SPEC_FULL.md §6).
func (t *Tracker) RecordVisit(ctx context.Context, id types.PublisherId, faviconURL string, month types.Month, year int, durationMS uint64, isMediaProvider bool) {
	if id.Empty() {
		t.metrics.IncVisitDropped("empty_id")
		return
	}
	if !isMediaProvider && durationMS < t.settings.MinPublisherDurationMS() {
		t.metrics.IncVisitDropped("below_min_duration")
		return
	}

	coeffs := scoring.NewCoefficients(t.settings.MinPublisherDurationMS(), t.domain)

	t.orchestrator.Enqueue(ctx, id, orchestrator.Request{
		Filter: types.Filter{Category: types.CategoryAutoContribute, Month: month, Year: year},
		Modify: func(current *types.PublisherInfo, fresh bool) *types.PublisherInfo {
			if t.registry.IsExcluded(string(id)) {
				return nil
			}
			current.Duration += durationMS
			current.Visits++
			current.Score += coeffs.Score(durationMS)
			current.Category |= types.CategoryAutoContribute
			current.FaviconURL = faviconURL
			current.Verified = t.registry.IsVerified(string(id))
			return current
		},
		OnSaved: func(saved *types.PublisherInfo) {
			t.store(saved)
			t.metrics.IncVisitRecorded(string(id))
			t.notify()
		},
		OnFailed: func(err error) {
			slog.Default().Warn("attention: record_visit cycle failed", "publisher", string(id), "error", err)
		},
	})
}

// RecordPayment implements spec §4.4's record_payment: appends a
// ContributionInfo and sets the record's category to the payment's category.
func (t *Tracker) RecordPayment(ctx context.Context, id types.PublisherId, category types.Category, amount float64, timestampSec uint64, month types.Month, year int) {
	if id.Empty() {
		return
	}

	t.orchestrator.Enqueue(ctx, id, orchestrator.Request{
		Filter: types.Filter{Category: category, Month: month, Year: year},
		Modify: func(current *types.PublisherInfo, fresh bool) *types.PublisherInfo {
			if t.registry.IsExcluded(string(id)) {
				return nil
			}
			current.Contributions = append(current.Contributions, types.ContributionInfo{Value: amount, Date: timestampSec})
			current.Category = category
			current.Verified = t.registry.IsVerified(string(id))
			return current
		},
		OnSaved: func(saved *types.PublisherInfo) {
			t.store(saved)
			t.metrics.IncPaymentRecorded(categoryLabel(category))
			t.notify()
		},
		OnFailed: func(err error) {
			slog.Default().Warn("attention: record_payment cycle failed", "publisher", string(id), "error", err)
		},
	})
}

func (t *Tracker) store(info *types.PublisherInfo) {
	t.mu.Lock()
	t.workingSet[info.ID] = info.Clone()
	t.mu.Unlock()
}

func (t *Tracker) notify() {
	if t.OnUpdated != nil {
		t.OnUpdated()
	}
}

// Forget removes id from the in-memory working set, used by delete_publisher
// (SPEC_FULL.md §5 supplement) so the synopsis recomputed after a deletion no
// longer includes id. The tracker does not consult the persisted soft-delete
// flag: a later successful visit or payment for id adds it back.
func (t *Tracker) Forget(id types.PublisherId) {
	t.mu.Lock()
	delete(t.workingSet, id)
	t.mu.Unlock()
}

func categoryLabel(c types.Category) string {
	switch {
	case c&types.CategoryTipping != 0:
		return "tipping"
	case c&types.CategoryDirectDonation != 0:
		return "direct_donation"
	case c&types.CategoryRecurringDonation != 0:
		return "recurring_donation"
	case c&types.CategoryAutoContribute != 0:
		return "auto_contribute"
	default:
		return "unknown"
	}
}
