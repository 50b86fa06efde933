// Package tabtracker implements the tab attention aggregator (spec §4.9): a
// purely in-memory event log of which tab is showing which page, turning
// show/hide pairs into visit samples for the attention tracker. Grounded on
// nhbchain's core/engagement.Manager device-map-under-one-mutex shape, here
// keyed by tab id instead of device id.
package tabtracker

import (
	"context"
	"sync"

	"attnledger/core/types"
)

// VisitRecorder is the narrow C4 capability this aggregator drives.
type VisitRecorder interface {
	RecordVisit(ctx context.Context, id types.PublisherId, faviconURL string, month types.Month, year int, durationMS uint64, isMediaProvider bool)
}

// Aggregator is the C9 Tab Attention Aggregator.
type Aggregator struct {
	recorder VisitRecorder

	mu             sync.Mutex
	currentPages   map[uint32]types.TabSnapshot
	lastShownTabID uint32
	hasShownTab    bool
	lastActiveTime uint64
}

// New constructs an aggregator that feeds visit samples to recorder.
func New(recorder VisitRecorder) *Aggregator {
	return &Aggregator{
		recorder:     recorder,
		currentPages: map[uint32]types.TabSnapshot{},
	}
}

// OnLoad implements spec §4.9's on_load.
func (a *Aggregator) OnLoad(snapshot types.TabSnapshot, now uint64) {
	if snapshot.Domain == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.currentPages[snapshot.TabID]; ok && existing.Domain == snapshot.Domain {
		return
	}
	if a.hasShownTab && snapshot.TabID == a.lastShownTabID {
		a.lastActiveTime = now
	}
	a.currentPages[snapshot.TabID] = snapshot
}

// OnShow implements spec §4.9's on_show.
func (a *Aggregator) OnShow(tabID uint32, now uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastShownTabID = tabID
	a.hasShownTab = true
	a.lastActiveTime = now
}

// OnHide implements spec §4.9's on_hide, emitting a visit sample through the
// attention tracker on a clean hide.
func (a *Aggregator) OnHide(ctx context.Context, tabID uint32, now uint64) {
	a.mu.Lock()
	if !a.hasShownTab || tabID != a.lastShownTabID || a.lastActiveTime == 0 {
		a.mu.Unlock()
		return
	}
	snapshot, ok := a.currentPages[tabID]
	if !ok {
		a.mu.Unlock()
		return
	}
	elapsed := now - a.lastActiveTime
	a.lastActiveTime = 0
	a.mu.Unlock()

	a.recorder.RecordVisit(ctx, types.PublisherId(snapshot.TLD), snapshot.FaviconURL, snapshot.LocalMonth, snapshot.LocalYear, elapsed, false)
}

// OnUnload implements spec §4.9's on_unload: on_hide, then forget the tab.
func (a *Aggregator) OnUnload(ctx context.Context, tabID uint32, now uint64) {
	a.OnHide(ctx, tabID, now)
	a.mu.Lock()
	delete(a.currentPages, tabID)
	a.mu.Unlock()
}

// OnForeground is an alias for OnShow used when the host reports the
// process itself regaining foreground for the already-active tab.
func (a *Aggregator) OnForeground(tabID uint32, now uint64) {
	a.OnShow(tabID, now)
}

// OnBackground is an alias for OnHide used when the host reports the
// process losing foreground.
func (a *Aggregator) OnBackground(ctx context.Context, tabID uint32, now uint64) {
	a.OnHide(ctx, tabID, now)
}
