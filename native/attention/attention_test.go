package attention

import (
	"context"
	"sync"
	"testing"
	"time"

	"attnledger/core/types"
	"attnledger/native/orchestrator"
	"attnledger/native/registry"
)

type memStore struct {
	mu      sync.Mutex
	records map[types.PublisherId]*types.PublisherInfo
}

func newMemStore() *memStore {
	return &memStore{records: map[types.PublisherId]*types.PublisherInfo{}}
}

func (m *memStore) LoadPublisherInfo(ctx context.Context, filter types.Filter) (*types.PublisherInfo, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.records[filter.ID]
	if !ok {
		return nil, false, nil
	}
	return info.Clone(), true, nil
}

func (m *memStore) SavePublisherInfo(ctx context.Context, info *types.PublisherInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[info.ID] = info.Clone()
	return nil
}

func (m *memStore) LoadPublisherInfoList(ctx context.Context, start, limit int, filter types.Filter) ([]*types.PublisherInfo, error) {
	return nil, nil
}

type fixedSettings struct {
	minDuration      uint64
	minVisits        uint32
	allowNonVerified bool
	allowVideos      bool
}

func (s fixedSettings) MinPublisherDurationMS() uint64 { return s.minDuration }
func (s fixedSettings) MinVisits() uint32               { return s.minVisits }
func (s fixedSettings) AllowNonVerified() bool          { return s.allowNonVerified }
func (s fixedSettings) AllowVideos() bool               { return s.allowVideos }

func newTestTracker() (*Tracker, chan struct{}) {
	store := newMemStore()
	reg := registry.New()
	orch := orchestrator.New(store)
	settings := fixedSettings{minDuration: 8000, minVisits: 1, allowNonVerified: true}
	tracker := New(reg, orch, settings, 1.0/30000.0)
	updated := make(chan struct{}, 64)
	tracker.OnUpdated = func() { updated <- struct{}{} }
	return tracker, updated
}

func waitUpdate(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
}

func TestRecordVisitBelowMinDurationIsDropped(t *testing.T) {
	tracker, updated := newTestTracker()
	tracker.RecordVisit(context.Background(), "a.example", "", types.MonthJanuary, 2024, 1000, false)
	select {
	case <-updated:
		t.Fatal("expected no update for below-threshold visit")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRecordVisitAccumulatesMonotonically(t *testing.T) {
	tracker, updated := newTestTracker()
	tracker.RecordVisit(context.Background(), "a.example", "", types.MonthJanuary, 2024, 10000, false)
	waitUpdate(t, updated)
	tracker.RecordVisit(context.Background(), "a.example", "", types.MonthJanuary, 2024, 20000, false)
	waitUpdate(t, updated)

	set := tracker.WorkingSet()
	if len(set) != 1 {
		t.Fatalf("expected one eligible publisher, got %d", len(set))
	}
	if set[0].Duration != 30000 {
		t.Fatalf("expected duration 30000, got %d", set[0].Duration)
	}
	if set[0].Visits != 2 {
		t.Fatalf("expected 2 visits, got %d", set[0].Visits)
	}
}

func TestRecordVisitExcludedPublisherNeverMutates(t *testing.T) {
	tracker, updated := newTestTracker()
	reg := registry.New()
	reg.Replace(map[string]registry.Entry{"x.example": {Excluded: true}})
	tracker.registry = reg

	tracker.RecordVisit(context.Background(), "x.example", "", types.MonthJanuary, 2024, 60000, false)
	tracker.RecordVisit(context.Background(), "x.example", "", types.MonthJanuary, 2024, 60000, false)

	select {
	case <-updated:
		t.Fatal("expected no update for excluded publisher")
	case <-time.After(50 * time.Millisecond):
	}
	if len(tracker.WorkingSet()) != 0 {
		t.Fatalf("expected empty working set, got %+v", tracker.WorkingSet())
	}
}

func TestRecordPaymentAppendsContribution(t *testing.T) {
	tracker, updated := newTestTracker()
	tracker.RecordPayment(context.Background(), "a.example", types.CategoryTipping, 5.0, 1700000000, types.MonthJanuary, 2024)
	waitUpdate(t, updated)

	tracker.mu.Lock()
	info := tracker.workingSet["a.example"]
	tracker.mu.Unlock()
	if info == nil || len(info.Contributions) != 1 {
		t.Fatalf("expected one contribution, got %+v", info)
	}
	if info.Category != types.CategoryTipping {
		t.Fatalf("expected category tipping, got %v", info.Category)
	}
}
