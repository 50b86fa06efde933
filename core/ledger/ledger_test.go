package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"attnledger/config"
	"attnledger/core/types"
)

type fakeHost struct {
	mu         sync.Mutex
	records    map[types.PublisherId]*types.PublisherInfo
	pubState   []byte
	ledgerBlob []byte
	registry   []byte
	now        uint64
}

func newFakeHost() *fakeHost {
	return &fakeHost{records: map[types.PublisherId]*types.PublisherInfo{}, now: 1000}
}

func (h *fakeHost) LoadLedgerState(ctx context.Context) ([]byte, bool, error) {
	if h.ledgerBlob == nil {
		return nil, false, nil
	}
	return h.ledgerBlob, true, nil
}
func (h *fakeHost) SaveLedgerState(ctx context.Context, blob []byte) error {
	h.ledgerBlob = blob
	return nil
}
func (h *fakeHost) LoadPublisherState(ctx context.Context) ([]byte, bool, error) {
	if h.pubState == nil {
		return nil, false, nil
	}
	return h.pubState, true, nil
}
func (h *fakeHost) SavePublisherState(ctx context.Context, blob []byte) error {
	h.pubState = blob
	return nil
}
func (h *fakeHost) LoadPublisherInfo(ctx context.Context, filter types.Filter) (*types.PublisherInfo, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	info, ok := h.records[filter.ID]
	if !ok {
		return nil, false, nil
	}
	return info.Clone(), true, nil
}
func (h *fakeHost) SavePublisherInfo(ctx context.Context, info *types.PublisherInfo) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records[info.ID] = info.Clone()
	return nil
}
func (h *fakeHost) LoadPublisherInfoList(ctx context.Context, start, limit int, filter types.Filter) ([]*types.PublisherInfo, error) {
	return nil, nil
}
func (h *fakeHost) FetchPublisherRegistry(ctx context.Context) ([]byte, error) {
	return h.registry, nil
}
func (h *fakeHost) SavePublishersList(ctx context.Context, body []byte) error {
	h.registry = body
	return nil
}
func (h *fakeHost) Now() uint64               { return h.now }
func (h *fakeHost) Int63n(n int64) int64      { return 0 }
func (h *fakeHost) GenerateGUID() string      { return "guid-fixed" }
func (h *fakeHost) SetTimer(delaySeconds int, fire func()) func() {
	return func() {}
}

func newTestLedger(t *testing.T) (*Ledger, *fakeHost) {
	t.Helper()
	host := newFakeHost()
	l := New(config.DefaultConfig(), Host{
		LedgerState:    host,
		PublisherState: host,
		PublisherInfo:  host,
		Registry:       host,
		Clock:          host,
		Entropy:        host,
		GUID:           host,
		Timer:          host,
	})
	if _, err := l.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return l, host
}

func TestInitializeFirstRunReportsOK(t *testing.T) {
	var got types.Result
	host := newFakeHost()
	l := New(config.DefaultConfig(), Host{
		LedgerState: host, PublisherState: host, PublisherInfo: host,
		Registry: host, Clock: host, Entropy: host, GUID: host, Timer: host,
	})
	l.OnWalletInitialized = func(r types.Result) { got = r }
	if _, err := l.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if got != types.ResultOK {
		t.Fatalf("expected OK, got %v", got)
	}
}

func TestRecordVisitFlowsIntoSynopsisAndReconcile(t *testing.T) {
	l, _ := newTestLedger(t)

	l.RecordVisit(context.Background(), "a.example", "", types.MonthJanuary, 2024, 10000, false)
	l.RecordVisit(context.Background(), "b.example", "", types.MonthJanuary, 2024, 50000, false)

	deadlineWait(t, func() bool { return len(l.Synopsis()) == 2 })

	winners := l.Reconcile(10)
	sum := uint32(0)
	for _, w := range winners {
		sum += w.Votes
	}
	if sum != 10 {
		t.Fatalf("expected vote sum 10, got %d", sum)
	}
}

func TestGenerateGUIDDelegatesToHost(t *testing.T) {
	l, _ := newTestLedger(t)
	if got := l.GenerateGUID(); got != "guid-fixed" {
		t.Fatalf("expected delegated guid, got %s", got)
	}
}

func TestDeletePublisherRemovesFromWorkingSet(t *testing.T) {
	l, _ := newTestLedger(t)
	l.RecordVisit(context.Background(), "a.example", "", types.MonthJanuary, 2024, 10000, false)
	deadlineWait(t, func() bool { return len(l.Synopsis()) == 1 })

	if err := l.DeletePublisher("a.example"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(l.Synopsis()) != 0 {
		t.Fatalf("expected empty synopsis after delete, got %+v", l.Synopsis())
	}
}

func deadlineWait(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 200; i++ {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
