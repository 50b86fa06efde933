package tabtracker

import (
	"context"
	"sync"
	"testing"

	"attnledger/core/types"
)

type recordedVisit struct {
	id       types.PublisherId
	duration uint64
}

type spyRecorder struct {
	mu     sync.Mutex
	visits []recordedVisit
}

func (s *spyRecorder) RecordVisit(ctx context.Context, id types.PublisherId, faviconURL string, month types.Month, year int, durationMS uint64, isMediaProvider bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits = append(s.visits, recordedVisit{id: id, duration: durationMS})
}

func TestOnHideEmitsVisitWithElapsedDuration(t *testing.T) {
	recorder := &spyRecorder{}
	agg := New(recorder)

	snapshot := types.TabSnapshot{TabID: 1, Domain: "example.com", TLD: "example.com"}
	agg.OnLoad(snapshot, 1000)
	agg.OnShow(1, 1000)
	agg.OnHide(context.Background(), 1, 11000)

	if len(recorder.visits) != 1 {
		t.Fatalf("expected one visit, got %d", len(recorder.visits))
	}
	if recorder.visits[0].duration != 10000 {
		t.Fatalf("expected duration 10000, got %d", recorder.visits[0].duration)
	}
}

func TestOnHideDropsWhenNotShownTab(t *testing.T) {
	recorder := &spyRecorder{}
	agg := New(recorder)

	snapshot := types.TabSnapshot{TabID: 1, Domain: "example.com", TLD: "example.com"}
	agg.OnLoad(snapshot, 1000)
	agg.OnShow(2, 1000)
	agg.OnHide(context.Background(), 1, 11000)

	if len(recorder.visits) != 0 {
		t.Fatalf("expected no visit, got %+v", recorder.visits)
	}
}

func TestOnLoadDropsEmptyDomain(t *testing.T) {
	recorder := &spyRecorder{}
	agg := New(recorder)
	agg.OnLoad(types.TabSnapshot{TabID: 1}, 1000)
	if _, ok := agg.currentPages[1]; ok {
		t.Fatal("expected empty-domain snapshot to be dropped")
	}
}

func TestOnUnloadForgetsTab(t *testing.T) {
	recorder := &spyRecorder{}
	agg := New(recorder)

	snapshot := types.TabSnapshot{TabID: 1, Domain: "example.com", TLD: "example.com"}
	agg.OnLoad(snapshot, 1000)
	agg.OnShow(1, 1000)
	agg.OnUnload(context.Background(), 1, 11000)

	if _, ok := agg.currentPages[1]; ok {
		t.Fatal("expected tab to be forgotten after unload")
	}
	if len(recorder.visits) != 1 {
		t.Fatalf("expected unload to emit the pending visit, got %d", len(recorder.visits))
	}
}

func TestOnHideDoubleFireIsNoOp(t *testing.T) {
	recorder := &spyRecorder{}
	agg := New(recorder)

	snapshot := types.TabSnapshot{TabID: 1, Domain: "example.com", TLD: "example.com"}
	agg.OnLoad(snapshot, 1000)
	agg.OnShow(1, 1000)
	agg.OnHide(context.Background(), 1, 11000)
	agg.OnHide(context.Background(), 1, 21000)

	if len(recorder.visits) != 1 {
		t.Fatalf("expected exactly one visit, got %d", len(recorder.visits))
	}
}
