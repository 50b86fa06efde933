package publisherstate

import (
	"sync"

	"attnledger/core/types"
)

// Saver is the narrow host capability this store needs (spec §9 design
// note: pass a capability handle instead of a façade back-pointer).
type Saver interface {
	SavePublisherState(blob []byte) error
}

// Store wraps a State with the typed accessors spec §4.3 requires, each of
// which serializes and calls the host's SavePublisherState.
type Store struct {
	mu    sync.Mutex
	state *State
	saver Saver
}

// NewStore constructs a store around an already-loaded (or default) state.
func NewStore(state *State, saver Saver) *Store {
	return &Store{state: state, saver: saver}
}

func (s *Store) persist() error {
	blob, err := s.state.Serialize()
	if err != nil {
		return err
	}
	if s.saver == nil {
		return nil
	}
	return s.saver.SavePublisherState(blob)
}

// Snapshot returns a copy of the current state for read-only inspection.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.state
}

func (s *Store) SetAllowNonVerified(allow bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AllowNonVerified = allow
	return s.persist()
}

func (s *Store) SetAllowVideos(allow bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AllowVideos = allow
	return s.persist()
}

func (s *Store) SetMinPublisherDurationMS(v uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.MinPublisherDurationMS = v
	return s.persist()
}

func (s *Store) SetMinVisits(v uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.MinVisits = v
	return s.persist()
}

// SetPubsLoadTimestamp is invoked only by the registry refresh scheduler
// (spec invariant 5): now on success, 0 on a save failure, otherwise
// unchanged.
func (s *Store) SetPubsLoadTimestamp(ts uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PubsLoadTimestamp = ts
	return s.persist()
}

func (s *Store) PubsLoadTimestamp() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PubsLoadTimestamp
}

func (s *Store) SetRecurringDonation(id types.PublisherId, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount <= 0 {
		delete(s.state.RecurringDonations, id)
	} else {
		s.state.RecurringDonations[id] = amount
	}
	return s.persist()
}

func (s *Store) RecurringDonation(id types.PublisherId) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.state.RecurringDonations[id]
	return v, ok
}

func (s *Store) SetBalanceReport(year int, month types.Month, report types.BalanceReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.MonthlyBalances[types.BalanceReportKey(year, month)] = report
	return s.persist()
}

func (s *Store) BalanceReport(year int, month types.Month) (types.BalanceReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.MonthlyBalances[types.BalanceReportKey(year, month)]
	return r, ok
}

// DeletePublisher soft-deletes a publisher id (SPEC_FULL.md §5 supplement).
func (s *Store) DeletePublisher(id types.PublisherId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DeletedPublishers[id] = true
	return s.persist()
}

// RestorePublisher clears a prior soft-delete.
func (s *Store) RestorePublisher(id types.PublisherId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.DeletedPublishers, id)
	return s.persist()
}

// IsDeleted reports whether id has been soft-deleted.
func (s *Store) IsDeleted(id types.PublisherId) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DeletedPublishers[id]
}

func (s *Store) MinPublisherDurationMS() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.MinPublisherDurationMS
}

func (s *Store) MinVisits() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.MinVisits
}

func (s *Store) AllowNonVerified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AllowNonVerified
}

func (s *Store) AllowVideos() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AllowVideos
}
