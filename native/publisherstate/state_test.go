package publisherstate

import (
	"encoding/json"
	"testing"

	"attnledger/core/errors"
	stderrors "errors"

	"attnledger/core/types"
)

func TestRoundTrip(t *testing.T) {
	s := Default(8000, 1, true, true)
	s.RecurringDonations["brave.com"] = 5.0
	s.MonthlyBalances[types.BalanceReportKey(2024, types.MonthMarch)] = types.BalanceReport{Opening: 1}

	blob, err := s.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	round, err := Deserialize(blob)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if round.MinPublisherDurationMS != s.MinPublisherDurationMS {
		t.Fatalf("min duration mismatch")
	}
	if round.RecurringDonations["brave.com"] != 5.0 {
		t.Fatalf("recurring donation not round-tripped")
	}
	if round.MonthlyBalances[types.BalanceReportKey(2024, types.MonthMarch)].Opening != 1 {
		t.Fatalf("balance report not round-tripped")
	}
}

func TestDeserializeRejectsMalformed(t *testing.T) {
	_, err := Deserialize([]byte("not json"))
	if !stderrors.Is(err, errors.ErrInvalidPublisherState) {
		t.Fatalf("expected ErrInvalidPublisherState, got %v", err)
	}
}

func TestDeserializeRejectsEmpty(t *testing.T) {
	_, err := Deserialize(nil)
	if !stderrors.Is(err, errors.ErrInvalidPublisherState) {
		t.Fatalf("expected ErrInvalidPublisherState, got %v", err)
	}
}

func TestUnknownFieldsPreservedAcrossRoundTrip(t *testing.T) {
	s := Default(8000, 1, true, true)
	blob, err := s.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(blob, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	generic["futureField"] = json.RawMessage(`"kept"`)
	augmented, err := json.Marshal(generic)
	if err != nil {
		t.Fatalf("marshal augmented: %v", err)
	}

	round, err := Deserialize(augmented)
	if err != nil {
		t.Fatalf("deserialize augmented: %v", err)
	}
	reserialized, err := round.Serialize()
	if err != nil {
		t.Fatalf("reserialize: %v", err)
	}
	var final map[string]json.RawMessage
	if err := json.Unmarshal(reserialized, &final); err != nil {
		t.Fatalf("unmarshal final: %v", err)
	}
	if string(final["futureField"]) != `"kept"` {
		t.Fatalf("expected futureField to survive round-trip, got %v", final["futureField"])
	}
}

type fakeSaver struct {
	saved [][]byte
	err   error
}

func (f *fakeSaver) SavePublisherState(blob []byte) error {
	f.saved = append(f.saved, blob)
	return f.err
}

func TestStoreMutatorsPersist(t *testing.T) {
	saver := &fakeSaver{}
	store := NewStore(Default(8000, 1, true, true), saver)
	if err := store.SetMinVisits(3); err != nil {
		t.Fatalf("SetMinVisits: %v", err)
	}
	if store.MinVisits() != 3 {
		t.Fatalf("expected min visits 3, got %d", store.MinVisits())
	}
	if len(saver.saved) != 1 {
		t.Fatalf("expected exactly one save, got %d", len(saver.saved))
	}
}

func TestDeletePublisherRoundTrips(t *testing.T) {
	saver := &fakeSaver{}
	store := NewStore(Default(8000, 1, true, true), saver)
	if err := store.DeletePublisher("brave.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !store.IsDeleted("brave.com") {
		t.Fatalf("expected brave.com to be deleted")
	}
	if err := store.RestorePublisher("brave.com"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if store.IsDeleted("brave.com") {
		t.Fatalf("expected brave.com to be restored")
	}
}
