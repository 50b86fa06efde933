// Package publisherstate implements the persisted publisher settings (spec
// §3, §4.3): recurring donations, monthly balance reports, refresh
// timestamp, and the visit-gating knobs. It follows the same JSON-over-host
// shape as nhbchain's native/reputation ledger, but here the backing
// "storage" is the single opaque blob the host hands back on
// LoadPublisherState rather than a per-key KV store.
package publisherstate

import (
	"encoding/json"
	"fmt"

	"attnledger/core/errors"
	"attnledger/core/types"
)

// State is the persisted publisher settings record (spec §3).
type State struct {
	MinPublisherDurationMS uint64                             `json:"minPublisherDurationMs"`
	MinVisits              uint32                             `json:"minVisits"`
	AllowNonVerified       bool                               `json:"allowNonVerified"`
	AllowVideos            bool                               `json:"allowVideos"`
	PubsLoadTimestamp      uint64                             `json:"pubsLoadTimestamp"`
	RecurringDonations     map[types.PublisherId]float64      `json:"recurringDonations"`
	MonthlyBalances        map[string]types.BalanceReport     `json:"monthlyBalances"`
	ReconcileStamp         uint64                             `json:"reconcileStamp"`
	DeletedPublishers      map[types.PublisherId]bool         `json:"deletedPublishers,omitempty"`

	// Unknown preserves fields this version does not recognize so a
	// round-trip through an older or newer build does not drop data
	// (spec §4.3 forward-compatibility requirement).
	Unknown map[string]json.RawMessage `json:"-"`
}

// Default returns the state created on first initialization (spec §3).
func Default(minPublisherDurationMS uint64, minVisits uint32, allowNonVerified, allowVideos bool) *State {
	return &State{
		MinPublisherDurationMS: minPublisherDurationMS,
		MinVisits:              minVisits,
		AllowNonVerified:       allowNonVerified,
		AllowVideos:            allowVideos,
		PubsLoadTimestamp:      0,
		RecurringDonations:     map[types.PublisherId]float64{},
		MonthlyBalances:        map[string]types.BalanceReport{},
		DeletedPublishers:      map[types.PublisherId]bool{},
	}
}

// Serialize marshals the state, re-attaching any unknown fields carried
// forward from a prior deserialize (spec §4.3, P7 round-trip property).
func (s *State) Serialize() ([]byte, error) {
	if s == nil {
		return nil, errors.ErrInvalidPublisherState
	}
	type alias State
	payload, err := json.Marshal((*alias)(s))
	if err != nil {
		return nil, fmt.Errorf("publisherstate: marshal: %w", err)
	}
	if len(s.Unknown) == 0 {
		return payload, nil
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(payload, &merged); err != nil {
		return nil, fmt.Errorf("publisherstate: remarshal: %w", err)
	}
	for k, v := range s.Unknown {
		if _, known := merged[k]; !known {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Deserialize parses a persisted blob. Malformed input surfaces the
// INVALID_PUBLISHER_STATE condition (spec §4.3, §7) rather than a generic
// decode error so the façade can report it distinctly to the host.
func Deserialize(blob []byte) (*State, error) {
	if len(blob) == 0 {
		return nil, errors.ErrInvalidPublisherState
	}
	type alias State
	var tmp alias
	if err := json.Unmarshal(blob, &tmp); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPublisherState, err)
	}
	s := State(tmp)
	if s.RecurringDonations == nil {
		s.RecurringDonations = map[types.PublisherId]float64{}
	}
	if s.MonthlyBalances == nil {
		s.MonthlyBalances = map[string]types.BalanceReport{}
	}
	if s.DeletedPublishers == nil {
		s.DeletedPublishers = map[types.PublisherId]bool{}
	}

	var everything map[string]json.RawMessage
	if err := json.Unmarshal(blob, &everything); err == nil {
		known := map[string]struct{}{
			"minPublisherDurationMs": {}, "minVisits": {}, "allowNonVerified": {},
			"allowVideos": {}, "pubsLoadTimestamp": {}, "recurringDonations": {},
			"monthlyBalances": {}, "reconcileStamp": {}, "deletedPublishers": {},
		}
		unknown := map[string]json.RawMessage{}
		for k, v := range everything {
			if _, ok := known[k]; !ok {
				unknown[k] = v
			}
		}
		if len(unknown) > 0 {
			s.Unknown = unknown
		}
	}
	return &s, nil
}
