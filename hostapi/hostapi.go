// Package hostapi defines the narrow capability interfaces the core
// consumes from its host (spec §6, §9). Each native/* component receives
// only the slice of capabilities it needs rather than a back-pointer to the
// façade, following the dependency-injection note in spec §9 and the
// pattern nhbchain uses for its storage/state interfaces
// (native/reputation's unexported `storage` interface, native/loyalty's
// `registryState`).
package hostapi

import (
	"context"

	"attnledger/core/types"
)

// PublisherInfoStore is the load/save surface for a single publisher record
// (spec §4.7, §6). NOT_FOUND is not an error: callers check Found.
type PublisherInfoStore interface {
	LoadPublisherInfo(ctx context.Context, filter types.Filter) (info *types.PublisherInfo, found bool, err error)
	SavePublisherInfo(ctx context.Context, info *types.PublisherInfo) error
	LoadPublisherInfoList(ctx context.Context, start, limit int, filter types.Filter) ([]*types.PublisherInfo, error)
}

// PublisherStateStore is the whole-blob load/save surface for §3's
// PublisherState.
type PublisherStateStore interface {
	LoadPublisherState(ctx context.Context) (blob []byte, found bool, err error)
	SavePublisherState(ctx context.Context, blob []byte) error
}

// LedgerStateStore is the opaque wallet blob surface (§6); the wallet's own
// parsing is out of scope (§1) but the core still drives load/save timing.
type LedgerStateStore interface {
	LoadLedgerState(ctx context.Context) (blob []byte, found bool, err error)
	SaveLedgerState(ctx context.Context, blob []byte) error
}

// RegistryFetcher performs the registry refresh HTTP fetch (§6 LoadURL) and
// the subsequent SavePublishersList.
type RegistryFetcher interface {
	FetchPublisherRegistry(ctx context.Context) (body []byte, err error)
	SavePublishersList(ctx context.Context, body []byte) error
}

// Clock is the host's wall-clock capability (§6 current_time()).
type Clock interface {
	Now() uint64 // seconds since epoch
}

// Entropy is the host's randomness capability, used only for the registry
// refresh scheduler's retry jitter (§4.8).
type Entropy interface {
	Int63n(n int64) int64
}

// GUIDGenerator is the host's GenerateGUID() capability.
type GUIDGenerator interface {
	GenerateGUID() string
}

// Timer is the host's SetTimer/OnTimer capability (§6), collapsed into a
// single-shot scheduling call: the host arms a timer for delaySeconds and
// invokes fire exactly once when it elapses. cancel is idempotent and safe
// to call after the timer has already fired.
type Timer interface {
	SetTimer(delaySeconds int, fire func()) (cancel func())
}
