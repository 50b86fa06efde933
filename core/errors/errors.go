package errors

import stderrors "errors"

// Sentinel errors surfaced by the native/* packages. core/types.Result
// carries the coarse taxonomy across host callback boundaries; these errors
// carry the fine-grained Go-side cause.
var (
	ErrPublisherIDEmpty     = stderrors.New("ledger: publisher id empty")
	ErrPublisherExcluded    = stderrors.New("ledger: publisher excluded")
	ErrInvalidPublisherInfo = stderrors.New("ledger: invalid publisher info")
	ErrInvalidPublisherState = stderrors.New("ledger: invalid publisher state")
	ErrInvalidLedgerState   = stderrors.New("ledger: invalid ledger state")
	ErrTooManyResults       = stderrors.New("ledger: too many results")
	ErrScheduleAlreadyArmed = stderrors.New("ledger: refresh timer already armed")
	ErrOrchestratorClosed   = stderrors.New("ledger: orchestrator closed")
	ErrEmptyRegistryBody    = stderrors.New("ledger: registry refresh body empty")
)
