package types

// Result is the coarse outcome taxonomy carried on every host callback
// boundary (spec §6, §7). It travels alongside the finer-grained sentinel
// errors in core/errors so the façade can decide whether a failure is
// fatal to initialization, transient, or a plain miss.
type Result int

const (
	ResultOK Result = iota
	ResultError
	ResultNotFound
	ResultTooManyResults
	ResultInvalidPublisherState
	ResultInvalidLedgerState
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "OK"
	case ResultError:
		return "ERROR"
	case ResultNotFound:
		return "NOT_FOUND"
	case ResultTooManyResults:
		return "TOO_MANY_RESULTS"
	case ResultInvalidPublisherState:
		return "INVALID_PUBLISHER_STATE"
	case ResultInvalidLedgerState:
		return "INVALID_LEDGER_STATE"
	default:
		return "UNKNOWN"
	}
}
