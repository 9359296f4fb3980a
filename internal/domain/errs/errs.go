// Package errs encodes the error taxonomy from §7 as sentinel errors so
// transport can map them to stable JSON-RPC codes via errors.Is, instead of
// string-matching.
package errs

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid_input")
	ErrNotRegistered        = errors.New("not_registered")
	ErrNotAssigned          = errors.New("not_assigned")
	ErrLeaseExpired         = errors.New("lease_expired")
	ErrBoardUnavailable     = errors.New("board_unavailable")
	ErrOracleUnavailable    = errors.New("oracle_unavailable")
	ErrCircularDependency   = errors.New("circular_dependency")
	ErrLedgerWrite          = errors.New("ledger_write_error")
	ErrUnknownTask          = errors.New("unknown_task")
	ErrInternal             = errors.New("internal")
)

// codeFor is the stable JSON-RPC-over-stdio error code for each sentinel,
// per §6.3/§7.
var codeFor = map[error]int{
	ErrInvalidInput:       -32001,
	ErrNotRegistered:      -32002,
	ErrNotAssigned:        -32003,
	ErrLeaseExpired:       -32004,
	ErrBoardUnavailable:   -32005,
	ErrOracleUnavailable:  -32006,
	ErrCircularDependency: -32007,
	ErrLedgerWrite:        -32008,
	ErrUnknownTask:        -32009,
	ErrInternal:           -32000,
}

// Code maps err to its JSON-RPC code via errors.Is, falling back to the
// generic Internal code for anything not in the taxonomy.
func Code(err error) int {
	for sentinel, code := range codeFor {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return codeFor[ErrInternal]
}
