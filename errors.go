package papertrade

import "errors"

// Errors returned by the ledger engine. They are always wrapped with context,
// use errors.Is to test for them.
var (
	// ErrInvalidArgument reports a malformed or out of range input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInsufficientFunds reports a cash shortfall.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientHoldings reports a share shortfall.
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	// ErrUnknownSymbol reports a symbol the price oracle cannot price.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

var (
	// ErrAccountExists reports an id already taken in a registry.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountNotFound reports an id that is not open in a registry.
	ErrAccountNotFound = errors.New("account not found")
	// ErrCorruptLog reports a transaction log that does not replay to its own snapshots.
	ErrCorruptLog = errors.New("corrupt transaction log")
)

// ErrorKind returns a short stable name for the engine error wrapped in err,
// or "" when err is nil or not one of the engine errors.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInsufficientHoldings):
		return "insufficient_holdings"
	case errors.Is(err, ErrUnknownSymbol):
		return "unknown_symbol"
	case errors.Is(err, ErrAccountExists):
		return "account_exists"
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrCorruptLog):
		return "corrupt_log"
	default:
		return ""
	}
}
