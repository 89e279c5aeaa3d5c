package orderbook

import "errors"

// ErrorKind tags the reason a command was rejected, surfaced either as an
// OrderRejected event or as a direct return from Cancel/Modify.
type ErrorKind uint8

const (
	BadOrder ErrorKind = iota
	UnknownSymbol
	DuplicateId
	NotFound
	InvalidState
	InsufficientLiquidity
	ExpiredOnArrival
)

func (k ErrorKind) String() string {
	switch k {
	case BadOrder:
		return "BadOrder"
	case UnknownSymbol:
		return "UnknownSymbol"
	case DuplicateId:
		return "DuplicateId"
	case NotFound:
		return "NotFound"
	case InvalidState:
		return "InvalidState"
	case InsufficientLiquidity:
		return "InsufficientLiquidity"
	case ExpiredOnArrival:
		return "ExpiredOnArrival"
	default:
		return "Unknown"
	}
}

// Error is the sentinel-wrapped error type every core rejection uses, so
// callers can branch with errors.Is against the package-level sentinels
// below while still getting a Kind to stamp onto an OrderRejected event.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Sentinels for errors.Is comparisons against a bare kind, e.g.
// errors.Is(err, orderbook.ErrNotFound).
var (
	ErrBadOrder              = &Error{Kind: BadOrder}
	ErrUnknownSymbol         = &Error{Kind: UnknownSymbol}
	ErrDuplicateId           = &Error{Kind: DuplicateId}
	ErrNotFound              = &Error{Kind: NotFound}
	ErrInvalidState          = &Error{Kind: InvalidState}
	ErrInsufficientLiquidity = &Error{Kind: InsufficientLiquidity}
	ErrExpiredOnArrival      = &Error{Kind: ExpiredOnArrival}
)

// KindOf extracts the ErrorKind from err, if it wraps an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
