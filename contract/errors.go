package contract

import (
	"errors"
	"fmt"
)

// Kind groups error codes by what went wrong, independent of the code.
type Kind uint8

const (
	KindNotFound Kind = iota + 1
	KindAlreadyExists
	KindPermissionDenied
	KindInvalidTiming
	KindOutOfTier
	KindArithmeticOverflow
	KindInvalidInput
	KindInsufficientFunds
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindPermissionDenied:
		return "permission_denied"
	case KindInvalidTiming:
		return "invalid_timing"
	case KindOutOfTier:
		return "out_of_tier"
	case KindArithmeticOverflow:
		return "arithmetic_overflow"
	case KindInvalidInput:
		return "invalid_input"
	case KindInsufficientFunds:
		return "insufficient_funds"
	default:
		return "unknown"
	}
}

// Error aborts a call. Code is stable and surfaces on the receipt.
type Error struct {
	Code uint16
	Kind Kind
	Name string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Name
	}
	return e.Name + ": " + e.Msg
}

// Is matches on code so wrapped copies with a message still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// With returns a copy of e carrying a detail message.
func (e *Error) With(format string, args ...any) *Error {
	cp := *e
	cp.Msg = fmt.Sprintf(format, args...)
	return &cp
}

func newError(code uint16, kind Kind, name string) *Error {
	return &Error{Code: code, Kind: kind, Name: name}
}

var (
	ErrInsufficientBalance   = newError(0, KindInsufficientFunds, "InsufficientBalance")
	ErrInsufficientAllowance = newError(1, KindInsufficientFunds, "InsufficientAllowance")
	ErrPermissionDenied      = newError(41, KindPermissionDenied, "PermissionDenied")
	ErrNotExistAuction       = newError(42, KindNotFound, "NotExistAuction")
	ErrAlreadyExistAuction   = newError(43, KindAlreadyExists, "AlreadyExistAuction")
	ErrSaleNotStarted        = newError(44, KindInvalidTiming, "SaleNotStarted")
	ErrSaleEnded             = newError(45, KindInvalidTiming, "SaleEnded")
	ErrInvalidTime           = newError(46, KindInvalidTiming, "InvalidTime")
	ErrNotWhitelisted        = newError(47, KindPermissionDenied, "NotWhiteListed")
	ErrInvalidCSPRPrice      = newError(48, KindInvalidInput, "InvalidCSPRPrice")
	ErrAlreadyClaimed        = newError(49, KindAlreadyExists, "AlreadyClaimed")
	ErrTierNotSet            = newError(50, KindInvalidInput, "TierNotSetted")
	ErrOutOfTier             = newError(51, KindOutOfTier, "OutOfTier")
	ErrNotExistOrder         = newError(53, KindNotFound, "NotExistOrder")
	ErrInvalidSchedule       = newError(54, KindNotFound, "InvalidSchedule")
	ErrInvalidPayToken       = newError(55, KindInvalidInput, "InvalidPayToken")
	ErrInvalidArgument       = newError(56, KindInvalidInput, "InvalidArgument")
	ErrNotInitialized        = newError(57, KindInvalidInput, "NotInitialized")
	ErrAlreadyInitialized    = newError(58, KindAlreadyExists, "AlreadyInitialized")
	ErrUnknownEntryPoint     = newError(59, KindInvalidInput, "UnknownEntryPoint")
	ErrOverflow              = newError(93, KindArithmeticOverflow, "Overflow")
)

// KindOf returns the Kind of a contract error, or zero for anything else.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}
