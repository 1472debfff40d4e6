package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so callers can map it to a stable
// client-facing response without string matching.
type Kind string

const (
	KindInsufficientFunds Kind = "insufficient_funds"
	KindConflict          Kind = "conflict"
	KindInvalidState      Kind = "invalid_state"
	KindInvalidMove       Kind = "invalid_move"
	KindNotEligible       Kind = "not_eligible"
	KindTooSoon           Kind = "too_soon"
	KindNotFound          Kind = "not_found"
)

// DomainError is a recoverable, user-correctable error. It is never fatal to
// the process; the request layer surfaces Kind and Message verbatim.
type DomainError struct {
	Kind    Kind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError of the same kind, so callers can write
// errors.Is(err, errors.ErrInsufficientFunds{...}) style checks via the
// sentinel values below.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if errors.As(target, &de) {
		return de.Kind == e.Kind
	}
	return false
}

// Sentinels for errors.Is checks. Compare by kind only.
var (
	ErrInsufficientFunds = &DomainError{Kind: KindInsufficientFunds, Message: "insufficient funds"}
	ErrConflict          = &DomainError{Kind: KindConflict, Message: "conflicting state"}
	ErrInvalidState      = &DomainError{Kind: KindInvalidState, Message: "invalid state"}
	ErrInvalidMove       = &DomainError{Kind: KindInvalidMove, Message: "invalid move"}
	ErrNotEligible       = &DomainError{Kind: KindNotEligible, Message: "not eligible"}
	ErrTooSoon           = &DomainError{Kind: KindTooSoon, Message: "too soon"}
	ErrNotFound          = &DomainError{Kind: KindNotFound, Message: "not found"}
)

// InsufficientFunds reports a debit larger than the current balance.
func InsufficientFunds(balance, needed int64) *DomainError {
	return &DomainError{
		Kind:    KindInsufficientFunds,
		Message: fmt.Sprintf("insufficient funds: have %d, need %d", balance, needed),
	}
}

// Conflict reports an action that collides with existing state.
func Conflict(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// InvalidState reports an operation attempted on a terminal or absent game.
func InvalidState(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// InvalidMove reports a domain rule violation within an active game.
func InvalidMove(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindInvalidMove, Message: fmt.Sprintf(format, args...)}
}

// NotEligible reports a missing precondition flag.
func NotEligible(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindNotEligible, Message: fmt.Sprintf(format, args...)}
}

// TooSoon reports a rate-limited action attempted early, including when it
// next becomes available.
func TooSoon(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindTooSoon, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent account, server or game.
func NotFound(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// IsDomain reports whether err is (or wraps) a DomainError.
func IsDomain(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
