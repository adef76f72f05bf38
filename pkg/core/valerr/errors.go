// Package valerr defines the tagged failures a valuation request can end with.
// Every error is scoped to one calculation; none of them are retried internally.
package valerr

import (
	"errors"
	"fmt"
)

// Kind tags a valuation failure.
type Kind string

const (
	KindInsufficientHistory   Kind = "INSUFFICIENT_HISTORY"
	KindNoValidGrowthWindow   Kind = "NO_VALID_GROWTH_WINDOW"
	KindInvalidTerminalSpread Kind = "INVALID_TERMINAL_SPREAD"
	KindInvalidAssumption     Kind = "INVALID_ASSUMPTION"
	KindMissingShareCount     Kind = "MISSING_SHARE_COUNT"
)

// Sentinels for errors.Is. Any *Error with the same Kind matches.
var (
	ErrInsufficientHistory   = &Error{Kind: KindInsufficientHistory}
	ErrNoValidGrowthWindow   = &Error{Kind: KindNoValidGrowthWindow}
	ErrInvalidTerminalSpread = &Error{Kind: KindInvalidTerminalSpread}
	ErrInvalidAssumption     = &Error{Kind: KindInvalidAssumption}
	ErrMissingShareCount     = &Error{Kind: KindMissingShareCount}
)

// Error carries the failure kind, a human readable message and the offending
// input so callers can redisplay what the user submitted.
type Error struct {
	Kind  Kind
	Field string // e.g. "discount_rate"; empty when not tied to one input
	Input any
	Msg   string
}

// New builds a tagged error.
func New(kind Kind, field string, input any, format string, args ...any) *Error {
	return &Error{
		Kind:  kind,
		Field: field,
		Input: input,
		Msg:   fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s=%v)", e.Kind, e.Msg, e.Field, e.Input)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is matches on Kind only, so sentinels compare equal to any detailed error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
