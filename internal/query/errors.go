package query

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/qscope/internal/pred"
)

// ContractError reports a misuse of a context by its caller. Contract
// violations are programming errors: the context panics with a
// *ContractError rather than returning it. Use Guard to convert the panic
// into an error at a boundary that must not crash.
type ContractError struct {
	// Code identifies the violated contract.
	Code ContractErrorCode

	// Message is a human-readable description.
	Message string

	// Handle identifies the offending context.
	Handle uuid.UUID
}

// ContractErrorCode categorizes contract violations.
type ContractErrorCode string

const (
	// ErrCodeUnknownPredicate indicates a predicate id that is not part of
	// the context's where tree, or a lookup on a context without one.
	ErrCodeUnknownPredicate ContractErrorCode = "UNKNOWN_PREDICATE"

	// ErrCodeBindOnClone indicates Bind was called on a cloned context.
	ErrCodeBindOnClone ContractErrorCode = "BIND_ON_CLONE"
)

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s (context=%s)", e.Code, e.Message, e.Handle)
}

// IsUnknownPredicate reports whether err is an unknown predicate violation.
// Uses errors.As to handle wrapped errors.
func IsUnknownPredicate(err error) bool {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeUnknownPredicate
	}
	return false
}

// IsBindOnClone reports whether err is a bind-on-clone violation.
func IsBindOnClone(err error) bool {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeBindOnClone
	}
	return false
}

func newUnknownPredicateError(handle uuid.UUID, id pred.ID, hasWhere bool) *ContractError {
	msg := fmt.Sprintf("predicate %d is not in the where clause", id)
	if !hasWhere {
		msg = fmt.Sprintf("predicate %d requested but the context has no where clause", id)
	}
	return &ContractError{
		Code:    ErrCodeUnknownPredicate,
		Message: msg,
		Handle:  handle,
	}
}

func newBindOnCloneError(handle, source uuid.UUID) *ContractError {
	return &ContractError{
		Code:    ErrCodeBindOnClone,
		Message: fmt.Sprintf("cannot bind a context cloned from %s; bind the template or bind the search condition directly", source),
		Handle:  handle,
	}
}

// Guard runs fn and returns the *ContractError it panicked with, if any.
// Other panics propagate.
func Guard(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if ce, ok := r.(*ContractError); ok {
			err = ce
			return
		}
		panic(r)
	}()
	fn()
	return nil
}
