// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrNotBorrowed     = errors.New("item was not borrowed on this request")
	ErrOverReturn      = errors.New("return quantity exceeds remaining quantity")
	ErrDuplicateItem   = errors.New("item listed more than once")
)

// Conflict errors.
var (
	ErrRequestClosed          = errors.New("request is closed")
	ErrNotApproved            = errors.New("request has not been approved")
	ErrNotFullyReturned       = errors.New("request still has outstanding items")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrConcurrentModification = errors.New("request is being modified concurrently")
	ErrInsufficientStock      = errors.New("insufficient available quantity")
	ErrItemExists             = errors.New("inventory item already exists")
	ErrItemInUse              = errors.New("inventory item has outstanding borrows")
)

// Not-found, authorization and integrity errors.
var (
	ErrRequestNotFound    = errors.New("request not found")
	ErrItemNotFound       = errors.New("inventory item not found")
	ErrForbidden          = errors.New("action not permitted for caller")
	ErrIntegrityViolation = errors.New("ledger integrity violation")
)

// ErrorKind classifies an error for the transport boundary.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindNotFound   ErrorKind = "not_found"
	KindForbidden  ErrorKind = "forbidden"
	KindIntegrity  ErrorKind = "integrity"
	KindInternal   ErrorKind = "internal"
)

type errorClass struct {
	err  error
	kind ErrorKind
	code string
}

// Order matters: integrity is checked first so a wrapped integrity failure is
// never reported as the validation error it was found under.
var errorClasses = []errorClass{
	{ErrIntegrityViolation, KindIntegrity, "IntegrityViolation"},
	{ErrInvalidQuantity, KindValidation, "InvalidQuantity"},
	{ErrNotBorrowed, KindValidation, "NotBorrowed"},
	{ErrOverReturn, KindValidation, "OverReturn"},
	{ErrDuplicateItem, KindValidation, "DuplicateItem"},
	{ErrValidation, KindValidation, "ValidationFailed"},
	{ErrRequestClosed, KindConflict, "RequestClosed"},
	{ErrNotApproved, KindConflict, "NotApproved"},
	{ErrNotFullyReturned, KindConflict, "NotFullyReturned"},
	{ErrInvalidTransition, KindConflict, "InvalidTransition"},
	{ErrConcurrentModification, KindConflict, "ConcurrentModification"},
	{ErrInsufficientStock, KindConflict, "InsufficientStock"},
	{ErrItemExists, KindConflict, "ItemExists"},
	{ErrItemInUse, KindConflict, "ItemInUse"},
	{ErrRequestNotFound, KindNotFound, "RequestNotFound"},
	{ErrItemNotFound, KindNotFound, "ItemNotFound"},
	{ErrForbidden, KindForbidden, "Forbidden"},
}

// KindOf reports the error kind of err, or KindInternal if err is not a domain error.
func KindOf(err error) ErrorKind {
	for _, c := range errorClasses {
		if errors.Is(err, c.err) {
			return c.kind
		}
	}
	return KindInternal
}

// Code returns the stable wire code for err.
func Code(err error) string {
	for _, c := range errorClasses {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "InternalError"
}

// ReturnLineError identifies the return line of a batch that was rejected.
type ReturnLineError struct {
	Index    int
	Item     string
	Quantity int
	Err      error
}

func (e *ReturnLineError) Error() string {
	return fmt.Sprintf("return line %d (%s x %d): %v", e.Index, e.Item, e.Quantity, e.Err)
}

func (e *ReturnLineError) Unwrap() error {
	return e.Err
}

// Validationf wraps ErrValidation with a field-specific message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
