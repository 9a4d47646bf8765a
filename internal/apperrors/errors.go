package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrAlreadyPosted indicates that a journal entry has already been posted to the ledger.
var ErrAlreadyPosted = errors.New("already posted")

// ErrUnbalanced indicates that total debits and total credits differ.
var ErrUnbalanced = errors.New("entry is unbalanced")

// ErrConflict indicates that a concurrent writer changed the resource first.
var ErrConflict = errors.New("conflicting modification")

// ErrPersistence indicates that the backing store failed.
var ErrPersistence = errors.New("persistence failure")

// AppError carries a status-like code alongside the wrapped store error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError builds an AppError. Codes follow net/http status semantics.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets server side AppErrors match ErrPersistence.
func (e *AppError) Is(target error) bool {
	return target == ErrPersistence && e.Code >= http.StatusInternalServerError
}

// Kind is the coarse failure category reported to callers and metrics.
type Kind string

const (
	KindNone          Kind = ""
	KindNotFound      Kind = "NotFound"
	KindValidation    Kind = "Validation"
	KindDuplicate     Kind = "Duplicate"
	KindAlreadyPosted Kind = "AlreadyPosted"
	KindUnbalanced    Kind = "Unbalanced"
	KindConflict      Kind = "Conflict"
	KindPersistence   Kind = "Persistence"
	KindCanceled      Kind = "Canceled"
	KindInternal      Kind = "Internal"
)

// KindOf classifies err. The most specific category wins.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnbalanced):
		return KindUnbalanced
	case errors.Is(err, ErrAlreadyPosted):
		return KindAlreadyPosted
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case isCanceled(err):
		return KindCanceled
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindInternal
	}
}
