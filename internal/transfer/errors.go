package transfer

import (
	"github.com/go-faster/errors"
)

var (
	ErrNotFound     = errors.New("transfer not found")
	ErrExpired      = errors.New("transfer has expired")
	ErrValidation   = errors.New("invalid request")
	ErrStoreFailure = errors.New("storage operation failed")
)

// ValidationError carries a human-readable reason and matches ErrValidation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// StoreError wraps a failed blob or metadata store call and matches ErrStoreFailure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreFailure }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
