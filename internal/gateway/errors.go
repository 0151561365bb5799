package gateway

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrNotFound               = errors.New("cv not found")
	ErrValidationFailed       = errors.New("validation failed")
	ErrRemoteStore            = errors.New("remote store error")
)

// RemoteStoreError wraps a failure reported by the backing store
type RemoteStoreError struct {
	Op  string
	Err error
}

func (e *RemoteStoreError) Error() string {
	return fmt.Sprintf("remote store: %s: %v", e.Op, e.Err)
}

func (e *RemoteStoreError) Unwrap() error {
	return e.Err
}

func (e *RemoteStoreError) Is(target error) bool {
	return target == ErrRemoteStore
}

// ValidationError names the field that failed caller-side validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
