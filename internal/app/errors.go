package app

import "errors"

// Sentinel errors for common application errors
var (
	ErrNotSaved          = errors.New("the current cv has not been saved yet")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnsupportedDriver = errors.New("unsupported store driver")
	ErrSessionExpired    = errors.New("session expired or invalid, run 'cvbuilder login'")
)
