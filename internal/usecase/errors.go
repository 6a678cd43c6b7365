package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrRefreshInProgress     = errors.New("refresh already in progress")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrSourceUnrecognized    = errors.New("fixtures source unrecognized")
)
