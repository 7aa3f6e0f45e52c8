// internal/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds callers can branch on.
var (
	// ErrRepoNotFound indicates the upstream host has no such repository.
	ErrRepoNotFound = errors.New("repository not found upstream")

	// ErrUpstreamUnavailable indicates a network, auth or rate-limit failure
	// reaching the hosting API.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrAlreadyMonitored indicates an active record for the same full name
	// already exists.
	ErrAlreadyMonitored = errors.New("repository already monitored")

	// ErrRecordNotFound indicates no local record with the given id exists.
	ErrRecordNotFound = errors.New("record not found")
)

// InvalidRepoNameError is returned when an owner/name pair is empty or
// contains a path separator.
type InvalidRepoNameError struct {
	Owner string
	Name  string
}

func (e *InvalidRepoNameError) Error() string {
	return fmt.Sprintf("invalid repository name: %q/%q, expected non-empty owner and name", e.Owner, e.Name)
}
