package repository

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed repository operation.
type ErrorKind string

const (
	// KindNotFound means the upstream reported the repository URL does not
	// exist or is inaccessible during clone.
	KindNotFound ErrorKind = "not_found"

	// KindCloneFailed covers every other clone-time git or unexpected error.
	KindCloneFailed ErrorKind = "clone_failed"

	// KindSyncFailed covers remote-URL mismatch and fetch, checkout or
	// reset failures during sync.
	KindSyncFailed ErrorKind = "sync_failed"
)

// RepoError is a classified failure for one repository operation.
type RepoError struct {
	Kind    ErrorKind
	URL     string
	Message string
	Detail  string
}

func (e *RepoError) Error() string {
	s := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.URL != "" {
		s += fmt.Sprintf(" | repository: %s", e.URL)
	}
	if e.Detail != "" {
		s += fmt.Sprintf(" | detail: %s", e.Detail)
	}
	return s
}

// Is makes errors.Is match on the error kind via the sentinel values below.
func (e *RepoError) Is(target error) bool {
	var sentinel *RepoError
	if errors.As(target, &sentinel) {
		return sentinel.Kind == e.Kind && (sentinel.URL == "" || sentinel.URL == e.URL)
	}
	return false
}

// Sentinels for errors.Is matching by kind.
var (
	ErrNotFound    = &RepoError{Kind: KindNotFound}
	ErrCloneFailed = &RepoError{Kind: KindCloneFailed}
	ErrSyncFailed  = &RepoError{Kind: KindSyncFailed}
)

func notFoundError(url, message, detail string) *RepoError {
	return &RepoError{Kind: KindNotFound, URL: url, Message: message, Detail: detail}
}

func cloneError(url, message, detail string) *RepoError {
	return &RepoError{Kind: KindCloneFailed, URL: url, Message: message, Detail: detail}
}

func syncError(url, message, detail string) *RepoError {
	return &RepoError{Kind: KindSyncFailed, URL: url, Message: message, Detail: detail}
}
