package indexer

import "errors"

var (
	// ErrIndexNotBuilt indicates a query was issued before any class was
	// ever indexed. This is a usage error and is never retried internally.
	ErrIndexNotBuilt = errors.New("index has not been built")

	// ErrRepositoryNotIndexed indicates a repository-scoped query targeted
	// a URL with zero currently-indexed classes. A repository that was
	// indexed and then fully removed is indistinguishable from one that
	// was never indexed.
	ErrRepositoryNotIndexed = errors.New("repository not indexed")
)
