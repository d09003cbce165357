// Package indexer maintains cross-referenced lookup structures over parsed
// Java API entities and answers search and filter queries against them.
//
// The Index holds classes and methods in several maps keyed by
// fully-qualified name, simple name, package, repository and method name.
// Entries are partitioned by repository URL so a repository can be reindexed
// or removed in bulk. All state is memory-only and rebuilt by re-parsing
// after a restart.
//
// The Index is not safe for concurrent mutation: the maps are updated
// non-atomically relative to one another, so any future parallel use must
// serialize AddClass/ReindexRepository/RemoveRepository behind a single
// write lock and give readers a shared lock.
package indexer
