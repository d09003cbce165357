package repository

import "time"

// Status is the lifecycle state of a managed repository.
type Status string

const (
	StatusPending Status = "pending"
	StatusCloning Status = "cloning"
	StatusSyncing Status = "syncing"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Record tracks per-URL metadata and status for a managed repository.
//
// One record exists per distinct URL. It is created on the first sync
// attempt and mutated in place on every later attempt; Success and Failed
// are not terminal, a later SyncAll re-drives the same record.
type Record struct {
	// URL is the remote repository URL, used verbatim as the record key.
	URL string

	// LocalPath is the clone location, a deterministic function of URL.
	LocalPath string

	// Branch is the branch to track. Empty means the remote's default
	// branch on clone and "main" on sync.
	Branch string

	// Status is the current lifecycle state.
	Status Status

	// LastClonedAt is the time of the last successful clone.
	LastClonedAt time.Time

	// LastUpdatedAt is the time of the last successful clone or sync.
	LastUpdatedAt time.Time

	// CommitHash is the HEAD commit after the last successful operation.
	CommitHash string
}

// Spec names one repository to synchronize. Branch is optional.
type Spec struct {
	URL    string
	Branch string
}

// Result is the outcome of one clone-or-sync attempt.
//
// SyncAll returns exactly one Result per input URL; callers must inspect
// each rather than assume uniform success, and should surface Message and
// Detail for failed entries rather than discard them silently.
type Result struct {
	Record  *Record
	Success bool
	Message string
	Detail  string
}
