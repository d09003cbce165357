// Package repository keeps local clones of configured Git repositories
// synchronized with their remotes.
//
// The Manager decides per repository whether to clone or sync, drives each
// record through a small state machine (Pending -> Cloning/Syncing ->
// Success/Failed), and classifies failures as NotFound, CloneFailed or
// SyncFailed. Batch processing never aborts on a single failure: SyncAll
// returns exactly one outcome per input URL.
//
// Clones are shallow (depth 1) and single-branch. Syncing always mirrors
// upstream with a hard reset to origin/<branch>; local modifications in a
// managed clone are intentionally discarded, never merged.
//
// All operations are synchronous and run to completion before returning.
// No timeout is imposed on git network calls; callers wrap the context with
// a deadline if they need one. Failures are reported once, never retried.
package repository
