package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.uber.org/zap"
)

// fallbackBranch is used on sync when no branch was configured. Clones
// without a configured branch follow the remote's default branch instead.
const fallbackBranch = "main"

// Manager clones and synchronizes Git repositories under a base directory.
type Manager struct {
	baseDir       string
	defaultBranch string
	records       map[string]*Record
	logger        *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithDefaultBranch sets the branch used for repositories whose Spec does
// not name one.
func WithDefaultBranch(branch string) Option {
	return func(m *Manager) { m.defaultBranch = branch }
}

// NewManager creates a manager storing clones under baseDir, creating the
// directory if it is missing.
func NewManager(baseDir string, opts ...Option) (*Manager, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating base directory %s: %w", abs, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat base directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path is not a directory: %s", abs)
	}

	m := &Manager{
		baseDir: abs,
		records: make(map[string]*Record),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// BaseDir returns the absolute base directory for clones.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// DeriveLocalPath returns the deterministic clone location for a URL.
func (m *Manager) DeriveLocalPath(rawURL string) string {
	return filepath.Join(m.baseDir, Slug(rawURL))
}

// Slug derives a filesystem-safe directory name from a repository URL,
// joining the last two path segments as owner_repo with any ".git" suffix
// stripped. Two hosts carrying the same owner/repo pair collide; resolving
// that is out of scope here.
func Slug(rawURL string) string {
	trimmed := strings.TrimSuffix(strings.TrimSpace(rawURL), "/")

	var host, p string
	if u, err := url.Parse(trimmed); err == nil {
		host, p = u.Host, u.Path
		if p == "" {
			p = u.Opaque
		}
	} else {
		p = trimmed
	}
	// scp-like form: git@host:owner/repo.git
	if host == "" && strings.Contains(p, "@") {
		if i := strings.Index(p, ":"); i >= 0 {
			host = strings.TrimPrefix(p[:i], "git@")
			p = p[i+1:]
		}
	}

	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) >= 2 {
		owner := parts[len(parts)-2]
		repo := strings.TrimSuffix(parts[len(parts)-1], ".git")
		return owner + "_" + repo
	}
	if host != "" {
		return strings.ReplaceAll(host, ".", "_")
	}
	return strings.TrimSuffix(strings.Trim(p, "/"), ".git")
}

// RepoName extracts the repository name (last URL segment, ".git" stripped).
func RepoName(rawURL string) string {
	name := strings.TrimSuffix(strings.TrimSpace(rawURL), "/")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

// Record returns the record tracked for a URL, if any.
func (m *Manager) Record(rawURL string) (*Record, bool) {
	rec, ok := m.records[rawURL]
	return rec, ok
}

// RecordByName returns the first record whose repository name matches.
func (m *Manager) RecordByName(name string) (*Record, bool) {
	for _, rec := range m.records {
		if RepoName(rec.URL) == name {
			return rec, true
		}
	}
	return nil, false
}

// Records returns all tracked records.
func (m *Manager) Records() []*Record {
	out := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out
}

// SyncAll ensures a correct local clone for every spec, in input order.
//
// Each repository is cloned when no valid local clone exists and synced
// otherwise. Every failure, typed or not, is converted into a failure
// outcome locally; the batch never aborts and the returned slice holds
// exactly one Result per input spec.
func (m *Manager) SyncAll(ctx context.Context, specs []Spec) []Result {
	m.logger.Info("processing repositories",
		zap.Int("count", len(specs)),
		zap.String("base_dir", m.baseDir))

	results := make([]Result, 0, len(specs))
	for _, spec := range specs {
		results = append(results, m.processOne(ctx, spec))
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	m.logger.Info("repository processing completed",
		zap.Int("successful", succeeded),
		zap.Int("failed", len(results)-succeeded))
	return results
}

// processOne clones or syncs a single repository, converting any error or
// panic into a failure Result.
func (m *Manager) processOne(ctx context.Context, spec Spec) (res Result) {
	rec := m.record(spec)

	defer func() {
		if r := recover(); r != nil {
			rec.Status = StatusFailed
			m.logger.Error("unexpected panic processing repository",
				zap.String("url", rec.URL), zap.Any("panic", r))
			res = Result{
				Record:  rec,
				Message: fmt.Sprintf("unexpected error: %v", r),
				Detail:  fmt.Sprintf("%v", r),
			}
		}
	}()

	var err error
	if m.exists(rec) {
		m.logger.Info("repository exists locally, syncing", zap.String("url", rec.URL))
		err = m.sync(ctx, rec)
	} else {
		m.logger.Info("repository does not exist locally, cloning", zap.String("url", rec.URL))
		err = m.clone(ctx, rec)
	}

	if err != nil {
		m.logger.Error("repository operation failed",
			zap.String("url", rec.URL), zap.Error(err))
		var repoErr *RepoError
		if errors.As(err, &repoErr) {
			return Result{Record: rec, Message: repoErr.Message, Detail: repoErr.Detail}
		}
		return Result{Record: rec, Message: fmt.Sprintf("unexpected error: %v", err), Detail: err.Error()}
	}

	verb := "synchronized"
	if rec.Status == StatusSuccess && rec.LastClonedAt.Equal(rec.LastUpdatedAt) && !rec.LastClonedAt.IsZero() {
		verb = "cloned"
	}
	return Result{
		Record:  rec,
		Success: true,
		Message: fmt.Sprintf("repository %s successfully at %s", verb, rec.LocalPath),
	}
}

// record returns the record for a spec, creating it on the first attempt.
func (m *Manager) record(spec Spec) *Record {
	rec, ok := m.records[spec.URL]
	if !ok {
		rec = &Record{
			URL:       spec.URL,
			LocalPath: m.DeriveLocalPath(spec.URL),
			Branch:    m.defaultBranch,
			Status:    StatusPending,
		}
		m.records[spec.URL] = rec
	}
	if spec.Branch != "" {
		rec.Branch = spec.Branch
	}
	return rec
}

// exists reports whether the record's local path holds a git repository.
// Any I/O error while checking is treated as false.
func (m *Manager) exists(rec *Record) bool {
	info, err := os.Stat(rec.LocalPath)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		m.logger.Warn("local path exists but is not a directory",
			zap.String("path", rec.LocalPath))
		return false
	}
	if _, err := os.Stat(filepath.Join(rec.LocalPath, git.GitDirName)); err != nil {
		m.logger.Warn("directory exists but is not a git repository",
			zap.String("path", rec.LocalPath))
		return false
	}
	return true
}

// clone performs a shallow single-branch clone of the record's URL.
//
// A non-repository directory already occupying the local path is removed
// first. An upstream "not found" signal classifies as NotFound; every other
// failure classifies as CloneFailed.
func (m *Manager) clone(ctx context.Context, rec *Record) error {
	m.logger.Info("cloning repository",
		zap.String("url", rec.URL), zap.String("path", rec.LocalPath))
	rec.Status = StatusCloning

	if _, err := os.Stat(rec.LocalPath); err == nil {
		m.logger.Warn("target directory already exists, removing",
			zap.String("path", rec.LocalPath))
		if err := os.RemoveAll(rec.LocalPath); err != nil {
			rec.Status = StatusFailed
			return cloneError(rec.URL, "cannot remove existing directory", err.Error())
		}
	}
	if err := os.MkdirAll(filepath.Dir(rec.LocalPath), 0o755); err != nil {
		rec.Status = StatusFailed
		return cloneError(rec.URL, "cannot create parent directory", err.Error())
	}

	opts := &git.CloneOptions{
		URL:          rec.URL,
		SingleBranch: true,
	}
	// The file transport cannot serve shallow fetches, so depth only
	// applies to remote URLs.
	if !isLocalURL(rec.URL) {
		opts.Depth = 1
	}
	if rec.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(rec.Branch)
	}

	repo, err := git.PlainCloneContext(ctx, rec.LocalPath, false, opts)
	if err != nil {
		rec.Status = StatusFailed
		if isNotFound(err) {
			return notFoundError(rec.URL, "repository not found or inaccessible", err.Error())
		}
		return cloneError(rec.URL, "git clone failed", err.Error())
	}

	now := time.Now()
	rec.LastClonedAt = now
	rec.LastUpdatedAt = now
	rec.CommitHash = headHash(repo)
	rec.Status = StatusSuccess
	m.logger.Info("successfully cloned repository",
		zap.String("path", rec.LocalPath), zap.String("commit", rec.CommitHash))
	return nil
}

// sync updates an existing clone to mirror its remote.
//
// The configured origin URL must match the record's URL (a trailing ".git"
// is optional on either side). The working tree is then fetched, switched
// to the configured branch if needed, and hard-reset to origin/<branch>;
// local modifications are discarded, not merged.
func (m *Manager) sync(ctx context.Context, rec *Record) error {
	m.logger.Info("syncing repository",
		zap.String("url", rec.URL), zap.String("path", rec.LocalPath))
	rec.Status = StatusSyncing

	repo, err := git.PlainOpen(rec.LocalPath)
	if err != nil {
		rec.Status = StatusFailed
		return syncError(rec.URL, "cannot open local repository", err.Error())
	}

	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil {
		rec.Status = StatusFailed
		return syncError(rec.URL, `remote "origin" not configured`, err.Error())
	}
	urls := remote.Config().URLs
	if len(urls) == 0 || !remoteURLMatches(urls[0], rec.URL) {
		rec.Status = StatusFailed
		found := ""
		if len(urls) > 0 {
			found = urls[0]
		}
		m.logger.Warn("repository remote URL mismatch",
			zap.String("expected", rec.URL), zap.String("found", found))
		return syncError(rec.URL, "remote URL does not match expected URL",
			fmt.Sprintf("expected %s, found %s", rec.URL, found))
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{RemoteName: git.DefaultRemoteName})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		rec.Status = StatusFailed
		return syncError(rec.URL, "fetch from origin failed", err.Error())
	}

	branch := rec.Branch
	if branch == "" {
		branch = fallbackBranch
	}

	wt, err := repo.Worktree()
	if err != nil {
		rec.Status = StatusFailed
		return syncError(rec.URL, "cannot open worktree", err.Error())
	}

	if !onBranch(repo, branch) {
		err = wt.Checkout(&git.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName(branch),
		})
		if err != nil {
			// The branch does not exist locally yet; create a local
			// tracking branch from origin/<branch>.
			remoteRef, refErr := repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, branch), true)
			if refErr != nil {
				rec.Status = StatusFailed
				return syncError(rec.URL, fmt.Sprintf("checkout %s failed", branch), refErr.Error())
			}
			err = wt.Checkout(&git.CheckoutOptions{
				Branch: plumbing.NewBranchReferenceName(branch),
				Create: true,
				Hash:   remoteRef.Hash(),
			})
			if err != nil {
				rec.Status = StatusFailed
				return syncError(rec.URL, fmt.Sprintf("checkout %s failed", branch), err.Error())
			}
		}
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, branch), true)
	if err != nil {
		rec.Status = StatusFailed
		return syncError(rec.URL, fmt.Sprintf("reset to origin/%s failed", branch), err.Error())
	}
	if err := wt.Reset(&git.ResetOptions{Mode: git.HardReset, Commit: remoteRef.Hash()}); err != nil {
		rec.Status = StatusFailed
		return syncError(rec.URL, fmt.Sprintf("reset to origin/%s failed", branch), err.Error())
	}

	rec.LastUpdatedAt = time.Now()
	rec.CommitHash = remoteRef.Hash().String()
	rec.Status = StatusSuccess
	m.logger.Info("successfully synced repository",
		zap.String("path", rec.LocalPath), zap.String("commit", rec.CommitHash))
	return nil
}

// onBranch reports whether HEAD currently points at the named branch.
func onBranch(repo *git.Repository, branch string) bool {
	head, err := repo.Head()
	if err != nil {
		return false
	}
	return head.Name().IsBranch() && head.Name().Short() == branch
}

// remoteURLMatches compares two repository URLs, treating a trailing ".git"
// as optional on either side.
func remoteURLMatches(a, b string) bool {
	return strings.TrimSuffix(a, ".git") == strings.TrimSuffix(b, ".git")
}

// isLocalURL reports whether a repository URL names a local filesystem path.
func isLocalURL(rawURL string) bool {
	if strings.HasPrefix(rawURL, "file://") {
		return true
	}
	return !strings.Contains(rawURL, "://") && !strings.Contains(rawURL, "@")
}

// isNotFound reports whether a clone error is an upstream "not found" signal.
func isNotFound(err error) bool {
	if errors.Is(err, transport.ErrRepositoryNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "repository not found") || strings.Contains(msg, "does not exist")
}

// headHash returns the current HEAD commit hash, or "" if unavailable.
func headHash(repo *git.Repository) string {
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}
