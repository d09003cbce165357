package indexer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/javadexlabs/javadex/internal/model"
)

// Statistics summarizes the current index contents.
type Statistics struct {
	TotalClasses      int `json:"total_classes"`
	TotalMethods      int `json:"total_methods"`
	TotalRepositories int `json:"total_repositories"`
	TotalPackages     int `json:"total_packages"`
}

// QueryEngine answers read-only search and filter queries against an Index.
//
// Every query requires the index to have been built at least once and fails
// with ErrIndexNotBuilt otherwise. Multi-result queries return matches in
// index insertion order; callers needing a specific order sort client-side.
type QueryEngine struct {
	index  *Index
	logger *zap.Logger
}

// NewQueryEngine creates a query engine over the given index.
func NewQueryEngine(index *Index, logger *zap.Logger) *QueryEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryEngine{index: index, logger: logger}
}

// SearchMethods finds methods by exact name, optionally restricted to classes
// whose simple name equals classFilter under the same case rule.
//
// The case-sensitive path is a direct map lookup; the case-insensitive path
// scans all distinct method-name keys comparing lower-cased forms.
func (q *QueryEngine) SearchMethods(methodName, classFilter string, caseSensitive bool) ([]MethodMatch, error) {
	q.logger.Debug("searching methods",
		zap.String("name", methodName),
		zap.String("class", classFilter),
		zap.Bool("case_sensitive", caseSensitive))
	if !q.index.IsBuilt() {
		return nil, ErrIndexNotBuilt
	}

	var matches []MethodMatch
	if caseSensitive {
		matches = q.index.MethodsByName(methodName)
	} else {
		lower := strings.ToLower(methodName)
		for name, pairs := range q.index.byMethod {
			if strings.ToLower(name) == lower {
				matches = append(matches, pairs...)
			}
		}
	}

	if classFilter == "" {
		return matches, nil
	}

	var filtered []MethodMatch
	for _, match := range matches {
		if caseSensitive {
			if match.Class.Name == classFilter {
				filtered = append(filtered, match)
			}
		} else if strings.EqualFold(match.Class.Name, classFilter) {
			filtered = append(filtered, match)
		}
	}
	return filtered, nil
}

// SearchMethodsPartial finds methods whose name contains substr under the
// chosen case rule. Every distinct method name is examined.
func (q *QueryEngine) SearchMethodsPartial(substr string, caseSensitive bool) ([]MethodMatch, error) {
	q.logger.Debug("searching methods partial",
		zap.String("pattern", substr),
		zap.Bool("case_sensitive", caseSensitive))
	if !q.index.IsBuilt() {
		return nil, ErrIndexNotBuilt
	}

	var matches []MethodMatch
	lower := strings.ToLower(substr)
	for name, pairs := range q.index.byMethod {
		if caseSensitive {
			if strings.Contains(name, substr) {
				matches = append(matches, pairs...)
			}
		} else if strings.Contains(strings.ToLower(name), lower) {
			matches = append(matches, pairs...)
		}
	}
	return matches, nil
}

// SearchClass finds a class by fully-qualified name. The case-insensitive
// path scans all FQNs and returns the first case-insensitive match; ties
// among differently-cased duplicates resolve by map-iteration order.
// Returns nil when no class matches.
func (q *QueryEngine) SearchClass(fqn string, caseSensitive bool) (*model.JavaClass, error) {
	if !q.index.IsBuilt() {
		return nil, ErrIndexNotBuilt
	}

	if caseSensitive {
		return q.index.ClassByFQN(fqn), nil
	}
	for key, cls := range q.index.byFQN {
		if strings.EqualFold(key, fqn) {
			return cls, nil
		}
	}
	return nil, nil
}

// ClassesByName finds classes by simple name under the chosen case rule.
func (q *QueryEngine) ClassesByName(name string, caseSensitive bool) ([]*model.JavaClass, error) {
	if !q.index.IsBuilt() {
		return nil, ErrIndexNotBuilt
	}

	if caseSensitive {
		return q.index.ClassesByName(name), nil
	}
	var matches []*model.JavaClass
	for key, classes := range q.index.byName {
		if strings.EqualFold(key, name) {
			matches = append(matches, classes...)
		}
	}
	return matches, nil
}

// FilterClassesByRepository returns all classes attributed to repositoryURL.
// A URL with zero currently-indexed classes fails with
// ErrRepositoryNotIndexed, whether it was never indexed or fully removed.
func (q *QueryEngine) FilterClassesByRepository(repositoryURL string) ([]*model.JavaClass, error) {
	if !q.index.IsBuilt() {
		return nil, ErrIndexNotBuilt
	}

	classes := q.index.ClassesByRepository(repositoryURL)
	if len(classes) == 0 {
		q.logger.Warn("repository not indexed", zap.String("repository", repositoryURL))
		return nil, fmt.Errorf("%w: %s", ErrRepositoryNotIndexed, repositoryURL)
	}
	return classes, nil
}

// FilterClassesByPackage returns classes in a package, optionally intersected
// with one repository's class set by FQN membership. repositoryURL may be
// empty to skip the intersection.
func (q *QueryEngine) FilterClassesByPackage(packageName, repositoryURL string) ([]*model.JavaClass, error) {
	if !q.index.IsBuilt() {
		return nil, ErrIndexNotBuilt
	}

	classes := q.index.ClassesByPackage(packageName)
	if repositoryURL == "" {
		return classes, nil
	}

	inRepo := make(map[string]bool)
	for _, cls := range q.index.ClassesByRepository(repositoryURL) {
		inRepo[cls.FullyQualifiedName] = true
	}
	var filtered []*model.JavaClass
	for _, cls := range classes {
		if inRepo[cls.FullyQualifiedName] {
			filtered = append(filtered, cls)
		}
	}
	return filtered, nil
}

// Statistics returns current index totals. It is pure and side-effect-free.
func (q *QueryEngine) Statistics() Statistics {
	return Statistics{
		TotalClasses:      q.index.TotalClasses(),
		TotalMethods:      q.index.TotalMethods(),
		TotalRepositories: q.index.TotalRepositories(),
		TotalPackages:     q.index.TotalPackages(),
	}
}
