package indexer

import (
	"go.uber.org/zap"

	"github.com/javadexlabs/javadex/internal/model"
)

// MethodMatch pairs a method with its owning class in search results.
type MethodMatch struct {
	Class  *model.JavaClass
	Method model.JavaMethod
}

// Index stores parsed classes and methods in five cross-referenced maps.
//
// Classes sharing a fully-qualified name across repositories overwrite each
// other in the FQN map (last write wins) while remaining listed in the
// per-name, per-package and per-repository maps. Callers indexing multiple
// repositories with overlapping FQNs must tolerate that asymmetry.
type Index struct {
	byFQN      map[string]*model.JavaClass
	byName     map[string][]*model.JavaClass
	byPackage  map[string][]*model.JavaClass
	byRepo     map[string][]*model.JavaClass
	byMethod   map[string][]MethodMatch
	byClassFQN map[string][]model.JavaMethod
	built      bool
	logger     *zap.Logger
}

// New creates an empty index. A nil logger is replaced with a no-op logger.
func New(logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		byFQN:      make(map[string]*model.JavaClass),
		byName:     make(map[string][]*model.JavaClass),
		byPackage:  make(map[string][]*model.JavaClass),
		byRepo:     make(map[string][]*model.JavaClass),
		byMethod:   make(map[string][]MethodMatch),
		byClassFQN: make(map[string][]model.JavaMethod),
		logger:     logger,
	}
}

// AddClass inserts a class and its methods into all five maps, attributed to
// repositoryURL. The URL is used verbatim as the partition key.
func (ix *Index) AddClass(cls *model.JavaClass, repositoryURL string) {
	ix.byFQN[cls.FullyQualifiedName] = cls
	ix.byName[cls.Name] = append(ix.byName[cls.Name], cls)
	ix.byPackage[cls.Package] = append(ix.byPackage[cls.Package], cls)
	ix.byRepo[repositoryURL] = append(ix.byRepo[repositoryURL], cls)

	for _, m := range cls.Methods {
		ix.byMethod[m.Name] = append(ix.byMethod[m.Name], MethodMatch{Class: cls, Method: m})
		ix.byClassFQN[cls.FullyQualifiedName] = append(ix.byClassFQN[cls.FullyQualifiedName], m)
	}

	ix.built = true
}

// AddClasses inserts multiple classes attributed to repositoryURL.
func (ix *Index) AddClasses(classes []*model.JavaClass, repositoryURL string) {
	ix.logger.Info("indexing classes",
		zap.Int("count", len(classes)),
		zap.String("repository", repositoryURL))
	for _, cls := range classes {
		ix.AddClass(cls, repositoryURL)
	}
	ix.logger.Debug("indexing complete",
		zap.Int("total_classes", ix.TotalClasses()),
		zap.Int("total_methods", ix.TotalMethods()))
}

// ReindexRepository removes every entry attributed to repositoryURL and
// inserts classes in its place. The replacement is remove-then-add, not
// atomic; the index is single-threaded so no intermediate state is visible.
func (ix *Index) ReindexRepository(repositoryURL string, classes []*model.JavaClass) {
	ix.logger.Info("reindexing repository",
		zap.String("repository", repositoryURL),
		zap.Int("classes", len(classes)))
	ix.RemoveRepository(repositoryURL)
	ix.AddClasses(classes, repositoryURL)
}

// RemoveRepository purges every class attributed to repositoryURL from all
// five maps. Method-name entries contributed by other repositories' classes
// under the same method name are preserved.
func (ix *Index) RemoveRepository(repositoryURL string) {
	classes, ok := ix.byRepo[repositoryURL]
	if !ok {
		ix.logger.Debug("repository not in index, skipping removal",
			zap.String("repository", repositoryURL))
		return
	}
	ix.logger.Debug("removing classes from index",
		zap.Int("count", len(classes)),
		zap.String("repository", repositoryURL))

	for _, cls := range classes {
		delete(ix.byFQN, cls.FullyQualifiedName)
		ix.byName[cls.Name] = dropClass(ix.byName[cls.Name], cls.FullyQualifiedName)
		if len(ix.byName[cls.Name]) == 0 {
			delete(ix.byName, cls.Name)
		}
		ix.byPackage[cls.Package] = dropClass(ix.byPackage[cls.Package], cls.FullyQualifiedName)
		if len(ix.byPackage[cls.Package]) == 0 {
			delete(ix.byPackage, cls.Package)
		}

		for _, m := range cls.Methods {
			kept := ix.byMethod[m.Name][:0]
			for _, match := range ix.byMethod[m.Name] {
				if match.Class.FullyQualifiedName != cls.FullyQualifiedName {
					kept = append(kept, match)
				}
			}
			if len(kept) == 0 {
				delete(ix.byMethod, m.Name)
			} else {
				ix.byMethod[m.Name] = kept
			}
		}

		delete(ix.byClassFQN, cls.FullyQualifiedName)
	}

	delete(ix.byRepo, repositoryURL)
}

// dropClass filters out the class with the given FQN, preserving order.
func dropClass(classes []*model.JavaClass, fqn string) []*model.JavaClass {
	kept := classes[:0]
	for _, c := range classes {
		if c.FullyQualifiedName != fqn {
			kept = append(kept, c)
		}
	}
	return kept
}

// ClassByFQN returns the class with the given fully-qualified name, or nil.
func (ix *Index) ClassByFQN(fqn string) *model.JavaClass {
	return ix.byFQN[fqn]
}

// ClassesByName returns classes with the given simple name.
func (ix *Index) ClassesByName(name string) []*model.JavaClass {
	return ix.byName[name]
}

// ClassesByPackage returns classes in the given package.
func (ix *Index) ClassesByPackage(pkg string) []*model.JavaClass {
	return ix.byPackage[pkg]
}

// ClassesByRepository returns classes attributed to the given repository URL.
func (ix *Index) ClassesByRepository(repositoryURL string) []*model.JavaClass {
	return ix.byRepo[repositoryURL]
}

// MethodsByName returns every (class, method) pair with the given method name.
func (ix *Index) MethodsByName(name string) []MethodMatch {
	return ix.byMethod[name]
}

// MethodsByClassFQN returns the methods of the class with the given FQN.
func (ix *Index) MethodsByClassFQN(fqn string) []model.JavaMethod {
	return ix.byClassFQN[fqn]
}

// AllClasses returns every indexed class in map-iteration order.
func (ix *Index) AllClasses() []*model.JavaClass {
	out := make([]*model.JavaClass, 0, len(ix.byFQN))
	for _, cls := range ix.byFQN {
		out = append(out, cls)
	}
	return out
}

// TotalClasses returns the number of indexed classes.
func (ix *Index) TotalClasses() int {
	return len(ix.byFQN)
}

// TotalMethods returns the number of indexed methods.
func (ix *Index) TotalMethods() int {
	total := 0
	for _, methods := range ix.byClassFQN {
		total += len(methods)
	}
	return total
}

// TotalRepositories returns the number of repositories with indexed classes.
func (ix *Index) TotalRepositories() int {
	return len(ix.byRepo)
}

// TotalPackages returns the number of distinct packages with indexed classes.
func (ix *Index) TotalPackages() int {
	return len(ix.byPackage)
}

// IsBuilt reports whether any class has ever been added. It is a readiness
// gate, not a live count: removing every class leaves it true, and only
// Clear resets it.
func (ix *Index) IsBuilt() bool {
	return ix.built
}

// Clear empties all five maps and resets the built flag.
func (ix *Index) Clear() {
	ix.logger.Info("clearing index",
		zap.Int("classes", ix.TotalClasses()),
		zap.Int("methods", ix.TotalMethods()))
	ix.byFQN = make(map[string]*model.JavaClass)
	ix.byName = make(map[string][]*model.JavaClass)
	ix.byPackage = make(map[string][]*model.JavaClass)
	ix.byRepo = make(map[string][]*model.JavaClass)
	ix.byMethod = make(map[string][]MethodMatch)
	ix.byClassFQN = make(map[string][]model.JavaMethod)
	ix.built = false
}
