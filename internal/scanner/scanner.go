// Package scanner discovers Java source files inside cloned repositories.
//
// Maven and Gradle layouts keep production sources under src/main/java;
// when a repository has such roots, only files below them are reported so
// test fixtures and generated code stay out of the index. Repositories with
// a free-form layout fall back to every .java file in the tree.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrDirectoryAccess means the scan root is missing or unreadable.
	ErrDirectoryAccess = errors.New("cannot access directory")

	// ErrNoJavaFiles means the tree holds no Java sources at all.
	ErrNoJavaFiles = errors.New("no java source files found")
)

// sourceRootSuffix marks a conventional production source root.
var sourceRootSuffix = filepath.Join("src", "main", "java")

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":         true,
	"target":       true,
	"build":        true,
	"out":          true,
	"node_modules": true,
}

// Scanner finds Java sources under repository roots.
type Scanner struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{logger: logger}
}

// Scan returns the Java source files under root, sorted by path.
func (s *Scanner) Scan(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryAccess, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryAccess, root)
	}

	var all []string
	var sourceRoots []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if skippedDirs[name] || (strings.HasPrefix(name, ".") && path != root) {
				return filepath.SkipDir
			}
			if strings.HasSuffix(path, sourceRootSuffix) {
				sourceRoots = append(sourceRoots, path)
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".java") {
			all = append(all, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryAccess, err)
	}

	files := all
	if len(sourceRoots) > 0 {
		files = filterUnderRoots(all, sourceRoots)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoJavaFiles, root)
	}

	sort.Strings(files)
	s.logger.Debug("scanned repository",
		zap.String("root", root),
		zap.Int("java_files", len(files)),
		zap.Int("source_roots", len(sourceRoots)))
	return files, nil
}

func filterUnderRoots(files, roots []string) []string {
	var kept []string
	for _, f := range files {
		for _, r := range roots {
			if strings.HasPrefix(f, r+string(filepath.Separator)) {
				kept = append(kept, f)
				break
			}
		}
	}
	return kept
}
