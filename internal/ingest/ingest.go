// Package ingest drives the sync, scan, parse and index pipeline.
//
// One pipeline run takes repository specs through the repository manager,
// discovers Java sources in each successful clone, parses them and swaps
// the repository's classes into the index atomically via reindexing.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/javadexlabs/javadex/internal/indexer"
	"github.com/javadexlabs/javadex/internal/model"
	"github.com/javadexlabs/javadex/internal/parser"
	"github.com/javadexlabs/javadex/internal/repository"
	"github.com/javadexlabs/javadex/internal/scanner"
)

// Pipeline wires the repository manager, source scanner and parser to the
// index.
type Pipeline struct {
	manager *repository.Manager
	scanner *scanner.Scanner
	index   *indexer.Index
	logger  *zap.Logger
}

// Report is the outcome of ingesting one repository.
type Report struct {
	URL     string
	Synced  bool
	Indexed bool
	Files   int
	Classes int
	Message string
}

func New(manager *repository.Manager, index *indexer.Index, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		manager: manager,
		scanner: scanner.New(logger),
		index:   index,
		logger:  logger,
	}
}

// Run ingests every spec, returning one report per input. A failure on one
// repository never stops the others.
func (p *Pipeline) Run(ctx context.Context, specs []repository.Spec) []Report {
	reports := make([]Report, 0, len(specs))
	for _, spec := range specs {
		reports = append(reports, p.RunOne(ctx, spec))
	}

	indexed := 0
	for _, r := range reports {
		if r.Indexed {
			indexed++
		}
	}
	p.logger.Info("ingestion completed",
		zap.Int("repositories", len(specs)),
		zap.Int("indexed", indexed))
	return reports
}

// RunOne syncs and indexes a single repository.
func (p *Pipeline) RunOne(ctx context.Context, spec repository.Spec) Report {
	report := Report{URL: spec.URL}

	results := p.manager.SyncAll(ctx, []repository.Spec{spec})
	result := results[0]
	if !result.Success {
		report.Message = result.Message
		return report
	}
	report.Synced = true

	files, err := p.scanner.Scan(result.Record.LocalPath)
	if err != nil {
		report.Message = err.Error()
		return report
	}
	report.Files = len(files)

	jp := parser.New(p.logger)
	defer jp.Close()

	var classes []*model.JavaClass
	for _, file := range files {
		parsed, err := jp.ParseFile(ctx, file)
		if err != nil {
			p.logger.Warn("skipping unparsable file",
				zap.String("file", file), zap.Error(err))
			continue
		}
		classes = append(classes, parsed...)
	}
	if len(classes) == 0 {
		report.Message = fmt.Sprintf("no classes extracted from %d files", len(files))
		return report
	}

	p.index.ReindexRepository(spec.URL, classes)
	report.Indexed = true
	report.Classes = len(classes)
	report.Message = fmt.Sprintf("indexed %d classes from %d files", len(classes), len(files))

	p.logger.Info("repository indexed",
		zap.String("url", spec.URL),
		zap.Int("files", len(files)),
		zap.Int("classes", len(classes)))
	return report
}
