package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/javadexlabs/javadex/internal/format"
	"github.com/javadexlabs/javadex/internal/indexer"
	"github.com/javadexlabs/javadex/internal/model"
	"github.com/javadexlabs/javadex/internal/repository"
)

// guideMethodLimit caps how many method matches a guide renders per topic
// token so a broad topic cannot flood the client.
const guideMethodLimit = 25

// registerTools registers all javadex tools with the MCP server.
func (s *Server) registerTools() {
	register(s, "search_methods",
		"Search indexed Java methods by exact name or substring, optionally restricted to one class",
		s.searchMethods)
	register(s, "analyze_class",
		"Describe one Java class, interface or enum: hierarchy, fields, methods and javadoc",
		s.analyzeClass)
	register(s, "extract_apis",
		"Clone or sync a git repository and index the Java APIs found in it",
		s.extractAPIs)
	register(s, "generate_guide",
		"Generate a markdown usage guide for a topic from indexed classes and methods",
		s.generateGuide)
	register(s, "index_status",
		"Report index totals and the status of every managed repository",
		s.indexStatus)
	register(s, "project_context",
		"Summarize one managed repository: sync state, packages and indexed classes",
		s.projectContext)
}

// register wires a handler into the MCP server with metrics instrumentation.
// Handlers return the structured output plus the markdown shown to clients.
func register[I, O any](s *Server, name, description string, handler func(context.Context, I) (O, string, error)) {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, req *mcp.CallToolRequest, args I) (*mcp.CallToolResult, O, error) {
		start := time.Now()
		s.metrics.IncrementActive(ctx, name)
		var toolErr error
		defer func() {
			s.metrics.DecrementActive(ctx, name)
			s.metrics.RecordInvocation(ctx, name, time.Since(start), toolErr)
		}()

		out, text, err := handler(ctx, args)
		if err != nil {
			toolErr = err
			s.logger.Warn("tool failed", zap.String("tool", name), zap.Error(err))
			var zero O
			return nil, zero, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, out, nil
	})
}

// ===== search_methods =====

type searchMethodsInput struct {
	MethodName     string `json:"method_name" jsonschema:"required,Method name or substring to search for"`
	ClassFilter    string `json:"class_filter,omitempty" jsonschema:"Restrict matches to this class simple name or FQN"`
	Partial        bool   `json:"partial,omitempty" jsonschema:"Treat method_name as a substring instead of an exact name"`
	CaseSensitive  bool   `json:"case_sensitive,omitempty" jsonschema:"Match case sensitively"`
	IncludeJavadoc bool   `json:"include_javadoc,omitempty" jsonschema:"Include javadoc in the rendered output"`
}

type searchMethodsOutput struct {
	Count    int      `json:"count" jsonschema:"Number of matching methods"`
	Classes  []string `json:"classes" jsonschema:"FQNs of the classes that declare matches"`
	Markdown string   `json:"markdown" jsonschema:"Rendered search results"`
}

func (s *Server) searchMethods(_ context.Context, args searchMethodsInput) (searchMethodsOutput, string, error) {
	if strings.TrimSpace(args.MethodName) == "" {
		return searchMethodsOutput{}, "", fmt.Errorf("method_name is required")
	}

	var matches []indexer.MethodMatch
	var err error
	if args.Partial {
		matches, err = s.engine.SearchMethodsPartial(args.MethodName, args.CaseSensitive)
	} else {
		matches, err = s.engine.SearchMethods(args.MethodName, "", args.CaseSensitive)
	}
	if err != nil {
		return searchMethodsOutput{}, "", err
	}
	if args.ClassFilter != "" {
		matches = filterByClass(matches, args.ClassFilter, args.CaseSensitive)
	}

	text := format.MethodMatches(matches, args.IncludeJavadoc)
	return searchMethodsOutput{
		Count:    len(matches),
		Classes:  declaringClasses(matches),
		Markdown: text,
	}, text, nil
}

func filterByClass(matches []indexer.MethodMatch, filter string, caseSensitive bool) []indexer.MethodMatch {
	equal := func(a, b string) bool { return a == b }
	if !caseSensitive {
		equal = strings.EqualFold
	}
	var kept []indexer.MethodMatch
	for _, m := range matches {
		if equal(m.Class.Name, filter) || equal(m.Class.FullyQualifiedName, filter) {
			kept = append(kept, m)
		}
	}
	return kept
}

func declaringClasses(matches []indexer.MethodMatch) []string {
	seen := make(map[string]bool)
	var classes []string
	for _, m := range matches {
		fqn := m.Class.FullyQualifiedName
		if !seen[fqn] {
			seen[fqn] = true
			classes = append(classes, fqn)
		}
	}
	sort.Strings(classes)
	return classes
}

// ===== analyze_class =====

type analyzeClassInput struct {
	ClassName      string `json:"class_name" jsonschema:"required,Simple or fully-qualified class name"`
	CaseSensitive  bool   `json:"case_sensitive,omitempty" jsonschema:"Match case sensitively"`
	IncludeJavadoc bool   `json:"include_javadoc,omitempty" jsonschema:"Include javadoc in the rendered output"`
}

type analyzeClassOutput struct {
	Found      bool     `json:"found" jsonschema:"Whether a matching class exists in the index"`
	FQN        string   `json:"fqn,omitempty" jsonschema:"Fully-qualified name of the analyzed class"`
	Candidates []string `json:"candidates,omitempty" jsonschema:"Other classes sharing the simple name"`
	Markdown   string   `json:"markdown" jsonschema:"Rendered class description"`
}

func (s *Server) analyzeClass(_ context.Context, args analyzeClassInput) (analyzeClassOutput, string, error) {
	name := strings.TrimSpace(args.ClassName)
	if name == "" {
		return analyzeClassOutput{}, "", fmt.Errorf("class_name is required")
	}

	cls, candidates, err := s.resolveClass(name, args.CaseSensitive)
	if err != nil {
		return analyzeClassOutput{}, "", err
	}
	if cls == nil {
		text := fmt.Sprintf("No class named %q is indexed.\n", name)
		return analyzeClassOutput{Markdown: text}, text, nil
	}

	text := format.Class(cls, args.IncludeJavadoc)
	if len(candidates) > 0 {
		text += fmt.Sprintf("\nOther classes named %s: %s\n", cls.Name, strings.Join(candidates, ", "))
	}
	return analyzeClassOutput{
		Found:      true,
		FQN:        cls.FullyQualifiedName,
		Candidates: candidates,
		Markdown:   text,
	}, text, nil
}

// resolveClass looks a class up by FQN when the name is dotted and by
// simple name otherwise. With several same-name classes the first is
// described and the rest are reported as candidates.
func (s *Server) resolveClass(name string, caseSensitive bool) (*model.JavaClass, []string, error) {
	if strings.Contains(name, ".") {
		cls, err := s.engine.SearchClass(name, caseSensitive)
		return cls, nil, err
	}

	classes, err := s.engine.ClassesByName(name, caseSensitive)
	if err != nil || len(classes) == 0 {
		return nil, nil, err
	}
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].FullyQualifiedName < classes[j].FullyQualifiedName
	})
	var candidates []string
	for _, c := range classes[1:] {
		candidates = append(candidates, c.FullyQualifiedName)
	}
	return classes[0], candidates, nil
}

// ===== extract_apis =====

type extractAPIsInput struct {
	RepositoryURL string `json:"repository_url" jsonschema:"required,Git repository URL to clone or sync and index"`
	Branch        string `json:"branch,omitempty" jsonschema:"Branch to track (remote default when omitted)"`
}

type extractAPIsOutput struct {
	Synced  bool   `json:"synced" jsonschema:"Whether the clone or sync succeeded"`
	Indexed bool   `json:"indexed" jsonschema:"Whether any classes were indexed"`
	Files   int    `json:"files" jsonschema:"Java files scanned"`
	Classes int    `json:"classes" jsonschema:"Classes indexed"`
	Message string `json:"message" jsonschema:"Human-readable outcome"`
}

func (s *Server) extractAPIs(ctx context.Context, args extractAPIsInput) (extractAPIsOutput, string, error) {
	if strings.TrimSpace(args.RepositoryURL) == "" {
		return extractAPIsOutput{}, "", fmt.Errorf("repository_url is required")
	}

	report := s.pipeline.RunOne(ctx, repository.Spec{
		URL:    args.RepositoryURL,
		Branch: args.Branch,
	})
	out := extractAPIsOutput{
		Synced:  report.Synced,
		Indexed: report.Indexed,
		Files:   report.Files,
		Classes: report.Classes,
		Message: report.Message,
	}

	text := fmt.Sprintf("%s: %s\n", args.RepositoryURL, report.Message)
	return out, text, nil
}

// ===== generate_guide =====

type generateGuideInput struct {
	Topic          string `json:"topic" jsonschema:"required,Topic to build a usage guide for, e.g. a feature or type name"`
	IncludeJavadoc bool   `json:"include_javadoc,omitempty" jsonschema:"Include javadoc in the rendered output"`
}

type generateGuideOutput struct {
	Classes  int    `json:"classes" jsonschema:"Number of classes covered by the guide"`
	Methods  int    `json:"methods" jsonschema:"Number of methods covered by the guide"`
	Markdown string `json:"markdown" jsonschema:"Rendered guide"`
}

func (s *Server) generateGuide(_ context.Context, args generateGuideInput) (generateGuideOutput, string, error) {
	topic := strings.TrimSpace(args.Topic)
	if topic == "" {
		return generateGuideOutput{}, "", fmt.Errorf("topic is required")
	}
	if !s.index.IsBuilt() {
		return generateGuideOutput{}, "", indexer.ErrIndexNotBuilt
	}

	classes, matches := s.topicHits(topic)

	var b strings.Builder
	fmt.Fprintf(&b, "# API guide: %s\n\n", topic)
	if len(classes) == 0 && len(matches) == 0 {
		b.WriteString("Nothing in the index relates to this topic.\n")
	}
	if len(classes) > 0 {
		b.WriteString("## Related types\n\n")
		for _, cls := range classes {
			fmt.Fprintf(&b, "- `%s`", cls.FullyQualifiedName)
			if args.IncludeJavadoc && !cls.Javadoc.IsEmpty() && cls.Javadoc.Summary != "" {
				fmt.Fprintf(&b, " - %s", cls.Javadoc.Summary)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if len(matches) > 0 {
		b.WriteString("## Related methods\n\n")
		b.WriteString(format.MethodMatches(matches, args.IncludeJavadoc))
	}

	text := b.String()
	return generateGuideOutput{
		Classes:  len(classes),
		Methods:  len(matches),
		Markdown: text,
	}, text, nil
}

// topicHits collects classes and methods whose names contain any topic
// token, case insensitively.
func (s *Server) topicHits(topic string) ([]*model.JavaClass, []indexer.MethodMatch) {
	tokens := strings.Fields(strings.ToLower(topic))

	var classes []*model.JavaClass
	seenClass := make(map[string]bool)
	for _, cls := range s.index.AllClasses() {
		lower := strings.ToLower(cls.Name)
		for _, token := range tokens {
			if strings.Contains(lower, token) && !seenClass[cls.FullyQualifiedName] {
				seenClass[cls.FullyQualifiedName] = true
				classes = append(classes, cls)
				break
			}
		}
	}
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].FullyQualifiedName < classes[j].FullyQualifiedName
	})

	var matches []indexer.MethodMatch
	seenMethod := make(map[string]bool)
	for _, token := range tokens {
		hits, err := s.engine.SearchMethodsPartial(token, false)
		if err != nil {
			continue
		}
		for _, m := range hits {
			key := m.Class.FullyQualifiedName + "#" + m.Method.Signature()
			if seenMethod[key] {
				continue
			}
			seenMethod[key] = true
			matches = append(matches, m)
			if len(matches) >= guideMethodLimit {
				return classes, matches
			}
		}
	}
	return classes, matches
}

// ===== index_status =====

type indexStatusInput struct{}

type repositoryStatus struct {
	URL        string `json:"url" jsonschema:"Repository URL"`
	Branch     string `json:"branch,omitempty" jsonschema:"Tracked branch"`
	Status     string `json:"status" jsonschema:"Lifecycle state of the repository"`
	CommitHash string `json:"commit_hash,omitempty" jsonschema:"HEAD commit after the last successful operation"`
	Classes    int    `json:"classes" jsonschema:"Classes currently indexed from this repository"`
}

type indexStatusOutput struct {
	Built             bool               `json:"built" jsonschema:"Whether the index has ever been built"`
	TotalClasses      int                `json:"total_classes" jsonschema:"Total indexed classes"`
	TotalMethods      int                `json:"total_methods" jsonschema:"Total indexed methods"`
	TotalPackages     int                `json:"total_packages" jsonschema:"Distinct packages"`
	TotalRepositories int                `json:"total_repositories" jsonschema:"Repositories with indexed classes"`
	Repositories      []repositoryStatus `json:"repositories" jsonschema:"Per-repository status"`
}

func (s *Server) indexStatus(_ context.Context, _ indexStatusInput) (indexStatusOutput, string, error) {
	stats := s.engine.Statistics()
	out := indexStatusOutput{
		Built:             s.index.IsBuilt(),
		TotalClasses:      stats.TotalClasses,
		TotalMethods:      stats.TotalMethods,
		TotalPackages:     stats.TotalPackages,
		TotalRepositories: stats.TotalRepositories,
	}

	records := s.manager.Records()
	sort.Slice(records, func(i, j int) bool { return records[i].URL < records[j].URL })
	for _, rec := range records {
		out.Repositories = append(out.Repositories, repositoryStatus{
			URL:        rec.URL,
			Branch:     rec.Branch,
			Status:     string(rec.Status),
			CommitHash: rec.CommitHash,
			Classes:    len(s.index.ClassesByRepository(rec.URL)),
		})
	}

	var b strings.Builder
	b.WriteString(format.Statistics(stats))
	if len(out.Repositories) > 0 {
		b.WriteString("\n## Repositories\n\n")
		for _, r := range out.Repositories {
			fmt.Fprintf(&b, "- %s (%s): %d classes", r.URL, r.Status, r.Classes)
			if r.CommitHash != "" {
				fmt.Fprintf(&b, " @ %.12s", r.CommitHash)
			}
			b.WriteString("\n")
		}
	}
	text := b.String()
	return out, text, nil
}

// ===== project_context =====

type projectContextInput struct {
	RepositoryName string `json:"repository_name" jsonschema:"required,Repository name, the last URL path segment"`
}

type projectContextOutput struct {
	Found      bool     `json:"found" jsonschema:"Whether the repository is managed"`
	URL        string   `json:"url,omitempty" jsonschema:"Repository URL"`
	Status     string   `json:"status,omitempty" jsonschema:"Lifecycle state"`
	Branch     string   `json:"branch,omitempty" jsonschema:"Tracked branch"`
	CommitHash string   `json:"commit_hash,omitempty" jsonschema:"HEAD commit"`
	Classes    int      `json:"classes" jsonschema:"Indexed classes from this repository"`
	Packages   []string `json:"packages,omitempty" jsonschema:"Packages contributed by this repository"`
	Markdown   string   `json:"markdown" jsonschema:"Rendered repository summary"`
}

func (s *Server) projectContext(_ context.Context, args projectContextInput) (projectContextOutput, string, error) {
	name := strings.TrimSpace(args.RepositoryName)
	if name == "" {
		return projectContextOutput{}, "", fmt.Errorf("repository_name is required")
	}

	rec, ok := s.manager.RecordByName(name)
	if !ok {
		text := fmt.Sprintf("No managed repository is named %q.\n", name)
		return projectContextOutput{Markdown: text}, text, nil
	}

	classes := s.index.ClassesByRepository(rec.URL)
	packages := make(map[string]bool)
	for _, cls := range classes {
		if cls.Package != "" {
			packages[cls.Package] = true
		}
	}
	pkgList := make([]string, 0, len(packages))
	for pkg := range packages {
		pkgList = append(pkgList, pkg)
	}
	sort.Strings(pkgList)

	var b strings.Builder
	fmt.Fprintf(&b, "# Repository %s\n\n", name)
	fmt.Fprintf(&b, "- URL: %s\n", rec.URL)
	fmt.Fprintf(&b, "- Status: %s\n", rec.Status)
	if rec.Branch != "" {
		fmt.Fprintf(&b, "- Branch: %s\n", rec.Branch)
	}
	if rec.CommitHash != "" {
		fmt.Fprintf(&b, "- Commit: %s\n", rec.CommitHash)
	}
	fmt.Fprintf(&b, "- Indexed classes: %d\n", len(classes))
	if len(pkgList) > 0 {
		fmt.Fprintf(&b, "\n## Packages\n\n%s\n", strings.Join(pkgList, "\n"))
	}

	text := b.String()
	return projectContextOutput{
		Found:      true,
		URL:        rec.URL,
		Status:     string(rec.Status),
		Branch:     rec.Branch,
		CommitHash: rec.CommitHash,
		Classes:    len(classes),
		Packages:   pkgList,
		Markdown:   text,
	}, text, nil
}
