package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javadexlabs/javadex/internal/indexer"
	"github.com/javadexlabs/javadex/internal/ingest"
	"github.com/javadexlabs/javadex/internal/model"
	"github.com/javadexlabs/javadex/internal/repository"
)

const repoURL = "https://github.com/acme/widgets.git"

func testClass(t *testing.T, fqn string, methods ...model.JavaMethod) *model.JavaClass {
	t.Helper()
	cls, err := model.NewJavaClass(fqn)
	require.NoError(t, err)
	cls.Methods = methods
	return cls
}

// testServer builds a server over a prepopulated index.
func testServer(t *testing.T) *Server {
	t.Helper()
	ix := indexer.New(nil)
	ix.AddClasses([]*model.JavaClass{
		testClass(t, "com.acme.Widget",
			model.JavaMethod{Name: "render", ReturnType: "void",
				Javadoc: &model.Javadoc{Summary: "Renders the widget."}},
			model.JavaMethod{Name: "getId", ReturnType: "String"},
		),
		testClass(t, "com.acme.WidgetFactory",
			model.JavaMethod{Name: "create", ReturnType: "Widget"},
		),
	}, repoURL)

	manager, err := repository.NewManager(filepath.Join(t.TempDir(), "clones"))
	require.NoError(t, err)

	s, err := NewServer(nil, ix, manager, ingest.New(manager, ix, nil))
	require.NoError(t, err)
	return s
}

func TestNewServerRequiresDependencies(t *testing.T) {
	ix := indexer.New(nil)
	manager, err := repository.NewManager(t.TempDir())
	require.NoError(t, err)
	pipeline := ingest.New(manager, ix, nil)

	_, err = NewServer(nil, nil, manager, pipeline)
	assert.Error(t, err)
	_, err = NewServer(nil, ix, nil, pipeline)
	assert.Error(t, err)
	_, err = NewServer(nil, ix, manager, nil)
	assert.Error(t, err)

	s, err := NewServer(nil, ix, manager, pipeline)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestSearchMethodsTool(t *testing.T) {
	s := testServer(t)

	out, text, err := s.searchMethods(context.Background(), searchMethodsInput{
		MethodName: "render", IncludeJavadoc: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, []string{"com.acme.Widget"}, out.Classes)
	assert.Contains(t, text, "render")
	assert.Contains(t, text, "Renders the widget.")

	out, _, err = s.searchMethods(context.Background(), searchMethodsInput{
		MethodName: "re", Partial: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)

	out, _, err = s.searchMethods(context.Background(), searchMethodsInput{
		MethodName: "re", Partial: true, ClassFilter: "WidgetFactory",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, []string{"com.acme.WidgetFactory"}, out.Classes)

	_, _, err = s.searchMethods(context.Background(), searchMethodsInput{})
	assert.Error(t, err)
}

func TestSearchMethodsToolIndexNotBuilt(t *testing.T) {
	manager, err := repository.NewManager(t.TempDir())
	require.NoError(t, err)
	ix := indexer.New(nil)
	s, err := NewServer(nil, ix, manager, ingest.New(manager, ix, nil))
	require.NoError(t, err)

	_, _, err = s.searchMethods(context.Background(), searchMethodsInput{MethodName: "render"})
	assert.ErrorIs(t, err, indexer.ErrIndexNotBuilt)
}

func TestAnalyzeClassTool(t *testing.T) {
	s := testServer(t)

	out, text, err := s.analyzeClass(context.Background(), analyzeClassInput{
		ClassName: "com.acme.Widget",
	})
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.Equal(t, "com.acme.Widget", out.FQN)
	assert.Contains(t, text, "# Class com.acme.Widget")

	out, _, err = s.analyzeClass(context.Background(), analyzeClassInput{ClassName: "WidgetFactory"})
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.Equal(t, "com.acme.WidgetFactory", out.FQN)

	out, text, err = s.analyzeClass(context.Background(), analyzeClassInput{ClassName: "Missing"})
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Contains(t, text, "No class named")

	_, _, err = s.analyzeClass(context.Background(), analyzeClassInput{ClassName: "  "})
	assert.Error(t, err)
}

func TestGenerateGuideTool(t *testing.T) {
	s := testServer(t)

	out, text, err := s.generateGuide(context.Background(), generateGuideInput{
		Topic: "widget render", IncludeJavadoc: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Classes)
	assert.GreaterOrEqual(t, out.Methods, 1)
	assert.Contains(t, text, "# API guide: widget render")
	assert.Contains(t, text, "com.acme.Widget")

	out, text, err = s.generateGuide(context.Background(), generateGuideInput{Topic: "nonexistent"})
	require.NoError(t, err)
	assert.Zero(t, out.Classes)
	assert.Contains(t, text, "Nothing in the index")

	_, _, err = s.generateGuide(context.Background(), generateGuideInput{})
	assert.Error(t, err)
}

func TestIndexStatusTool(t *testing.T) {
	s := testServer(t)

	out, text, err := s.indexStatus(context.Background(), indexStatusInput{})
	require.NoError(t, err)
	assert.True(t, out.Built)
	assert.Equal(t, 2, out.TotalClasses)
	assert.Equal(t, 3, out.TotalMethods)
	assert.Equal(t, 1, out.TotalRepositories)
	assert.Contains(t, text, "- Classes: 2")
}

// fixtureRepo builds a local git repository named "gadgets" holding one
// Java class under the Maven layout.
func fixtureRepo(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "gadgets")
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	require.NoError(t, err)

	src := filepath.Join(dir, "src", "main", "java", "com", "acme", "Gadget.java")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte(
		"package com.acme;\npublic class Gadget { public void spin() {} }\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(".")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestProjectContextTool(t *testing.T) {
	s := testServer(t)
	dir := fixtureRepo(t)

	report := s.pipeline.RunOne(context.Background(), repository.Spec{URL: dir, Branch: "main"})
	require.True(t, report.Indexed, report.Message)

	out, text, err := s.projectContext(context.Background(), projectContextInput{RepositoryName: "gadgets"})
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.Equal(t, dir, out.URL)
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, 1, out.Classes)
	assert.Equal(t, []string{"com.acme"}, out.Packages)
	assert.Contains(t, text, "# Repository gadgets")

	out, _, err = s.projectContext(context.Background(), projectContextInput{RepositoryName: "unknown"})
	require.NoError(t, err)
	assert.False(t, out.Found)

	_, _, err = s.projectContext(context.Background(), projectContextInput{})
	assert.Error(t, err)
}

func TestExtractAPIsTool(t *testing.T) {
	dir := fixtureRepo(t)
	s := testServer(t)
	out, text, err := s.extractAPIs(context.Background(), extractAPIsInput{
		RepositoryURL: dir, Branch: "main",
	})
	require.NoError(t, err)
	assert.True(t, out.Synced, out.Message)
	assert.True(t, out.Indexed, out.Message)
	assert.Equal(t, 1, out.Classes)
	assert.Contains(t, text, dir)

	cls := s.index.ClassByFQN("com.acme.Gadget")
	require.NotNil(t, cls)

	_, _, err = s.extractAPIs(context.Background(), extractAPIsInput{})
	assert.Error(t, err)
}
