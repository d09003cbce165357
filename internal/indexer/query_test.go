package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtEngine(t *testing.T) (*Index, *QueryEngine) {
	t.Helper()
	ix := New(nil)
	ix.AddClasses(widgetClasses(t), repoOne)
	return ix, NewQueryEngine(ix, nil)
}

func TestQueriesRequireBuiltIndex(t *testing.T) {
	q := NewQueryEngine(New(nil), nil)

	_, err := q.SearchMethods("render", "", false)
	assert.ErrorIs(t, err, ErrIndexNotBuilt)
	_, err = q.SearchMethodsPartial("ren", false)
	assert.ErrorIs(t, err, ErrIndexNotBuilt)
	_, err = q.SearchClass("com.acme.Widget", true)
	assert.ErrorIs(t, err, ErrIndexNotBuilt)
	_, err = q.ClassesByName("Widget", false)
	assert.ErrorIs(t, err, ErrIndexNotBuilt)
	_, err = q.FilterClassesByRepository(repoOne)
	assert.ErrorIs(t, err, ErrIndexNotBuilt)
	_, err = q.FilterClassesByPackage("com.acme", "")
	assert.ErrorIs(t, err, ErrIndexNotBuilt)
}

func TestSearchMethodsExact(t *testing.T) {
	_, q := builtEngine(t)

	t.Run("case sensitive hit", func(t *testing.T) {
		matches, err := q.SearchMethods("render", "", true)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "com.acme.Widget", matches[0].Class.FullyQualifiedName)
	})

	t.Run("case sensitive miss on wrong casing", func(t *testing.T) {
		matches, err := q.SearchMethods("Render", "", true)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("case insensitive finds getId via getid", func(t *testing.T) {
		matches, err := q.SearchMethods("getid", "", false)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "getId", matches[0].Method.Name)
	})

	t.Run("class filter restricts results", func(t *testing.T) {
		matches, err := q.SearchMethods("create", "WidgetFactory", true)
		require.NoError(t, err)
		assert.Len(t, matches, 1)

		matches, err = q.SearchMethods("create", "Widget", true)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("class filter follows case rule", func(t *testing.T) {
		matches, err := q.SearchMethods("CREATE", "widgetfactory", false)
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})
}

func TestSearchMethodsPartial(t *testing.T) {
	_, q := builtEngine(t)

	matches, err := q.SearchMethodsPartial("re", false)
	require.NoError(t, err)
	// render and create both contain "re".
	assert.Len(t, matches, 2)

	matches, err = q.SearchMethodsPartial("REND", false)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = q.SearchMethodsPartial("REND", true)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchClass(t *testing.T) {
	_, q := builtEngine(t)

	cls, err := q.SearchClass("com.acme.Widget", true)
	require.NoError(t, err)
	require.NotNil(t, cls)
	assert.Equal(t, "Widget", cls.Name)

	cls, err = q.SearchClass("COM.ACME.WIDGET", false)
	require.NoError(t, err)
	require.NotNil(t, cls)
	assert.Equal(t, "Widget", cls.Name)

	cls, err = q.SearchClass("COM.ACME.WIDGET", true)
	require.NoError(t, err)
	assert.Nil(t, cls)

	cls, err = q.SearchClass("com.acme.Missing", true)
	require.NoError(t, err)
	assert.Nil(t, cls)
}

func TestClassesByName(t *testing.T) {
	_, q := builtEngine(t)

	classes, err := q.ClassesByName("widget", false)
	require.NoError(t, err)
	assert.Len(t, classes, 1)

	classes, err = q.ClassesByName("widget", true)
	require.NoError(t, err)
	assert.Empty(t, classes)
}

func TestFilterClassesByRepository(t *testing.T) {
	ix, q := builtEngine(t)

	classes, err := q.FilterClassesByRepository(repoOne)
	require.NoError(t, err)
	assert.Len(t, classes, 2)

	_, err = q.FilterClassesByRepository("https://github.com/acme/never.git")
	assert.ErrorIs(t, err, ErrRepositoryNotIndexed)

	// A removed repository errors the same way as a never-indexed one.
	ix.RemoveRepository(repoOne)
	_, err = q.FilterClassesByRepository(repoOne)
	assert.ErrorIs(t, err, ErrRepositoryNotIndexed)
}

func TestFilterClassesByPackage(t *testing.T) {
	ix, q := builtEngine(t)
	ix.AddClass(newClass(t, "com.acme.Painter", method("paint", "void")), repoTwo)

	classes, err := q.FilterClassesByPackage("com.acme", "")
	require.NoError(t, err)
	assert.Len(t, classes, 3)

	classes, err = q.FilterClassesByPackage("com.acme", repoTwo)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "com.acme.Painter", classes[0].FullyQualifiedName)

	classes, err = q.FilterClassesByPackage("com.missing", "")
	require.NoError(t, err)
	assert.Empty(t, classes)
}

// Statistics and removal behavior over a small two-class repository.
func TestStatisticsScenario(t *testing.T) {
	ix, q := builtEngine(t)

	stats := q.Statistics()
	assert.Equal(t, Statistics{
		TotalClasses:      2,
		TotalMethods:      3,
		TotalRepositories: 1,
		TotalPackages:     1,
	}, stats)

	matches, err := q.SearchMethods("render", "", true)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "com.acme.Widget", matches[0].Class.FullyQualifiedName)

	ix.RemoveRepository(repoOne)
	assert.Equal(t, Statistics{}, q.Statistics())

	_, err = q.FilterClassesByRepository(repoOne)
	assert.ErrorIs(t, err, ErrRepositoryNotIndexed)
}
