package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javadexlabs/javadex/internal/model"
)

const (
	repoOne = "https://github.com/acme/widgets.git"
	repoTwo = "https://github.com/acme/gadgets.git"
)

func newClass(t *testing.T, fqn string, methods ...model.JavaMethod) *model.JavaClass {
	t.Helper()
	cls, err := model.NewJavaClass(fqn)
	require.NoError(t, err)
	cls.Methods = methods
	return cls
}

func method(name, returnType string) model.JavaMethod {
	return model.JavaMethod{Name: name, ReturnType: returnType}
}

func widgetClasses(t *testing.T) []*model.JavaClass {
	t.Helper()
	return []*model.JavaClass{
		newClass(t, "com.acme.Widget", method("render", "void"), method("getId", "String")),
		newClass(t, "com.acme.WidgetFactory", method("create", "Widget")),
	}
}

func TestAddClassPopulatesAllMaps(t *testing.T) {
	ix := New(nil)
	cls := newClass(t, "com.acme.Widget", method("render", "void"))
	ix.AddClass(cls, repoOne)

	assert.Same(t, cls, ix.ClassByFQN("com.acme.Widget"))
	assert.Len(t, ix.ClassesByName("Widget"), 1)
	assert.Len(t, ix.ClassesByPackage("com.acme"), 1)
	assert.Len(t, ix.ClassesByRepository(repoOne), 1)
	assert.Len(t, ix.MethodsByName("render"), 1)
	assert.Len(t, ix.MethodsByClassFQN("com.acme.Widget"), 1)
	assert.True(t, ix.IsBuilt())
}

func TestIsBuiltIsAReadinessGate(t *testing.T) {
	ix := New(nil)
	assert.False(t, ix.IsBuilt())

	ix.AddClasses(widgetClasses(t), repoOne)
	assert.True(t, ix.IsBuilt())

	// Removing everything does not reset the gate.
	ix.RemoveRepository(repoOne)
	assert.True(t, ix.IsBuilt())
	assert.Zero(t, ix.TotalClasses())

	ix.Clear()
	assert.False(t, ix.IsBuilt())
}

func TestRemoveRepositoryPurgesAllMaps(t *testing.T) {
	ix := New(nil)
	ix.AddClasses(widgetClasses(t), repoOne)
	// A second repository contributing the same method name must survive.
	other := newClass(t, "com.other.Painter", method("render", "void"))
	ix.AddClass(other, repoTwo)

	ix.RemoveRepository(repoOne)

	assert.Nil(t, ix.ClassByFQN("com.acme.Widget"))
	assert.Empty(t, ix.ClassesByRepository(repoOne))
	assert.Empty(t, ix.ClassesByPackage("com.acme"))
	assert.Empty(t, ix.MethodsByName("create"))
	assert.Empty(t, ix.MethodsByClassFQN("com.acme.Widget"))

	renders := ix.MethodsByName("render")
	require.Len(t, renders, 1)
	assert.Equal(t, "com.other.Painter", renders[0].Class.FullyQualifiedName)
}

func TestRemoveUnknownRepositoryIsANoop(t *testing.T) {
	ix := New(nil)
	ix.AddClasses(widgetClasses(t), repoOne)
	ix.RemoveRepository("https://github.com/acme/unknown.git")
	assert.Equal(t, 2, ix.TotalClasses())
}

func TestReindexRepositoryReplacesClasses(t *testing.T) {
	ix := New(nil)
	ix.AddClasses(widgetClasses(t), repoOne)

	replacement := []*model.JavaClass{
		newClass(t, "com.acme.Gadget", method("spin", "void")),
	}
	ix.ReindexRepository(repoOne, replacement)

	assert.Nil(t, ix.ClassByFQN("com.acme.Widget"))
	assert.Nil(t, ix.ClassByFQN("com.acme.WidgetFactory"))
	assert.Empty(t, ix.ClassesByName("Widget"))
	assert.Empty(t, ix.MethodsByName("render"))

	assert.NotNil(t, ix.ClassByFQN("com.acme.Gadget"))
	require.Len(t, ix.ClassesByRepository(repoOne), 1)
	assert.Len(t, ix.MethodsByName("spin"), 1)
}

func TestClearThenAddIsIdempotent(t *testing.T) {
	build := func() *Index {
		ix := New(nil)
		ix.Clear()
		ix.AddClasses(widgetClasses(t), repoOne)
		ix.Clear()
		ix.AddClasses(widgetClasses(t), repoOne)
		return ix
	}
	once := New(nil)
	once.AddClasses(widgetClasses(t), repoOne)

	rebuilt := build()
	assert.Equal(t, once.TotalClasses(), rebuilt.TotalClasses())
	assert.Equal(t, once.TotalMethods(), rebuilt.TotalMethods())
	assert.Equal(t, once.TotalRepositories(), rebuilt.TotalRepositories())
	assert.Equal(t, once.TotalPackages(), rebuilt.TotalPackages())
	assert.Len(t, rebuilt.MethodsByName("render"), 1)
}

func TestFQNCollisionAcrossRepositoriesIsLastWriteWins(t *testing.T) {
	ix := New(nil)
	first := newClass(t, "com.acme.Widget", method("render", "void"))
	second := newClass(t, "com.acme.Widget", method("paint", "void"))
	ix.AddClass(first, repoOne)
	ix.AddClass(second, repoTwo)

	// The FQN map holds the last writer; both repositories still list one
	// class each under their own partitions.
	assert.Same(t, second, ix.ClassByFQN("com.acme.Widget"))
	assert.Len(t, ix.ClassesByRepository(repoOne), 1)
	assert.Len(t, ix.ClassesByRepository(repoTwo), 1)
	assert.Len(t, ix.ClassesByName("Widget"), 2)
}

func TestCountInvariants(t *testing.T) {
	ix := New(nil)
	ix.AddClasses(widgetClasses(t), repoOne)
	ix.AddClass(newClass(t, "com.other.Painter", method("render", "void")), repoTwo)

	assert.Equal(t, 3, ix.TotalClasses())
	assert.Equal(t, 4, ix.TotalMethods())
	assert.Equal(t, 2, ix.TotalRepositories())
	assert.Equal(t, 2, ix.TotalPackages())
}
