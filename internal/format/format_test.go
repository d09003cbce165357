package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/javadexlabs/javadex/internal/indexer"
	"github.com/javadexlabs/javadex/internal/model"
)

func sampleClass() *model.JavaClass {
	return &model.JavaClass{
		Name:               "Widget",
		FullyQualifiedName: "com.acme.Widget",
		Package:            "com.acme",
		Extends:            "BaseWidget",
		Implements:         []string{"Renderable"},
		Annotations:        []model.JavaAnnotation{{Name: "Component", Arguments: `"widget"`}},
		Javadoc:            &model.Javadoc{Summary: "A widget.", Description: "A widget."},
		Fields:             []model.JavaField{{Name: "id", Type: "String"}},
		Methods: []model.JavaMethod{
			{
				Name:       "render",
				ReturnType: "int",
				Parameters: []model.JavaParameter{{Name: "out", Type: "Writer"}},
				Throws:     []string{"IOException"},
				Javadoc:    &model.Javadoc{Returns: "bytes written"},
			},
		},
		InnerClasses: []string{"Builder"},
	}
}

func TestClass(t *testing.T) {
	out := Class(sampleClass(), true)

	assert.Contains(t, out, "# Class com.acme.Widget")
	assert.Contains(t, out, "`Widget extends BaseWidget implements Renderable`")
	assert.Contains(t, out, "`@Component(\"widget\")`")
	assert.Contains(t, out, "A widget.")
	assert.Contains(t, out, "- `String id`")
	assert.Contains(t, out, "### `int render(Writer out)`")
	assert.Contains(t, out, "Throws: IOException")
	assert.Contains(t, out, "Returns: bytes written")
	assert.Contains(t, out, "Builder")
}

func TestClassWithoutJavadoc(t *testing.T) {
	out := Class(sampleClass(), false)
	assert.NotContains(t, out, "A widget.")
	assert.NotContains(t, out, "Returns: bytes written")
	assert.Contains(t, out, "### `int render(Writer out)`")
}

func TestHierarchy(t *testing.T) {
	assert.Empty(t, Hierarchy(&model.JavaClass{Name: "Plain"}))

	iface := &model.JavaClass{Name: "Renderable", IsInterface: true, Implements: []string{"Drawable"}}
	assert.Equal(t, "`Renderable extends Drawable`", Hierarchy(iface))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "Interface", kind(&model.JavaClass{IsInterface: true}))
	assert.Equal(t, "Enum", kind(&model.JavaClass{IsEnum: true}))
	assert.Equal(t, "Abstract class", kind(&model.JavaClass{IsAbstract: true}))
	assert.Equal(t, "Class", kind(&model.JavaClass{}))
}

func TestMethodMatches(t *testing.T) {
	cls := sampleClass()
	matches := []indexer.MethodMatch{{Class: cls, Method: cls.Methods[0]}}

	out := MethodMatches(matches, true)
	assert.Contains(t, out, "Found 1 method(s) in 1 class(es).")
	assert.Contains(t, out, "## com.acme.Widget")
	assert.Contains(t, out, "### `int render(Writer out)`")

	assert.Equal(t, "No matching methods found.\n", MethodMatches(nil, true))
}

func TestStatistics(t *testing.T) {
	out := Statistics(indexer.Statistics{TotalClasses: 2, TotalMethods: 3, TotalRepositories: 1, TotalPackages: 1})
	assert.Contains(t, out, "- Classes: 2")
	assert.Contains(t, out, "- Methods: 3")
	assert.Contains(t, out, "- Repositories: 1")
}
