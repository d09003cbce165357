// Package format renders indexed Java entities as markdown for tool output.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/javadexlabs/javadex/internal/indexer"
	"github.com/javadexlabs/javadex/internal/model"
)

// Class renders a full markdown description of one class: kind, hierarchy,
// javadoc, fields and methods.
func Class(cls *model.JavaClass, includeJavadoc bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s %s\n\n", kind(cls), cls.FullyQualifiedName)
	if h := Hierarchy(cls); h != "" {
		fmt.Fprintf(&b, "%s\n\n", h)
	}
	if len(cls.Annotations) > 0 {
		fmt.Fprintf(&b, "Annotations: %s\n\n", annotationList(cls.Annotations))
	}
	if includeJavadoc {
		writeJavadoc(&b, cls.Javadoc)
	}

	if len(cls.Fields) > 0 {
		b.WriteString("## Fields\n\n")
		for _, f := range cls.Fields {
			fmt.Fprintf(&b, "- `%s %s`\n", f.Type, f.Name)
		}
		b.WriteString("\n")
	}

	if len(cls.Methods) > 0 {
		b.WriteString("## Methods\n\n")
		for _, m := range cls.Methods {
			writeMethod(&b, &m, includeJavadoc)
		}
	}

	if len(cls.InnerClasses) > 0 {
		fmt.Fprintf(&b, "## Inner classes\n\n%s\n", strings.Join(cls.InnerClasses, ", "))
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Hierarchy renders the extends/implements line, or "" when the class has
// no declared supertypes.
func Hierarchy(cls *model.JavaClass) string {
	var parts []string
	if cls.Extends != "" {
		parts = append(parts, "extends "+cls.Extends)
	}
	if len(cls.Implements) > 0 {
		verb := "implements"
		if cls.IsInterface {
			verb = "extends"
		}
		parts = append(parts, verb+" "+strings.Join(cls.Implements, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return "`" + cls.Name + " " + strings.Join(parts, " ") + "`"
}

// MethodMatches renders search results grouped by declaring class.
func MethodMatches(matches []indexer.MethodMatch, includeJavadoc bool) string {
	if len(matches) == 0 {
		return "No matching methods found.\n"
	}

	grouped := make(map[string][]indexer.MethodMatch)
	var order []string
	for _, m := range matches {
		fqn := m.Class.FullyQualifiedName
		if _, seen := grouped[fqn]; !seen {
			order = append(order, fqn)
		}
		grouped[fqn] = append(grouped[fqn], m)
	}
	sort.Strings(order)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d method(s) in %d class(es).\n\n", len(matches), len(order))
	for _, fqn := range order {
		fmt.Fprintf(&b, "## %s\n\n", fqn)
		for _, m := range grouped[fqn] {
			writeMethod(&b, &m.Method, includeJavadoc)
		}
	}
	return b.String()
}

// Statistics renders index totals as a short markdown block.
func Statistics(stats indexer.Statistics) string {
	var b strings.Builder
	b.WriteString("# Index status\n\n")
	fmt.Fprintf(&b, "- Classes: %d\n", stats.TotalClasses)
	fmt.Fprintf(&b, "- Methods: %d\n", stats.TotalMethods)
	fmt.Fprintf(&b, "- Packages: %d\n", stats.TotalPackages)
	fmt.Fprintf(&b, "- Repositories: %d\n", stats.TotalRepositories)
	return b.String()
}

func writeMethod(b *strings.Builder, m *model.JavaMethod, includeJavadoc bool) {
	fmt.Fprintf(b, "### `%s`\n\n", m.Signature())
	if len(m.Throws) > 0 {
		fmt.Fprintf(b, "Throws: %s\n\n", strings.Join(m.Throws, ", "))
	}
	if includeJavadoc {
		writeJavadoc(b, m.Javadoc)
	}
}

func writeJavadoc(b *strings.Builder, doc *model.Javadoc) {
	if doc.IsEmpty() {
		return
	}
	if doc.Description != "" {
		fmt.Fprintf(b, "%s\n\n", doc.Description)
	} else if doc.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", doc.Summary)
	}
	if len(doc.Params) > 0 {
		names := make([]string, 0, len(doc.Params))
		for name := range doc.Params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(b, "- `%s`: %s\n", name, doc.Params[name])
		}
		b.WriteString("\n")
	}
	if doc.Returns != "" {
		fmt.Fprintf(b, "Returns: %s\n\n", doc.Returns)
	}
	if doc.Deprecated != "" {
		fmt.Fprintf(b, "**Deprecated**: %s\n\n", doc.Deprecated)
	}
	for _, example := range doc.Examples {
		fmt.Fprintf(b, "```java\n%s\n```\n\n", example)
	}
}

func annotationList(anns []model.JavaAnnotation) string {
	parts := make([]string, len(anns))
	for i, a := range anns {
		if a.Arguments != "" {
			parts[i] = fmt.Sprintf("`@%s(%s)`", a.Name, a.Arguments)
		} else {
			parts[i] = "`@" + a.Name + "`"
		}
	}
	return strings.Join(parts, ", ")
}

func kind(cls *model.JavaClass) string {
	switch {
	case cls.IsInterface:
		return "Interface"
	case cls.IsEnum:
		return "Enum"
	case cls.IsAbstract:
		return "Abstract class"
	default:
		return "Class"
	}
}
