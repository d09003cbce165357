// Package model defines the Java API entities produced by the parser and
// consumed by the indexer.
//
// Entities are plain value types validated once at construction. They carry
// no behavior beyond signature rendering and derived-name helpers.
package model

import (
	"fmt"
	"strings"
)

// Javadoc holds the structured content of a parsed documentation comment.
type Javadoc struct {
	Summary     string
	Description string
	Params      map[string]string
	Returns     string
	Throws      map[string]string
	See         []string
	Since       string
	Deprecated  string
	Authors     []string
	Examples    []string
}

// IsEmpty reports whether the javadoc carries no content at all.
func (d *Javadoc) IsEmpty() bool {
	if d == nil {
		return true
	}
	return d.Summary == "" && d.Description == "" && len(d.Params) == 0 &&
		d.Returns == "" && len(d.Throws) == 0 && len(d.See) == 0 &&
		d.Since == "" && d.Deprecated == "" && len(d.Authors) == 0 &&
		len(d.Examples) == 0
}

// JavaAnnotation is an annotation applied to a class, method, field or
// parameter. Arguments keeps the raw text between the parentheses, if any.
type JavaAnnotation struct {
	Name      string
	Arguments string
}

// JavaParameter is a single method parameter.
type JavaParameter struct {
	Name        string
	Type        string
	Annotations []JavaAnnotation
}

// JavaField is a class field.
type JavaField struct {
	Name         string
	Type         string
	Modifiers    []string
	Annotations  []JavaAnnotation
	Javadoc      *Javadoc
	InitialValue string
}

// JavaMethod is a method or constructor belonging to exactly one class.
type JavaMethod struct {
	Name          string
	ReturnType    string
	Parameters    []JavaParameter
	Modifiers     []string
	Annotations   []JavaAnnotation
	Javadoc       *Javadoc
	Throws        []string
	IsConstructor bool
}

// Signature renders the method as "returnType name(paramType paramName, ...)".
// Constructors have no return type and render as "name(...)".
func (m *JavaMethod) Signature() string {
	params := make([]string, len(m.Parameters))
	for i, p := range m.Parameters {
		params[i] = p.Type + " " + p.Name
	}
	sig := fmt.Sprintf("%s(%s)", m.Name, strings.Join(params, ", "))
	if m.ReturnType == "" {
		return sig
	}
	return m.ReturnType + " " + sig
}

// JavaClass is a Java class, interface or enum together with its members.
//
// FullyQualifiedName is the primary index key and must be non-empty; Package
// may be empty for default-package classes.
type JavaClass struct {
	Name               string
	FullyQualifiedName string
	Package            string
	Modifiers          []string
	Annotations        []JavaAnnotation
	Extends            string
	Implements         []string
	Methods            []JavaMethod
	Fields             []JavaField
	Javadoc            *Javadoc
	IsInterface        bool
	IsAbstract         bool
	IsEnum             bool
	InnerClasses       []string
}

// NewJavaClass constructs a class entity, deriving the simple name and
// package from the fully-qualified name when they are not supplied.
func NewJavaClass(fqn string) (*JavaClass, error) {
	if strings.TrimSpace(fqn) == "" {
		return nil, fmt.Errorf("fully-qualified name cannot be empty")
	}
	return &JavaClass{
		Name:               SimpleName(fqn),
		FullyQualifiedName: fqn,
		Package:            PackageName(fqn),
	}, nil
}

// Validate checks the invariants established at construction.
func (c *JavaClass) Validate() error {
	if strings.TrimSpace(c.FullyQualifiedName) == "" {
		return fmt.Errorf("class %q: fully-qualified name cannot be empty", c.Name)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("class %q: simple name cannot be empty", c.FullyQualifiedName)
	}
	return nil
}

// SimpleName extracts the simple class name from a fully-qualified name.
func SimpleName(fqn string) string {
	if i := strings.LastIndex(fqn, "."); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}

// PackageName extracts the package portion of a fully-qualified name, or ""
// for default-package classes.
func PackageName(fqn string) string {
	if i := strings.LastIndex(fqn, "."); i >= 0 {
		return fqn[:i]
	}
	return ""
}
