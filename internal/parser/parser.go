// Package parser turns Java source files into model entities using a
// tree-sitter grammar.
//
// A Parser is not safe for concurrent use; create one per goroutine.
package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"go.uber.org/zap"

	"github.com/javadexlabs/javadex/internal/javadoc"
	"github.com/javadexlabs/javadex/internal/model"
)

// Parser extracts classes, interfaces and enums from Java sources.
type Parser struct {
	parser *sitter.Parser
	logger *zap.Logger
}

// New creates a parser bound to the Java grammar.
func New(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &Parser{parser: p, logger: logger}
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.parser.Close()
}

// ParseFile reads and parses one Java source file.
func (p *Parser) ParseFile(ctx context.Context, path string) ([]*model.JavaClass, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	classes, err := p.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return classes, nil
}

// Parse extracts every class, interface and enum from source. Inner types
// are returned as their own entries with dotted fully-qualified names and
// also recorded by name on their enclosing class.
func (p *Parser) Parse(ctx context.Context, source []byte) ([]*model.JavaClass, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	pkg := packageName(root, source)

	var classes []*model.JavaClass
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if !isTypeDeclaration(n.Type()) {
			continue
		}
		classes = append(classes, p.extractType(n, source, pkg)...)
	}
	p.logger.Debug("parsed source",
		zap.String("package", pkg),
		zap.Int("classes", len(classes)))
	return classes, nil
}

func isTypeDeclaration(nodeType string) bool {
	switch nodeType {
	case "class_declaration", "interface_declaration", "enum_declaration":
		return true
	}
	return false
}

// extractType converts one type declaration into model classes, recursing
// into inner types. prefix is the package for top-level types and the
// enclosing FQN for nested ones.
func (p *Parser) extractType(node *sitter.Node, source []byte, prefix string) []*model.JavaClass {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(source)

	fqn := name
	if prefix != "" {
		fqn = prefix + "." + name
	}

	cls := &model.JavaClass{
		Name:               name,
		FullyQualifiedName: fqn,
		Package:            model.PackageName(fqn),
		IsInterface:        node.Type() == "interface_declaration",
		IsEnum:             node.Type() == "enum_declaration",
		Javadoc:            precedingJavadoc(node, source),
	}
	cls.Modifiers, cls.Annotations = modifiers(node, source)
	for _, m := range cls.Modifiers {
		if m == "abstract" {
			cls.IsAbstract = true
		}
	}
	cls.Extends, cls.Implements = supertypes(node, source)

	out := []*model.JavaClass{cls}

	body := node.ChildByFieldName("body")
	if body == nil {
		return out
	}
	out = append(out, p.extractMembers(cls, body, source)...)
	return out
}

// extractMembers walks a class, interface or enum body, filling cls and
// returning any inner types as additional classes.
func (p *Parser) extractMembers(cls *model.JavaClass, body *sitter.Node, source []byte) []*model.JavaClass {
	var inner []*model.JavaClass
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_declaration":
			if m := p.extractMethod(member, source, false); m != nil {
				cls.Methods = append(cls.Methods, *m)
			}
		case "constructor_declaration":
			if m := p.extractMethod(member, source, true); m != nil {
				cls.Methods = append(cls.Methods, *m)
			}
		case "field_declaration":
			cls.Fields = append(cls.Fields, extractFields(member, source)...)
		case "class_declaration", "interface_declaration", "enum_declaration":
			nested := p.extractType(member, source, cls.FullyQualifiedName)
			if len(nested) > 0 {
				cls.InnerClasses = append(cls.InnerClasses, nested[0].Name)
				inner = append(inner, nested...)
			}
		case "enum_body_declarations":
			inner = append(inner, p.extractMembers(cls, member, source)...)
		}
	}
	return inner
}

func (p *Parser) extractMethod(node *sitter.Node, source []byte, isConstructor bool) *model.JavaMethod {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	m := &model.JavaMethod{
		Name:          nameNode.Content(source),
		IsConstructor: isConstructor,
		Javadoc:       precedingJavadoc(node, source),
	}
	if !isConstructor {
		if typeNode := node.ChildByFieldName("type"); typeNode != nil {
			m.ReturnType = typeNode.Content(source)
		}
	}
	m.Modifiers, m.Annotations = modifiers(node, source)
	m.Parameters = parameters(node.ChildByFieldName("parameters"), source)

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "throws" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			m.Throws = append(m.Throws, child.NamedChild(j).Content(source))
		}
	}
	return m
}

// extractFields handles one field_declaration, which may declare several
// variables of the same type.
func extractFields(node *sitter.Node, source []byte) []model.JavaField {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	fieldType := typeNode.Content(source)
	mods, anns := modifiers(node, source)
	doc := precedingJavadoc(node, source)

	var fields []model.JavaField
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		f := model.JavaField{
			Name:        nameNode.Content(source),
			Type:        fieldType,
			Modifiers:   mods,
			Annotations: anns,
			Javadoc:     doc,
		}
		if valueNode := decl.ChildByFieldName("value"); valueNode != nil {
			f.InitialValue = valueNode.Content(source)
		}
		fields = append(fields, f)
	}
	return fields
}

func parameters(node *sitter.Node, source []byte) []model.JavaParameter {
	if node == nil {
		return nil
	}
	var params []model.JavaParameter
	for i := 0; i < int(node.NamedChildCount()); i++ {
		param := node.NamedChild(i)
		switch param.Type() {
		case "formal_parameter":
			typeNode := param.ChildByFieldName("type")
			nameNode := param.ChildByFieldName("name")
			if typeNode == nil || nameNode == nil {
				continue
			}
			p := model.JavaParameter{
				Type: typeNode.Content(source),
				Name: nameNode.Content(source),
			}
			_, p.Annotations = modifiers(param, source)
			params = append(params, p)
		case "spread_parameter":
			params = append(params, spreadParameter(param, source))
		}
	}
	return params
}

// spreadParameter handles varargs, which the grammar represents without
// type and name fields.
func spreadParameter(node *sitter.Node, source []byte) model.JavaParameter {
	p := model.JavaParameter{}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "variable_declarator" {
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				p.Name = nameNode.Content(source)
			}
			continue
		}
		if p.Type == "" {
			p.Type = child.Content(source) + "..."
		}
	}
	return p
}

// modifiers collects keyword modifiers and annotations from a declaration's
// modifiers node, if present.
func modifiers(node *sitter.Node, source []byte) ([]string, []model.JavaAnnotation) {
	var mods []string
	var anns []model.JavaAnnotation
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			item := child.Child(j)
			switch item.Type() {
			case "marker_annotation", "annotation":
				anns = append(anns, annotation(item, source))
			case "line_comment", "block_comment":
			default:
				mods = append(mods, item.Content(source))
			}
		}
	}
	return mods, anns
}

func annotation(node *sitter.Node, source []byte) model.JavaAnnotation {
	a := model.JavaAnnotation{}
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		a.Name = nameNode.Content(source)
	}
	if argsNode := node.ChildByFieldName("arguments"); argsNode != nil {
		args := argsNode.Content(source)
		args = strings.TrimPrefix(args, "(")
		args = strings.TrimSuffix(args, ")")
		a.Arguments = strings.TrimSpace(args)
	}
	return a
}

// supertypes reads the extends and implements clauses. For interfaces the
// extends list maps onto Implements, mirroring how consumers treat both as
// supertype names.
func supertypes(node *sitter.Node, source []byte) (string, []string) {
	var extends string
	var implements []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "superclass":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				extends = child.NamedChild(j).Content(source)
			}
		case "super_interfaces", "extends_interfaces":
			implements = append(implements, typeList(child, source)...)
		}
	}
	return extends, implements
}

func typeList(node *sitter.Node, source []byte) []string {
	var types []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "type_list" {
			types = append(types, typeList(child, source)...)
			continue
		}
		types = append(types, child.Content(source))
	}
	return types
}

// packageName returns the declared package, or "" for the default package.
func packageName(root *sitter.Node, source []byte) string {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "package_declaration" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			name := child.NamedChild(j)
			if name.Type() == "scoped_identifier" || name.Type() == "identifier" {
				return name.Content(source)
			}
		}
	}
	return ""
}

// precedingJavadoc parses the block comment immediately above a declaration
// when it is a Javadoc comment.
func precedingJavadoc(node *sitter.Node, source []byte) *model.Javadoc {
	prev := node.PrevSibling()
	if prev == nil || prev.Type() != "block_comment" {
		return nil
	}
	text := prev.Content(source)
	if !strings.HasPrefix(text, "/**") {
		return nil
	}
	return javadoc.Parse(text)
}
