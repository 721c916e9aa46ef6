package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// javascript walks a JavaScript or TypeScript tree. Both grammars share the
// node names used here.
func (x *extraction) javascript(node *sitter.Node, parent string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case "function_declaration", "generator_function_declaration", "function_signature":
			name := x.fieldContent(child, "name")
			sym := x.add(child, name, SymbolFunction, parent)
			sym.HasDoc = x.jsDoc(child)
			x.javascript(child, name)

		case "class_declaration", "abstract_class_declaration":
			name := x.fieldContent(child, "name")
			sym := x.add(child, name, SymbolClass, parent)
			sym.HasDoc = x.jsDoc(child)
			x.javascript(child, name)

		case "method_definition":
			sym := x.add(child, x.fieldContent(child, "name"), SymbolMethod, parent)
			sym.HasDoc = x.jsDoc(child)
			x.javascript(child, parent)

		case "enum_declaration":
			sym := x.add(child, x.fieldContent(child, "name"), SymbolEnum, parent)
			sym.HasDoc = x.jsDoc(child)

		case "lexical_declaration", "variable_declaration":
			x.jsFunctionVariables(child, parent)
			x.javascript(child, parent)

		default:
			x.javascript(child, parent)
		}
	}
}

// jsFunctionVariables records const/let/var declarations bound to a
// function or arrow function.
func (x *extraction) jsFunctionVariables(decl *sitter.Node, parent string) {
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		declarator := decl.NamedChild(i)
		if declarator.Type() != "variable_declarator" {
			continue
		}
		value := declarator.ChildByFieldName("value")
		if value == nil {
			continue
		}
		switch value.Type() {
		case "arrow_function", "function", "function_expression", "generator_function":
			sym := x.add(decl, x.fieldContent(declarator, "name"), SymbolFunction, parent)
			sym.HasDoc = x.jsDoc(decl)
		}
	}
}

// jsDoc reports whether a JSDoc block precedes node or the export statement
// wrapping it.
func (x *extraction) jsDoc(node *sitter.Node) bool {
	target := node
	if p := node.Parent(); p != nil && p.Type() == "export_statement" {
		target = p
	}
	prev := target.PrevSibling()
	return prev != nil && prev.Type() == "comment" &&
		strings.HasPrefix(nodeContent(prev, x.source), "/**")
}
