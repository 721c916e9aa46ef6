package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// python walks definitions. inClass marks a class body, where functions
// become methods of parent.
func (x *extraction) python(node *sitter.Node, parent string, inClass bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case "function_definition":
			kind := SymbolFunction
			if inClass {
				kind = SymbolMethod
			}
			name := x.fieldContent(child, "name")
			sym := x.add(child, name, kind, parent)
			sym.Docstring = x.pythonDocstring(child)
			sym.HasDoc = sym.Docstring != ""

			// Nested functions
			if body := child.ChildByFieldName("body"); body != nil {
				x.python(body, name, false)
			}

		case "class_definition":
			name := x.fieldContent(child, "name")
			sym := x.add(child, name, SymbolClass, parent)
			sym.Docstring = x.pythonDocstring(child)
			sym.HasDoc = sym.Docstring != ""

			if body := child.ChildByFieldName("body"); body != nil {
				x.python(body, name, true)
			}

		default:
			x.python(child, parent, inClass)
		}
	}
}

// pythonDocstring returns the string literal opening a definition body.
func (x *extraction) pythonDocstring(def *sitter.Node) string {
	body := def.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" {
		return ""
	}
	str := findChild(first, "string")
	if str == nil {
		return ""
	}
	return cleanDocstring(nodeContent(str, x.source))
}

func cleanDocstring(s string) string {
	s = strings.TrimLeft(s, "rRuUbBfF")
	switch {
	case len(s) >= 6 && (s[:3] == `"""` || s[:3] == `'''`):
		s = s[3 : len(s)-3]
	case len(s) >= 2 && (s[0] == '"' || s[0] == '\''):
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
