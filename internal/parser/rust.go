package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// rust walks items. parent is the enclosing impl or trait, whose functions
// become methods.
func (x *extraction) rust(node *sitter.Node, parent string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case "function_item", "function_signature_item":
			kind := SymbolFunction
			if parent != "" {
				kind = SymbolMethod
			}
			sym := x.add(child, x.fieldContent(child, "name"), kind, parent)
			sym.HasDoc = x.rustDoc(child)
			if body := child.ChildByFieldName("body"); body != nil {
				x.rust(body, "")
			}

		case "struct_item", "enum_item":
			kind := SymbolStruct
			if child.Type() == "enum_item" {
				kind = SymbolEnum
			}
			sym := x.add(child, x.fieldContent(child, "name"), kind, parent)
			sym.HasDoc = x.rustDoc(child)

		case "trait_item":
			name := x.fieldContent(child, "name")
			sym := x.add(child, name, SymbolTrait, parent)
			sym.HasDoc = x.rustDoc(child)
			if body := child.ChildByFieldName("body"); body != nil {
				x.rust(body, name)
			}

		case "impl_item":
			name := x.fieldContent(child, "type")
			if trait := x.fieldContent(child, "trait"); trait != "" {
				name = trait + " for " + name
			}
			sym := x.add(child, name, SymbolImpl, parent)
			sym.HasDoc = x.rustDoc(child)
			if body := child.ChildByFieldName("body"); body != nil {
				x.rust(body, name)
			}

		default:
			x.rust(child, parent)
		}
	}
}

// rustDoc reports whether outer doc comments precede item. Attributes
// between the comments and the item are skipped.
func (x *extraction) rustDoc(item *sitter.Node) bool {
	for prev := item.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		text := nodeContent(prev, x.source)
		switch prev.Type() {
		case "attribute_item":
			continue
		case "line_comment":
			return strings.HasPrefix(text, "///") && !strings.HasPrefix(text, "////")
		case "block_comment":
			return strings.HasPrefix(text, "/**") && !strings.HasPrefix(text, "/***")
		default:
			return false
		}
	}
	return false
}
