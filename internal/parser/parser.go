// Package parser extracts declarations with tree-sitter grammars. The
// validator uses it as a structural second opinion on the line-oriented
// unit extractor.
package parser

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

// ErrUnsupported is returned for languages without a grammar.
var ErrUnsupported = errors.New("unsupported language")

// SymbolKind represents the type of a declaration.
type SymbolKind string

const (
	SymbolFunction SymbolKind = "function"
	SymbolMethod   SymbolKind = "method"
	SymbolClass    SymbolKind = "class"
	SymbolStruct   SymbolKind = "struct"
	SymbolEnum     SymbolKind = "enum"
	SymbolImpl     SymbolKind = "impl"
	SymbolTrait    SymbolKind = "trait"
)

// Symbol is one declaration found in the syntax tree. Lines are 1-based.
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	StartLine int        `json:"start_line"`
	EndLine   int        `json:"end_line"`
	Parent    string     `json:"parent,omitempty"`
	Docstring string     `json:"docstring,omitempty"`
	HasDoc    bool       `json:"has_doc"`
}

// Result is the outcome of parsing one source file.
type Result struct {
	Symbols []Symbol
	// SyntaxErrors is set when tree-sitter had to recover from errors.
	SyntaxErrors bool
}

// Parser wraps tree-sitter for a specific language. It is not safe for
// concurrent use.
type Parser struct {
	language pattern.Language
	parser   *sitter.Parser
}

// Supported reports whether lang has a grammar.
func Supported(lang pattern.Language) bool {
	return grammar(lang) != nil
}

func grammar(lang pattern.Language) *sitter.Language {
	switch lang {
	case pattern.Rust:
		return rust.GetLanguage()
	case pattern.Python:
		return python.GetLanguage()
	case pattern.JavaScript:
		return javascript.GetLanguage()
	case pattern.TypeScript:
		return typescript.GetLanguage()
	default:
		return nil
	}
}

// NewParser creates a parser for the given language.
func NewParser(lang pattern.Language) (*Parser, error) {
	l := grammar(lang)
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, lang)
	}

	p := sitter.NewParser()
	p.SetLanguage(l)

	return &Parser{language: lang, parser: p}, nil
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.parser.Close()
}

// Parse parses source and extracts its declarations in source order.
func (p *Parser) Parse(ctx context.Context, source []byte) (*Result, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	x := &extraction{source: source}

	switch p.language {
	case pattern.Rust:
		x.rust(root, "")
	case pattern.Python:
		x.python(root, "", false)
	case pattern.JavaScript, pattern.TypeScript:
		x.javascript(root, "")
	}

	return &Result{Symbols: x.symbols, SyntaxErrors: root.HasError()}, nil
}

// DeclarationLines returns the distinct 1-based start lines of symbols.
func DeclarationLines(symbols []Symbol) map[int]Symbol {
	lines := make(map[int]Symbol, len(symbols))
	for _, s := range symbols {
		if _, ok := lines[s.StartLine]; !ok {
			lines[s.StartLine] = s
		}
	}
	return lines
}

type extraction struct {
	source  []byte
	symbols []Symbol
}

func (x *extraction) add(node *sitter.Node, name string, kind SymbolKind, parent string) *Symbol {
	x.symbols = append(x.symbols, Symbol{
		Name:      name,
		Kind:      kind,
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		Parent:    parent,
	})
	return &x.symbols[len(x.symbols)-1]
}

func (x *extraction) fieldContent(node *sitter.Node, field string) string {
	if child := node.ChildByFieldName(field); child != nil {
		return nodeContent(child, x.source)
	}
	return ""
}

func findChild(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func nodeContent(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
