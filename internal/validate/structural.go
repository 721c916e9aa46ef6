package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/randalmurphy/doc-chunker/internal/chunk"
	"github.com/randalmurphy/doc-chunker/internal/parser"
	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

func parseSymbols(ctx context.Context, lang pattern.Language, content string) (*parser.Result, error) {
	p, err := parser.NewParser(lang)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.Parse(ctx, []byte(content))
}

// structuralFindings reports syntax errors and tree-sitter declarations the
// line extractor missed. JavaScript methods have no line pattern and are
// not expected as units.
func structuralFindings(res *parser.Result, units []chunk.LogicalUnit, lang pattern.Language) []string {
	var findings []string
	if res.SyntaxErrors {
		findings = append(findings, "syntax tree contains parse errors")
	}

	extracted := make(map[int]bool, len(units))
	for _, u := range units {
		extracted[u.DeclarationLine+1] = true
	}
	for _, sym := range res.Symbols {
		if extracted[sym.StartLine] {
			continue
		}
		if sym.Kind == parser.SymbolMethod && (lang == pattern.JavaScript || lang == pattern.TypeScript) {
			continue
		}
		findings = append(findings, fmt.Sprintf("%s %s at line %d was not extracted", sym.Kind, sym.Name, sym.StartLine))
	}
	return findings
}

// checkChunks verifies that chunks are ordered, disjoint and verbatim.
func checkChunks(chunks []chunk.Chunk, lines []string) []string {
	var errs []string
	prevEnd := 0
	for _, c := range chunks {
		where := fmt.Sprintf("chunk %s (lines %d-%d)", c.Name, c.LineStart, c.LineEnd)

		if c.LineStart < 1 || c.LineEnd < c.LineStart || c.LineEnd > len(lines) {
			errs = append(errs, where+": line range outside the file")
			continue
		}
		if c.LineStart <= prevEnd {
			errs = append(errs, where+": overlaps the previous chunk")
		}
		prevEnd = c.LineEnd

		if c.Content != strings.Join(lines[c.LineStart-1:c.LineEnd], "\n") {
			errs = append(errs, where+": content is not a verbatim slice")
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			errs = append(errs, fmt.Sprintf("%s: confidence out of bounds: %.3f", where, c.Confidence))
		}
		if c.ID != chunk.GenerateID(c.FilePath, c.LineStart, c.LineEnd, c.Content) {
			errs = append(errs, where+": id does not match content")
		}
	}
	return errs
}
