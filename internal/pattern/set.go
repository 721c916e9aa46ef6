package pattern

import (
	"fmt"
	"log/slog"
	"regexp"
)

// Kind names a declaration pattern.
type Kind string

const (
	KindFunction Kind = "function"
	KindStruct   Kind = "struct"
	KindEnum     Kind = "enum"
	KindImpl     Kind = "impl"
	KindTrait    Kind = "trait"
	KindClass    Kind = "class"
)

// Non-declaration pattern names accepted by Compile.
const (
	NameComment    = "comment"
	NameDocComment = "doc_comment"
)

// Definition is one uncompiled line-anchored pattern. Definitions for
// declarations are tried in the order given.
type Definition struct {
	Name string
	Expr string
}

// Diagnostic records a definition that could not be used.
type Diagnostic struct {
	Language Language
	Name     string
	Err      error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s/%s: %v", d.Language, d.Name, d.Err)
}

type declMatcher struct {
	kind Kind
	re   *regexp.Regexp
}

// Set is the compiled pattern table for one language.
type Set struct {
	Language Language

	decls      []declMatcher
	comment    *regexp.Regexp
	docComment *regexp.Regexp
}

// Compile builds a Set from definitions. A definition that fails to compile
// or has an unknown name is left out and reported as a Diagnostic.
func Compile(lang Language, defs []Definition, logger *slog.Logger) (*Set, []Diagnostic) {
	if logger == nil {
		logger = slog.Default()
	}

	set := &Set{Language: lang}
	var diags []Diagnostic

	for _, def := range defs {
		re, err := regexp.Compile(def.Expr)
		if err != nil {
			diags = append(diags, Diagnostic{Language: lang, Name: def.Name, Err: err})
			logger.Warn("skipping invalid pattern", "language", lang.String(), "pattern", def.Name, "error", err)
			continue
		}

		switch def.Name {
		case NameComment:
			set.comment = re
		case NameDocComment:
			set.docComment = re
		case string(KindFunction), string(KindStruct), string(KindEnum),
			string(KindImpl), string(KindTrait), string(KindClass):
			set.decls = append(set.decls, declMatcher{kind: Kind(def.Name), re: re})
		default:
			err := fmt.Errorf("unknown pattern name %q", def.Name)
			diags = append(diags, Diagnostic{Language: lang, Name: def.Name, Err: err})
			logger.Warn("skipping unknown pattern", "language", lang.String(), "pattern", def.Name)
		}
	}

	return set, diags
}

// MatchDeclaration tests the declaration patterns in priority order and
// returns the first match with the declared name, if one was captured.
func (s *Set) MatchDeclaration(line string) (Kind, string, bool) {
	for _, d := range s.decls {
		m := d.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := ""
		for _, g := range m[1:] {
			if g != "" {
				name = g
				break
			}
		}
		return d.kind, name, true
	}
	return "", "", false
}

// IsDocComment reports whether the line opens or continues a documentation
// marker for this language.
func (s *Set) IsDocComment(line string) bool {
	return s.docComment != nil && s.docComment.MatchString(line)
}

// IsComment reports whether the line is any comment, documentation or not.
func (s *Set) IsComment(line string) bool {
	return s.comment != nil && s.comment.MatchString(line)
}

// Kinds returns the declaration kinds in priority order.
func (s *Set) Kinds() []Kind {
	kinds := make([]Kind, len(s.decls))
	for i, d := range s.decls {
		kinds[i] = d.kind
	}
	return kinds
}
