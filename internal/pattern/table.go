package pattern

import "log/slog"

const (
	rustVis  = `(?:pub(?:\s*\([^)]*\))?\s+)?`
	jsIdent  = `[A-Za-z_$][\w$]*`
	jsExport = `(?:export\s+(?:default\s+)?)?`
)

var builtin = [numLanguages][]Definition{
	Rust: {
		{Name: "function", Expr: `^\s*` + rustVis + `(?:(?:default|async|const|unsafe|extern\s+"[^"]*")\s+)*fn\s+([A-Za-z_]\w*)`},
		{Name: "struct", Expr: `^\s*` + rustVis + `struct\s+([A-Za-z_]\w*)`},
		{Name: "enum", Expr: `^\s*` + rustVis + `enum\s+([A-Za-z_]\w*)`},
		{Name: "impl", Expr: `^\s*(?:unsafe\s+)?impl\b(?:\s*<[^{]*?>)?\s+(?:[\w:<>,&'\s]+?\s+for\s+)?&?(?:[\w]+::)*([A-Za-z_]\w*)`},
		{Name: "trait", Expr: `^\s*` + rustVis + `(?:unsafe\s+)?trait\s+([A-Za-z_]\w*)`},
		{Name: "comment", Expr: `^\s*(?://|/\*)`},
		{Name: "doc_comment", Expr: `^\s*(?:///|//!|/\*\*)`},
	},
	Python: {
		{Name: "function", Expr: `^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)`},
		{Name: "class", Expr: `^\s*class\s+([A-Za-z_]\w*)`},
		{Name: "comment", Expr: `^\s*#`},
		{Name: "doc_comment", Expr: `^\s*[rRuU]?(?:"""|''')`},
	},
	JavaScript: {
		{Name: "function", Expr: `^\s*` + jsExport + `(?:async\s+)?function\s*\*?\s*(` + jsIdent + `)|^\s*(?:export\s+)?(?:const|let|var)\s+(` + jsIdent + `)\s*=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*=>|` + jsIdent + `\s*=>)`},
		{Name: "class", Expr: `^\s*` + jsExport + `class\s+(` + jsIdent + `)`},
		{Name: "comment", Expr: `^\s*(?://|/\*)`},
		{Name: "doc_comment", Expr: `^\s*/\*\*`},
	},
	TypeScript: {
		{Name: "function", Expr: `^\s*` + jsExport + `(?:declare\s+)?(?:async\s+)?function\s*\*?\s*(` + jsIdent + `)|^\s*(?:export\s+)?(?:const|let|var)\s+(` + jsIdent + `)(?:\s*:[^=]+)?\s*=\s*(?:async\s+)?(?:function\b|\([^)]*\)(?:\s*:\s*[^=]+)?\s*=>|` + jsIdent + `\s*=>)`},
		{Name: "class", Expr: `^\s*` + jsExport + `(?:abstract\s+)?class\s+(` + jsIdent + `)`},
		{Name: "enum", Expr: `^\s*(?:export\s+)?(?:declare\s+)?(?:const\s+)?enum\s+(` + jsIdent + `)`},
		{Name: "comment", Expr: `^\s*(?://|/\*)`},
		{Name: "doc_comment", Expr: `^\s*/\*\*`},
	},
}

var (
	table       [numLanguages]*Set
	diagnostics []Diagnostic
)

func init() {
	for lang := Language(0); lang < numLanguages; lang++ {
		if len(builtin[lang]) == 0 {
			continue
		}
		set, diags := Compile(lang, builtin[lang], slog.Default())
		table[lang] = set
		diagnostics = append(diagnostics, diags...)
	}
}

// Lookup returns the compiled Set for lang. It returns false for Unknown,
// which callers handle with the paragraph fallback.
func Lookup(lang Language) (*Set, bool) {
	if lang <= Unknown || lang >= numLanguages {
		return nil, false
	}
	set := table[lang]
	return set, set != nil
}

// Diagnostics returns the problems found while compiling the built-in tables.
func Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), diagnostics...)
}
