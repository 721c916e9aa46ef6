// Package pattern provides the per-language declaration and documentation
// matchers used by the chunker.
package pattern

import (
	"path/filepath"
	"sort"
	"strings"
)

// Language identifies a supported source language. Unknown selects the
// paragraph fallback.
type Language int

const (
	Unknown Language = iota
	Rust
	Python
	JavaScript
	TypeScript

	numLanguages
)

var languageNames = [numLanguages]string{
	Unknown:    "unknown",
	Rust:       "rust",
	Python:     "python",
	JavaScript: "javascript",
	TypeScript: "typescript",
}

// String returns the lowercase identifier used in chunk types and metadata.
func (l Language) String() string {
	if l < 0 || l >= numLanguages {
		return languageNames[Unknown]
	}
	return languageNames[l]
}

// BraceDelimited reports whether code bodies are found by brace counting.
func (l Language) BraceDelimited() bool {
	return l == Rust || l == JavaScript || l == TypeScript
}

// ParseLanguage maps an identifier to a Language. Unrecognized names map to
// Unknown.
func ParseLanguage(name string) Language {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rust", "rs":
		return Rust
	case "python", "py":
		return Python
	case "javascript", "js", "jsx":
		return JavaScript
	case "typescript", "ts", "tsx":
		return TypeScript
	default:
		return Unknown
	}
}

var extensionLanguages = map[string]Language{
	".rs":  Rust,
	".py":  Python,
	".js":  JavaScript,
	".jsx": JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".ts":  TypeScript,
	".tsx": TypeScript,
}

// DetectLanguage determines language from file extension.
func DetectLanguage(filePath string) (Language, bool) {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(filePath))]
	return lang, ok
}

// Extensions returns every file extension DetectLanguage recognizes, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
