package confidence

import (
	"strings"

	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

// DocType is the inferred purpose of a documentation block.
type DocType string

const (
	DocTypeAPI           DocType = "api_documentation"
	DocTypeInternal      DocType = "internal_comments"
	DocTypeTutorial      DocType = "tutorial_content"
	DocTypeConfiguration DocType = "configuration"
	DocTypeTest          DocType = "test_documentation"
)

// CodeType is the inferred kind of code a file holds.
type CodeType string

const (
	CodeTypeLibrary     CodeType = "library_code"
	CodeTypeApplication CodeType = "application_code"
	CodeTypeScript      CodeType = "script_code"
)

const (
	minThreshold = 0.3
	maxThreshold = 0.95
)

// Thresholds is the adaptive threshold table.
type Thresholds struct {
	Base     map[DocType]float64
	Language map[pattern.Language]float64
	Code     map[CodeType]float64
	// Default applies to document types missing from Base.
	Default float64
}

// DefaultThresholds returns the standard table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Base: map[DocType]float64{
			DocTypeAPI:           0.45,
			DocTypeInternal:      0.35,
			DocTypeTutorial:      0.50,
			DocTypeConfiguration: 0.30,
			DocTypeTest:          0.40,
		},
		Language: map[pattern.Language]float64{
			pattern.Rust:       0.05,
			pattern.Python:     0.0,
			pattern.JavaScript: -0.05,
			pattern.TypeScript: -0.05,
		},
		Code: map[CodeType]float64{
			CodeTypeLibrary:     0.1,
			CodeTypeApplication: 0.0,
			CodeTypeScript:      -0.1,
		},
		Default: 0.70,
	}
}

// Threshold returns the clamped threshold for the given context.
func (t Thresholds) Threshold(doc DocType, code CodeType, lang pattern.Language) float64 {
	base, ok := t.Base[doc]
	if !ok {
		base = t.Default
	}
	return clamp(base+t.Language[lang]+t.Code[code], minThreshold, maxThreshold)
}

// ClassifyDocType infers the documentation type from the file path. The
// public API flag decides between API and internal documentation when the
// path says nothing.
func ClassifyDocType(filePath string, isPublicAPI bool) DocType {
	p := strings.ToLower(filePath)
	switch {
	case strings.Contains(p, "/test/") || strings.Contains(p, `\test\`) ||
		strings.HasSuffix(p, "_test.rs") || strings.HasSuffix(p, "_test.py") || strings.HasSuffix(p, ".test.js"):
		return DocTypeTest
	case strings.Contains(p, "config") || strings.Contains(p, "settings"):
		return DocTypeConfiguration
	case strings.Contains(p, "example") || strings.Contains(p, "tutorial"):
		return DocTypeTutorial
	case isPublicAPI:
		return DocTypeAPI
	default:
		return DocTypeInternal
	}
}

// ClassifyCodeType infers the code type from the file path.
func ClassifyCodeType(filePath string) CodeType {
	p := strings.ToLower(filePath)
	switch {
	case strings.Contains(p, "lib"):
		return CodeTypeLibrary
	case strings.HasSuffix(p, ".py") && strings.Contains(p, "script"):
		return CodeTypeScript
	default:
		return CodeTypeApplication
	}
}
