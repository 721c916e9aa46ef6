// Package detect decides whether a declaration has documentation attached.
//
// Detection runs four passes in order. Pass 1 finds candidate lines with a
// small state machine, Pass 2 analyzes their wording, Pass 3 scores their
// placement, and Pass 4 combines everything through confidence.Scorer. When
// the scorer fails the legacy fixed-weight formula decides instead.
package detect

import (
	"log/slog"
	"strings"

	"github.com/randalmurphy/doc-chunker/internal/confidence"
	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

// Method names the pass 4 strategy that produced a result.
type Method string

const (
	MethodNone    Method = "none"
	MethodScorer  Method = "confidence_scoring"
	MethodLegacy  Method = "legacy"
	MethodRescued Method = "block_comment"
)

const (
	maxSignatureLines = 10
	codeContextLines  = 5
	rescueConfidence  = 0.8
)

var publicIndicators = []string{"pub ", "public ", "export ", "api", "interface"}

// Options bounds the Pass 1 scans.
type Options struct {
	BackwardScanCap int
	ForwardScanCap  int
}

// DefaultOptions returns the standard scan caps.
func DefaultOptions() Options {
	return Options{BackwardScanCap: 200, ForwardScanCap: 500}
}

// PatternPass is the Pass 1 record.
type PatternPass struct {
	Found     bool   `json:"found"`
	LineCount int    `json:"pattern_count"`
	DocStart  int    `json:"doc_start_idx"`
	Direction string `json:"direction,omitempty"`
}

// ValidationPass is the Pass 4 record.
type ValidationPass struct {
	Method     Method  `json:"method"`
	Confidence float64 `json:"confidence"`
	Threshold  float64 `json:"threshold"`
	Error      string  `json:"error,omitempty"`
}

// Passes holds the diagnostic record of every pass.
type Passes struct {
	Pattern    PatternPass    `json:"pattern"`
	Semantic   SemanticPass   `json:"semantic"`
	Context    ContextPass    `json:"context"`
	Validation ValidationPass `json:"validation"`
}

// Result is the outcome of one detection run. DocStart and DocEnd are 0-based
// and inclusive; both equal the declaration when nothing was accepted.
type Result struct {
	HasDocumentation bool                 `json:"has_documentation"`
	Confidence       float64              `json:"confidence"`
	DocLines         []string             `json:"doc_lines,omitempty"`
	DocStart         int                  `json:"doc_start_idx"`
	DocEnd           int                  `json:"doc_end_idx"`
	Passes           Passes               `json:"pass_results"`
	Analysis         *confidence.Analysis `json:"analysis,omitempty"`
}

// Target is the declaration being examined.
type Target struct {
	Declaration int
	Kind        pattern.Kind
	FilePath    string
}

// Detector runs the four passes. It holds no mutable state and is safe for
// concurrent use.
type Detector struct {
	scorer *confidence.Scorer
	opts   Options
	logger *slog.Logger
}

// New creates a detector. A nil scorer uses confidence.NewScorer defaults.
func New(scorer *confidence.Scorer, opts Options, logger *slog.Logger) *Detector {
	if scorer == nil {
		scorer = confidence.NewScorer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultOptions()
	if opts.BackwardScanCap <= 0 {
		opts.BackwardScanCap = def.BackwardScanCap
	}
	if opts.ForwardScanCap <= 0 {
		opts.ForwardScanCap = def.ForwardScanCap
	}
	return &Detector{scorer: scorer, opts: opts, logger: logger}
}

// Detect runs all passes for the declaration at t.Declaration.
func (d *Detector) Detect(lines []string, set *pattern.Set, t Target) Result {
	decl := t.Declaration
	none := Result{DocStart: decl, DocEnd: decl}
	none.Passes.Validation.Method = MethodNone
	if set == nil || decl < 0 || decl >= len(lines) {
		return none
	}
	lang := set.Language

	// Pass 1
	found, direction := d.scan(lang, lines, decl)
	none.Passes.Pattern = PatternPass{Found: found.found, DocStart: decl, Direction: direction}
	if !found.found {
		return d.rescue(lines, lang, decl, none)
	}
	docLines := found.lines(lines)
	none.Passes.Pattern.LineCount = len(docLines)
	none.Passes.Pattern.DocStart = found.start()

	codeContent := codeWindow(lines, decl)

	// Pass 2 and 3
	sem := semanticPass(docLines, codeContent)
	ctx := contextPass(lines, set, found, decl)

	res := Result{
		DocLines: docLines,
		DocStart: found.start(),
		DocEnd:   found.end(),
		Passes: Passes{
			Pattern:  none.Passes.Pattern,
			Semantic: sem,
			Context:  ctx,
		},
	}

	// Pass 4
	in := confidence.Input{
		Language:        lang,
		Kind:            t.Kind,
		FilePath:        t.FilePath,
		DocLines:        docLines,
		DocStart:        found.start(),
		DocEnd:          found.end(),
		DeclarationLine: decl,
		Signature:       signature(lines, decl),
		CodeContent:     codeContent,
		IsPublicAPI:     isPublicAPI(codeContent),
		NoiseLines:      ctx.NoiseLines,
	}
	analysis, err := d.scorer.Score(in)
	if err != nil {
		d.logger.Debug("confidence scorer failed, using legacy formula",
			"file", t.FilePath, "line", decl+1, "error", err)
		conf, threshold := legacyScore(docLines, sem, ctx)
		res.Confidence = conf
		res.HasDocumentation = conf >= threshold
		res.Passes.Validation = ValidationPass{
			Method:     MethodLegacy,
			Confidence: conf,
			Threshold:  threshold,
			Error:      err.Error(),
		}
	} else {
		res.Analysis = &analysis
		res.Confidence = analysis.Final
		res.HasDocumentation = analysis.HasDocumentation()
		res.Passes.Validation = ValidationPass{
			Method:     MethodScorer,
			Confidence: analysis.Final,
			Threshold:  analysis.Threshold,
		}
	}

	if !res.HasDocumentation {
		rejected := none
		rejected.Confidence = res.Confidence
		rejected.Analysis = res.Analysis
		rejected.Passes = res.Passes
		return d.rescue(lines, lang, decl, rejected)
	}
	return res
}

func (d *Detector) scan(lang pattern.Language, lines []string, decl int) (scanResult, string) {
	if lang == pattern.Python {
		if r := scanPythonForward(lines, decl, d.opts.ForwardScanCap); r.found {
			return r, "forward"
		}
		return scanPythonBackward(lines, decl, d.opts.BackwardScanCap), "backward"
	}
	return scanBackward(lang, lines, decl, d.opts.BackwardScanCap), "backward"
}

// rescue applies the Rust block comment detector to an undocumented result.
func (d *Detector) rescue(lines []string, lang pattern.Language, decl int, res Result) Result {
	if lang != pattern.Rust {
		return res
	}
	block := rescueRustBlock(lines, decl)
	if !block.found {
		return res
	}
	res.HasDocumentation = true
	res.Confidence = rescueConfidence
	res.DocLines = block.lines(lines)
	res.DocStart = block.start()
	res.DocEnd = block.end()
	res.Passes.Validation.Method = MethodRescued
	res.Passes.Validation.Confidence = rescueConfidence
	return res
}

// codeWindow returns up to codeContextLines lines on each side of decl,
// the declaration included.
func codeWindow(lines []string, decl int) string {
	from := max(0, decl-codeContextLines)
	to := min(len(lines), decl+codeContextLines)
	return strings.Join(lines[from:to], "\n")
}

func isPublicAPI(code string) bool {
	lower := strings.ToLower(code)
	for _, ind := range publicIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// signature joins the declaration with continuation lines until its
// parameter list closes.
func signature(lines []string, decl int) string {
	var b strings.Builder
	depth := 0
	for i := decl; i < len(lines) && i < decl+maxSignatureLines; i++ {
		if i > decl {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(lines[i]))
		depth += strings.Count(lines[i], "(") - strings.Count(lines[i], ")")
		if depth <= 0 {
			break
		}
	}
	return b.String()
}
