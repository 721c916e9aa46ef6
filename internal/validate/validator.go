// Package validate checks chunking results for internal consistency and
// cross-checks documentation decisions against simpler detectors and the
// tree-sitter grammars.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/randalmurphy/doc-chunker/internal/chunk"
	"github.com/randalmurphy/doc-chunker/internal/parser"
	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

// Check names recorded in Report.Checks.
const (
	CheckStructure       = "structure_check"
	CheckConfidence      = "confidence_validation"
	CheckContent         = "content_consistency"
	CheckEdgeCases       = "edge_case_detection"
	CheckDocSize         = "doc_size"
	CheckCrossValidation = "cross_validation"
	CheckStructural      = "structural_check"
)

const (
	highConfidence          = 0.8
	lowConfidence           = 0.2
	falsePositiveConfidence = 0.7
	markerConfidence        = 0.6
	disagreementConfidence  = 0.7
	largeDocLines           = 50

	errorPenalty   = 0.3
	warningPenalty = 0.1
	checkBonus     = 0.05

	healthyFailureRate = 0.05
	healthyQuality     = 0.7
)

var falsePositiveWords = regexp.MustCompile(`(?i)\b(?:todo|fixme|hack|temp|debug)\b`)

// Report is the validation result for one logical unit.
type Report struct {
	Name      string         `json:"name"`
	Type      chunk.UnitType `json:"unit_type"`
	Line      int            `json:"line"`
	Passed    bool           `json:"passed"`
	Errors    []string       `json:"errors,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
	Checks    []string       `json:"checks_performed"`
	EdgeCases []EdgeCase     `json:"edge_cases,omitempty"`
	Quality   float64        `json:"quality_score"`
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// FileReport collects the unit reports of one file together with the
// findings that concern the file as a whole.
type FileReport struct {
	FilePath   string        `json:"file_path"`
	Language   string        `json:"language"`
	Chunks     int           `json:"chunks"`
	Units      []Report      `json:"units"`
	Errors     []string      `json:"errors,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
	Failures   int           `json:"failures"`
	AvgQuality float64       `json:"average_quality"`
	Duration   time.Duration `json:"duration"`
}

// Passed reports whether neither the file nor any unit had errors.
func (f *FileReport) Passed() bool {
	return f.Failures == 0
}

// Health is the aggregate of every unit validated so far.
type Health struct {
	Processed   int     `json:"total_processed"`
	Failures    int     `json:"validation_failures"`
	EdgeCases   int     `json:"edge_cases"`
	FailureRate float64 `json:"failure_rate"`
	AvgQuality  float64 `json:"average_quality"`
	Status      string  `json:"status"`
}

// Validator runs the checks. It is safe for concurrent use.
type Validator struct {
	engine *chunk.Engine
	edges  *EdgeCaseScanner
	logger *slog.Logger

	mu         sync.Mutex
	processed  int
	failures   int
	edgeCases  int
	qualitySum float64
}

// New creates a validator that extracts units with engine.
func New(engine *chunk.Engine, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		engine: engine,
		edges:  NewEdgeCaseScanner(),
		logger: logger,
	}
}

// ValidateFile chunks content and validates every unit and chunk. language
// may be empty to infer it from filePath.
func (v *Validator) ValidateFile(ctx context.Context, content, language, filePath string) (*FileReport, error) {
	if strings.TrimSpace(content) == "" {
		return nil, chunk.ErrEmptyContent
	}
	start := time.Now()
	lang, name := chunk.ResolveLanguage(language, filePath)

	report := &FileReport{FilePath: filePath, Language: name}

	chunks, units := v.engine.ParseUnits(content, language, filePath)
	report.Chunks = len(chunks)
	report.Errors = checkChunks(chunks, strings.Split(content, "\n"))

	var symbols map[int]parser.Symbol
	if parser.Supported(lang) {
		res, err := parseSymbols(ctx, lang, content)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			v.logger.Warn("structural parse failed", "file", filePath, "error", err)
		default:
			symbols = parser.DeclarationLines(res.Symbols)
			report.Warnings = append(report.Warnings, structuralFindings(res, units, lang)...)
		}
	}

	var qualitySum float64
	for _, u := range units {
		r := v.check(u, lang, symbols)
		v.record(r)
		qualitySum += r.Quality
		if !r.Passed {
			report.Failures++
		}
		report.Units = append(report.Units, r)
	}
	if len(report.Errors) > 0 {
		report.Failures++
	}

	avg := 1.0
	if len(units) > 0 {
		avg = qualitySum / float64(len(units))
	}
	avg -= errorPenalty*float64(len(report.Errors)) + warningPenalty*float64(len(report.Warnings))
	report.AvgQuality = clamp(avg)
	report.Duration = time.Since(start)

	v.logger.Debug("validated file",
		"file", filePath,
		"units", len(units),
		"failures", report.Failures,
		"quality", report.AvgQuality,
	)
	return report, nil
}

// ValidateUnit validates one unit without the structural cross-check.
func (v *Validator) ValidateUnit(u chunk.LogicalUnit, lang pattern.Language) Report {
	r := v.check(u, lang, nil)
	v.record(r)
	return r
}

// Health returns the aggregate statistics.
func (v *Validator) Health() Health {
	v.mu.Lock()
	defer v.mu.Unlock()

	h := Health{
		Processed: v.processed,
		Failures:  v.failures,
		EdgeCases: v.edgeCases,
		Status:    "idle",
	}
	if v.processed == 0 {
		return h
	}
	h.FailureRate = float64(v.failures) / float64(v.processed)
	h.AvgQuality = v.qualitySum / float64(v.processed)
	h.Status = "healthy"
	if h.FailureRate > healthyFailureRate || h.AvgQuality < healthyQuality {
		h.Status = "needs_review"
	}
	return h
}

func (v *Validator) record(r Report) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.processed++
	if !r.Passed {
		v.failures++
	}
	v.edgeCases += len(r.EdgeCases)
	v.qualitySum += r.Quality
}

// check runs every unit check. symbols is nil when no syntax tree exists.
func (v *Validator) check(u chunk.LogicalUnit, lang pattern.Language, symbols map[int]parser.Symbol) Report {
	r := Report{
		Name: u.Name,
		Type: u.Type,
		Line: u.DeclarationLine + 1,
	}

	checkStructure(u, &r)
	v.checkEdgeCases(u, &r)
	if u.Type != chunk.UnitParagraph {
		checkConfidence(u, &r)
		checkContent(u, lang, &r)
		checkDocSize(u, &r)
		checkCrossValidation(u, lang, &r)
		if symbols != nil {
			checkStructural(u, symbols, &r)
		}
	}

	r.Passed = len(r.Errors) == 0
	r.Quality = quality(r)
	return r
}

func checkStructure(u chunk.LogicalUnit, r *Report) {
	r.Checks = append(r.Checks, CheckStructure)

	if u.DocStart > u.DeclarationLine || u.DeclarationLine > u.CodeEnd {
		r.errorf("unit bounds out of order: doc %d, declaration %d, end %d",
			u.DocStart+1, u.DeclarationLine+1, u.CodeEnd+1)
	}
	if u.Confidence < 0 || u.Confidence > 1 {
		r.errorf("confidence out of bounds: %.3f", u.Confidence)
	}
	if u.Type == chunk.UnitParagraph {
		return
	}
	if u.Detection == nil {
		r.errorf("missing detection result")
		return
	}
	if u.Detection.HasDocumentation != u.HasDocumentation {
		r.errorf("unit and detection disagree on documentation")
	}
}

func checkConfidence(u chunk.LogicalUnit, r *Report) {
	r.Checks = append(r.Checks, CheckConfidence)

	switch {
	case u.Confidence > highConfidence && !u.HasDocumentation:
		r.warnf("high confidence but no documentation detected")
	case u.Confidence < lowConfidence && u.HasDocumentation:
		r.warnf("low confidence but documentation detected")
	}

	if u.Detection == nil || u.Detection.Analysis == nil {
		return
	}
	a := u.Detection.Analysis
	scores := []struct {
		name  string
		score float64
	}{
		{"pattern", a.Pattern.Score},
		{"semantic", a.Semantic.Score},
		{"context", a.Context.Score},
		{"quality", a.Quality.Score},
		{"meta", a.Meta.Score},
		{"final", a.Final},
		{"threshold", a.Threshold},
	}
	for _, s := range scores {
		if s.score < 0 || s.score > 1 {
			r.errorf("%s score out of bounds: %.3f", s.name, s.score)
		}
	}
}

func checkContent(u chunk.LogicalUnit, lang pattern.Language, r *Report) {
	r.Checks = append(r.Checks, CheckContent)
	if u.Detection == nil {
		return
	}

	docLines := u.Detection.DocLines
	switch {
	case u.HasDocumentation && len(docLines) == 0:
		r.errorf("documentation detected but no doc lines provided")
	case !u.HasDocumentation && len(docLines) > 0:
		r.warnf("no documentation detected but doc lines provided")
	}
	if len(docLines) == 0 {
		return
	}

	doc := strings.Join(docLines, "\n")
	switch lang {
	case pattern.Rust:
		if !strings.Contains(doc, "///") && !strings.Contains(doc, "//!") && !strings.Contains(doc, "/**") {
			r.warnf("rust doc lines missing /// or //! markers")
		}
	case pattern.Python:
		if !strings.Contains(doc, `"""`) && !strings.Contains(doc, `'''`) {
			r.warnf("python doc lines missing docstring quotes")
		}
	}

	if u.HasDocumentation && u.Confidence > falsePositiveConfidence && falsePositiveWords.MatchString(doc) {
		r.warnf("high confidence on likely false positive (TODO/FIXME/etc)")
	}
}

func (v *Validator) checkEdgeCases(u chunk.LogicalUnit, r *Report) {
	r.Checks = append(r.Checks, CheckEdgeCases)

	r.EdgeCases = v.edges.Scan(u.RawLines, u.Start())
	if u.HasDocumentation && u.Confidence > markerConfidence && v.edges.HasMarker(r.EdgeCases) {
		r.warnf("high confidence detection on TODO/FIXME comment")
	}
}

func checkDocSize(u chunk.LogicalUnit, r *Report) {
	r.Checks = append(r.Checks, CheckDocSize)
	if u.Detection != nil && len(u.Detection.DocLines) > largeDocLines {
		r.warnf("very large documentation block (%d lines)", len(u.Detection.DocLines))
	}
}

// checkCrossValidation compares the detector with a plain marker count and
// flags confident disagreements.
func checkCrossValidation(u chunk.LogicalUnit, lang pattern.Language, r *Report) {
	r.Checks = append(r.Checks, CheckCrossValidation)

	simple := false
	for _, line := range u.RawLines {
		if simpleDocLine(strings.TrimSpace(line), lang) {
			simple = true
			break
		}
	}
	if simple != u.HasDocumentation && u.Confidence > disagreementConfidence {
		r.warnf("cross-validation disagreement: simple=%t, detector=%t", simple, u.HasDocumentation)
	}
}

func simpleDocLine(trimmed string, lang pattern.Language) bool {
	switch lang {
	case pattern.Rust:
		return strings.HasPrefix(trimmed, "///") || strings.HasPrefix(trimmed, "//!")
	case pattern.Python:
		return strings.Contains(trimmed, `"""`) || strings.Contains(trimmed, `'''`)
	case pattern.JavaScript, pattern.TypeScript:
		return strings.HasPrefix(trimmed, "/**")
	default:
		return false
	}
}

func checkStructural(u chunk.LogicalUnit, symbols map[int]parser.Symbol, r *Report) {
	r.Checks = append(r.Checks, CheckStructural)

	sym, ok := symbols[u.DeclarationLine+1]
	if !ok {
		r.warnf("no declaration at line %d in the syntax tree", u.DeclarationLine+1)
		return
	}
	if sym.HasDoc && !u.HasDocumentation {
		r.warnf("syntax tree shows documentation on %s %s that the detector rejected", sym.Kind, sym.Name)
	}
}

func quality(r Report) float64 {
	q := 1.0 -
		errorPenalty*float64(len(r.Errors)) -
		warningPenalty*float64(len(r.Warnings)) +
		checkBonus*float64(len(r.Checks))
	return clamp(q)
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
