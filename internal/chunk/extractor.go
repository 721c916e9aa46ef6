package chunk

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphy/doc-chunker/internal/detect"
	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

// UnitType is the kind of a logical unit.
type UnitType string

const (
	UnitFunction  UnitType = "function"
	UnitStruct    UnitType = "struct"
	UnitEnum      UnitType = "enum"
	UnitImpl      UnitType = "impl"
	UnitTrait     UnitType = "trait"
	UnitClass     UnitType = "class"
	UnitParagraph UnitType = "paragraph"
)

// LogicalUnit is one declared code entity. Line indexes are 0-based and
// DocStart <= DeclarationLine <= CodeEnd always holds.
type LogicalUnit struct {
	Type             UnitType `json:"unit_type"`
	Name             string   `json:"name"`
	DeclarationLine  int      `json:"declaration_line_index"`
	CodeEnd          int      `json:"code_end_line_index"`
	DocStart         int      `json:"doc_start_line_index"`
	HasDocumentation bool     `json:"has_documentation"`
	Confidence       float64  `json:"confidence"`
	RawLines         []string `json:"raw_lines"`

	Detection *detect.Result `json:"-"`
}

// Start is the first line of the unit, documentation included.
func (u LogicalUnit) Start() int { return u.DocStart }

// End is the last line of the unit body.
func (u LogicalUnit) End() int { return u.CodeEnd }

// Extractor finds logical units in source lines.
type Extractor struct {
	detector          *detect.Detector
	braceScanCap      int
	paragraphMinLines int
	logger            *slog.Logger
}

// NewExtractor creates an extractor. braceScanCap bounds body scans and
// paragraphMinLines is the non-blank line count that closes a paragraph.
func NewExtractor(detector *detect.Detector, braceScanCap, paragraphMinLines int, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if detector == nil {
		detector = detect.New(nil, detect.DefaultOptions(), logger)
	}
	return &Extractor{
		detector:          detector,
		braceScanCap:      braceScanCap,
		paragraphMinLines: paragraphMinLines,
		logger:            logger,
	}
}

// FindUnits returns every logical unit in lines ordered by declaration line.
// Languages without a pattern set fall back to paragraph units.
func (e *Extractor) FindUnits(lines []string, lang pattern.Language, filePath string) []LogicalUnit {
	set, ok := pattern.Lookup(lang)
	if !ok {
		return paragraphUnits(lines, e.paragraphMinLines)
	}

	var units []LogicalUnit
	for i, line := range lines {
		kind, name, ok := set.MatchDeclaration(line)
		if !ok {
			continue
		}

		end := bodyEnd(lines, i, lang, e.braceScanCap)
		det := e.detector.Detect(lines, set, detect.Target{Declaration: i, Kind: kind, FilePath: filePath})

		docStart := i
		if det.HasDocumentation && det.DocStart < i {
			docStart = det.DocStart
		}
		if det.HasDocumentation && det.DocEnd > end {
			end = det.DocEnd
		}
		if name == "" {
			name = fmt.Sprintf("%s_%d", kind, i+1)
		}

		units = append(units, LogicalUnit{
			Type:             UnitType(kind),
			Name:             name,
			DeclarationLine:  i,
			CodeEnd:          end,
			DocStart:         docStart,
			HasDocumentation: det.HasDocumentation,
			Confidence:       det.Confidence,
			RawLines:         lines[docStart : end+1],
			Detection:        &det,
		})
	}

	e.logger.Debug("found logical units", "file", filePath, "language", lang.String(), "units", len(units))
	return units
}

// paragraphUnits splits text on blank lines. A paragraph closes at a blank
// line once it holds minLines non-blank lines; shorter runs keep growing.
func paragraphUnits(lines []string, minLines int) []LogicalUnit {
	var units []LogicalUnit
	start, last, nonBlank := -1, -1, 0

	emit := func() {
		units = append(units, LogicalUnit{
			Type:            UnitParagraph,
			Name:            fmt.Sprintf("paragraph_%d", len(units)+1),
			DeclarationLine: start,
			CodeEnd:         last,
			DocStart:        start,
			RawLines:        lines[start : last+1],
		})
		start, last, nonBlank = -1, -1, 0
	}

	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			if start < 0 {
				start = i
			}
			last = i
			nonBlank++
			continue
		}
		if start >= 0 && nonBlank >= minLines {
			emit()
		}
	}
	if start >= 0 {
		emit()
	}
	return units
}
