package validate

import (
	"regexp"
	"strings"
)

// EdgeCase is a line matching a known troublesome comment pattern.
type EdgeCase struct {
	Type string `json:"type"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

type edgePattern struct {
	name  string
	regex *regexp.Regexp
	// marker patterns lower the expected confidence of an attached doc.
	marker bool
}

// EdgeCaseScanner finds marker comments and tool directives that look like
// documentation but are not.
type EdgeCaseScanner struct {
	patterns []edgePattern
}

// NewEdgeCaseScanner creates a scanner with the default patterns.
func NewEdgeCaseScanner() *EdgeCaseScanner {
	return &EdgeCaseScanner{
		patterns: []edgePattern{
			{name: "todo", regex: regexp.MustCompile(`(?i)^\s*(?://+|#|\*)\s*TODO\b`), marker: true},
			{name: "fixme", regex: regexp.MustCompile(`(?i)^\s*(?://+|#|\*)\s*FIXME\b`), marker: true},
			{name: "hack", regex: regexp.MustCompile(`(?i)^\s*(?://+|#|\*)\s*HACK\b`), marker: true},
			{name: "debug", regex: regexp.MustCompile(`(?i)^\s*(?://+|#)\s*DEBUG\b`)},
			{name: "lint_directive", regex: regexp.MustCompile(`(?i)^\s*#\s*(?:pylint|noqa|type:\s*ignore)`)},
			{name: "ts_ignore", regex: regexp.MustCompile(`(?i)^\s*//\s*@ts-(?:ignore|expect-error|nocheck)`)},
			{name: "eslint_directive", regex: regexp.MustCompile(`^\s*(?://|/\*)\s*eslint-disable`)},
		},
	}
}

// Scan returns every edge case in lines. Line numbers are offset+index+1.
func (s *EdgeCaseScanner) Scan(lines []string, offset int) []EdgeCase {
	var found []EdgeCase
	for i, line := range lines {
		for _, p := range s.patterns {
			if p.regex.MatchString(line) {
				found = append(found, EdgeCase{
					Type: p.name,
					Line: offset + i + 1,
					Text: strings.TrimSpace(line),
				})
				break
			}
		}
	}
	return found
}

// HasMarker reports whether any of cases is a TODO, FIXME or HACK marker.
func (s *EdgeCaseScanner) HasMarker(cases []EdgeCase) bool {
	for _, c := range cases {
		for _, p := range s.patterns {
			if p.marker && p.name == c.Type {
				return true
			}
		}
	}
	return false
}
