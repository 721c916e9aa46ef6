package detect

import (
	"strings"

	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

// scanState is the Pass 1 state. InBlock carries the delimiter that closes
// the current block in scanner.quote.
type scanState int

const (
	stateScanning scanState = iota
	stateInBlock
	stateDone
)

func (s scanState) String() string {
	switch s {
	case stateScanning:
		return "scanning"
	case stateInBlock:
		return "in_block"
	default:
		return "done"
	}
}

// scanResult is the Pass 1 output. Indexes are ascending.
type scanResult struct {
	found   bool
	indexes []int
}

func (r scanResult) start() int { return r.indexes[0] }
func (r scanResult) end() int   { return r.indexes[len(r.indexes)-1] }

func (r scanResult) lines(src []string) []string {
	out := make([]string, len(r.indexes))
	for i, idx := range r.indexes {
		out[i] = src[idx]
	}
	return out
}

// scanner walks lines one at a time and collects documentation line
// indexes. Backward scans collect in reverse and are flipped by result.
type scanner struct {
	state     scanState
	quote     string
	collected []int
	block     []int
	backward  bool
}

func (s *scanner) result() scanResult {
	if len(s.collected) == 0 {
		return scanResult{}
	}
	idx := append([]int(nil), s.collected...)
	if s.backward {
		for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}
	return scanResult{found: true, indexes: idx}
}

// scanBackward collects Rust line docs and /** */ blocks above decl for the
// brace languages.
func scanBackward(lang pattern.Language, lines []string, decl, limit int) scanResult {
	s := &scanner{backward: true}
	stop := decl - limit
	if stop < 0 {
		stop = 0
	}

	for i := decl - 1; i >= stop && s.state != stateDone; i-- {
		trimmed := strings.TrimSpace(lines[i])

		switch s.state {
		case stateScanning:
			switch {
			case trimmed == "":
			case len(s.collected) == 0 && isAttribute(lang, trimmed):
			case lang == pattern.Rust && isRustLineDoc(trimmed):
				s.collected = append(s.collected, i)
			case strings.HasSuffix(trimmed, "*/"):
				if strings.HasPrefix(trimmed, "/*") {
					if isDocBlockOpen(trimmed) {
						s.collected = append(s.collected, i)
					} else {
						s.state = stateDone
					}
					continue
				}
				if !strings.HasPrefix(trimmed, "*") {
					// Trailing comment after code.
					s.state = stateDone
					continue
				}
				s.block = []int{i}
				s.quote = "/*"
				s.state = stateInBlock
			default:
				s.state = stateDone
			}

		case stateInBlock:
			switch {
			case strings.HasPrefix(trimmed, s.quote):
				if isDocBlockOpen(trimmed) {
					s.collected = append(s.collected, append(s.block, i)...)
					s.state = stateScanning
				} else {
					s.state = stateDone
				}
				s.block = nil
			case trimmed == "" || strings.HasPrefix(trimmed, "*"):
				s.block = append(s.block, i)
			default:
				// Block interiors are star-prefixed; anything else means the
				// closer belonged to code.
				s.block = nil
				s.state = stateDone
			}
		}
	}

	return s.result()
}

func isRustLineDoc(trimmed string) bool {
	return strings.HasPrefix(trimmed, "///") || strings.HasPrefix(trimmed, "//!")
}

// isDocBlockOpen reports whether a block comment opener is a doc block.
// "/**/" is an empty plain comment.
func isDocBlockOpen(trimmed string) bool {
	return strings.HasPrefix(trimmed, "/**") && !strings.HasPrefix(trimmed, "/**/")
}

// isAttribute matches lines that sit between a doc block and the item it
// documents: Rust attributes and TypeScript/JavaScript decorators.
func isAttribute(lang pattern.Language, trimmed string) bool {
	switch lang {
	case pattern.Rust:
		return strings.HasPrefix(trimmed, "#[") || strings.HasPrefix(trimmed, "#![")
	case pattern.JavaScript, pattern.TypeScript:
		return strings.HasPrefix(trimmed, "@")
	default:
		return false
	}
}

// openingQuote returns the triple quote a line starts with, allowing a one
// letter string prefix.
func openingQuote(trimmed string) (string, int, bool) {
	offset := 0
	if len(trimmed) > 0 && strings.ContainsRune("rRuU", rune(trimmed[0])) {
		offset = 1
	}
	rest := trimmed[offset:]
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(rest, q) {
			return q, offset + len(q), true
		}
	}
	return "", 0, false
}

func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}

// pythonHeaderEnd returns the line closing the declaration header, following
// open brackets across lines.
func pythonHeaderEnd(lines []string, decl int) int {
	depth := 0
	for i := decl; i < len(lines) && i <= decl+maxSignatureLines; i++ {
		depth += bracketDelta(lines[i])
		if depth <= 0 {
			return i
		}
	}
	return decl
}

func bracketDelta(line string) int {
	d := 0
	for _, r := range line {
		switch r {
		case '(', '[':
			d++
		case ')', ']':
			d--
		case '#':
			return d
		}
	}
	return d
}

// scanPythonForward collects the docstring that opens the body of the
// declaration.
func scanPythonForward(lines []string, decl, limit int) scanResult {
	s := &scanner{}
	header := pythonHeaderEnd(lines, decl)
	declIndent := indentWidth(lines[decl])
	stop := header + 1 + limit
	if stop > len(lines) {
		stop = len(lines)
	}

	for i := header + 1; i < stop && s.state != stateDone; i++ {
		trimmed := strings.TrimSpace(lines[i])

		switch s.state {
		case stateScanning:
			if trimmed == "" {
				continue
			}
			q, n, ok := openingQuote(trimmed)
			if !ok || indentWidth(lines[i]) <= declIndent {
				s.state = stateDone
				continue
			}
			s.collected = append(s.collected, i)
			if strings.Contains(trimmed[n:], q) {
				return s.result()
			}
			s.quote = q
			s.state = stateInBlock

		case stateInBlock:
			s.collected = append(s.collected, i)
			if strings.Contains(trimmed, s.quote) {
				return s.result()
			}
		}
	}

	// Unterminated docstrings are not documentation.
	return scanResult{}
}

// scanPythonBackward looks above decl for a module-level docstring no deeper
// than the declaration itself.
func scanPythonBackward(lines []string, decl, limit int) scanResult {
	s := &scanner{backward: true}
	declIndent := indentWidth(lines[decl])
	stop := decl - limit
	if stop < 0 {
		stop = 0
	}

	for i := decl - 1; i >= stop && s.state != stateDone; i-- {
		trimmed := strings.TrimSpace(lines[i])

		switch s.state {
		case stateScanning:
			if trimmed == "" || strings.HasPrefix(trimmed, "@") {
				continue
			}
			if indentWidth(lines[i]) > declIndent {
				s.state = stateDone
				continue
			}
			q := closingQuote(trimmed)
			if q == "" {
				s.state = stateDone
				continue
			}
			if oq, n, ok := openingQuote(trimmed); ok && oq == q && len(trimmed) >= n+len(q) {
				s.collected = append(s.collected, i)
				return s.result()
			}
			s.collected = append(s.collected, i)
			s.quote = q
			s.state = stateInBlock

		case stateInBlock:
			s.collected = append(s.collected, i)
			if oq, _, ok := openingQuote(trimmed); ok && oq == s.quote {
				return s.result()
			}
			if strings.Contains(trimmed, s.quote) {
				// The quote closes a string that is not a docstring.
				return scanResult{}
			}
		}
	}

	return scanResult{}
}

func closingQuote(trimmed string) string {
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasSuffix(trimmed, q) {
			return q
		}
	}
	return ""
}

const (
	rescueBlockEndWindow   = 10
	rescueBlockStartWindow = 20
	rescueMaxGap           = 2
)

// rescueRustBlock finds a /** */ block ending just above decl. It is the
// secondary detector for Rust units the scorer rejected.
func rescueRustBlock(lines []string, decl int) scanResult {
	end := -1
	for i := decl - 1; i >= 0 && i >= decl-rescueBlockEndWindow; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasSuffix(trimmed, "*/") {
			end = i
			break
		}
		if trimmed != "" && !isAttribute(pattern.Rust, trimmed) {
			return scanResult{}
		}
	}
	if end < 0 || decl-end > rescueMaxGap {
		return scanResult{}
	}

	for i := end; i >= 0 && i >= end-rescueBlockStartWindow; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "/*") && !strings.HasPrefix(trimmed, "*") && trimmed != "" {
			return scanResult{}
		}
		if strings.HasPrefix(trimmed, "/*") {
			if !isDocBlockOpen(trimmed) {
				return scanResult{}
			}
			idx := make([]int, 0, end-i+1)
			for j := i; j <= end; j++ {
				idx = append(idx, j)
			}
			return scanResult{found: true, indexes: idx}
		}
	}
	return scanResult{}
}
