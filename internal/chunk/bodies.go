package chunk

import (
	"strings"
	"unicode/utf8"

	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

// bodyEnd returns the inclusive last line of the declaration at decl. Scans
// stop after scanCap lines; an unterminated body closes at the cap.
func bodyEnd(lines []string, decl int, lang pattern.Language, scanCap int) int {
	if scanCap <= 0 {
		scanCap = 500
	}
	if lang.BraceDelimited() {
		return braceEnd(lines, decl, lang, scanCap)
	}
	return indentEnd(lines, decl, scanCap)
}

// braceEnd follows the signature until a brace opens, then counts braces
// until the balance returns to zero. A signature that closes without an
// opening brace is bodyless.
func braceEnd(lines []string, decl int, lang pattern.Language, scanCap int) int {
	limit := min(len(lines), decl+scanCap)
	parens, braces := 0, 0
	opened := false

	for i := decl; i < limit; i++ {
		p, b, o := braceDelta(lines[i], lang)
		parens += p
		braces += b
		opened = opened || o

		if opened {
			if braces <= 0 {
				return i
			}
			continue
		}
		if parens > 0 {
			continue
		}
		if !signatureContinues(lines, i) {
			return i
		}
	}

	if !opened {
		return decl
	}
	return limit - 1
}

// signatureContinues reports whether a balanced signature line is followed
// by more signature, as with where clauses or a brace on its own line.
func signatureContinues(lines []string, i int) bool {
	trimmed := strings.TrimSpace(stripLineComment(lines[i]))
	if strings.HasSuffix(trimmed, ";") || i+1 >= len(lines) {
		return false
	}
	if strings.HasSuffix(trimmed, ",") || strings.HasSuffix(trimmed, "where") ||
		strings.HasSuffix(trimmed, "+") || strings.HasSuffix(trimmed, "->") {
		return true
	}
	next := strings.TrimSpace(lines[i+1])
	return strings.HasPrefix(next, "{") || strings.HasPrefix(next, "where") || strings.HasPrefix(next, "->")
}

// braceDelta counts parentheses and braces on one line, skipping string
// literals and line comments.
func braceDelta(line string, lang pattern.Language) (parens, braces int, opened bool) {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '`':
			quote = c
		case '\'':
			if lang != pattern.Rust {
				quote = c
			} else if end := rustCharEnd(line, i); end > 0 {
				i = end
			}
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return parens, braces, opened
			}
		case '(':
			parens++
		case ')':
			parens--
		case '{':
			braces++
			opened = true
		case '}':
			braces--
		}
	}
	return parens, braces, opened
}

// rustCharEnd returns the index of the quote closing a char literal that
// opens at i, or -1 when the quote starts a lifetime.
func rustCharEnd(line string, i int) int {
	rest := line[i+1:]
	if rest == "" {
		return -1
	}
	if rest[0] == '\\' {
		if len(rest) < 3 {
			return -1
		}
		// '\n', '\'', '\x7f', '\u{10ffff}'
		j := strings.IndexByte(rest[2:], '\'')
		if j < 0 || j > 8 {
			return -1
		}
		return i + 3 + j
	}
	_, size := utf8.DecodeRuneInString(rest)
	if len(rest) > size && rest[size] == '\'' {
		return i + 1 + size
	}
	return -1
}

func stripLineComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}

// indentEnd returns the last line indented deeper than the declaration.
// Lines inside triple-quoted strings belong to the body whatever their
// indentation.
func indentEnd(lines []string, decl, scanCap int) int {
	header := headerEnd(lines, decl)
	if !strings.HasSuffix(strings.TrimSpace(stripHashComment(lines[header])), ":") {
		return header
	}

	limit := min(len(lines), decl+scanCap)
	declIndent := indentOf(lines[decl])
	end := header
	inString := ""

	for i := header + 1; i < limit; i++ {
		line := lines[i]
		if inString != "" {
			end = i
			if strings.Count(line, inString)%2 == 1 {
				inString = ""
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || (strings.HasPrefix(trimmed, "#") && indentOf(line) <= declIndent) {
			continue
		}
		if indentOf(line) <= declIndent {
			break
		}
		end = i
		for _, q := range []string{`"""`, `'''`} {
			if strings.Count(line, q)%2 == 1 {
				inString = q
				break
			}
		}
	}
	return end
}

// headerEnd follows open brackets across lines to the end of a Python
// declaration header.
func headerEnd(lines []string, decl int) int {
	depth := 0
	for i := decl; i < len(lines) && i < decl+maxHeaderLines; i++ {
		for _, r := range stripHashComment(lines[i]) {
			switch r {
			case '(', '[':
				depth++
			case ')', ']':
				depth--
			}
		}
		if depth <= 0 {
			return i
		}
	}
	return decl
}

const maxHeaderLines = 10

func stripHashComment(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		return line[:i]
	}
	return line
}

func indentOf(line string) int {
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
