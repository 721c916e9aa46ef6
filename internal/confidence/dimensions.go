package confidence

import (
	"math"
	"regexp"
	"strings"

	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

var (
	wordRe   = regexp.MustCompile(`\w+`)
	markerRe = regexp.MustCompile(`^\s*(?:///|//!|/\*\*|/\*|\*/|\*|#|[rRuU]?"""|[rRuU]?''')?\s*`)
	closeRe  = regexp.MustCompile(`\s*(?:\*/|"""|''')\s*$`)
)

// Words lowercases text and splits it into \w+ runs.
func Words(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// StripMarkers removes comment and docstring delimiters from each line and
// drops lines that are empty afterwards only when dropEmpty is set.
func StripMarkers(lines []string, dropEmpty bool) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned := markerRe.ReplaceAllString(line, "")
		cleaned = strings.TrimSpace(closeRe.ReplaceAllString(cleaned, ""))
		if cleaned == "" && dropEmpty {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

type markerStrength struct {
	prefix   string
	strength float64
}

var markerStrengths = map[pattern.Language][]markerStrength{
	pattern.Rust: {
		{"///", 1.0},
		{"//!", 0.95},
		{"/**", 0.85},
		{"//", 0.1},
	},
	pattern.Python: {
		{`"""`, 1.0},
		{`'''`, 1.0},
		{"#", 0.1},
	},
	pattern.JavaScript: {
		{"/**", 1.0},
		{"//", 0.1},
	},
	pattern.TypeScript: {
		{"/**", 1.0},
		{"//", 0.1},
	},
}

// lineMarker returns the strongest marker the trimmed line starts with.
func lineMarker(lang pattern.Language, line string) (markerStrength, bool) {
	trimmed := strings.TrimSpace(line)
	if lang == pattern.Python {
		trimmed = strings.TrimLeft(trimmed, "rRuU")
	}
	for _, m := range markerStrengths[lang] {
		if strings.HasPrefix(trimmed, m.prefix) {
			return m, true
		}
	}
	return markerStrength{}, false
}

// markersMixed reports whether the block uses more than one marker type.
func markersMixed(lang pattern.Language, lines []string) bool {
	first := ""
	for _, line := range lines {
		m, ok := lineMarker(lang, line)
		if !ok {
			continue
		}
		if first == "" {
			first = m.prefix
		} else if m.prefix != first {
			return true
		}
	}
	return false
}

func patternDimension(in Input) Dimension {
	var sum float64
	var n int
	for _, line := range in.DocLines {
		if m, ok := lineMarker(in.Language, line); ok {
			sum += m.strength
			n++
		}
	}
	if n == 0 {
		return Dimension{Score: 0, Detail: map[string]float64{"matched_lines": 0}}
	}

	avg := sum / float64(n)
	bonus := 0.1
	if markersMixed(in.Language, in.DocLines) {
		bonus = -0.05
	}

	return Dimension{
		Score: clamp01(avg + bonus),
		Detail: map[string]float64{
			"average_strength":  avg,
			"consistency_bonus": bonus,
			"matched_lines":     float64(n),
		},
	}
}

var (
	semanticStopwords = newWordSet("the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "this", "that", "it", "is", "are", "was", "were")

	documentationWords = newWordSet("returns", "parameters", "arguments", "description", "example",
		"usage", "implementation", "algorithm", "complexity", "behavior",
		"calculates", "computes", "processes", "generates", "creates",
		"performs", "executes", "handles", "manages", "controls")

	technicalTerms = newWordSet("function", "method", "class", "struct", "enum", "trait", "interface",
		"async", "await", "exception", "error", "validation", "optimization",
		"neural", "spike", "cortical", "encoding", "timing", "threshold",
		"voltage", "membrane", "activation", "network", "column", "ttfs",
		"temporal", "processing", "algorithm", "dynamics")

	qualityMarkers = newWordSet("thread", "safe", "immutable", "deprecated", "since", "version",
		"precondition", "postcondition", "invariant", "panics", "errors", "safety")

	structureIndicators = []*regexp.Regexp{
		regexp.MustCompile(`@param`),
		regexp.MustCompile(`@return`),
		regexp.MustCompile(`@throws`),
		regexp.MustCompile(`@example`),
		regexp.MustCompile(`Args:`),
		regexp.MustCompile(`Returns:`),
		regexp.MustCompile(`Raises:`),
		regexp.MustCompile(`Example:`),
		regexp.MustCompile(`# \w+`),
		regexp.MustCompile(`## \w+`),
		regexp.MustCompile(`### \w+`),
		regexp.MustCompile("```"),
		regexp.MustCompile("`\\w+`"),
		regexp.MustCompile(`\*\s+\w+`),
		regexp.MustCompile(`-\s+\w+`),
		regexp.MustCompile(`\d+\.\s+\w+`),
	}
)

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}

// indicatorScore counts occurrences, so repeated words add up; three hits
// give a full score.
func indicatorScore(words []string, set wordSet) float64 {
	matches := 0
	for _, w := range words {
		if set.has(w) {
			matches++
		}
	}
	return math.Min(1, float64(matches)/3)
}

func semanticDimension(in Input) Dimension {
	content := strings.Join(in.DocLines, " ")

	var meaningful []string
	for _, w := range Words(content) {
		if !semanticStopwords.has(w) {
			meaningful = append(meaningful, w)
		}
	}
	if len(meaningful) == 0 {
		return Dimension{Score: 0, Detail: map[string]float64{"word_count": 0}}
	}

	docScore := indicatorScore(meaningful, documentationWords)
	techScore := indicatorScore(meaningful, technicalTerms)
	qualityScore := indicatorScore(meaningful, qualityMarkers)
	length := math.Min(1, float64(len(meaningful))/20)

	structureHits := 0
	for _, re := range structureIndicators {
		if re.MatchString(content) {
			structureHits++
		}
	}
	structure := math.Min(1, float64(structureHits)/5)

	score := docScore*0.3 + techScore*0.25 + qualityScore*0.15 + length*0.15 + structure*0.15

	return Dimension{
		Score: clamp01(score),
		Detail: map[string]float64{
			"documentation_word_score": docScore,
			"technical_word_score":     techScore,
			"quality_marker_score":     qualityScore,
			"length_factor":            length,
			"structure_score":          structure,
			"word_count":               float64(len(meaningful)),
		},
	}
}

var relationshipStopwords = newWordSet("the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "this", "that", "it", "is", "are", "was", "were",
	"if", "else", "then", "when", "where", "why", "how", "what", "who")

func contextDimension(in Input) Dimension {
	proximity := proximityScore(docGap(in))
	placement := placementScore(in)
	consistency := consistencyScore(in)
	relationship := relationshipScore(in)

	score := proximity*0.3 + placement*0.25 + consistency*0.25 + relationship*0.2

	return Dimension{
		Score: clamp01(score),
		Detail: map[string]float64{
			"proximity_score":    proximity,
			"placement_score":    placement,
			"consistency_score":  consistency,
			"relationship_score": relationship,
		},
	}
}

// docGap is the number of lines between the near edge of the block and the
// declaration.
func docGap(in Input) int {
	if in.DocStart > in.DeclarationLine {
		return in.DocStart - in.DeclarationLine - 1
	}
	if in.DocEnd < in.DeclarationLine {
		return in.DeclarationLine - in.DocEnd - 1
	}
	return 0
}

func proximityScore(gap int) float64 {
	switch {
	case gap <= 0:
		return 1.0
	case gap == 1:
		return 0.9
	case gap <= 3:
		return 0.7
	case gap <= 5:
		return 0.5
	default:
		return 0.2
	}
}

func placementScore(in Input) float64 {
	after := in.DocStart > in.DeclarationLine
	switch in.Language {
	case pattern.Python:
		if after {
			return 1.0
		}
		return 0.6
	case pattern.Rust:
		if !after {
			return 1.0
		}
		return 0.4
	case pattern.JavaScript, pattern.TypeScript:
		if !after {
			return 1.0
		}
		return 0.5
	default:
		return 0.7
	}
}

// consistencyScore measures how uniform the block and its surroundings are:
// one marker style and no plain comments interleaved nearby.
func consistencyScore(in Input) float64 {
	score := 1.0
	if markersMixed(in.Language, in.DocLines) {
		score -= 0.2
	}
	score -= 0.1 * float64(in.NoiseLines)
	return clamp(score, 0.4, 1.0)
}

func relationshipScore(in Input) float64 {
	doc := strings.ToLower(strings.Join(in.DocLines, " "))
	code := strings.ToLower(in.CodeContent)
	if strings.TrimSpace(doc) == "" || strings.TrimSpace(code) == "" {
		return 0.5
	}

	codeWords := newWordSet(Words(code)...)
	if len(codeWords) == 0 {
		return 0.5
	}

	common := 0
	for w := range newWordSet(Words(doc)...) {
		if codeWords.has(w) && !relationshipStopwords.has(w) {
			common++
		}
	}

	return math.Min(1, float64(common)/float64(len(codeWords))*2)
}

var (
	purposeWords      = []string{"calculates", "returns", "performs", "creates", "processes", "computes", "builds", "converts", "checks"}
	classPurposeWords = []string{"represents", "implements", "manages", "provides", "holds", "describes", "defines"}
	usageWords        = []string{"usage", "example", "use", "create"}

	sectionRe  = regexp.MustCompile(`#{1,6}\s+\w+|@\w+|Args:|Returns:|Example:|Note:`)
	listRe     = regexp.MustCompile(`(?m)^\s*[-*+]\s+|\d+\.\s+`)
	exampleRe  = regexp.MustCompile(`example|usage|demo`)
	paramDocRe = regexp.MustCompile(`param|arg`)
	returnRe   = regexp.MustCompile(`return|yield`)
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func qualityDimension(in Input) Dimension {
	cleanedLines := StripMarkers(in.DocLines, false)
	cleaned := strings.TrimSpace(strings.Join(cleanedLines, "\n"))
	if cleaned == "" {
		return Dimension{Score: 0, Detail: map[string]float64{"word_count": 0}}
	}
	lower := strings.ToLower(cleaned)

	completeness := completenessScore(in, lower)

	structureHits := 0
	if sectionRe.MatchString(cleaned) {
		structureHits++
	}
	if listRe.MatchString(cleaned) {
		structureHits++
	}
	if strings.Contains(cleaned, "`") {
		structureHits++
	}
	if strings.Contains(cleaned, "\n\n") {
		structureHits++
	}
	structure := math.Min(1, float64(structureHits)/3)

	wordCount := len(strings.Fields(cleaned))
	var detail float64
	switch {
	case wordCount >= 50:
		detail = 1.0
	case wordCount >= 20:
		detail = 0.8
	case wordCount >= 10:
		detail = 0.6
	case wordCount >= 5:
		detail = 0.4
	default:
		detail = 0.2
	}

	exampleHits := 0.0
	if exampleRe.MatchString(lower) {
		exampleHits += 2
	}
	if strings.Contains(cleaned, "```") {
		exampleHits++
	} else if strings.Contains(cleaned, "`") {
		exampleHits += 0.5
	}
	examples := math.Min(1, exampleHits/2)

	score := completeness*0.4 + structure*0.25 + detail*0.2 + examples*0.15

	return Dimension{
		Score: clamp01(score),
		Detail: map[string]float64{
			"completeness_score": completeness,
			"structure_score":    structure,
			"detail_score":       detail,
			"example_score":      examples,
			"word_count":         float64(wordCount),
		},
	}
}

func completenessScore(in Input, doc string) float64 {
	switch in.Kind {
	case pattern.KindFunction:
		purpose := 0.3
		if containsAny(doc, purposeWords) {
			purpose = 1.0
		}

		params := 0.8
		if paramDocRe.MatchString(doc) {
			params = 1.0
		} else if hasParameters(in.Signature) {
			params = 0.2
		}

		returns := 0.4
		if returnRe.MatchString(doc) {
			returns = 1.0
		}
		return (purpose + params + returns) / 3

	case pattern.KindClass, pattern.KindStruct, pattern.KindEnum, pattern.KindTrait, pattern.KindImpl:
		purpose := 0.4
		if containsAny(doc, classPurposeWords) {
			purpose = 1.0
		}
		usage := 0.5
		if containsAny(doc, usageWords) {
			usage = 1.0
		}
		return (purpose + usage) / 2

	default:
		n := len(strings.Fields(doc))
		switch {
		case n >= 10:
			return 0.8
		case n >= 5:
			return 0.6
		default:
			return 0.3
		}
	}
}

// hasParameters reports whether the first parameter list in sig declares
// anything besides a receiver.
func hasParameters(sig string) bool {
	open := strings.Index(sig, "(")
	if open < 0 {
		return false
	}
	depth := 0
	end := -1
	for i := open; i < len(sig); i++ {
		switch sig[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		end = len(sig)
	}

	for _, p := range strings.Split(sig[open+1:end], ",") {
		p = strings.TrimSpace(p)
		switch p {
		case "", "self", "&self", "&mut self", "mut self", "cls":
			continue
		}
		return true
	}
	return false
}

func metaDimension(scores ...float64) Dimension {
	var mean float64
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	var variance float64
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(scores))

	consistency := 1 / (1 + 2*variance)

	high, low := 0, 0
	for _, s := range scores {
		if s > 0.7 {
			high++
		} else if s < 0.3 {
			low++
		}
	}
	agreeing := high
	if low > agreeing {
		agreeing = low
	}

	agreement := 0.6
	switch {
	case agreeing >= 3:
		agreement = 1.0
	case agreeing == 2:
		agreement = 0.8
	}

	// A low majority is scaled by the mean so that agreement on weak
	// evidence cannot lift the raw score.
	level := 1.0
	if low > high {
		level = mean
	}

	return Dimension{
		Score: clamp01(consistency*agreement*level),
		Detail: map[string]float64{
			"mean":        mean,
			"variance":    variance,
			"consistency": consistency,
			"agreement":   agreement,
			"level":       level,
		},
	}
}
