package detect

import (
	"math"
	"regexp"
	"strings"

	"github.com/randalmurphy/doc-chunker/internal/confidence"
)

// Intent is the inferred audience of a documentation block.
type Intent string

const (
	IntentUnknown   Intent = "unknown"
	IntentAPI       Intent = "api_documentation"
	IntentInternal  Intent = "internal_comment"
	IntentTutorial  Intent = "tutorial"
	IntentReference Intent = "reference"
)

// Enhanced holds the sub-scores of the enhanced semantic analysis.
type Enhanced struct {
	Quality      float64 `json:"quality_score"`
	Coherence    float64 `json:"coherence_score"`
	Completeness float64 `json:"completeness_score"`
	Intent       Intent  `json:"intent_classification"`
	IntentScore  float64 `json:"intent_confidence"`
	Technical    float64 `json:"technical_terminology_score"`
	Overall      float64 `json:"semantic_confidence"`
}

// SemanticPass is the Pass 2 record.
type SemanticPass struct {
	Meaningful      bool     `json:"meaningful"`
	KeywordScore    int      `json:"keyword_score"`
	Categories      []string `json:"keyword_categories,omitempty"`
	ContentLength   int      `json:"content_length"`
	WordCount       int      `json:"word_count"`
	MeaningfulRatio float64  `json:"meaningful_word_ratio"`
	Enhanced        Enhanced `json:"enhanced_analysis"`
}

type keywordCategory struct {
	name     string
	keywords []string
}

var (
	documentationKeywords = []keywordCategory{
		{"description", []string{"represents", "implements", "provides", "handles", "manages", "contains"}},
		{"parameters", []string{"param", "parameter", "arg", "argument", "takes", "accepts"}},
		{"returns", []string{"returns", "return", "yields", "produces", "outputs"}},
		{"examples", []string{"example", "usage", "demo", "sample", "illustration"}},
		{"notes", []string{"note", "warning", "important", "todo", "fixme", "deprecated"}},
	}

	meaninglessWords = map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "but": true, "in": true, "on": true,
		"at": true, "to": true, "for": true, "of": true, "with": true, "by": true, "this": true, "that": true,
	}

	tokenStopwords = map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "but": true, "in": true, "on": true,
		"at": true, "to": true, "for": true, "of": true, "with": true, "by": true, "this": true, "that": true,
		"is": true, "are": true, "was": true, "were": true, "be": true, "been": true, "have": true, "has": true,
		"had": true, "do": true, "does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
	}

	codeKeywords = map[string]bool{
		"if": true, "else": true, "while": true, "for": true, "do": true, "switch": true, "case": true,
		"break": true, "continue": true, "return": true, "function": true, "def": true, "class": true,
		"struct": true, "enum": true, "pub": true, "private": true, "protected": true, "static": true,
		"const": true, "let": true, "var": true, "int": true, "float": true, "bool": true, "str": true,
	}

	technicalVocabulary = buildVocabulary(
		// programming
		"algorithm", "api", "array", "async", "await", "binary", "boolean", "buffer",
		"cache", "callback", "class", "closure", "concurrency", "constructor", "coroutine",
		"database", "debug", "decorator", "dependency", "deserialize", "encapsulation",
		"endpoint", "enum", "exception", "framework", "function", "generator", "hash",
		"inheritance", "interface", "iterator", "json", "library", "middleware", "module",
		"namespace", "object", "parameter", "pointer", "polymorphism", "protocol", "queue",
		"recursion", "reference", "repository", "schema", "serialize", "singleton", "stack",
		"struct", "thread", "trait", "tuple", "variable", "vector", "wrapper",
		// machine learning
		"activation", "backpropagation", "batch", "bias", "convolution", "dropout", "embedding",
		"epoch", "gradient", "inference", "layer", "loss", "model", "neural", "neuron",
		"optimization", "overfitting", "prediction", "regression", "reinforcement", "sigmoid",
		"softmax", "supervised", "tensor", "training", "transformer", "unsupervised", "weight",
		// neuromorphic
		"spike", "cortical", "synaptic", "membrane", "threshold", "temporal", "plasticity",
		"dendrite", "axon", "synapse", "ttfs", "encoding", "decoding", "dynamics",
	)

	structureIndicators = []string{
		"args:", "arguments:", "parameters:", "param:", "returns:", "return:", "yields:",
		"raises:", "throws:", "examples:", "example:", "usage:", "note:", "warning:",
		"see also:", "todo:", "fixme:", "deprecated:", "since:", "version:",
	}

	exampleIndicators = []string{
		"```", "`", "for example", "e.g.", "such as", "like this:", "consider:",
		"suppose", "assume", "given", "when", "then", "expected output",
	}

	intentPatterns = []struct {
		intent   Intent
		patterns []string
	}{
		{IntentAPI, []string{"public", "api", "endpoint", "interface", "client", "consumer", "external",
			"usage", "example", "parameter", "returns", "response", "request"}},
		{IntentInternal, []string{"internal", "private", "helper", "utility", "implementation", "detail",
			"todo", "fixme", "hack", "workaround", "temporary", "debug"}},
		{IntentTutorial, []string{"tutorial", "guide", "how to", "step by step", "walkthrough", "getting started",
			"first", "next", "then", "finally", "follow", "instructions"}},
		{IntentReference, []string{"reference", "specification", "definition", "formal", "complete", "comprehensive",
			"all", "every", "list of", "table of", "index", "glossary"}},
	}

	identRe       = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*\b`)
	headerRe      = regexp.MustCompile(`\n\s*#+\s+`)
	codeBlockRe   = regexp.MustCompile("(?s)```.*```")
	sentenceRe    = regexp.MustCompile(`[.!?]+`)
	descriptionRe = regexp.MustCompile(`\b(description|overview|summary)\b`)
	paramRe       = regexp.MustCompile(`\b(param|arg|parameter|argument)\b`)
	returnsRe     = regexp.MustCompile(`\b(return|returns|yields)\b`)
	examplesRe    = regexp.MustCompile("(```|example|usage)")
	exceptionsRe  = regexp.MustCompile(`\b(raises|throws|exception|error)\b`)
	typedParamRe  = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)
	docParamRe    = regexp.MustCompile(`(?:param|arg|parameter)\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	codeParamRe   = regexp.MustCompile(`(?:def|function|fn)\s+\w+\s*\([^)]*?([a-zA-Z_][a-zA-Z0-9_]*)`)
)

func buildVocabulary(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// semanticPass runs Pass 2 over the collected documentation lines.
func semanticPass(docLines []string, codeContent string) SemanticPass {
	if len(docLines) == 0 {
		return SemanticPass{Enhanced: Enhanced{Intent: IntentUnknown}}
	}

	combined := strings.Join(confidence.StripMarkers(docLines, true), " ")
	lower := strings.ToLower(combined)
	fields := strings.Fields(combined)

	meaningful := 0
	for _, w := range fields {
		if len(w) > 2 && !meaninglessWords[strings.ToLower(w)] {
			meaningful++
		}
	}

	var (
		keywordScore int
		categories   []string
	)
	for _, cat := range documentationKeywords {
		hit := false
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				keywordScore++
				hit = true
			}
		}
		if hit {
			categories = append(categories, cat.name)
		}
	}

	enhanced := analyze(strings.Join(confidence.StripMarkers(docLines, true), "\n"), codeContent)

	return SemanticPass{
		Meaningful: enhanced.Quality >= 0.3 ||
			enhanced.Technical >= 0.2 ||
			enhanced.Completeness >= 0.4 ||
			(meaningful >= 3 && len(fields) >= 5),
		KeywordScore:    keywordScore,
		Categories:      categories,
		ContentLength:   len(combined),
		WordCount:       len(fields),
		MeaningfulRatio: float64(meaningful) / math.Max(1, float64(len(fields))),
		Enhanced:        enhanced,
	}
}

// analyze is the enhanced semantic analysis over marker-free documentation
// text. codeContent may be empty, in which case coherence is zero.
func analyze(doc, codeContent string) Enhanced {
	if strings.TrimSpace(doc) == "" {
		return Enhanced{Intent: IntentUnknown}
	}

	technical := technicalScore(doc)
	completeness := completenessScore(doc, codeContent)
	quality := structureScore(doc)*0.25 +
		completeness*0.25 +
		clarityScore(doc)*0.2 +
		technical*0.15 +
		exampleScore(doc)*0.15
	intent, intentScore := classifyIntent(doc)

	var coherence float64
	if codeContent != "" {
		coherence = coherenceScore(doc, codeContent)
	}

	overall := quality*0.3 + coherence*0.25 + completeness*0.2 + intentScore*0.15 + technical*0.1

	return Enhanced{
		Quality:      quality,
		Coherence:    coherence,
		Completeness: completeness,
		Intent:       intent,
		IntentScore:  intentScore,
		Technical:    technical,
		Overall:      math.Min(1, math.Max(0, overall)),
	}
}

func structureScore(doc string) float64 {
	lower := strings.ToLower(doc)
	score := 0.0
	for _, ind := range structureIndicators {
		if strings.Contains(lower, ind) {
			score += 0.1
		}
	}
	if headerRe.MatchString(doc) {
		score += 0.2
	}
	if codeBlockRe.MatchString(doc) {
		score += 0.1
	}
	return math.Min(1, score)
}

// clarityScore penalizes very short or very long sentences and words longer
// than 12 characters.
func clarityScore(doc string) float64 {
	words := strings.Fields(doc)
	if len(words) == 0 {
		return 0
	}
	sentences := len(sentenceRe.Split(doc, -1))
	avg := float64(len(words)) / float64(sentences)

	length := 1.0
	switch {
	case avg < 5:
		length = avg / 5
	case avg > 25:
		length = 25 / avg
	}

	long := 0
	for _, w := range words {
		if len(w) > 12 {
			long++
		}
	}
	jargon := float64(long) / float64(len(words))

	return math.Min(1, math.Max(0, length*(1-jargon*0.5)))
}

func exampleScore(doc string) float64 {
	lower := strings.ToLower(doc)
	score := 0.0
	if codeBlockRe.MatchString(doc) {
		score += 0.5
	}
	for _, ind := range exampleIndicators {
		if strings.Contains(lower, ind) {
			score += 0.1
			break
		}
	}
	if strings.Contains(doc, "`") {
		score += 0.2
	}
	return math.Min(1, score)
}

// technicalScore is the share of distinct words found in the technical
// vocabulary, with 10% counting as full.
func technicalScore(doc string) float64 {
	words := map[string]bool{}
	for _, w := range confidence.Words(doc) {
		words[w] = true
	}
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for w := range words {
		if technicalVocabulary[w] {
			hits++
		}
	}
	return math.Min(1, float64(hits)/float64(len(words))*10)
}

func completenessScore(doc, signature string) float64 {
	lower := strings.ToLower(doc)
	score := 0.0
	if descriptionRe.MatchString(lower) {
		score += 0.3
	}
	if paramRe.MatchString(lower) {
		score += 0.2
	}
	if returnsRe.MatchString(lower) {
		score += 0.2
	}
	if examplesRe.MatchString(lower) {
		score += 0.15
	}
	if exceptionsRe.MatchString(lower) {
		score += 0.1
	}
	if signature != "" {
		score += 0.05 * parameterCoverage(lower, signature)
	}
	return score
}

func parameterCoverage(lowerDoc, signature string) float64 {
	params := typedParamRe.FindAllStringSubmatch(signature, -1)
	if len(params) == 0 {
		return 1
	}
	covered := 0
	for _, p := range params {
		if strings.Contains(lowerDoc, p[1]) {
			covered++
		}
	}
	return float64(covered) / float64(len(params))
}

// classifyIntent picks the intent with the highest pattern hit ratio. Ties go
// to the earlier intent in the table.
func classifyIntent(doc string) (Intent, float64) {
	lower := strings.ToLower(doc)
	best, bestScore := IntentUnknown, -1.0
	for _, ip := range intentPatterns {
		hits := 0
		for _, p := range ip.patterns {
			if strings.Contains(lower, p) {
				hits++
			}
		}
		score := float64(hits) / float64(len(ip.patterns))
		if score > bestScore {
			best, bestScore = ip.intent, score
		}
	}
	return best, bestScore
}

func coherenceScore(doc, code string) float64 {
	docTokens := map[string]bool{}
	for _, w := range confidence.Words(doc) {
		if !tokenStopwords[w] {
			docTokens[w] = true
		}
	}
	codeTokens := map[string]bool{}
	for _, id := range identRe.FindAllString(code, -1) {
		if !codeKeywords[id] {
			codeTokens[id] = true
		}
	}

	var overlap float64
	if len(docTokens) > 0 && len(codeTokens) > 0 {
		union := len(codeTokens)
		common := 0
		for t := range docTokens {
			if codeTokens[t] {
				common++
			} else {
				union++
			}
		}
		overlap = float64(common) / float64(union)
	}

	return overlap*0.4 + namingConsistency(doc, code)*0.3 + parameterAlignment(doc, code)*0.3
}

func namingConsistency(doc, code string) float64 {
	docNames := uniqueMatches(identRe, doc)
	if len(docNames) == 0 {
		return 0
	}
	codeNames := uniqueMatches(identRe, code)
	matching := 0
	for n := range docNames {
		if codeNames[n] {
			matching++
		}
	}
	return float64(matching) / float64(len(docNames))
}

func parameterAlignment(doc, code string) float64 {
	docParams := map[string]bool{}
	for _, m := range docParamRe.FindAllStringSubmatch(strings.ToLower(doc), -1) {
		docParams[m[1]] = true
	}
	codeParams := map[string]bool{}
	for _, m := range codeParamRe.FindAllStringSubmatch(code, -1) {
		codeParams[m[1]] = true
	}

	switch {
	case len(docParams) == 0 && len(codeParams) == 0:
		return 1
	case len(docParams) == 0 || len(codeParams) == 0:
		return 0.5
	}
	matching := 0
	for p := range docParams {
		if codeParams[p] {
			matching++
		}
	}
	return float64(matching) / math.Max(float64(len(docParams)), float64(len(codeParams)))
}

func uniqueMatches(re *regexp.Regexp, s string) map[string]bool {
	out := map[string]bool{}
	for _, m := range re.FindAllString(s, -1) {
		out[m] = true
	}
	return out
}
