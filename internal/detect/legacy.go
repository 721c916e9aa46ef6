package detect

import (
	"math"
	"regexp"
	"strings"
)

const legacyBaseThreshold = 0.5

var structuredDocRe = []*regexp.Regexp{
	regexp.MustCompile(`(?s)/\*\*.*\*/`),
	regexp.MustCompile(`(?s)""".*"""`),
	regexp.MustCompile(`(?s)'''.*'''`),
	regexp.MustCompile(`///.*`),
	regexp.MustCompile(`//!.*`),
}

func hasStructuredMarkers(docLines []string) bool {
	content := strings.Join(docLines, "\n")
	for _, re := range structuredDocRe {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// legacyScore is the fixed-weight formula used when the dimension scorer
// cannot run. It returns the confidence and the threshold it must meet.
func legacyScore(docLines []string, sem SemanticPass, ctx ContextPass) (float64, float64) {
	found := len(docLines) > 0
	enhanced := sem.Enhanced
	useEnhanced := enhanced.Overall > 0
	contextNorm := math.Min(1, float64(ctx.Score)/5)

	var conf float64
	if useEnhanced {
		if found {
			conf += 0.25
		}
		weighted := enhanced.Overall*0.5 +
			enhanced.Quality*0.2 +
			enhanced.Technical*0.15 +
			enhanced.Completeness*0.15
		conf += 0.45 * weighted

		switch enhanced.Intent {
		case IntentAPI, IntentReference:
			conf += 0.05
		case IntentInternal:
			conf -= 0.05
		}

		conf += 0.2 * contextNorm

		if enhanced.Quality >= 0.6 {
			conf += 0.05
		}
		if enhanced.Technical >= 0.3 {
			conf += 0.03
		}
		if enhanced.Completeness >= 0.7 {
			conf += 0.02
		}
	} else {
		if found {
			conf += 0.4
		}
		if sem.Meaningful {
			conf += 0.3 * math.Min(1, sem.MeaningfulRatio*2)
		}
		conf += math.Min(0.1, float64(sem.KeywordScore)*0.02)
		conf += 0.2 * contextNorm

		if sem.ContentLength > 20 {
			conf += 0.05
		}
		if ctx.Proximity <= 3 {
			conf += 0.05
		}
	}

	conf -= math.Min(0.1, float64(ctx.NoiseLines)*0.02)
	conf = math.Min(1, math.Max(0, conf))

	threshold := legacyBaseThreshold
	structured := found && hasStructuredMarkers(docLines)
	switch {
	case !useEnhanced:
		if structured {
			threshold = 0.4
		}
	case enhanced.Quality >= 0.7 || enhanced.Technical >= 0.4:
		threshold = 0.4
	case structured:
		threshold = 0.4
		if enhanced.Intent == IntentAPI || enhanced.Intent == IntentReference {
			threshold = 0.35
		}
	case enhanced.Intent == IntentInternal:
		threshold = 0.6
	}

	return conf, threshold
}
