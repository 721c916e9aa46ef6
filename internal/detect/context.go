package detect

import "github.com/randalmurphy/doc-chunker/internal/pattern"

const noiseWindow = 5

// ContextPass is the Pass 3 record.
type ContextPass struct {
	Score        int `json:"context_score"`
	Proximity    int `json:"proximity"`
	DocLineCount int `json:"doc_line_count"`
	NoiseLines   int `json:"noise_score"`
}

// contextPass scores the placement of a block found by Pass 1.
func contextPass(lines []string, set *pattern.Set, found scanResult, decl int) ContextPass {
	start, end := found.start(), found.end()

	proximity := decl - start
	if proximity < 0 {
		proximity = -proximity
	}

	score := 0
	switch {
	case proximity <= 2:
		score += 3
	case proximity <= 5:
		score += 2
	case proximity <= 10:
		score++
	}
	if len(found.indexes) >= 2 {
		score += 2
	}

	return ContextPass{
		Score:        score,
		Proximity:    proximity,
		DocLineCount: len(found.indexes),
		NoiseLines:   countNoise(lines, set, min(start, decl), max(end, decl)),
	}
}

// countNoise counts plain comments within noiseWindow lines of [lo, hi]
// but outside it.
func countNoise(lines []string, set *pattern.Set, lo, hi int) int {
	from := max(0, lo-noiseWindow)
	to := min(len(lines), hi+noiseWindow+1)

	noise := 0
	for i := from; i < to; i++ {
		if i >= lo && i <= hi {
			continue
		}
		if set.IsComment(lines[i]) && !set.IsDocComment(lines[i]) {
			noise++
		}
	}
	return noise
}
