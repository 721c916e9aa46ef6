package confidence

import (
	"fmt"
	"math"
	"strings"

	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

// CalibrationKind selects how raw scores are mapped to final confidence.
type CalibrationKind int

const (
	// CalibrationIdentity passes the raw score through unchanged.
	CalibrationIdentity CalibrationKind = iota
	// CalibrationPlatt applies a per-language sigmoid 1/(1+exp(A*raw+B)).
	CalibrationPlatt
)

// PlattParams are the sigmoid coefficients for one language.
type PlattParams struct {
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
}

// CalibrationPolicy maps raw confidence to final confidence. The zero value
// is the identity policy.
type CalibrationPolicy struct {
	Kind     CalibrationKind
	Params   map[pattern.Language]PlattParams
	Fallback PlattParams
}

// Identity returns the pass-through policy.
func Identity() CalibrationPolicy {
	return CalibrationPolicy{Kind: CalibrationIdentity}
}

// DefaultPlattParams returns the per-language coefficients fitted for the
// built-in pattern tables.
func DefaultPlattParams() map[pattern.Language]PlattParams {
	return map[pattern.Language]PlattParams{
		pattern.Rust:       {A: -0.1, B: 0.05},
		pattern.Python:     {A: -0.2, B: 0.1},
		pattern.JavaScript: {A: -0.25, B: 0.15},
		pattern.TypeScript: {A: -0.25, B: 0.15},
	}
}

// Platt returns a sigmoid policy. Languages missing from params use the
// default coefficients (-0.2, 0.1).
func Platt(params map[pattern.Language]PlattParams) CalibrationPolicy {
	if params == nil {
		params = DefaultPlattParams()
	}
	return CalibrationPolicy{
		Kind:     CalibrationPlatt,
		Params:   params,
		Fallback: PlattParams{A: -0.2, B: 0.1},
	}
}

// ParseCalibration resolves a policy name from configuration.
func ParseCalibration(name string, params map[string]PlattParams) (CalibrationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "identity", "none":
		return Identity(), nil
	case "platt":
		if len(params) == 0 {
			return Platt(nil), nil
		}
		byLang := DefaultPlattParams()
		for lang, p := range params {
			l := pattern.ParseLanguage(lang)
			if l == pattern.Unknown {
				return CalibrationPolicy{}, fmt.Errorf("calibration params for unknown language %q", lang)
			}
			byLang[l] = p
		}
		return Platt(byLang), nil
	default:
		return CalibrationPolicy{}, fmt.Errorf("unknown calibration policy %q", name)
	}
}

// Apply maps raw to a calibrated score.
func (c CalibrationPolicy) Apply(raw float64, lang pattern.Language) float64 {
	if c.Kind != CalibrationPlatt {
		return raw
	}
	p, ok := c.Params[lang]
	if !ok {
		p = c.Fallback
	}
	return 1 / (1 + math.Exp(p.A*raw+p.B))
}

func (c CalibrationPolicy) String() string {
	if c.Kind == CalibrationPlatt {
		return "platt"
	}
	return "identity"
}

// ExpectedCalibrationError bins predictions into equal-width buckets and
// returns the count-weighted gap between mean confidence and accuracy.
func ExpectedCalibrationError(predictions []float64, labels []bool, bins int) (float64, error) {
	if len(predictions) != len(labels) {
		return 0, fmt.Errorf("%w: %d predictions for %d labels", ErrInvalidInput, len(predictions), len(labels))
	}
	if len(predictions) == 0 {
		return 0, nil
	}
	if bins <= 0 {
		bins = 10
	}

	confSum := make([]float64, bins)
	correct := make([]float64, bins)
	counts := make([]int, bins)

	for i, p := range predictions {
		b := int(clamp01(p) * float64(bins))
		if b == bins {
			b = bins - 1
		}
		confSum[b] += p
		counts[b]++
		if labels[i] {
			correct[b]++
		}
	}

	var ece float64
	total := float64(len(predictions))
	for b := 0; b < bins; b++ {
		if counts[b] == 0 {
			continue
		}
		n := float64(counts[b])
		ece += n / total * math.Abs(confSum[b]/n-correct[b]/n)
	}
	return ece, nil
}
