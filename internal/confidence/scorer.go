// Package confidence scores how likely a block of text attached to a
// declaration is real documentation.
//
// Five dimensions are scored independently and combined with fixed weights:
//
//	pattern   0.25  strength of the comment markers
//	semantic  0.30  vocabulary and structure of the text
//	context   0.20  placement relative to the declaration
//	quality   0.15  completeness for the kind of unit documented
//	meta      0.10  agreement between the other four
//
// The weighted sum is passed through a CalibrationPolicy and compared with an
// adaptive threshold derived from the file path, language and API surface.
package confidence

import (
	"errors"
	"fmt"
	"math"

	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

var (
	// ErrInvalidWeights is returned when dimension weights do not sum to 1.
	ErrInvalidWeights = errors.New("invalid dimension weights")
	// ErrInvalidInput is returned when an Input cannot be scored.
	ErrInvalidInput = errors.New("invalid scoring input")
)

// Weights holds the per-dimension weights.
type Weights struct {
	Pattern  float64 `yaml:"pattern" json:"pattern"`
	Semantic float64 `yaml:"semantic" json:"semantic"`
	Context  float64 `yaml:"context" json:"context"`
	Quality  float64 `yaml:"quality" json:"quality"`
	Meta     float64 `yaml:"meta" json:"meta"`
}

// DefaultWeights returns the standard weighting.
func DefaultWeights() Weights {
	return Weights{Pattern: 0.25, Semantic: 0.30, Context: 0.20, Quality: 0.15, Meta: 0.10}
}

// Validate checks that every weight is non-negative and that they sum to 1.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Pattern, w.Semantic, w.Context, w.Quality, w.Meta} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: negative or NaN weight", ErrInvalidWeights)
		}
	}
	sum := w.Pattern + w.Semantic + w.Context + w.Quality + w.Meta
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("%w: sum is %.4f", ErrInvalidWeights, sum)
	}
	return nil
}

// Input describes one candidate documentation block and the declaration it
// is attached to. Line indexes are 0-based.
type Input struct {
	Language pattern.Language
	Kind     pattern.Kind
	FilePath string

	DocLines        []string
	DocStart        int
	DocEnd          int
	DeclarationLine int

	// Signature is the declaration line, joined with continuation lines
	// when the parameter list spans several lines.
	Signature string
	// CodeContent is the source window around the declaration.
	CodeContent string

	IsPublicAPI bool
	// NoiseLines counts plain comments interleaved near the block.
	NoiseLines int
}

// Dimension is one sub-score with the components that produced it.
type Dimension struct {
	Score  float64            `json:"score"`
	Detail map[string]float64 `json:"detail,omitempty"`
}

// Analysis is the result of scoring one Input.
type Analysis struct {
	Pattern  Dimension `json:"pattern"`
	Semantic Dimension `json:"semantic"`
	Context  Dimension `json:"context"`
	Quality  Dimension `json:"quality"`
	Meta     Dimension `json:"meta"`

	Raw       float64  `json:"raw_confidence"`
	Final     float64  `json:"final_confidence"`
	Threshold float64  `json:"adaptive_threshold"`
	DocType   DocType  `json:"doc_type"`
	CodeType  CodeType `json:"code_type"`
}

// HasDocumentation reports whether the calibrated score meets the threshold.
func (a Analysis) HasDocumentation() bool {
	return a.Final >= a.Threshold
}

// Scorer combines the five dimensions. A Scorer is immutable and safe for
// concurrent use.
type Scorer struct {
	weights     Weights
	calibration CalibrationPolicy
	thresholds  Thresholds
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWeights overrides the dimension weights. Invalid weights are reported
// by Score, not here, so callers can fall back per unit.
func WithWeights(w Weights) Option {
	return func(s *Scorer) { s.weights = w }
}

// WithCalibration sets the calibration policy.
func WithCalibration(c CalibrationPolicy) Option {
	return func(s *Scorer) { s.calibration = c }
}

// WithThresholds replaces the adaptive threshold table.
func WithThresholds(t Thresholds) Option {
	return func(s *Scorer) { s.thresholds = t }
}

// NewScorer creates a scorer with default weights, identity calibration and
// the default threshold table.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weights:     DefaultWeights(),
		calibration: Identity(),
		thresholds:  DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes all five dimensions for in.
func (s *Scorer) Score(in Input) (Analysis, error) {
	if err := s.weights.Validate(); err != nil {
		return Analysis{}, err
	}
	if len(in.DocLines) == 0 {
		return Analysis{}, fmt.Errorf("%w: no documentation lines", ErrInvalidInput)
	}
	if in.DeclarationLine < 0 || in.DocStart < 0 || in.DocEnd < in.DocStart {
		return Analysis{}, fmt.Errorf("%w: line range %d..%d for declaration %d",
			ErrInvalidInput, in.DocStart, in.DocEnd, in.DeclarationLine)
	}

	a := Analysis{
		Pattern:  patternDimension(in),
		Semantic: semanticDimension(in),
		Context:  contextDimension(in),
		Quality:  qualityDimension(in),
	}
	a.Meta = metaDimension(a.Pattern.Score, a.Semantic.Score, a.Context.Score, a.Quality.Score)

	a.Raw = clamp01(a.Pattern.Score*s.weights.Pattern +
		a.Semantic.Score*s.weights.Semantic +
		a.Context.Score*s.weights.Context +
		a.Quality.Score*s.weights.Quality +
		a.Meta.Score*s.weights.Meta)
	a.Final = clamp01(s.calibration.Apply(a.Raw, in.Language))

	a.DocType = ClassifyDocType(in.FilePath, in.IsPublicAPI)
	a.CodeType = ClassifyCodeType(in.FilePath)
	a.Threshold = s.thresholds.Threshold(a.DocType, a.CodeType, in.Language)

	if math.IsNaN(a.Final) || math.IsNaN(a.Threshold) {
		return Analysis{}, fmt.Errorf("%w: score is NaN", ErrInvalidInput)
	}

	return a, nil
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
