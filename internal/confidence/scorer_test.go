package confidence

import (
	"testing"

	"github.com/randalmurphy/doc-chunker/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rustInput(docLines []string, signature string) Input {
	decl := len(docLines)
	code := signature
	for i := len(docLines) - 1; i >= 0 && i >= decl-5; i-- {
		code = docLines[i] + "\n" + code
	}
	return Input{
		Language:        pattern.Rust,
		Kind:            pattern.KindFunction,
		DocLines:        docLines,
		DocStart:        0,
		DocEnd:          decl - 1,
		DeclarationLine: decl,
		Signature:       signature,
		CodeContent:     code,
		IsPublicAPI:     true,
	}
}

func TestScoreMinimalRustDoc(t *testing.T) {
	s := NewScorer()

	a, err := s.Score(rustInput([]string{"/// Doc"}, "pub fn f() -> i32 { 1 }"))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, a.Pattern.Score, 1e-9)
	assert.InDelta(t, 0.0075, a.Semantic.Score, 1e-9)
	assert.InDelta(t, 0.24, a.Quality.Score, 1e-9)
	assert.Equal(t, DocTypeAPI, a.DocType)
	assert.InDelta(t, 0.50, a.Threshold, 1e-9)
	assert.Greater(t, a.Final, 0.5)
	assert.True(t, a.HasDocumentation())
	assert.Equal(t, a.Raw, a.Final, "identity calibration")
}

func TestScoreCompleteDocBeatsSparseDoc(t *testing.T) {
	s := NewScorer()
	sig := "pub fn add(a: i32, b: i32) -> i32 {"

	complete, err := s.Score(rustInput([]string{
		"/// Calculates the sum of two integers.",
		"///",
		"/// # Arguments",
		"/// * `a` - the first operand",
		"/// * `b` - the second operand",
		"///",
		"/// # Returns",
		"/// The sum of `a` and `b`.",
		"///",
		"/// # Example",
		"/// ```",
		"/// assert_eq!(add(1, 2), 3);",
		"/// ```",
	}, sig))
	require.NoError(t, err)

	sparse, err := s.Score(rustInput([]string{"// add"}, sig))
	require.NoError(t, err)

	assert.Greater(t, complete.Final, sparse.Final)
	assert.Greater(t, complete.Semantic.Score, sparse.Semantic.Score)
	assert.Greater(t, complete.Quality.Score, sparse.Quality.Score)
	assert.InDelta(t, 0.2, sparse.Pattern.Score, 1e-9)
}

func TestScoreRejectsInvalidInput(t *testing.T) {
	s := NewScorer()

	_, err := s.Score(Input{Language: pattern.Rust})
	assert.ErrorIs(t, err, ErrInvalidInput)

	in := rustInput([]string{"/// Doc"}, "fn f() {}")
	in.DocEnd = -3
	_, err = s.Score(in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestScoreRejectsInvalidWeights(t *testing.T) {
	s := NewScorer(WithWeights(Weights{Pattern: 0.5, Semantic: 0.5, Context: 0.5}))

	_, err := s.Score(rustInput([]string{"/// Doc"}, "fn f() {}"))
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
}

func TestPatternDimensionMixedMarkers(t *testing.T) {
	same := patternDimension(Input{Language: pattern.Rust, DocLines: []string{"/// a", "/// b"}})
	mixed := patternDimension(Input{Language: pattern.Rust, DocLines: []string{"/// a", "//! b"}})

	assert.InDelta(t, 1.0, same.Score, 1e-9)
	assert.InDelta(t, 0.925, mixed.Score, 1e-9)
}

func TestPatternDimensionPythonDocstring(t *testing.T) {
	d := patternDimension(Input{Language: pattern.Python, DocLines: []string{
		`    """Summary line.`,
		`    More detail.`,
		`    """`,
	}})
	assert.InDelta(t, 1.0, d.Score, 1e-9)
	assert.Equal(t, 2.0, d.Detail["matched_lines"])
}

func TestProximityUsesNearEdge(t *testing.T) {
	in := Input{DocStart: 0, DocEnd: 9, DeclarationLine: 10}
	assert.Equal(t, 0, docGap(in))

	in = Input{DocStart: 0, DocEnd: 2, DeclarationLine: 6}
	assert.Equal(t, 3, docGap(in))
	assert.Equal(t, 0.7, proximityScore(docGap(in)))

	in = Input{DocStart: 5, DocEnd: 7, DeclarationLine: 4}
	assert.Equal(t, 0, docGap(in))
}

func TestPlacementByLanguage(t *testing.T) {
	tests := []struct {
		lang  pattern.Language
		after bool
		want  float64
	}{
		{pattern.Python, true, 1.0},
		{pattern.Python, false, 0.6},
		{pattern.Rust, false, 1.0},
		{pattern.Rust, true, 0.4},
		{pattern.JavaScript, true, 0.5},
		{pattern.Unknown, false, 0.7},
	}
	for _, tt := range tests {
		in := Input{Language: tt.lang, DocStart: 0, DeclarationLine: 1}
		if tt.after {
			in = Input{Language: tt.lang, DocStart: 2, DeclarationLine: 1}
		}
		assert.Equal(t, tt.want, placementScore(in), tt.lang.String())
	}
}

func TestConsistencyPenalizesNoise(t *testing.T) {
	clean := consistencyScore(Input{Language: pattern.Rust, DocLines: []string{"/// a"}})
	noisy := consistencyScore(Input{Language: pattern.Rust, DocLines: []string{"/// a"}, NoiseLines: 3})
	floor := consistencyScore(Input{Language: pattern.Rust, DocLines: []string{"/// a"}, NoiseLines: 20})

	assert.Equal(t, 1.0, clean)
	assert.InDelta(t, 0.7, noisy, 1e-9)
	assert.Equal(t, 0.4, floor)
}

func TestHasParameters(t *testing.T) {
	assert.False(t, hasParameters("pub fn f() -> i32 {"))
	assert.False(t, hasParameters("fn area(&self) -> f64 {"))
	assert.False(t, hasParameters("def run(self):"))
	assert.False(t, hasParameters("struct Point {"))
	assert.True(t, hasParameters("fn add(a: i32, b: i32) -> i32 {"))
	assert.True(t, hasParameters("def greet(self, name):"))
	assert.True(t, hasParameters("function f(cb = (x) => x) {"))
}

func TestMetaDimensionAgreement(t *testing.T) {
	strong := metaDimension(0.9, 0.9, 0.9, 0.9)
	assert.InDelta(t, 1.0, strong.Score, 1e-9)

	weak := metaDimension(0.5, 0.5, 0.5, 0.5)
	assert.InDelta(t, 0.6, weak.Score, 1e-9)

	split := metaDimension(1.0, 0.0, 1.0, 0.0)
	assert.InDelta(t, 0.8/1.5, split.Score, 1e-9)

	allLow := metaDimension(0.1, 0.1, 0.1, 0.1)
	assert.InDelta(t, 0.1, allLow.Score, 1e-9)

	mostlyLow := metaDimension(0.1, 0.2, 0.0, 0.9)
	assert.Less(t, mostlyLow.Score, 0.3)
}

func TestStripMarkers(t *testing.T) {
	got := StripMarkers([]string{"/// Adds", "/**", " * Multiplies", " */", `"""Doc."""`, "# note"}, true)
	assert.Equal(t, []string{"Adds", "Multiplies", "Doc.", "note"}, got)
}
