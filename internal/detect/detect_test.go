package detect

import (
	"strings"
	"testing"

	"github.com/randalmurphy/doc-chunker/internal/confidence"
	"github.com/randalmurphy/doc-chunker/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSet(t *testing.T, lang pattern.Language) *pattern.Set {
	t.Helper()
	set, ok := pattern.Lookup(lang)
	require.True(t, ok)
	return set
}

const mixedRust = `/// Adds two integers and returns the sum.
///
/// # Arguments
/// * ` + "`a`" + ` - the first operand
/// * ` + "`b`" + ` - the second operand
///
/// # Returns
/// The sum of ` + "`a` and `b`" + `.
pub fn add(a: i32, b: i32) -> i32 {
    a + b
}

// subtract helper
pub fn subtract(a: i32, b: i32) -> i32 {
    a - b
}

/**
 * Multiplies two integers and returns the product.
 */
pub fn multiply(a: i32, b: i32) -> i32 {
    a * b
}`

func TestDetectMinimalRustDoc(t *testing.T) {
	d := New(nil, DefaultOptions(), nil)
	lines := []string{"/// Doc", "pub fn f() -> i32 { 1 }"}

	res := d.Detect(lines, mustSet(t, pattern.Rust), Target{Declaration: 1, Kind: pattern.KindFunction})

	assert.True(t, res.HasDocumentation)
	assert.Greater(t, res.Confidence, 0.5)
	assert.Equal(t, 0, res.DocStart)
	assert.Equal(t, 0, res.DocEnd)
	assert.Equal(t, []string{"/// Doc"}, res.DocLines)
	assert.Equal(t, MethodScorer, res.Passes.Validation.Method)
	require.NotNil(t, res.Analysis)
	assert.InDelta(t, 0.50, res.Analysis.Threshold, 1e-9)
}

func TestDetectMixedStyles(t *testing.T) {
	d := New(nil, DefaultOptions(), nil)
	lines := strings.Split(mixedRust, "\n")
	set := mustSet(t, pattern.Rust)

	tests := []struct {
		name     string
		decl     int
		want     bool
		docStart int
	}{
		{"line docs", 8, true, 0},
		{"plain comment", 13, false, 13},
		{"block doc", 20, true, 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Detect(lines, set, Target{Declaration: tt.decl, Kind: pattern.KindFunction, FilePath: "src/math.rs"})
			assert.Equal(t, tt.want, res.HasDocumentation)
			assert.Equal(t, tt.docStart, res.DocStart)
			if !tt.want {
				assert.Zero(t, res.Confidence)
				assert.Empty(t, res.DocLines)
			}
		})
	}
}

func TestDetectOutOfRange(t *testing.T) {
	d := New(nil, DefaultOptions(), nil)
	set := mustSet(t, pattern.Rust)

	for _, decl := range []int{-1, 5} {
		res := d.Detect([]string{"fn f() {}"}, set, Target{Declaration: decl})
		assert.False(t, res.HasDocumentation)
		assert.Zero(t, res.Confidence)
	}

	res := d.Detect([]string{"fn f() {}"}, nil, Target{})
	assert.False(t, res.HasDocumentation)
	assert.Equal(t, MethodNone, res.Passes.Validation.Method)
}

func TestDetectFallsBackToLegacy(t *testing.T) {
	bad := confidence.NewScorer(confidence.WithWeights(confidence.Weights{Pattern: 1, Semantic: 1}))
	d := New(bad, DefaultOptions(), nil)
	lines := []string{"/// Doc", "pub fn f() -> i32 { 1 }"}

	res := d.Detect(lines, mustSet(t, pattern.Rust), Target{Declaration: 1, Kind: pattern.KindFunction})

	assert.Equal(t, MethodLegacy, res.Passes.Validation.Method)
	assert.NotEmpty(t, res.Passes.Validation.Error)
	assert.InDelta(t, 0.35, res.Passes.Validation.Threshold, 1e-9, "structured marker with api intent")
	assert.True(t, res.HasDocumentation)
	assert.Nil(t, res.Analysis)
}

func TestDetectPythonDocstring(t *testing.T) {
	d := New(nil, DefaultOptions(), nil)
	src := `def area(width, height):
    """Computes the area of a rectangle.

    Args:
        width: the rectangle width
        height: the rectangle height

    Returns:
        The area as a float.
    """
    return width * height`
	lines := strings.Split(src, "\n")

	res := d.Detect(lines, mustSet(t, pattern.Python), Target{Declaration: 0, Kind: pattern.KindFunction})

	assert.True(t, res.Passes.Pattern.Found)
	assert.Equal(t, "forward", res.Passes.Pattern.Direction)
	assert.True(t, res.HasDocumentation)
	assert.Equal(t, 1, res.DocStart)
	assert.Equal(t, 9, res.DocEnd)
	assert.True(t, res.Passes.Semantic.Meaningful)
	assert.Contains(t, res.Passes.Semantic.Categories, "returns")
}

func TestScanBackward(t *testing.T) {
	tests := []struct {
		name  string
		lang  pattern.Language
		src   string
		found bool
		want  []int
	}{
		{
			name:  "rust line docs skip blanks",
			lang:  pattern.Rust,
			src:   "/// one\n\n/// two\nfn f() {}",
			found: true,
			want:  []int{0, 2},
		},
		{
			name:  "rust attribute between doc and item",
			lang:  pattern.Rust,
			src:   "/// A point.\n#[derive(Debug)]\npub struct Point {",
			found: true,
			want:  []int{0},
		},
		{
			name:  "plain comment stops scan",
			lang:  pattern.Rust,
			src:   "/// orphan\n// note\nfn f() {}",
			found: false,
		},
		{
			name:  "code stops scan",
			lang:  pattern.Rust,
			src:   "/// other\nlet x = 1;\nfn f() {}",
			found: false,
		},
		{
			name:  "jsdoc block",
			lang:  pattern.JavaScript,
			src:   "/**\n * Greets.\n * @param {string} name\n */\nfunction greet(name) {",
			found: true,
			want:  []int{0, 1, 2, 3},
		},
		{
			name:  "single line jsdoc",
			lang:  pattern.TypeScript,
			src:   "/** Greets. */\nexport function greet(name: string) {",
			found: true,
			want:  []int{0},
		},
		{
			name:  "decorator skipped",
			lang:  pattern.TypeScript,
			src:   "/** A widget. */\n@Component()\nexport class Widget {",
			found: true,
			want:  []int{0},
		},
		{
			name:  "plain block ends scan",
			lang:  pattern.JavaScript,
			src:   "/* license\n * MIT\n */\nfunction f() {",
			found: false,
		},
		{
			name:  "trailing block comment after code",
			lang:  pattern.JavaScript,
			src:   "/** Adds. */\nfunction add(a, b) {\n  return a + b;\n}\nconst LIMIT = 5; /* max retries */\nfunction retry() {",
			found: false,
		},
		{
			name:  "closer after code line",
			lang:  pattern.Rust,
			src:   "/** Old. */\nfn old() {}\nlet x = 1;\n*/\nfn f() {}",
			found: false,
		},
		{
			name:  "jsdoc with blank interior line",
			lang:  pattern.JavaScript,
			src:   "/**\n * Greets.\n\n * More.\n */\nfunction greet() {",
			found: true,
			want:  []int{0, 1, 2, 3, 4},
		},
		{
			name:  "js line comments are not docs",
			lang:  pattern.JavaScript,
			src:   "// helper\nfunction f() {",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := strings.Split(tt.src, "\n")
			got := scanBackward(tt.lang, lines, len(lines)-1, 200)
			assert.Equal(t, tt.found, got.found)
			if tt.found {
				assert.Equal(t, tt.want, got.indexes)
			}
		})
	}
}

func TestScanBackwardCap(t *testing.T) {
	lines := []string{"/// far", "", "", "", "fn f() {}"}
	assert.False(t, scanBackward(pattern.Rust, lines, 4, 2).found)
	assert.True(t, scanBackward(pattern.Rust, lines, 4, 4).found)
}

func TestScanPython(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		decl    int
		forward bool
		found   bool
		want    []int
	}{
		{
			name:    "single line docstring",
			src:     "def f():\n    \"\"\"Doc.\"\"\"\n    return 1",
			forward: true,
			found:   true,
			want:    []int{1},
		},
		{
			name:    "multi line signature",
			src:     "def f(\n    a,\n    b,\n):\n    '''Doc.'''\n    pass",
			forward: true,
			found:   true,
			want:    []int{4},
		},
		{
			name:    "raw docstring prefix",
			src:     "def f():\n    r\"\"\"Doc \\d.\n    \"\"\"",
			forward: true,
			found:   true,
			want:    []int{1, 2},
		},
		{
			name:    "unterminated docstring",
			src:     "def f():\n    \"\"\"Doc\n    never closed",
			forward: true,
			found:   false,
		},
		{
			name:    "body without docstring",
			src:     "def f():\n    return 1",
			forward: true,
			found:   false,
		},
		{
			name:  "module docstring above",
			src:   "\"\"\"Module doc.\"\"\"\n\ndef f():\n    return 1",
			decl:  2,
			found: true,
			want:  []int{0},
		},
		{
			name:  "multi line module docstring",
			src:   "\"\"\"Module doc.\n\nDetails.\n\"\"\"\ndef f():",
			decl:  4,
			found: true,
			want:  []int{0, 1, 2, 3},
		},
		{
			name:  "neighbour body docstring not claimed",
			src:   "def g():\n    \"\"\"Only a docstring.\"\"\"\ndef f():\n    pass",
			decl:  2,
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := strings.Split(tt.src, "\n")
			var got scanResult
			if tt.forward {
				got = scanPythonForward(lines, tt.decl, 500)
			} else {
				got = scanPythonBackward(lines, tt.decl, 200)
			}
			assert.Equal(t, tt.found, got.found)
			if tt.found {
				assert.Equal(t, tt.want, got.indexes)
			}
		})
	}
}

func TestRescueRustBlock(t *testing.T) {
	lines := strings.Split("/**\n * Builds it.\n */\n#[inline]\nfn build() {}", "\n")
	got := rescueRustBlock(lines, 4)
	require.True(t, got.found)
	assert.Equal(t, []int{0, 1, 2}, got.indexes)

	lines = strings.Split("/**\n * Far away.\n */\n\n\n\nfn build() {}", "\n")
	assert.False(t, rescueRustBlock(lines, 6).found, "gap too large")

	lines = strings.Split("/*\n * Plain.\n */\nfn build() {}", "\n")
	assert.False(t, rescueRustBlock(lines, 3).found, "plain block")

	lines = strings.Split("/** Doc. */\nfn a() {\n    1\n}\nconst N: u8 = 5; /* max */\nfn build() {}", "\n")
	assert.False(t, rescueRustBlock(lines, 5).found, "trailing comment after code")
}

func TestContextPass(t *testing.T) {
	set := mustSet(t, pattern.Rust)
	lines := []string{
		"// noise",
		"/// a",
		"/// b",
		"fn f() {",
		"    // inside body",
		"}",
	}

	ctx := contextPass(lines, set, scanResult{found: true, indexes: []int{1, 2}}, 3)
	assert.Equal(t, 2, ctx.Proximity)
	assert.Equal(t, 5, ctx.Score)
	assert.Equal(t, 2, ctx.DocLineCount)
	assert.Equal(t, 2, ctx.NoiseLines)
}

func TestSemanticPass(t *testing.T) {
	empty := semanticPass(nil, "")
	assert.False(t, empty.Meaningful)
	assert.Equal(t, IntentUnknown, empty.Enhanced.Intent)

	rich := semanticPass([]string{
		"/// Returns the cached value for the given key.",
		"///",
		"/// Example: `cache.get(\"k\")`",
	}, "pub fn get(&self, key: &str) -> Option<String> {")
	assert.True(t, rich.Meaningful)
	assert.ElementsMatch(t, []string{"returns", "examples"}, rich.Categories)
	assert.Greater(t, rich.Enhanced.Technical, 0.0)
	assert.Greater(t, rich.Enhanced.Overall, 0.0)

	bare := semanticPass([]string{"// x"}, "")
	assert.False(t, bare.Meaningful)
}

func TestClassifyIntent(t *testing.T) {
	intent, score := classifyIntent("Internal helper, a temporary workaround.")
	assert.Equal(t, IntentInternal, intent)
	assert.Greater(t, score, 0.0)

	intent, score = classifyIntent("nothing matches here")
	assert.Equal(t, IntentAPI, intent, "ties resolve to the first intent")
	assert.Zero(t, score)
}

func TestSignature(t *testing.T) {
	lines := []string{"pub fn new(", "    name: String,", "    age: u32,", ") -> Self {", "}"}
	assert.Equal(t, "pub fn new( name: String, age: u32, ) -> Self {", signature(lines, 0))
	assert.Equal(t, "}", signature(lines, 4))
}

func TestIsPublicAPI(t *testing.T) {
	assert.True(t, isPublicAPI("pub fn f()"))
	assert.True(t, isPublicAPI("export function f() {"))
	assert.True(t, isPublicAPI("Public Interface"))
	assert.False(t, isPublicAPI("fn helper() {}"))
}
