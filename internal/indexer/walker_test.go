package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

func TestWalker(t *testing.T) {
	// Create temp directory with test files
	tmpDir := t.TempDir()

	// Create a Python file
	pyContent := `
def hello():
    """Say hello."""
    return "Hello"
`
	err := os.WriteFile(filepath.Join(tmpDir, "test.py"), []byte(pyContent), 0644)
	require.NoError(t, err)

	// Create a test file (should still be included - test filtering is separate)
	testContent := `
def test_hello():
    assert hello() == "Hello"
`
	err = os.WriteFile(filepath.Join(tmpDir, "test_hello.py"), []byte(testContent), 0644)
	require.NoError(t, err)

	// Create __pycache__ (should be excluded)
	err = os.MkdirAll(filepath.Join(tmpDir, "__pycache__"), 0755)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(tmpDir, "__pycache__", "test.pyc"), []byte("binary"), 0644)
	require.NoError(t, err)

	// Walk and count files
	walker := NewWalker([]string{"**/*.py"}, nil)

	var files []string
	err = walker.Walk(tmpDir, func(f SourceFile) error {
		files = append(files, f.Path)
		return nil
	})
	require.NoError(t, err)

	// Should find 2 Python files, not the .pyc
	require.Len(t, files, 2)
}

func TestWalkerDefaultExcludes(t *testing.T) {
	tmpDir := t.TempDir()

	// Create directories that should be excluded by default
	excludedDirs := []string{".git", "node_modules", "venv", ".venv", "dist", "build"}
	for _, dir := range excludedDirs {
		err := os.MkdirAll(filepath.Join(tmpDir, dir), 0755)
		require.NoError(t, err)
		err = os.WriteFile(filepath.Join(tmpDir, dir, "file.py"), []byte("# excluded"), 0644)
		require.NoError(t, err)
	}

	// Create a file that should be included
	err := os.WriteFile(filepath.Join(tmpDir, "main.py"), []byte("# included"), 0644)
	require.NoError(t, err)

	walker := NewWalker([]string{"**/*.py"}, nil)

	var files []string
	err = walker.Walk(tmpDir, func(f SourceFile) error {
		files = append(files, f.Path)
		return nil
	})
	require.NoError(t, err)

	// Should only find main.py
	require.Len(t, files, 1)
	require.Contains(t, files[0], "main.py")
}

func TestWalkerCustomExcludes(t *testing.T) {
	tmpDir := t.TempDir()

	// Create files
	err := os.WriteFile(filepath.Join(tmpDir, "main.py"), []byte("# main"), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(tmpDir, "generated.py"), []byte("# generated"), 0644)
	require.NoError(t, err)

	// Exclude generated files
	walker := NewWalker([]string{"**/*.py"}, []string{"**/generated.py"})

	var files []string
	err = walker.Walk(tmpDir, func(f SourceFile) error {
		files = append(files, f.Path)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, files, 1)
	require.Contains(t, files[0], "main.py")
}

func TestWalkerNestedDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	// Create nested structure
	err := os.MkdirAll(filepath.Join(tmpDir, "src", "pkg", "sub"), 0755)
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(tmpDir, "src", "main.py"), []byte("# main"), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(tmpDir, "src", "pkg", "util.py"), []byte("# util"), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(tmpDir, "src", "pkg", "sub", "deep.py"), []byte("# deep"), 0644)
	require.NoError(t, err)

	walker := NewWalker([]string{"**/*.py"}, nil)

	var files []string
	err = walker.Walk(tmpDir, func(f SourceFile) error {
		files = append(files, f.Path)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, files, 3)
}

func TestWalkerDefaultIncludes(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"lib.rs", "app.py", "ui.tsx", "notes.md", "main.go"} {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "target", "debug"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "target", "debug", "gen.rs"), []byte("x"), 0644))

	files, err := Discover(tmpDir, nil, nil)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Rel)
	}
	require.Equal(t, []string{"app.py", "lib.rs", "ui.tsx"}, names)
}

func TestWalkerLanguages(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "web"), 0755))
	for _, name := range []string{"lib.rs", "app.py", "web/index.mjs", "web/App.tsx", "README.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, filepath.FromSlash(name)), []byte("x"), 0644))
	}

	tests := []struct {
		name    string
		include []string
		want    map[string]pattern.Language
	}{
		{
			name:    "default includes",
			include: nil,
			want: map[string]pattern.Language{
				"lib.rs":        pattern.Rust,
				"app.py":        pattern.Python,
				"web/index.mjs": pattern.JavaScript,
				"web/App.tsx":   pattern.TypeScript,
			},
		},
		{
			name:    "unrecognized extension",
			include: []string{"**/*.txt"},
			want:    map[string]pattern.Language{"README.txt": pattern.Unknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := map[string]pattern.Language{}
			err := NewWalker(tt.include, nil).Walk(tmpDir, func(f SourceFile) error {
				assert.Equal(t, filepath.Join(tmpDir, filepath.FromSlash(f.Rel)), f.Path)
				got[f.Rel] = f.Language
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
