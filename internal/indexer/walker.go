// Package indexer walks a source tree and chunks every selected file
// concurrently.
package indexer

import (
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

// SourceFile is a file selected for chunking.
type SourceFile struct {
	Path     string // path as found under the walk root
	Rel      string // slash-separated path relative to the root
	Language pattern.Language
}

// Skipped on every walk.
var defaultExcludes = []string{
	"**/.git/**",
	"**/__pycache__/**",
	"**/node_modules/**",
	"**/venv/**",
	"**/.venv/**",
	"**/dist/**",
	"**/build/**",
	"**/target/**",
	"**/.idea/**",
	"**/.vscode/**",
	"**/*.min.js",
	"**/*.bundle.js",
}

// DefaultIncludes selects every extension with a known language.
func DefaultIncludes() []string {
	exts := pattern.Extensions()
	globs := make([]string, len(exts))
	for i, ext := range exts {
		globs[i] = "**/*" + ext
	}
	return globs
}

// Walker selects source files under a root by glob and tags each with the
// language its extension maps to.
type Walker struct {
	include []string
	exclude []string
}

// NewWalker returns a walker for the given globs. An empty include list
// means DefaultIncludes. The default excludes always apply.
func NewWalker(include, exclude []string) *Walker {
	if len(include) == 0 {
		include = DefaultIncludes()
	}
	return &Walker{
		include: include,
		exclude: append(slices.Clone(defaultExcludes), exclude...),
	}
}

// Walk calls fn for every selected file under root. Excluded directories
// are pruned without being read. Files an include glob selects but whose
// extension is not recognized carry pattern.Unknown and are chunked by
// paragraph.
func (w *Walker) Walk(root string, fn func(SourceFile) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			// "**/.git/**" matches ".git/" but not ".git".
			if rel != "." && (matchAny(w.exclude, rel) || matchAny(w.exclude, rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchAny(w.exclude, rel) || !matchAny(w.include, rel) {
			return nil
		}

		lang, _ := pattern.DetectLanguage(rel)
		return fn(SourceFile{Path: path, Rel: rel, Language: lang})
	})
}

func matchAny(globs []string, rel string) bool {
	for _, glob := range globs {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return true
		}
	}
	return false
}
