package chunk

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphy/doc-chunker/internal/confidence"
	"github.com/randalmurphy/doc-chunker/internal/detect"
	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

// Options controls chunk sizing and the scan caps used during extraction.
type Options struct {
	MaxChunkSize      int
	MinChunkSize      int
	ContextLines      int
	SingleUnitContext int
	RelatedGap        int
	BraceScanCap      int
	ParagraphMinLines int
	Detect            detect.Options
}

// DefaultOptions returns the standard chunking options.
func DefaultOptions() Options {
	return Options{
		MaxChunkSize:      2000,
		MinChunkSize:      50,
		ContextLines:      3,
		SingleUnitContext: 1,
		RelatedGap:        2,
		BraceScanCap:      500,
		ParagraphMinLines: 10,
		Detect:            detect.DefaultOptions(),
	}
}

// ResultCache stores parse results keyed by CacheKey. Implementations must be
// safe for concurrent use; last write wins.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]Chunk, bool, error)
	Set(ctx context.Context, key string, chunks []Chunk) error
}

// Engine parses source content into chunks. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	opts      Options
	extractor *Extractor
	logger    *slog.Logger
}

// NewEngine creates an engine. A nil scorer uses the default scorer.
func NewEngine(opts Options, scorer *confidence.Scorer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultOptions()
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = def.MaxChunkSize
	}
	if opts.ParagraphMinLines <= 0 {
		opts.ParagraphMinLines = def.ParagraphMinLines
	}
	if opts.BraceScanCap <= 0 {
		opts.BraceScanCap = def.BraceScanCap
	}

	detector := detect.New(scorer, opts.Detect, logger)
	return &Engine{
		opts:      opts,
		extractor: NewExtractor(detector, opts.BraceScanCap, opts.ParagraphMinLines, logger),
		logger:    logger,
	}
}

// Parse splits content into chunks ordered by LineStart. language is a
// lowercase identifier; when empty it is inferred from filePath. Unknown
// languages are split into paragraphs. Empty content yields nil.
func (e *Engine) Parse(content, language, filePath string) []Chunk {
	chunks, _ := e.ParseUnits(content, language, filePath)
	return chunks
}

// ParseUnits is Parse that also returns the logical units the chunks were
// assembled from, as Units would report them.
func (e *Engine) ParseUnits(content, language, filePath string) ([]Chunk, []LogicalUnit) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	lang, name := ResolveLanguage(language, filePath)
	lines := strings.Split(content, "\n")
	set, _ := pattern.Lookup(lang)

	units := e.extractor.FindUnits(lines, lang, filePath)
	a := &assembler{
		opts:     e.opts,
		lines:    lines,
		set:      set,
		langName: name,
		filePath: filePath,
	}
	chunks := a.assemble(units)

	e.logger.Debug("parsed content",
		"file", filePath,
		"language", name,
		"units", len(units),
		"chunks", len(chunks),
	)
	return chunks, units
}

// Units returns the logical units Parse would assemble, before grouping.
func (e *Engine) Units(content, language, filePath string) []LogicalUnit {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	lang, _ := ResolveLanguage(language, filePath)
	return e.extractor.FindUnits(strings.Split(content, "\n"), lang, filePath)
}

// ParseCached is Parse behind cache and reports whether the result came
// from the cache. Cache failures are logged and the content is parsed
// anyway.
func (e *Engine) ParseCached(ctx context.Context, cache ResultCache, content, language, filePath string) ([]Chunk, bool) {
	if cache == nil {
		return e.Parse(content, language, filePath), false
	}

	key := CacheKey(content, language, filePath)
	if chunks, ok, err := cache.Get(ctx, key); err != nil {
		e.logger.Warn("chunk cache get failed", "file", filePath, "error", err)
	} else if ok {
		return chunks, true
	}

	chunks := e.Parse(content, language, filePath)
	if err := cache.Set(ctx, key, chunks); err != nil {
		e.logger.Warn("chunk cache set failed", "file", filePath, "error", err)
	}
	return chunks, false
}

// CacheKey hashes the inputs that determine a parse result. The file path
// is included because it changes the adaptive thresholds.
func CacheKey(content, language, filePath string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", strings.ToLower(language), filePath)
	h.Write([]byte(content))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ResolveLanguage maps a language identifier, or the file extension when
// language is empty, to a pattern language and the name used in chunk types.
// Unrecognized identifiers keep their name and resolve to Unknown.
func ResolveLanguage(language, filePath string) (pattern.Language, string) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		if lang, ok := pattern.DetectLanguage(filePath); ok {
			return lang, lang.String()
		}
		return pattern.Unknown, pattern.Unknown.String()
	}
	lang := pattern.ParseLanguage(language)
	if lang == pattern.Unknown {
		return lang, language
	}
	return lang, lang.String()
}
