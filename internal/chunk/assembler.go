package chunk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/randalmurphy/doc-chunker/internal/pattern"
)

const (
	remainingMinNonBlank = 3
	remainingDocConf     = 0.5
	remainingPlainConf   = 0.1
	keepCharCount        = 100
)

// span is a contiguous run of lines owned by one or more units. tail is the
// type of the outermost unit most recently added.
type span struct {
	start, end int
	units      []LogicalUnit
	head, tail UnitType
}

func (s span) documented() bool {
	for _, u := range s.units {
		if u.HasDocumentation {
			return true
		}
	}
	return false
}

// assembler turns the units of one file into chunks.
type assembler struct {
	opts     Options
	lines    []string
	set      *pattern.Set
	langName string
	filePath string
}

func (a *assembler) assemble(units []LogicalUnit) []Chunk {
	pieces := a.group(absorb(units))

	covered := make([]bool, len(a.lines))
	chunks := make([]Chunk, 0, len(pieces))
	prevHi := -1
	for i, p := range pieces {
		lo, hi := a.window(pieces, i, prevHi)
		for l := lo; l <= hi; l++ {
			covered[l] = true
		}
		prevHi = hi
		chunks = append(chunks, a.smartChunk(p, lo, hi))
	}
	chunks = append(chunks, a.remaining(covered, len(units) == 0)...)

	kept := chunks[:0]
	for _, c := range chunks {
		if keep(c, a.opts.MinChunkSize) {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].LineStart < kept[j].LineStart })
	return kept
}

// absorb folds nested and overlapping units into the span of the unit that
// encloses them.
func absorb(units []LogicalUnit) []span {
	sorted := append([]LogicalUnit(nil), units...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start() != sorted[j].Start() {
			return sorted[i].Start() < sorted[j].Start()
		}
		return sorted[i].End() > sorted[j].End()
	})

	var spans []span
	for _, u := range sorted {
		if n := len(spans); n > 0 && u.Start() <= spans[n-1].end {
			s := &spans[n-1]
			s.units = append(s.units, u)
			s.end = max(s.end, u.End())
			continue
		}
		spans = append(spans, span{
			start: u.Start(),
			end:   u.End(),
			units: []LogicalUnit{u},
			head:  u.Type,
			tail:  u.Type,
		})
	}
	return spans
}

// group merges consecutive spans into chunk candidates.
func (a *assembler) group(spans []span) []span {
	var out []span
	for _, s := range spans {
		if n := len(out); n > 0 && a.mergeable(out[n-1], s) {
			cur := &out[n-1]
			cur.end = s.end
			cur.units = append(cur.units, s.units...)
			cur.tail = s.head
			continue
		}
		out = append(out, s)
	}
	return out
}

func (a *assembler) mergeable(cur, next span) bool {
	if a.charCount(cur.start, next.end) > a.opts.MaxChunkSize {
		return false
	}
	if next.start-cur.end-1 <= a.opts.RelatedGap && related(cur.tail, next.head) {
		return true
	}
	return !cur.documented() && !next.documented() && a.charCount(cur.start, cur.end) < a.opts.MinChunkSize
}

// related reports whether next belongs with the unit before it: an impl
// after the type it implements, or consecutive impl blocks.
func related(prev, next UnitType) bool {
	if next != UnitImpl {
		return false
	}
	switch prev {
	case UnitStruct, UnitEnum, UnitTrait, UnitImpl:
		return true
	default:
		return false
	}
}

// window extends a span by its context lines without entering the previous
// window or the next span, then trims blank lines from both ends.
func (a *assembler) window(pieces []span, i, prevHi int) (int, int) {
	p := pieces[i]
	w := a.opts.SingleUnitContext
	if len(p.units) > 1 {
		w = a.opts.ContextLines
	}

	floor, ceil := prevHi+1, len(a.lines)-1
	if i+1 < len(pieces) {
		ceil = pieces[i+1].start - 1
	}

	lo := max(p.start-w, floor)
	hi := min(p.end+w, ceil)
	for lo < p.start && isBlank(a.lines[lo]) {
		lo++
	}
	for hi > p.end && isBlank(a.lines[hi]) {
		hi--
	}
	return lo, hi
}

func (a *assembler) smartChunk(p span, lo, hi int) Chunk {
	best := p.units[0]
	var confSum float64
	hasDoc := false
	allParagraphs := true
	seen := map[UnitType]bool{}
	var types []UnitType
	summaries := make([]UnitSummary, 0, len(p.units))

	for _, u := range p.units {
		if u.Confidence > best.Confidence {
			best = u
		}
		confSum += u.Confidence
		hasDoc = hasDoc || u.HasDocumentation
		allParagraphs = allParagraphs && u.Type == UnitParagraph
		if !seen[u.Type] {
			seen[u.Type] = true
			types = append(types, u.Type)
		}
		summaries = append(summaries, UnitSummary{
			Name:             u.Name,
			Type:             u.Type,
			DeclarationLine:  u.DeclarationLine + 1,
			HasDocumentation: u.HasDocumentation,
			Confidence:       u.Confidence,
		})
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	kind := "smart"
	if allParagraphs {
		kind = "paragraph"
	}

	c := a.newChunk(lo, hi, fmt.Sprintf("%s_%s_chunk", a.langName, kind), best.Name)
	c.HasDocumentation = hasDoc
	c.Confidence = confSum / float64(len(p.units))
	c.Metadata.UnitCount = len(p.units)
	c.Metadata.UnitTypes = types
	c.Metadata.Units = summaries
	return c
}

// remaining builds chunks for uncovered runs with enough content. A known
// language file without units becomes one chunk.
func (a *assembler) remaining(covered []bool, noUnits bool) []Chunk {
	if noUnits && a.set != nil {
		lo, hi := 0, len(a.lines)-1
		for lo <= hi && isBlank(a.lines[lo]) {
			lo++
		}
		for hi >= lo && isBlank(a.lines[hi]) {
			hi--
		}
		if lo > hi {
			return nil
		}
		return []Chunk{a.remainingChunk(lo, hi)}
	}

	var out []Chunk
	for i := 0; i < len(a.lines); {
		if covered[i] || isBlank(a.lines[i]) {
			i++
			continue
		}
		lo, hi, nonBlank := i, i, 0
		for ; i < len(a.lines) && !covered[i]; i++ {
			if !isBlank(a.lines[i]) {
				hi = i
				nonBlank++
			}
		}
		if nonBlank > remainingMinNonBlank {
			out = append(out, a.remainingChunk(lo, hi))
		}
	}
	return out
}

func (a *assembler) remainingChunk(lo, hi int) Chunk {
	docLike := false
	if a.set != nil {
		for _, line := range a.lines[lo : hi+1] {
			if a.set.IsDocComment(line) {
				docLike = true
				break
			}
		}
	}

	c := a.newChunk(lo, hi, a.langName+"_remaining_chunk", fmt.Sprintf("%s_remaining_%d", a.langName, lo+1))
	c.HasDocumentation = docLike
	c.Confidence = remainingPlainConf
	if docLike {
		c.Confidence = remainingDocConf
	}
	return c
}

func (a *assembler) newChunk(lo, hi int, chunkType, name string) Chunk {
	content := strings.Join(a.lines[lo:hi+1], "\n")
	return Chunk{
		ID:        GenerateID(a.filePath, lo+1, hi+1, content),
		FilePath:  a.filePath,
		LineStart: lo + 1,
		LineEnd:   hi + 1,
		Type:      chunkType,
		Name:      name,
		Language:  a.langName,
		Content:   content,
		Metadata: Metadata{
			Language:  a.langName,
			FilePath:  a.filePath,
			CharCount: len(content),
		},
	}
}

func (a *assembler) charCount(lo, hi int) int {
	n := hi - lo
	for _, line := range a.lines[lo : hi+1] {
		n += len(line)
	}
	return n
}

// keep drops only small undocumented single-unit chunks.
func keep(c Chunk, minSize int) bool {
	switch {
	case c.HasDocumentation, c.Metadata.CharCount > keepCharCount, c.Metadata.UnitCount > 1:
		return true
	default:
		return c.Metadata.CharCount >= minSize
	}
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
