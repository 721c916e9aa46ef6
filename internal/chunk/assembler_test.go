package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(typ UnitType, start, end int, documented bool) LogicalUnit {
	return LogicalUnit{
		Type:             typ,
		Name:             string(typ),
		DeclarationLine:  start,
		DocStart:         start,
		CodeEnd:          end,
		HasDocumentation: documented,
	}
}

func TestAbsorb(t *testing.T) {
	units := []LogicalUnit{
		unit(UnitFunction, 2, 4, false),
		unit(UnitClass, 0, 10, true),
		unit(UnitFunction, 12, 14, false),
		unit(UnitFunction, 14, 16, false),
	}

	spans := absorb(units)
	require.Len(t, spans, 2)

	assert.Equal(t, 0, spans[0].start)
	assert.Equal(t, 10, spans[0].end)
	assert.Len(t, spans[0].units, 2)
	assert.Equal(t, UnitClass, spans[0].head)

	assert.Equal(t, 12, spans[1].start)
	assert.Equal(t, 16, spans[1].end)
	assert.Len(t, spans[1].units, 2)
}

func TestRelated(t *testing.T) {
	tests := []struct {
		prev, next UnitType
		want       bool
	}{
		{UnitStruct, UnitImpl, true},
		{UnitEnum, UnitImpl, true},
		{UnitTrait, UnitImpl, true},
		{UnitImpl, UnitImpl, true},
		{UnitFunction, UnitImpl, false},
		{UnitStruct, UnitFunction, false},
		{UnitImpl, UnitStruct, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.prev)+"_"+string(tt.next), func(t *testing.T) {
			assert.Equal(t, tt.want, related(tt.prev, tt.next))
		})
	}
}

func TestMergeable(t *testing.T) {
	long := "this line is long enough to push a span past the minimum size"
	a := &assembler{
		opts:  DefaultOptions(),
		lines: []string{long, long, "", "", "", long, "x", "y"},
	}

	tests := []struct {
		name      string
		cur, next span
		want      bool
	}{
		{
			name: "impl after struct within gap",
			cur:  span{start: 0, end: 0, units: []LogicalUnit{unit(UnitStruct, 0, 0, true)}, tail: UnitStruct},
			next: span{start: 1, end: 1, units: []LogicalUnit{unit(UnitImpl, 1, 1, true)}, head: UnitImpl},
			want: true,
		},
		{
			name: "impl after struct beyond gap",
			cur:  span{start: 0, end: 1, units: []LogicalUnit{unit(UnitStruct, 0, 1, true)}, tail: UnitStruct},
			next: span{start: 5, end: 5, units: []LogicalUnit{unit(UnitImpl, 5, 5, true)}, head: UnitImpl},
			want: false,
		},
		{
			name: "small undocumented pair",
			cur:  span{start: 6, end: 6, units: []LogicalUnit{unit(UnitFunction, 6, 6, false)}},
			next: span{start: 7, end: 7, units: []LogicalUnit{unit(UnitFunction, 7, 7, false)}},
			want: true,
		},
		{
			name: "large undocumented pair",
			cur:  span{start: 0, end: 1, units: []LogicalUnit{unit(UnitFunction, 0, 1, false)}},
			next: span{start: 5, end: 5, units: []LogicalUnit{unit(UnitFunction, 5, 5, false)}},
			want: false,
		},
		{
			name: "small documented pair",
			cur:  span{start: 6, end: 6, units: []LogicalUnit{unit(UnitFunction, 6, 6, true)}},
			next: span{start: 7, end: 7, units: []LogicalUnit{unit(UnitFunction, 7, 7, false)}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.mergeable(tt.cur, tt.next))
		})
	}
}

func TestMergeableRespectsMaxSize(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxChunkSize = 20
	a := &assembler{opts: opts, lines: []string{"pub struct Point {}", "impl Point {}"}}

	cur := span{start: 0, end: 0, units: []LogicalUnit{unit(UnitStruct, 0, 0, true)}, tail: UnitStruct}
	next := span{start: 1, end: 1, units: []LogicalUnit{unit(UnitImpl, 1, 1, true)}, head: UnitImpl}
	assert.False(t, a.mergeable(cur, next))
}

func TestWindow(t *testing.T) {
	lines := []string{"a", "", "b", "c", "d", "", "e", "f", "", ""}
	a := &assembler{opts: DefaultOptions(), lines: lines}

	pieces := []span{
		{start: 2, end: 3, units: []LogicalUnit{unit(UnitFunction, 2, 3, true)}},
		{start: 6, end: 7, units: []LogicalUnit{unit(UnitFunction, 6, 6, true), unit(UnitFunction, 7, 7, true)}},
	}

	lo, hi := a.window(pieces, 0, -1)
	assert.Equal(t, 2, lo, "leading blank trimmed")
	assert.Equal(t, 4, hi, "single unit takes one line of context")

	lo, hi = a.window(pieces, 1, hi)
	assert.Equal(t, 6, lo, "clamped after the previous window and trimmed")
	assert.Equal(t, 7, hi, "trailing blanks trimmed")
}

func TestKeep(t *testing.T) {
	tests := []struct {
		name string
		c    Chunk
		want bool
	}{
		{"documented tiny", Chunk{HasDocumentation: true, Metadata: Metadata{CharCount: 5, UnitCount: 1}}, true},
		{"undocumented tiny", Chunk{Metadata: Metadata{CharCount: 5, UnitCount: 1}}, false},
		{"undocumented multi-unit", Chunk{Metadata: Metadata{CharCount: 5, UnitCount: 2}}, true},
		{"undocumented at minimum", Chunk{Metadata: Metadata{CharCount: 50, UnitCount: 1}}, true},
		{"undocumented large", Chunk{Metadata: Metadata{CharCount: 150}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keep(tt.c, 50))
		})
	}
}
