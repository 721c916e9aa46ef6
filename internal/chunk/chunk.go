// Package chunk splits source files into documentation-aware chunks.
package chunk

import (
	"crypto/sha256"
	"fmt"
	"slices"
)

// Chunk is one contiguous slice of a source file holding one or more
// logical units and the documentation attached to them.
type Chunk struct {
	// Identity
	ID       string `json:"id"` // Generated: hash of path+lines+content
	FilePath string `json:"file_path"`

	// Location, 1-based inclusive
	LineStart int `json:"line_start"`
	LineEnd   int `json:"line_end"`

	// Classification
	Type     string `json:"chunk_type"` // rust_smart_chunk | rust_remaining_chunk | text_paragraph_chunk
	Name     string `json:"name"`
	Language string `json:"language"`

	// Content is a verbatim slice of the source lines.
	Content string `json:"content"`

	HasDocumentation bool    `json:"has_documentation"`
	Confidence       float64 `json:"confidence"`

	Metadata Metadata `json:"metadata"`
}

// Metadata describes what a chunk was built from.
type Metadata struct {
	Language  string        `json:"language"`
	FilePath  string        `json:"file_path"`
	UnitCount int           `json:"logical_units"`
	UnitTypes []UnitType    `json:"unit_types,omitempty"`
	CharCount int           `json:"char_count"`
	Units     []UnitSummary `json:"units,omitempty"`
}

// UnitSummary is the per-unit record kept in chunk metadata.
type UnitSummary struct {
	Name             string   `json:"name"`
	Type             UnitType `json:"type"`
	DeclarationLine  int      `json:"declaration_line"` // 1-based
	HasDocumentation bool     `json:"has_documentation"`
	Confidence       float64  `json:"confidence"`
}

// CloneChunks returns a copy of chunks that shares no backing arrays with
// the original.
func CloneChunks(chunks []Chunk) []Chunk {
	if chunks == nil {
		return nil
	}
	out := make([]Chunk, len(chunks))
	for i, c := range chunks {
		c.Metadata.UnitTypes = slices.Clone(c.Metadata.UnitTypes)
		c.Metadata.Units = slices.Clone(c.Metadata.Units)
		out[i] = c
	}
	return out
}

// TokenEstimate returns rough token count for the chunk.
func (c *Chunk) TokenEstimate() int {
	// Rough estimate: ~4 chars per token
	return len(c.Content) / 4
}

// ContentHash returns the hex SHA-256 of the chunk content. Stores use it to
// deduplicate identical chunks.
func (c *Chunk) ContentHash() string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(c.Content)))
}

// GenerateID creates a deterministic ID for a chunk.
func GenerateID(filePath string, lineStart, lineEnd int, content string) string {
	data := fmt.Sprintf("%s:%d:%d:%s", filePath, lineStart, lineEnd, content)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash[:8])
}
