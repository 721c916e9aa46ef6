package chunk

import "sort"

// Stats aggregates chunking results for coverage reporting.
type Stats struct {
	TotalChunks      int              `json:"total_chunks"`
	DocumentedChunks int              `json:"documented_chunks"`
	Coverage         float64          `json:"documentation_coverage"`
	AvgChunkSize     int              `json:"avg_chunk_size"`
	AvgConfidence    float64          `json:"avg_confidence"`
	Sizes            SizeDistribution `json:"size_distribution"`
}

// SizeDistribution summarizes chunk character counts.
type SizeDistribution struct {
	Min    int `json:"min"`
	Max    int `json:"max"`
	Median int `json:"median"`
}

// Summarize computes Stats over chunks. The median is the upper middle
// value for even counts.
func Summarize(chunks []Chunk) Stats {
	if len(chunks) == 0 {
		return Stats{}
	}

	sizes := make([]int, len(chunks))
	var (
		documented int
		sizeSum    int
		confSum    float64
	)
	for i, c := range chunks {
		if c.HasDocumentation {
			documented++
		}
		sizes[i] = c.Metadata.CharCount
		sizeSum += sizes[i]
		confSum += c.Confidence
	}
	sort.Ints(sizes)

	n := len(chunks)
	return Stats{
		TotalChunks:      n,
		DocumentedChunks: documented,
		Coverage:         float64(documented) / float64(n),
		AvgChunkSize:     sizeSum / n,
		AvgConfidence:    confSum / float64(n),
		Sizes: SizeDistribution{
			Min:    sizes[0],
			Max:    sizes[n-1],
			Median: sizes[n/2],
		},
	}
}
