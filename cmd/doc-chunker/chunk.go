package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphy/doc-chunker/internal/chunk"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [file]",
	Short: "Chunk a single file and print the result",
	Long: `Chunk a single file and print the result. Reads stdin when no file is
given; pass --language in that case.`,
	Args: cobra.MaximumNArgs(1),
	RunE:  runChunk,
}

var (
	chunkLanguage string
	chunkJSON     bool
	chunkContent  bool
)

func init() {
	chunkCmd.Flags().StringVar(&chunkLanguage, "language", "", "Language identifier (inferred from the extension when empty)")
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "Output as JSON")
	chunkCmd.Flags().BoolVar(&chunkContent, "content", false, "Print chunk content")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	var (
		path string
		data []byte
		err  error
	)
	if len(args) == 1 {
		path = args[0]
		data, err = os.ReadFile(path)
	} else {
		path = "<stdin>"
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return fmt.Errorf("%s: %w", path, chunk.ErrEmptyContent)
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}
	resultCache, closeCache := openCache()
	defer closeCache()

	m := openMetrics()
	defer m.Close()

	start := time.Now()
	chunks, hit := engine.ParseCached(context.Background(), resultCache, string(data), chunkLanguage, path)
	stats := chunk.Summarize(chunks)

	_, language := chunk.ResolveLanguage(chunkLanguage, path)
	m.LogParse(path, language, len(chunks), stats.DocumentedChunks, stats.AvgConfidence,
		time.Since(start).Milliseconds(), hit)

	if chunkJSON {
		out, _ := json.MarshalIndent(chunks, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("%s: %d chunks\n\n", path, len(chunks))
	for _, c := range chunks {
		doc := "no"
		if c.HasDocumentation {
			doc = "yes"
		}
		fmt.Printf("  %4d-%-4d  %-28s %-24s doc=%-3s conf=%.2f\n",
			c.LineStart, c.LineEnd, c.Type, c.Name, doc, c.Confidence)
		if chunkContent {
			for _, line := range strings.Split(c.Content, "\n") {
				fmt.Printf("      | %s\n", line)
			}
			fmt.Println()
		}
	}

	fmt.Println()
	printStats(stats)
	return nil
}

func printStats(s chunk.Stats) {
	fmt.Printf("  Chunks:          %d\n", s.TotalChunks)
	fmt.Printf("  Documented:      %d (%.0f%%)\n", s.DocumentedChunks, s.Coverage*100)
	fmt.Printf("  Avg confidence:  %.2f\n", s.AvgConfidence)
	fmt.Printf("  Avg size:        %d chars\n", s.AvgChunkSize)
	fmt.Printf("  Size range:      %d / %d / %d (min / median / max)\n", s.Sizes.Min, s.Sizes.Median, s.Sizes.Max)
}
