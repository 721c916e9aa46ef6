package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphy/doc-chunker/internal/metrics"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Analyze chunking metrics",
	Long:  `Summarize parse, index and validation events from the metrics log.`,
	RunE:  runMetrics,
}

var (
	metricsSince        string
	metricsUndocumented bool
	metricsJSON         bool
)

func init() {
	metricsCmd.Flags().StringVar(&metricsSince, "last", "7d", "Time period (e.g., 1h, 24h, 7d, 30d)")
	metricsCmd.Flags().BoolVar(&metricsUndocumented, "undocumented", false, "Show files that produced no documented chunks")
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	duration, err := parseDuration(metricsSince)
	if err != nil {
		return fmt.Errorf("invalid time period: %w", err)
	}

	metricsPath := cfg.Logging.MetricsPath
	if _, err := os.Stat(metricsPath); os.IsNotExist(err) {
		fmt.Println("No metrics data found. Run 'doc-chunker index' or 'doc-chunker chunk' to generate metrics.")
		return nil
	}

	analyzer := metrics.NewAnalyzer(metricsPath)

	if metricsUndocumented {
		files, err := analyzer.UndocumentedFiles(duration)
		if err != nil {
			return err
		}

		if metricsJSON {
			data, _ := json.MarshalIndent(files, "", "  ")
			fmt.Println(string(data))
		} else {
			fmt.Printf("Files without documented chunks (last %s):\n\n", metricsSince)
			if len(files) == 0 {
				fmt.Println("  None.")
			}
			for _, f := range files {
				fmt.Printf("  - %s (%d times)\n", f.File, f.Count)
			}
		}
		return nil
	}

	summary, err := analyzer.Analyze(duration)
	if err != nil {
		return err
	}

	if metricsJSON {
		data, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Metrics Summary (last %s):\n\n", metricsSince)
	fmt.Printf("  Files parsed:        %d\n", summary.FilesParsed)
	fmt.Printf("  Chunks created:      %d\n", summary.ChunksCreated)
	fmt.Printf("  Documented chunks:   %d (%.0f%%)\n", summary.DocumentedChunks, summary.Coverage*100)
	fmt.Printf("  Avg confidence:      %.2f\n", summary.AvgConfidence)
	fmt.Printf("  Avg latency:         %dms\n", summary.AvgLatencyMs)
	fmt.Printf("  Cache hits:          %d\n", summary.CacheHits)
	fmt.Printf("  Index runs:          %d\n", summary.Runs)
	fmt.Printf("  Validation failures: %d\n", summary.ValidationFailures)
	fmt.Printf("  Errors:              %d\n", summary.Errors)
	fmt.Println()
	if len(summary.FilesByLanguage) > 0 {
		langs := make([]string, 0, len(summary.FilesByLanguage))
		for l := range summary.FilesByLanguage {
			langs = append(langs, l)
		}
		sort.Strings(langs)
		fmt.Println("  Files by language:")
		for _, l := range langs {
			fmt.Printf("    - %s: %d\n", l, summary.FilesByLanguage[l])
		}
		fmt.Println()
	}
	if len(summary.SlowestFiles) > 0 {
		fmt.Println("  Slowest files:")
		for _, f := range summary.SlowestFiles {
			fmt.Printf("    - %s (%dms)\n", f.File, f.LatencyMs)
		}
	}

	return nil
}

func parseDuration(s string) (time.Duration, error) {
	// Handle day suffix
	if len(s) > 0 && s[len(s)-1] == 'd' {
		days := s[:len(s)-1]
		var d int
		if _, err := fmt.Sscanf(days, "%d", &d); err == nil {
			return time.Duration(d) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
