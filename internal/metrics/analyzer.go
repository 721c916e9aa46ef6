package metrics

import (
	"bufio"
	"encoding/json"
	"os"
	"sort"
	"time"
)

// Analyzer processes metrics logs.
type Analyzer struct {
	logPath string
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(logPath string) *Analyzer {
	return &Analyzer{logPath: logPath}
}

// Summary contains aggregated metrics.
type Summary struct {
	Period             string         `json:"period"`
	FilesParsed        int            `json:"files_parsed"`
	ChunksCreated      int            `json:"chunks_created"`
	DocumentedChunks   int            `json:"documented_chunks"`
	Coverage           float64        `json:"documentation_coverage"`
	AvgConfidence      float64        `json:"avg_confidence"`
	AvgLatencyMs       int64          `json:"avg_latency_ms"`
	CacheHits          int            `json:"cache_hits"`
	FilesByLanguage    map[string]int `json:"files_by_language"`
	Runs               int            `json:"index_runs"`
	ValidationFailures int            `json:"validation_failures"`
	Errors             int            `json:"errors"`
	SlowestFiles       []FileLatency  `json:"slowest_files"`
}

// FileLatency is a file with its slowest observed parse time.
type FileLatency struct {
	File      string `json:"file"`
	LatencyMs int64  `json:"latency_ms"`
}

// FileCount represents a file with the number of times it was seen.
type FileCount struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

// scan calls fn for every well-formed event newer than since.
func (a *Analyzer) scan(since time.Duration, fn func(eventType string, event map[string]interface{})) error {
	file, err := os.Open(a.logPath)
	if err != nil {
		return err
	}
	defer file.Close()

	cutoff := time.Now().Add(-since)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var event map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}

		// Parse timestamp
		tsStr, ok := event["ts"].(string)
		if !ok {
			continue
		}
		ts, err := time.Parse(time.RFC3339, tsStr)
		if err != nil || ts.Before(cutoff) {
			continue
		}

		eventType, _ := event["event"].(string)
		fn(eventType, event)
	}
	return scanner.Err()
}

// Analyze processes logs for a time period.
func (a *Analyzer) Analyze(since time.Duration) (*Summary, error) {
	summary := &Summary{
		Period:          since.String(),
		FilesByLanguage: make(map[string]int),
	}

	var (
		totalLatency int64
		confSum      float64
	)
	slowest := make(map[string]int64)

	err := a.scan(since, func(eventType string, event map[string]interface{}) {
		switch eventType {
		case "parse":
			summary.FilesParsed++

			if lang, ok := event["language"].(string); ok {
				summary.FilesByLanguage[lang]++
			}
			chunks, _ := event["chunks"].(float64)
			documented, _ := event["documented"].(float64)
			summary.ChunksCreated += int(chunks)
			summary.DocumentedChunks += int(documented)

			if conf, ok := event["avg_confidence"].(float64); ok {
				confSum += conf
			}
			if latency, ok := event["latency_ms"].(float64); ok {
				totalLatency += int64(latency)
				if file, ok := event["file"].(string); ok && int64(latency) > slowest[file] {
					slowest[file] = int64(latency)
				}
			}
			if cacheHit, ok := event["cache_hit"].(bool); ok && cacheHit {
				summary.CacheHits++
			}
		case "index_run":
			summary.Runs++
		case "validation":
			if failures, ok := event["failures"].(float64); ok {
				summary.ValidationFailures += int(failures)
			}
		case "error":
			summary.Errors++
		}
	})
	if err != nil {
		return nil, err
	}

	if summary.FilesParsed > 0 {
		summary.AvgLatencyMs = totalLatency / int64(summary.FilesParsed)
		summary.AvgConfidence = confSum / float64(summary.FilesParsed)
	}
	if summary.ChunksCreated > 0 {
		summary.Coverage = float64(summary.DocumentedChunks) / float64(summary.ChunksCreated)
	}

	for f, ms := range slowest {
		summary.SlowestFiles = append(summary.SlowestFiles, FileLatency{File: f, LatencyMs: ms})
	}
	sort.Slice(summary.SlowestFiles, func(i, j int) bool {
		if summary.SlowestFiles[i].LatencyMs != summary.SlowestFiles[j].LatencyMs {
			return summary.SlowestFiles[i].LatencyMs > summary.SlowestFiles[j].LatencyMs
		}
		return summary.SlowestFiles[i].File < summary.SlowestFiles[j].File
	})
	if len(summary.SlowestFiles) > 10 {
		summary.SlowestFiles = summary.SlowestFiles[:10]
	}

	return summary, nil
}

// UndocumentedFiles returns files that produced chunks with no
// documentation, most frequently seen first.
func (a *Analyzer) UndocumentedFiles(since time.Duration) ([]FileCount, error) {
	counts := make(map[string]int)

	err := a.scan(since, func(eventType string, event map[string]interface{}) {
		if eventType != "parse" {
			return
		}
		chunks, _ := event["chunks"].(float64)
		documented, _ := event["documented"].(float64)
		if chunks > 0 && documented == 0 {
			file, _ := event["file"].(string)
			counts[file]++
		}
	})
	if err != nil {
		return nil, err
	}

	var result []FileCount
	for f, c := range counts {
		result = append(result, FileCount{File: f, Count: c})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].File < result[j].File
	})

	return result, nil
}
