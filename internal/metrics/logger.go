// Package metrics provides JSONL event logging for analytics.
package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes metrics events to JSONL file. A nil *Logger discards events.
type Logger struct {
	file *os.File
	mu   sync.Mutex
}

// NewLogger creates a new metrics logger, creating the parent directory.
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Logger{file: file}, nil
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) log(event string, data map[string]interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	e := map[string]interface{}{
		"ts":    time.Now().UTC().Format(time.RFC3339),
		"event": event,
	}
	for k, v := range data {
		e[k] = v
	}

	line, _ := json.Marshal(e)
	l.file.Write(line)
	l.file.Write([]byte("\n"))
}

// LogParse logs the chunking of one file.
func (l *Logger) LogParse(file, language string, chunks, documented int, avgConfidence float64, latencyMs int64, cacheHit bool) {
	l.log("parse", map[string]interface{}{
		"file":           file,
		"language":       language,
		"chunks":         chunks,
		"documented":     documented,
		"avg_confidence": avgConfidence,
		"latency_ms":     latencyMs,
		"cache_hit":      cacheHit,
	})
}

// LogRun logs a completed indexing run.
func (l *Logger) LogRun(repo string, files, skipped, chunks, documented, errors int, durationMs int64) {
	l.log("index_run", map[string]interface{}{
		"repo":        repo,
		"files":       files,
		"skipped":     skipped,
		"chunks":      chunks,
		"documented":  documented,
		"errors":      errors,
		"duration_ms": durationMs,
	})
}

// LogValidation logs the validation of one file's chunks.
func (l *Logger) LogValidation(file string, chunks, failures int, avgQuality float64) {
	l.log("validation", map[string]interface{}{
		"file":        file,
		"chunks":      chunks,
		"failures":    failures,
		"avg_quality": avgQuality,
	})
}

// LogCacheInvalidate logs a cache invalidation.
func (l *Logger) LogCacheInvalidate(backend string, removed int) {
	l.log("cache_invalidate", map[string]interface{}{
		"backend": backend,
		"removed": removed,
	})
}

// LogError logs an error event.
func (l *Logger) LogError(operation, message string) {
	l.log("error", map[string]interface{}{
		"operation": operation,
		"message":   message,
	})
}
