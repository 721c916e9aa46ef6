package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, data string) string {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "metrics.jsonl")
	require.NoError(t, os.WriteFile(logPath, []byte(data), 0644))
	return logPath
}

func TestAnalyzerAnalyze(t *testing.T) {
	now := time.Now().UTC()
	recentTS := now.Add(-1 * time.Hour).Format(time.RFC3339)
	oldTS := now.Add(-25 * time.Hour).Format(time.RFC3339)

	logPath := writeLog(t, `{"ts":"`+recentTS+`","event":"parse","file":"a.rs","language":"rust","chunks":4,"documented":3,"avg_confidence":0.8,"latency_ms":100,"cache_hit":false}
{"ts":"`+recentTS+`","event":"parse","file":"b.py","language":"python","chunks":2,"documented":0,"avg_confidence":0.2,"latency_ms":50,"cache_hit":true}
{"ts":"`+recentTS+`","event":"parse","file":"a.rs","language":"rust","chunks":4,"documented":3,"avg_confidence":0.8,"latency_ms":150,"cache_hit":false}
{"ts":"`+recentTS+`","event":"index_run","repo":"geo","files":3}
{"ts":"`+recentTS+`","event":"validation","file":"a.rs","failures":2}
{"ts":"`+recentTS+`","event":"error","operation":"parse","message":"x"}
{"ts":"`+oldTS+`","event":"parse","file":"old.rs","language":"rust","chunks":10,"documented":10,"latency_ms":900}
not json
`)

	summary, err := NewAnalyzer(logPath).Analyze(24 * time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.FilesParsed) // Only recent events
	assert.Equal(t, 10, summary.ChunksCreated)
	assert.Equal(t, 6, summary.DocumentedChunks)
	assert.InDelta(t, 0.6, summary.Coverage, 1e-9)
	assert.InDelta(t, 0.6, summary.AvgConfidence, 1e-9)
	assert.Equal(t, int64(100), summary.AvgLatencyMs) // (100+50+150)/3
	assert.Equal(t, 1, summary.CacheHits)
	assert.Equal(t, 2, summary.FilesByLanguage["rust"])
	assert.Equal(t, 1, summary.FilesByLanguage["python"])
	assert.Equal(t, 1, summary.Runs)
	assert.Equal(t, 2, summary.ValidationFailures)
	assert.Equal(t, 1, summary.Errors)

	require.Len(t, summary.SlowestFiles, 2)
	assert.Equal(t, FileLatency{File: "a.rs", LatencyMs: 150}, summary.SlowestFiles[0])
}

func TestAnalyzerUndocumentedFiles(t *testing.T) {
	recentTS := time.Now().UTC().Add(-1 * time.Hour).Format(time.RFC3339)

	logPath := writeLog(t, `{"ts":"`+recentTS+`","event":"parse","file":"ok.rs","chunks":2,"documented":1}
{"ts":"`+recentTS+`","event":"parse","file":"bare.py","chunks":3,"documented":0}
{"ts":"`+recentTS+`","event":"parse","file":"bare.py","chunks":3,"documented":0}
{"ts":"`+recentTS+`","event":"parse","file":"empty.js","chunks":0,"documented":0}
{"ts":"`+recentTS+`","event":"parse","file":"plain.ts","chunks":1,"documented":0}
`)

	files, err := NewAnalyzer(logPath).UndocumentedFiles(24 * time.Hour)
	require.NoError(t, err)

	assert.Equal(t, []FileCount{
		{File: "bare.py", Count: 2},
		{File: "plain.ts", Count: 1},
	}, files)
}

func TestAnalyzerMissingFile(t *testing.T) {
	_, err := NewAnalyzer(filepath.Join(t.TempDir(), "none.jsonl")).Analyze(time.Hour)
	assert.Error(t, err)
}
