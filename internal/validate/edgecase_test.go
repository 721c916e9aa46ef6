package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeCaseScan(t *testing.T) {
	scanner := NewEdgeCaseScanner()

	tests := []struct {
		name     string
		line     string
		expected string
	}{
		{"rust todo", "    // TODO: handle overflow", "todo"},
		{"python fixme", "# fixme later", "fixme"},
		{"doc block hack", " * HACK around the borrow checker", "hack"},
		{"debug comment", "// DEBUG print state", "debug"},
		{"pylint", "# pylint: disable=unused-import", "lint_directive"},
		{"noqa", "# noqa", "lint_directive"},
		{"ts ignore", "// @ts-ignore", "ts_ignore"},
		{"eslint", "/* eslint-disable no-console */", "eslint_directive"},
		{"plain doc", "/// Returns the sum.", ""},
		{"todo in code", `let todo = "TODO";`, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			found := scanner.Scan([]string{tc.line}, 0)
			if tc.expected == "" {
				assert.Empty(t, found)
				return
			}
			require.Len(t, found, 1)
			assert.Equal(t, tc.expected, found[0].Type)
			assert.Equal(t, 1, found[0].Line)
		})
	}
}

func TestEdgeCaseScanOffset(t *testing.T) {
	scanner := NewEdgeCaseScanner()

	found := scanner.Scan([]string{"fn f() {", "    // TODO: x", "}"}, 10)
	require.Len(t, found, 1)
	assert.Equal(t, 12, found[0].Line)
	assert.Equal(t, "// TODO: x", found[0].Text)
}

func TestHasMarker(t *testing.T) {
	scanner := NewEdgeCaseScanner()

	assert.True(t, scanner.HasMarker([]EdgeCase{{Type: "fixme"}}))
	assert.False(t, scanner.HasMarker([]EdgeCase{{Type: "ts_ignore"}, {Type: "debug"}}))
	assert.False(t, scanner.HasMarker(nil))
}
