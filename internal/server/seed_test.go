package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))

	files := map[string]string{
		"project.json": `{"name":"adder","source":"add.js","tests":"add.test.js"}`,
		"add.js":       "function add(a, b) { return a + b; }",
		"add.test.js":  "it('adds', () => { expect(add(2, 2)).toBe(4); });",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}
