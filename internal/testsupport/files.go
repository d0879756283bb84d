package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// MkdirAll creates a directory tree, failing the test on error.
func MkdirAll(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

// WriteSourceFile drops raw content into dir under the given name,
// creating dir if needed.
func WriteSourceFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	MkdirAll(t, dir)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteJSONSourceFile marshals rows into a provider JSON file.
func WriteJSONSourceFile(t testing.TB, dir, name string, rows []map[string]any) string {
	t.Helper()
	data, err := json.Marshal(rows)
	if err != nil {
		t.Fatalf("marshal rows: %v", err)
	}
	return WriteSourceFile(t, dir, name, string(data))
}
