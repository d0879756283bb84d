package testsupport

import (
	"path/filepath"
	"testing"

	"reelmerge/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per
// test. The default source directory exists; the alternate one is left
// uncreated so tests can exercise the missing-directory path.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Source.Dir = filepath.Join(base, "raw")
	cfg.Source.AlternateDir = filepath.Join(base, "raw_new")
	cfg.Output.Dir = filepath.Join(base, "processed")
	cfg.Logging.Dir = ""

	MkdirAll(t, cfg.Source.Dir)
	return &cfg
}
