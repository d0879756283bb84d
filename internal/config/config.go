package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Source selects where provider files are discovered. The alternate
// directory holds the incoming batch layout and is chosen per run with
// the --alternate flag, never by ambient state.
type Source struct {
	Dir          string `toml:"dir"`
	AlternateDir string `toml:"alternate_dir"`
}

// Output configures where dated artifacts are written.
type Output struct {
	Dir string `toml:"dir"`
}

// Logging configures log output format and verbosity.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"log_dir"`
}

// Config is the root configuration document.
type Config struct {
	Source  Source  `toml:"source"`
	Output  Output  `toml:"output"`
	Logging Logging `toml:"logging"`
}

// SourceDir resolves the effective source directory for a run.
func (c *Config) SourceDir(alternate bool) string {
	if alternate {
		return c.Source.AlternateDir
	}
	return c.Source.Dir
}

// EnsureDirectories creates the directories reelmerge writes to. Source
// directories are deliberately not created; a missing one is a user
// error the pipeline should report.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Output.Dir}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Load reads configuration from path, or from the default locations when
// path is empty. It returns the resolved path and whether a file existed
// there; defaults apply for anything the file leaves unset.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelmerge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// DefaultConfigPath returns ~/.config/reelmerge/config.toml expanded for
// the current user.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/reelmerge/config.toml")
}

// ExpandPath resolves a leading ~ against the current user's home
// directory and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

func (c *Config) normalize() error {
	c.Source.Dir = strings.TrimSpace(c.Source.Dir)
	c.Source.AlternateDir = strings.TrimSpace(c.Source.AlternateDir)
	c.Output.Dir = strings.TrimSpace(c.Output.Dir)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Dir = strings.TrimSpace(c.Logging.Dir)

	for _, dir := range []*string{&c.Source.Dir, &c.Source.AlternateDir, &c.Output.Dir, &c.Logging.Dir} {
		if *dir == "" {
			continue
		}
		expanded, err := ExpandPath(*dir)
		if err != nil {
			return err
		}
		*dir = expanded
	}
	return nil
}
