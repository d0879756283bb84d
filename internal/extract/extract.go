package extract

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reelmerge/internal/etl"
	"reelmerge/internal/logging"
)

// Format identifies the source file encoding a row came from.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// RawRecord is one unvalidated provider row plus its origin.
type RawRecord struct {
	Provider string
	Format   Format
	Fields   map[string]any
}

// Result carries the ordered raw stream and per-file accounting for the
// run summary.
type Result struct {
	Records     []RawRecord
	FilesRead   int
	FilesFailed int
}

// Discover lists the data files in dir in lexicographic filename order.
// Only .csv and .json files participate; everything else is ignored.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, etl.Wrap(etl.ErrIO, "extract", "scan source directory", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".json":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ProviderID derives the provider identifier from a source path: the
// filename without its extension, e.g. raw/provider3_domestic.csv ->
// provider3_domestic.
func ProviderID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadAll extracts every provider file under dir. A file that cannot be
// parsed is logged, counted, and skipped; only an unreadable directory
// fails the call. Row order within a file and file discovery order are
// both preserved.
func ReadAll(ctx context.Context, logger *slog.Logger, dir string) (Result, error) {
	log := logging.WithContext(ctx, logger)

	paths, err := Discover(dir)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, path := range paths {
		provider := ProviderID(path)
		format, rows, err := ReadFile(path)
		if err != nil {
			result.FilesFailed++
			log.Warn("skipping unreadable provider file",
				logging.String("path", path),
				logging.String("provider", provider),
				logging.Error(err))
			continue
		}
		result.FilesRead++
		for _, fields := range rows {
			result.Records = append(result.Records, RawRecord{
				Provider: provider,
				Format:   format,
				Fields:   fields,
			})
		}
		log.Debug("extracted provider file",
			logging.String("provider", provider),
			logging.String("format", string(format)),
			logging.Int("rows", len(rows)))
	}
	return result, nil
}

// ReadFile parses a single provider file, dispatching on its extension.
func ReadFile(path string) (Format, []map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err := readCSV(path)
		return FormatCSV, rows, err
	case ".json":
		rows, err := readJSON(path)
		return FormatJSON, rows, err
	default:
		return "", nil, etl.Wrap(etl.ErrValidation, "extract", "dispatch", fmt.Sprintf("unsupported file type %s", filepath.Ext(path)), nil)
	}
}

func readCSV(path string) ([]map[string]any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		fields := make(map[string]any, len(header))
		for i, name := range header {
			if i >= len(record) {
				break
			}
			fields[name] = record[i]
		}
		rows = append(rows, fields)
	}
	return rows, nil
}

// readJSON accepts either a top-level array of objects or a wrapper
// object carrying one; the "records" key wins when present, otherwise
// keys are tried in sorted order so the choice is deterministic.
func readJSON(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	switch value := decoded.(type) {
	case []any:
		return objectRows(value), nil
	case map[string]any:
		if list, ok := value["records"].([]any); ok {
			return objectRows(list), nil
		}
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if list, ok := value[key].([]any); ok {
				return objectRows(list), nil
			}
		}
		return nil, fmt.Errorf("no record array in %s", path)
	default:
		return nil, fmt.Errorf("unsupported JSON structure in %s", path)
	}
}

func objectRows(list []any) []map[string]any {
	rows := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if fields, ok := entry.(map[string]any); ok {
			rows = append(rows, fields)
		}
	}
	return rows
}
