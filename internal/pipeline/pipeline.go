// Package pipeline orchestrates one ETL run: extract raw provider rows,
// normalize them into canonical records, merge by identity, and write
// the dated artifacts. Runs are one-shot and single-threaded; a file
// lock on the output directory keeps concurrent invocations from
// interleaving artifacts.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"reelmerge/internal/canonical"
	"reelmerge/internal/config"
	"reelmerge/internal/etl"
	"reelmerge/internal/extract"
	"reelmerge/internal/load"
	"reelmerge/internal/logging"
	"reelmerge/internal/merge"
)

const lockFileName = ".reelmerge.lock"

// Options selects per-run inputs. Explicit directory values override the
// configured ones; Alternate switches to the configured alternate batch
// directory.
type Options struct {
	Alternate bool
	SourceDir string
	OutputDir string
	// Now fixes the artifact date and generated_at stamp; zero means
	// time.Now().
	Now time.Time
}

// Summary is the reportable outcome of a run. Skipped rows and group
// sizes are statistics, never errors.
type Summary struct {
	RunID          string   `json:"run_id"`
	SourceDir      string   `json:"source_dir"`
	FilesRead      int      `json:"files_read"`
	FilesFailed    int      `json:"files_failed"`
	RowsExtracted  int      `json:"rows_extracted"`
	RowsSkipped    int      `json:"rows_skipped"`
	CanonicalCount int      `json:"canonical_records"`
	MergedCount    int      `json:"merged_records"`
	Providers      []string `json:"providers"`
	LargestGroup   int      `json:"largest_group"`
	CanonicalPath  string   `json:"canonical_path"`
	MergedPath     string   `json:"merged_path"`
	Elapsed        string   `json:"elapsed"`
}

// Pipeline wires the stages together with shared config and logging.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs a pipeline. A nil logger falls back to a no-op logger.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, logger: logging.NewComponentLogger(logger, "pipeline")}
}

// Run executes one full extract-normalize-merge-load cycle.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	started := time.Now()
	now := opts.Now
	if now.IsZero() {
		now = started
	}

	sourceDir := opts.SourceDir
	if sourceDir == "" {
		sourceDir = p.cfg.SourceDir(opts.Alternate)
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = p.cfg.Output.Dir
	}

	runID := uuid.NewString()
	ctx = etl.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)

	logger.Info("starting run",
		logging.String("source_dir", sourceDir),
		logging.String("output_dir", outputDir))

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, etl.Wrap(etl.ErrIO, "pipeline", "ensure output directory", outputDir, err)
	}
	unlock, err := acquireRunLock(outputDir)
	if err != nil {
		return nil, err
	}
	defer unlock()

	summary := &Summary{RunID: runID, SourceDir: sourceDir}

	records, err := p.extractStage(ctx, sourceDir, summary)
	if err != nil {
		return nil, err
	}

	canonicalRecords := p.normalizeStage(ctx, records, summary)
	merged := p.mergeStage(ctx, canonicalRecords, summary)

	if err := p.loadStage(ctx, outputDir, canonicalRecords, merged, now, summary); err != nil {
		return nil, err
	}

	summary.Elapsed = time.Since(started).Round(time.Millisecond).String()
	logger.Info("run complete",
		logging.Int("merged_records", summary.MergedCount),
		logging.Int("rows_skipped", summary.RowsSkipped),
		logging.String("elapsed", summary.Elapsed))
	return summary, nil
}

func (p *Pipeline) extractStage(ctx context.Context, sourceDir string, summary *Summary) ([]extract.RawRecord, error) {
	ctx = etl.WithStage(ctx, "extract")
	logger := logging.WithContext(ctx, p.logger)

	result, err := extract.ReadAll(ctx, p.logger, sourceDir)
	if err != nil {
		return nil, err
	}
	summary.FilesRead = result.FilesRead
	summary.FilesFailed = result.FilesFailed
	summary.RowsExtracted = len(result.Records)

	logger.Info("extraction finished",
		logging.Int("files_read", result.FilesRead),
		logging.Int("files_failed", result.FilesFailed),
		logging.Int("rows", len(result.Records)))
	return result.Records, nil
}

func (p *Pipeline) normalizeStage(ctx context.Context, records []extract.RawRecord, summary *Summary) []canonical.Record {
	ctx = etl.WithStage(ctx, "normalize")
	logger := logging.WithContext(ctx, p.logger)

	canonicalRecords := make([]canonical.Record, 0, len(records))
	seenProviders := make(map[string]struct{})

	for _, raw := range records {
		rec, err := canonical.Normalize(raw.Fields, raw.Provider)
		if err != nil {
			var normErr *canonical.NormalizationError
			if errors.As(err, &normErr) {
				summary.RowsSkipped++
				logging.WithContext(etl.WithProvider(ctx, raw.Provider), p.logger).
					Warn("skipping row", logging.Error(err))
				continue
			}
			// Normalize only fails with NormalizationError; anything
			// else would be a programming error worth surfacing loudly.
			summary.RowsSkipped++
			logger.Error("unexpected normalization failure", logging.Error(err))
			continue
		}
		if _, ok := seenProviders[rec.Provider]; !ok {
			seenProviders[rec.Provider] = struct{}{}
			summary.Providers = append(summary.Providers, rec.Provider)
		}
		canonicalRecords = append(canonicalRecords, rec)
	}

	summary.CanonicalCount = len(canonicalRecords)
	logger.Info("normalization finished",
		logging.Int("canonical_records", len(canonicalRecords)),
		logging.Int("rows_skipped", summary.RowsSkipped))
	return canonicalRecords
}

func (p *Pipeline) mergeStage(ctx context.Context, records []canonical.Record, summary *Summary) []merge.Record {
	ctx = etl.WithStage(ctx, "merge")
	logger := logging.WithContext(ctx, p.logger)

	merged := merge.MergeAll(records)
	summary.MergedCount = len(merged)
	for _, size := range merge.GroupSizes(records) {
		if size > summary.LargestGroup {
			summary.LargestGroup = size
		}
	}

	logger.Info("merge finished",
		logging.Int("merged_records", len(merged)),
		logging.Int("largest_group", summary.LargestGroup))
	return merged
}

func (p *Pipeline) loadStage(ctx context.Context, outputDir string, canonicalRecords []canonical.Record, merged []merge.Record, now time.Time, summary *Summary) error {
	ctx = etl.WithStage(ctx, "load")
	logger := logging.WithContext(ctx, p.logger)

	canonicalPath, err := load.WriteCanonical(outputDir, canonicalRecords, now)
	if err != nil {
		return err
	}
	mergedPath, err := load.WriteMerged(outputDir, merged, now)
	if err != nil {
		return err
	}
	summary.CanonicalPath = canonicalPath
	summary.MergedPath = mergedPath

	logger.Info("artifacts written",
		logging.String("canonical", filepath.Base(canonicalPath)),
		logging.String("merged", filepath.Base(mergedPath)))
	return nil
}

func acquireRunLock(outputDir string) (func(), error) {
	lock := flock.New(filepath.Join(outputDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, etl.Wrap(etl.ErrIO, "pipeline", "acquire run lock", lock.Path(), err)
	}
	if !ok {
		return nil, etl.Wrap(etl.ErrValidation, "pipeline", "acquire run lock",
			"another run is writing to "+outputDir, nil)
	}
	return func() { _ = lock.Unlock() }, nil
}
