// Package load serializes pipeline artifacts to dated JSON files and
// locates the newest artifact for read-back. Re-running on the same day
// overwrites that day's files, so a rerun against unchanged inputs
// reproduces byte-identical output.
package load

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"reelmerge/internal/canonical"
	"reelmerge/internal/etl"
	"reelmerge/internal/fileutil"
	"reelmerge/internal/merge"
)

const (
	canonicalPrefix = "movies_canonical"
	mergedPrefix    = "movies_merged"
)

// CanonicalDocument wraps the post-normalization artifact.
type CanonicalDocument struct {
	GeneratedAt string             `json:"generated_at"`
	Records     []canonical.Record `json:"records"`
}

// MergedDocument wraps the final merged artifact.
type MergedDocument struct {
	GeneratedAt string         `json:"generated_at"`
	Records     []merge.Record `json:"records"`
}

// CanonicalPath returns the dated canonical artifact path for day.
func CanonicalPath(dir string, day time.Time) string {
	return datedPath(dir, canonicalPrefix, day)
}

// MergedPath returns the dated merged artifact path for day.
func MergedPath(dir string, day time.Time) string {
	return datedPath(dir, mergedPrefix, day)
}

func datedPath(dir, prefix string, day time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.json", prefix, day.Format("2006-01-02")))
}

// WriteCanonical writes the ordered canonical records for the day,
// overwriting any artifact already written today.
func WriteCanonical(dir string, records []canonical.Record, now time.Time) (string, error) {
	doc := CanonicalDocument{GeneratedAt: now.Format(time.RFC3339), Records: records}
	path := CanonicalPath(dir, now)
	if err := writeDocument(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

// WriteMerged writes the ordered merged records for the day.
func WriteMerged(dir string, records []merge.Record, now time.Time) (string, error) {
	doc := MergedDocument{GeneratedAt: now.Format(time.RFC3339), Records: records}
	path := MergedPath(dir, now)
	if err := writeDocument(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

func writeDocument(path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return etl.Wrap(etl.ErrIO, "load", "ensure output directory", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return etl.Wrap(etl.ErrIO, "load", "encode artifact", path, err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return etl.Wrap(etl.ErrIO, "load", "write artifact", path, err)
	}
	return nil
}

var artifactDatePattern = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// LatestMergedPath finds the newest movies_merged_*.json in dir, judged
// by the date embedded in the filename rather than file mtime.
func LatestMergedPath(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, mergedPrefix+"_*.json"))
	if err != nil {
		return "", etl.Wrap(etl.ErrIO, "load", "scan output directory", dir, err)
	}
	if len(matches) == 0 {
		return "", etl.Wrap(etl.ErrValidation, "load", "locate merged artifact",
			fmt.Sprintf("no %s_*.json in %s; run the pipeline first", mergedPrefix, dir), nil)
	}

	latest := ""
	latestDate := ""
	for _, path := range matches {
		date := artifactDatePattern.FindString(filepath.Base(path))
		if date == "" {
			continue
		}
		if latest == "" || date > latestDate {
			latest = path
			latestDate = date
		}
	}
	if latest == "" {
		return "", etl.Wrap(etl.ErrValidation, "load", "locate merged artifact",
			fmt.Sprintf("no dated %s artifact in %s", mergedPrefix, dir), nil)
	}
	return latest, nil
}

// ReadMerged loads a merged artifact back from disk.
func ReadMerged(path string) (MergedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MergedDocument{}, etl.Wrap(etl.ErrIO, "load", "read merged artifact", path, err)
	}
	var doc MergedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return MergedDocument{}, etl.Wrap(etl.ErrIO, "load", "decode merged artifact", path, err)
	}
	return doc, nil
}
