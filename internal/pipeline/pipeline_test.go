package pipeline_test

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"reelmerge/internal/load"
	"reelmerge/internal/logging"
	"reelmerge/internal/pipeline"
	"reelmerge/internal/testsupport"
)

var fixedNow = time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)

func seedTwoProviders(t *testing.T, dir string) {
	t.Helper()
	testsupport.WriteSourceFile(t, dir, "provider1.csv",
		"movie_title,release_year,critic_score_percentage\n"+
			"Inception,2010,87\n")
	testsupport.WriteJSONSourceFile(t, dir, "provider2.json", []map[string]any{
		{
			"title":                     "inception",
			"year":                      2010,
			"audience_average_score":    9.1,
			"total_audience_ratings":    550000,
			"domestic_box_office_gross": 292576195,
		},
	})
}

func TestRunMergesAcrossProviders(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedTwoProviders(t, cfg.Source.Dir)

	p := pipeline.New(cfg, logging.NewNop())
	summary, err := p.Run(context.Background(), pipeline.Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.FilesRead != 2 || summary.RowsExtracted != 2 {
		t.Fatalf("unexpected extraction counts: %+v", summary)
	}
	if summary.CanonicalCount != 2 || summary.MergedCount != 1 {
		t.Fatalf("expected 2 canonical and 1 merged, got %+v", summary)
	}
	if !reflect.DeepEqual(summary.Providers, []string{"provider1", "provider2"}) {
		t.Fatalf("unexpected providers %v", summary.Providers)
	}
	if summary.LargestGroup != 2 {
		t.Fatalf("unexpected largest group %d", summary.LargestGroup)
	}

	doc, err := load.ReadMerged(summary.MergedPath)
	if err != nil {
		t.Fatalf("ReadMerged: %v", err)
	}
	if len(doc.Records) != 1 {
		t.Fatalf("expected one merged record, got %d", len(doc.Records))
	}
	rec := doc.Records[0]
	if rec.MovieTitle != "Inception" {
		t.Fatalf("provider1 should win the title, got %q", rec.MovieTitle)
	}
	if rec.Ratings.Critic.Score == nil || *rec.Ratings.Critic.Score != 8.7 {
		t.Fatalf("unexpected critic score %v", rec.Ratings.Critic.Score)
	}
	if rec.Ratings.Audience.Score == nil || *rec.Ratings.Audience.Score != 9.1 {
		t.Fatalf("unexpected audience score %v", rec.Ratings.Audience.Score)
	}
	if rec.Financials.DomesticBoxOfficeUSD == nil || *rec.Financials.DomesticBoxOfficeUSD != 292576195 {
		t.Fatalf("unexpected domestic gross %v", rec.Financials.DomesticBoxOfficeUSD)
	}
	if !reflect.DeepEqual(rec.Providers, []string{"provider1", "provider2"}) {
		t.Fatalf("unexpected provenance %v", rec.Providers)
	}
}

func TestRunSkipsTitlelessRowsAndCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteSourceFile(t, cfg.Source.Dir, "provider1.csv",
		"movie_title,release_year\n"+
			"Inception,2010\n"+
			",2011\n")

	p := pipeline.New(cfg, logging.NewNop())
	summary, err := p.Run(context.Background(), pipeline.Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RowsSkipped != 1 {
		t.Fatalf("expected 1 skipped row, got %d", summary.RowsSkipped)
	}
	if summary.MergedCount != 1 {
		t.Fatalf("skip must not affect merged count, got %d", summary.MergedCount)
	}
}

func TestRunIsByteIdenticalAcrossReruns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedTwoProviders(t, cfg.Source.Dir)
	p := pipeline.New(cfg, logging.NewNop())

	first, err := p.Run(context.Background(), pipeline.Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstBytes, err := os.ReadFile(first.MergedPath)
	if err != nil {
		t.Fatalf("read first artifact: %v", err)
	}

	second, err := p.Run(context.Background(), pipeline.Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	secondBytes, err := os.ReadFile(second.MergedPath)
	if err != nil {
		t.Fatalf("read second artifact: %v", err)
	}
	if string(firstBytes) != string(secondBytes) {
		t.Fatal("rerun against unchanged inputs must reproduce byte-identical output")
	}
}

func TestRunAlternateDirectorySelection(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteSourceFile(t, cfg.Source.AlternateDir, "provider1.csv",
		"movie_title,release_year\nTenet,2020\n")

	p := pipeline.New(cfg, logging.NewNop())
	summary, err := p.Run(context.Background(), pipeline.Options{Alternate: true, Now: fixedNow})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.SourceDir != cfg.Source.AlternateDir {
		t.Fatalf("expected alternate source dir, got %q", summary.SourceDir)
	}
	if summary.MergedCount != 1 {
		t.Fatalf("unexpected merged count %d", summary.MergedCount)
	}
}

func TestRunMissingSourceDirFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := pipeline.New(cfg, logging.NewNop())
	// Alternate dir is never created by testsupport.
	if _, err := p.Run(context.Background(), pipeline.Options{Alternate: true, Now: fixedNow}); err == nil {
		t.Fatal("expected error for missing source directory")
	}
}

func TestRunEmptySourceProducesEmptyArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := pipeline.New(cfg, logging.NewNop())
	summary, err := p.Run(context.Background(), pipeline.Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.MergedCount != 0 || summary.CanonicalCount != 0 {
		t.Fatalf("expected empty outputs, got %+v", summary)
	}
	if _, err := os.Stat(summary.MergedPath); err != nil {
		t.Fatalf("merged artifact should still be written: %v", err)
	}
}

func TestRunSameTitleDifferentYearsDoNotMerge(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteSourceFile(t, cfg.Source.Dir, "provider1.csv",
		"movie_title,release_year\nDune,1984\n")
	testsupport.WriteSourceFile(t, cfg.Source.Dir, "provider2.csv",
		"movie_title,release_year\nDune,2021\n")

	p := pipeline.New(cfg, logging.NewNop())
	summary, err := p.Run(context.Background(), pipeline.Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.MergedCount != 2 {
		t.Fatalf("different years must not merge, got %d", summary.MergedCount)
	}
}
