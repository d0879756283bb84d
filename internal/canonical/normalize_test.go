package canonical_test

import (
	"errors"
	"math"
	"testing"

	"reelmerge/internal/canonical"
)

func TestNormalizeMapsProvider1Row(t *testing.T) {
	rec, err := canonical.Normalize(map[string]any{
		"movie_title":                  "Inception",
		"release_year":                 "2010",
		"critic_score_percentage":      "87",
		"top_critic_score":             "8.2",
		"total_critic_reviews_counted": "412",
	}, "provider1")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.MovieTitle != "Inception" {
		t.Fatalf("unexpected title %q", rec.MovieTitle)
	}
	if rec.ReleaseYear == nil || *rec.ReleaseYear != 2010 {
		t.Fatalf("unexpected year %v", rec.ReleaseYear)
	}
	if rec.Provider != "provider1" {
		t.Fatalf("unexpected provider %q", rec.Provider)
	}
	if rec.Ratings.Critic.Score == nil || math.Abs(*rec.Ratings.Critic.Score-8.7) > 1e-9 {
		t.Fatalf("expected percentage scaled to 8.7, got %v", rec.Ratings.Critic.Score)
	}
	if rec.Ratings.Critic.TopScore == nil || *rec.Ratings.Critic.TopScore != 8.2 {
		t.Fatalf("unexpected top score %v", rec.Ratings.Critic.TopScore)
	}
	if rec.Ratings.Critic.TotalRatings == nil || *rec.Ratings.Critic.TotalRatings != 412 {
		t.Fatalf("unexpected critic total %v", rec.Ratings.Critic.TotalRatings)
	}
}

func TestNormalizePrefersFirstMatchingAlias(t *testing.T) {
	rec, err := canonical.Normalize(map[string]any{
		"movie_title":             "Interstellar",
		"release_year":            "2014",
		"critic_score_percentage": "91",
		"critic_score":            5.0,
	}, "provider1")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.Ratings.Critic.Score == nil || math.Abs(*rec.Ratings.Critic.Score-9.1) > 1e-9 {
		t.Fatalf("expected first alias to win with 9.1, got %v", rec.Ratings.Critic.Score)
	}
}

func TestNormalizeMapsProvider2JSONValues(t *testing.T) {
	rec, err := canonical.Normalize(map[string]any{
		"title":                     "Tenet",
		"year":                      float64(2020),
		"audience_average_score":    7.8,
		"total_audience_ratings":    float64(550000),
		"domestic_box_office_gross": float64(58374665),
	}, "provider2")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.ReleaseYear == nil || *rec.ReleaseYear != 2020 {
		t.Fatalf("unexpected year %v", rec.ReleaseYear)
	}
	if rec.Ratings.Audience.Score == nil || *rec.Ratings.Audience.Score != 7.8 {
		t.Fatalf("unexpected audience score %v", rec.Ratings.Audience.Score)
	}
	if rec.Ratings.Audience.TotalRatings == nil || *rec.Ratings.Audience.TotalRatings != 550000 {
		t.Fatalf("unexpected audience total %v", rec.Ratings.Audience.TotalRatings)
	}
	if rec.Financials.DomesticBoxOfficeUSD == nil || *rec.Financials.DomesticBoxOfficeUSD != 58374665 {
		t.Fatalf("unexpected domestic gross %v", rec.Financials.DomesticBoxOfficeUSD)
	}
}

func TestNormalizeIsCaseInsensitiveOnColumnNames(t *testing.T) {
	rec, err := canonical.Normalize(map[string]any{
		"Movie_Title":  "Dune",
		"Release_Year": "2021",
	}, "provider1")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.MovieTitle != "Dune" {
		t.Fatalf("unexpected title %q", rec.MovieTitle)
	}
	if rec.ReleaseYear == nil || *rec.ReleaseYear != 2021 {
		t.Fatalf("unexpected year %v", rec.ReleaseYear)
	}
}

func TestNormalizeGrossOverrideForDomesticFeed(t *testing.T) {
	rec, err := canonical.Normalize(map[string]any{
		"movie_title":          "Oppenheimer",
		"release_year":         "2023",
		"box_office_gross_usd": "326102257",
	}, "provider3_domestic")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.Financials.DomesticBoxOfficeUSD == nil || *rec.Financials.DomesticBoxOfficeUSD != 326102257 {
		t.Fatalf("expected domestic gross, got %v", rec.Financials.DomesticBoxOfficeUSD)
	}
	if rec.Financials.WorldwideBoxOfficeUSD != nil {
		t.Fatalf("worldwide gross should be absent, got %v", *rec.Financials.WorldwideBoxOfficeUSD)
	}
}

func TestNormalizeGrossDefaultsToWorldwide(t *testing.T) {
	rec, err := canonical.Normalize(map[string]any{
		"movie_title":          "Oppenheimer",
		"release_year":         "2023",
		"box_office_gross_usd": "975811015",
	}, "provider3_international")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.Financials.WorldwideBoxOfficeUSD == nil || *rec.Financials.WorldwideBoxOfficeUSD != 975811015 {
		t.Fatalf("expected worldwide gross, got %v", rec.Financials.WorldwideBoxOfficeUSD)
	}
	if rec.Financials.DomesticBoxOfficeUSD != nil {
		t.Fatalf("domestic gross should be absent, got %v", *rec.Financials.DomesticBoxOfficeUSD)
	}
}

func TestNormalizeMissingTitleFailsRow(t *testing.T) {
	_, err := canonical.Normalize(map[string]any{
		"release_year": "1999",
		"critic_score": "7.0",
	}, "provider1")
	if err == nil {
		t.Fatal("expected error for missing title")
	}
	var normErr *canonical.NormalizationError
	if !errors.As(err, &normErr) {
		t.Fatalf("expected NormalizationError, got %T", err)
	}
	if normErr.Provider != "provider1" {
		t.Fatalf("unexpected provider in error: %q", normErr.Provider)
	}
}

func TestNormalizeWhitespaceTitleFailsRow(t *testing.T) {
	_, err := canonical.Normalize(map[string]any{"movie_title": "   "}, "provider2")
	var normErr *canonical.NormalizationError
	if !errors.As(err, &normErr) {
		t.Fatalf("expected NormalizationError, got %v", err)
	}
}

func TestNormalizeBadNumericValueOmitsFieldOnly(t *testing.T) {
	rec, err := canonical.Normalize(map[string]any{
		"movie_title":            "Arrival",
		"release_year":           "2016",
		"critic_score":           "not-a-number",
		"total_audience_ratings": "lots",
		"production_budget_usd":  "47000000",
	}, "provider1")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.Ratings.Critic.Score != nil {
		t.Fatalf("expected critic score omitted, got %v", *rec.Ratings.Critic.Score)
	}
	if rec.Ratings.Audience.TotalRatings != nil {
		t.Fatalf("expected audience total omitted, got %v", *rec.Ratings.Audience.TotalRatings)
	}
	if rec.Financials.ProductionBudgetUSD == nil || *rec.Financials.ProductionBudgetUSD != 47000000 {
		t.Fatalf("unexpected budget %v", rec.Financials.ProductionBudgetUSD)
	}
}

func TestNormalizeUnparseableYearIsOmitted(t *testing.T) {
	for _, raw := range []any{"unknown", "99", "123456", ""} {
		rec, err := canonical.Normalize(map[string]any{
			"movie_title":  "Memento",
			"release_year": raw,
		}, "provider1")
		if err != nil {
			t.Fatalf("Normalize(%v): %v", raw, err)
		}
		if rec.ReleaseYear != nil {
			t.Fatalf("year %v should be omitted, got %d", raw, *rec.ReleaseYear)
		}
	}
}

func TestNormalizeYearEmbeddedInString(t *testing.T) {
	rec, err := canonical.Normalize(map[string]any{
		"movie_title": "Heat",
		"year":        "released 1995 (US)",
	}, "provider1")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.ReleaseYear == nil || *rec.ReleaseYear != 1995 {
		t.Fatalf("unexpected year %v", rec.ReleaseYear)
	}
}

func TestNormalizeDropsUnknownColumnsSilently(t *testing.T) {
	rec, err := canonical.Normalize(map[string]any{
		"movie_title":     "Alien",
		"release_year":    "1979",
		"director":        "Ridley Scott",
		"runtime_minutes": "117",
	}, "provider9")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.MovieTitle != "Alien" {
		t.Fatalf("unexpected title %q", rec.MovieTitle)
	}
	if rec.Ratings.Critic.Score != nil || rec.Financials.ProductionBudgetUSD != nil {
		t.Fatal("unknown columns must not populate canonical fields")
	}
}

func TestNormalizeTrimsTitleAndPreservesCase(t *testing.T) {
	rec, err := canonical.Normalize(map[string]any{
		"movie_title":  "  The Dark Knight  ",
		"release_year": 2008,
	}, "provider1")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if rec.MovieTitle != "The Dark Knight" {
		t.Fatalf("unexpected title %q", rec.MovieTitle)
	}
}
